package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v6"
)

type Config struct {
	Database *Database
	HTTP     *HTTP
	Pay      *Pay
	Rate     *Rate
	Tron     *Tron
	Telegram *Telegram
	App      *App
}

const AppModeProduction = "PROD"
const AppModeDevelop = "DEV"

type App struct {
	LogLevel string `env:"LOG_LEVEL"`
	Mode     string
}

type Database struct {
	DSN string `env:"DATABASE_URI"`
}

type HTTP struct {
	HostString string `env:"RUN_ADDRESS"`
}

type Pay struct {
	AppURI                   string `env:"APP_URI"`
	APISecret                string `env:"API_AUTH_TOKEN"`
	ExpirationMinutes        int    `env:"ORDER_EXPIRATION_TIME" envDefault:"10"`
	ReconcileIntervalSeconds int    `env:"RECONCILE_INTERVAL" envDefault:"30"`
}

type Rate struct {
	APIURL     string `env:"RATE_API_URI" envDefault:"https://p2p.binance.com/bapi/c2c/v2/friendly/c2c/adv/search"`
	ForcedRate string `env:"FORCED_USDT_RATE"`
}

type Tron struct {
	APIURL     string `env:"TRONSCAN_API_URI" envDefault:"https://apilist.tronscanapi.com/api/transfer/trc20"`
	ContractID string `env:"USDT_CONTRACT_ID" envDefault:"TR7NHqjeKQxGTCi8q8ZY4pL8otSzgjLj6t"`
}

type Telegram struct {
	BotToken string `env:"TG_BOT_TOKEN"`
	ChatID   string `env:"TG_MANAGE"`
}

func NewConfig() (*Config, error) {
	var db Database
	var http HTTP
	var pay Pay
	var rate Rate
	var tron Tron
	var telegram Telegram
	var app App

	flag.StringVar(&db.DSN, "d", "", "Database string")
	flag.StringVar(&http.HostString, "a", `localhost:8080`, "HTTP server endpoint")
	flag.StringVar(&pay.AppURI, "u", `http://localhost:8080`, "Public URI of this gateway")
	flag.StringVar(&app.LogLevel, "l", `error`, "Log level")
	flag.StringVar(&app.Mode, "m", `DEV`, "PROD / DEV")
	flag.Parse()

	err := env.Parse(&db)
	if err != nil {
		return nil, fmt.Errorf("error parsing env database config: %w", err)
	}
	err = env.Parse(&http)
	if err != nil {
		return nil, fmt.Errorf("error parsing http config: %w", err)
	}
	err = env.Parse(&pay)
	if err != nil {
		return nil, fmt.Errorf("error parsing pay config: %w", err)
	}
	err = env.Parse(&rate)
	if err != nil {
		return nil, fmt.Errorf("error parsing rate config: %w", err)
	}
	err = env.Parse(&tron)
	if err != nil {
		return nil, fmt.Errorf("error parsing tron config: %w", err)
	}
	err = env.Parse(&telegram)
	if err != nil {
		return nil, fmt.Errorf("error parsing telegram config: %w", err)
	}
	err = env.Parse(&app)
	if err != nil {
		return nil, fmt.Errorf("error parsing app config: %w", err)
	}

	config := Config{
		Database: &db,
		HTTP:     &http,
		Pay:      &pay,
		Rate:     &rate,
		Tron:     &tron,
		Telegram: &telegram,
		App:      &app,
	}

	return &config, nil
}
