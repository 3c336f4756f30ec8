package main

import (
	"context"
	"fmt"
	"time"

	"github.com/corepay/usdtgate/internal/adapter/client/binance"
	"github.com/corepay/usdtgate/internal/adapter/client/tronscan"
	"github.com/corepay/usdtgate/internal/adapter/config"
	"github.com/corepay/usdtgate/internal/adapter/handler/http"
	"github.com/corepay/usdtgate/internal/adapter/logger"
	"github.com/corepay/usdtgate/internal/adapter/notify"
	"github.com/corepay/usdtgate/internal/adapter/storage"
	"github.com/corepay/usdtgate/internal/adapter/storage/repository"
	"github.com/corepay/usdtgate/internal/adapter/webhook"
	"github.com/corepay/usdtgate/internal/core/service"
	"github.com/corepay/usdtgate/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	conf, err := config.NewConfig()
	if err != nil {
		fmt.Printf("config error:%s", err)
		return
	}

	log := logger.NewLogger(conf.App)
	if log == nil {
		fmt.Printf("error creating log")
		return
	}
	defer func() {
		err := log.Sync()
		if err != nil {
			fmt.Printf("log error: %s", err)
		}
	}()

	ctx := context.Background()

	db, err := storage.NewDBStorage(ctx, conf.Database)
	if err != nil {
		log.Error("database error", zap.Error(err))
		return
	}
	err = db.RunMigrations()
	if err != nil {
		log.Error("database migration error", zap.Error(err))
		return
	}

	repo, err := repository.NewRepository(db)
	if err != nil {
		log.Error("repo creating error", zap.Error(err))
		return
	}

	rateSource, err := binance.NewClient(conf.Rate, log.Named("Rate"))
	if err != nil {
		log.Error("rate client creating error", zap.Error(err))
		return
	}
	ledger, err := tronscan.NewClient(conf.Tron, log.Named("Ledger"))
	if err != nil {
		log.Error("ledger client creating error", zap.Error(err))
		return
	}
	notifier, err := notify.NewTelegramBot(conf.Telegram, log.Named("Telegram"))
	if err != nil {
		log.Error("telegram bot creating error", zap.Error(err))
		return
	}
	callback, err := webhook.NewSender(log.Named("Webhook"))
	if err != nil {
		log.Error("webhook sender creating error", zap.Error(err))
		return
	}

	m := metrics.NewPaymentMetrics(prometheus.DefaultRegisterer)

	svc, err := service.NewService(repo, rateSource, ledger, notifier, callback, m,
		service.Config{
			AppURI:    conf.Pay.AppURI,
			APISecret: conf.Pay.APISecret,
			Expiry:    time.Duration(conf.Pay.ExpirationMinutes) * time.Minute,
		},
		log.Named("Service"))
	if err != nil {
		log.Error("payment service creating error", zap.Error(err))
		return
	}

	svc.StartReconciler(ctx, time.Duration(conf.Pay.ReconcileIntervalSeconds)*time.Second)

	orderHandler, err := http.NewOrderHandler(svc, conf.Pay.APISecret, log.Named("Order handler"))
	if err != nil {
		log.Error("order handler creating error", zap.Error(err))
		return
	}
	payHandler, err := http.NewPayHandler(svc, log.Named("Pay handler"))
	if err != nil {
		log.Error("pay handler creating error", zap.Error(err))
		return
	}

	r, err := http.NewRouter(orderHandler, payHandler, log.Named("Router"))
	if err != nil {
		log.Error("router creating error", zap.Error(err))
		return
	}

	err = r.Serve(conf.HTTP.HostString)
	if err != nil {
		log.Error("router serve error", zap.Error(err))
		return
	}
}
