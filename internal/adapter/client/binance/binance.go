package binance

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/corepay/usdtgate/internal/adapter/config"
	"github.com/corepay/usdtgate/internal/core/domain"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

// Client quotes USDT against a fiat currency using the Binance C2C
// advert board. An operator-forced rate short-circuits the remote call.
type Client struct {
	logger     *zap.Logger
	apiURL     string
	forcedRate decimal.Decimal
	hasForced  bool
	httpClient *http.Client
}

func NewClient(cfg *config.Rate, log *zap.Logger) (*Client, error) {
	c := &Client{
		logger:     log,
		apiURL:     cfg.APIURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	if cfg.ForcedRate != "" {
		rate, err := decimal.Parse(cfg.ForcedRate)
		if err != nil {
			return nil, fmt.Errorf("error parsing forced rate %q: %w", cfg.ForcedRate, err)
		}
		if !rate.IsPos() {
			return nil, fmt.Errorf("forced rate %q is not positive", cfg.ForcedRate)
		}
		c.forcedRate = rate
		c.hasForced = true
	}

	return c, nil
}

type advertSearchRequest struct {
	Asset     string `json:"asset"`
	Fiat      string `json:"fiat"`
	TradeType string `json:"tradeType"`
	Page      int    `json:"page"`
	Rows      int    `json:"rows"`
}

type advertSearchResponse struct {
	Data []struct {
		Adv struct {
			Price string `json:"price"`
		} `json:"adv"`
	} `json:"data"`
}

func (c *Client) Rate(ctx context.Context, currency string) (decimal.Decimal, error) {
	if c.hasForced {
		return c.forcedRate, nil
	}

	body, err := json.Marshal(advertSearchRequest{
		Asset:     "USDT",
		Fiat:      strings.ToUpper(currency),
		TradeType: "BUY",
		Page:      1,
		Rows:      10,
	})
	if err != nil {
		return decimal.Zero, fmt.Errorf("error building rate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL, bytes.NewReader(body))
	if err != nil {
		return decimal.Zero, fmt.Errorf("error on %s : %w", c.apiURL, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate request error %s : %w", c.apiURL, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("unexpected status from rate source",
			zap.String("currency", currency), zap.Int("status", resp.StatusCode))
		return decimal.Zero, domain.ErrRateUnavailable
	}

	var result advertSearchResponse
	err = json.NewDecoder(resp.Body).Decode(&result)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error on rate response decode: %w", err)
	}
	if len(result.Data) == 0 {
		return decimal.Zero, domain.ErrRateUnavailable
	}

	rate, err := decimal.Parse(result.Data[0].Adv.Price)
	if err != nil {
		return decimal.Zero, fmt.Errorf("error parsing advert price %q: %w", result.Data[0].Adv.Price, err)
	}
	if !rate.IsPos() {
		return decimal.Zero, domain.ErrRateUnavailable
	}

	return rate, nil
}
