package port

import (
	"context"
	"time"

	"github.com/corepay/usdtgate/internal/core/domain"
	"github.com/govalues/decimal"
)

//go:generate mockgen -source=clients.go -destination=mock/clients.go -package=mock

// RateSource quotes one fiat unit of the given currency in USDT.
type RateSource interface {
	Rate(ctx context.Context, currency string) (decimal.Decimal, error)
}

// LedgerReader lists TRC20 transfers sent to a wallet within a time window.
type LedgerReader interface {
	ListTransfers(ctx context.Context, wallet string, from, to time.Time) ([]domain.Transfer, error)
}

// Notifier delivers a best-effort operator message.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

// CallbackSender posts a payment callback and returns the raw response body.
type CallbackSender interface {
	Post(ctx context.Context, url string, payload any) (string, error)
}
