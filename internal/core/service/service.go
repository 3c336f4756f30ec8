package service

import (
	"context"
	"time"

	"github.com/corepay/usdtgate/internal/core/domain"
	"github.com/corepay/usdtgate/internal/core/port"
	"github.com/corepay/usdtgate/pkg/metrics"
	"go.uber.org/zap"
)

// Config carries the payment parameters the core needs from the caller.
type Config struct {
	AppURI        string
	APISecret     string
	Expiry        time.Duration
	ScanWindow    time.Duration
	WalletTimeout time.Duration
}

type Service struct {
	repo     port.Repository
	rate     port.RateSource
	ledger   port.LedgerReader
	notifier port.Notifier
	callback port.CallbackSender
	metrics  *metrics.PaymentMetrics
	cfg      Config
	logger   *zap.Logger
}

func NewService(
	repo port.Repository,
	rate port.RateSource,
	ledger port.LedgerReader,
	notifier port.Notifier,
	callback port.CallbackSender,
	m *metrics.PaymentMetrics,
	cfg Config,
	logger *zap.Logger,
) (*Service, error) {
	if cfg.Expiry == 0 {
		cfg.Expiry = 10 * time.Minute
	}
	if cfg.ScanWindow == 0 {
		cfg.ScanWindow = 24 * time.Hour
	}
	if cfg.WalletTimeout == 0 {
		cfg.WalletTimeout = 30 * time.Second
	}

	return &Service{
		repo:     repo,
		rate:     rate,
		ledger:   ledger,
		notifier: notifier,
		callback: callback,
		metrics:  m,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

func (s *Service) OrderStatus(ctx context.Context, tradeID string) (*domain.OrderStatusView, error) {
	order, err := s.repo.GetOrderByTradeID(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	status := order.Status
	if status == domain.OrderStatusPending && order.Expired(s.cfg.Expiry, time.Now()) {
		status = domain.OrderStatusExpired
	}

	return &domain.OrderStatusView{
		TradeID:      order.TradeID,
		Status:       status,
		ActualAmount: order.ActualAmount,
	}, nil
}

func (s *Service) CheckoutDetails(ctx context.Context, tradeID string) (*domain.CheckoutView, error) {
	order, err := s.repo.GetOrderByTradeID(ctx, tradeID)
	if err != nil {
		return nil, err
	}

	if order.Status != domain.OrderStatusPending || order.Expired(s.cfg.Expiry, time.Now()) {
		return nil, domain.ErrOrderNotPending
	}

	return &domain.CheckoutView{
		TradeID:      order.TradeID,
		ActualAmount: order.ActualAmount,
		Wallet:       order.Wallet,
		ExpiresAt:    order.CreatedAt.Add(s.cfg.Expiry),
		RedirectURL:  order.RedirectURL,
	}, nil
}
