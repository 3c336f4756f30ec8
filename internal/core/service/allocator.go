package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/corepay/usdtgate/internal/core/domain"
	"github.com/google/uuid"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

// The payer is identified by the exact amount, so every pending order on a
// wallet needs its own amount. The search drifts upward from the quoted
// amount in 0.0001 USDT steps, at most 100 of them.
const (
	maxIncrements   = 100
	settlementScale = 4
)

var (
	slotIncrement = decimal.MustNew(1, 4) // 0.0001 USDT
	minSettlement = decimal.MustNew(1, 2) // 0.01 USDT
)

func (s *Service) CreateOrder(ctx context.Context, req *domain.CreateOrderRequest) (*domain.OrderReceipt, error) {
	if req.OrderID == "" || !req.Amount.IsPos() {
		return nil, domain.ErrBadRequest
	}

	_, err := s.repo.GetOrderByOrderID(ctx, req.OrderID)
	if err == nil {
		return nil, domain.ErrOrderExists
	}
	if !errors.Is(err, domain.ErrDataNotFound) {
		s.logger.Error("check existing order", zap.Error(err))
		return nil, domain.ErrInternal
	}

	wallets, err := s.repo.ListEnabledWallets(ctx)
	if err != nil {
		s.logger.Error("list wallets", zap.Error(err))
		return nil, domain.ErrInternal
	}
	if len(wallets) == 0 {
		return nil, domain.ErrNoWalletAvailable
	}

	base, err := s.settlementAmount(ctx, req.Amount, req.Currency)
	if err != nil {
		return nil, err
	}
	if base.Cmp(minSettlement) < 0 {
		return nil, domain.ErrAmountTooSmall
	}

	occupied, err := s.repo.ListPendingSlots(ctx)
	if err != nil {
		s.logger.Error("list pending slots", zap.Error(err))
		return nil, domain.ErrInternal
	}

	// The snapshot scan is optimistic. The partial unique index on
	// (wallet, actual_amount, pending) is what actually claims the slot,
	// so a concurrent winner shows up as ErrSlotTaken and the search
	// moves on with the contested slot marked occupied.
	for {
		slot, err := pickSlot(base, wallets, occupied)
		if err != nil {
			return nil, err
		}

		now := time.Now()
		order := &domain.Order{
			TradeID:      uuid.NewString(),
			OrderID:      req.OrderID,
			Amount:       req.Amount,
			Currency:     strings.ToUpper(req.Currency),
			ActualAmount: slot.Amount,
			Wallet:       slot.Wallet,
			Status:       domain.OrderStatusPending,
			NotifyURL:    req.NotifyURL,
			RedirectURL:  req.RedirectURL,
			CreatedAt:    now,
			UpdatedAt:    now,
		}

		created, err := s.repo.CreateOrder(ctx, order)
		if errors.Is(err, domain.ErrSlotTaken) {
			occupied = append(occupied, slot)
			continue
		}
		if errors.Is(err, domain.ErrOrderExists) {
			return nil, domain.ErrOrderExists
		}
		if err != nil {
			s.logger.Error("create order", zap.Error(err))
			return nil, domain.ErrInternal
		}

		s.metrics.OrdersCreated.Inc()
		s.logger.Info("order allocated",
			zap.String("trade_id", created.TradeID),
			zap.String("wallet", created.Wallet),
			zap.String("actual_amount", created.ActualAmount.String()))

		return &domain.OrderReceipt{
			TradeID:      created.TradeID,
			OrderID:      created.OrderID,
			Amount:       created.Amount,
			Currency:     created.Currency,
			ActualAmount: created.ActualAmount,
			Wallet:       created.Wallet,
			ExpiresAt:    created.CreatedAt.Add(s.cfg.Expiry),
			PaymentURL:   s.cfg.AppURI + "/pay/checkout-counter/" + created.TradeID,
		}, nil
	}
}

// settlementAmount converts the requested amount to USDT, truncated to
// 4 decimal places. Truncation, not rounding: the payer must never be
// asked to overpay because of the conversion.
func (s *Service) settlementAmount(ctx context.Context, amount decimal.Decimal, currency string) (decimal.Decimal, error) {
	switch strings.ToUpper(currency) {
	case "USDT", "USD":
		return amount.Trunc(settlementScale), nil
	}

	rate, err := s.rate.Rate(ctx, currency)
	if err != nil {
		s.logger.Error("fetch rate", zap.String("currency", currency), zap.Error(err))
		return decimal.Decimal{}, domain.ErrRateUnavailable
	}
	if !rate.IsPos() {
		return decimal.Decimal{}, domain.ErrRateUnavailable
	}

	q, err := amount.Quo(rate)
	if err != nil {
		s.logger.Error("convert amount", zap.Error(err))
		return decimal.Decimal{}, domain.ErrInternal
	}
	return q.Trunc(settlementScale), nil
}

// pickSlot selects the first free (wallet, amount) pair, amount-major:
// reuse the quoted amount on any wallet before drifting to a higher one.
func pickSlot(base decimal.Decimal, wallets []domain.Wallet, occupied []domain.Slot) (domain.Slot, error) {
	amount := base
	for i := 0; i < maxIncrements; i++ {
		if i > 0 {
			next, err := amount.Add(slotIncrement)
			if err != nil {
				return domain.Slot{}, domain.ErrNoAvailableAmount
			}
			amount = next
		}
		for _, w := range wallets {
			if !slotTaken(occupied, w.Address, amount) {
				return domain.Slot{Wallet: w.Address, Amount: amount}, nil
			}
		}
	}
	return domain.Slot{}, domain.ErrNoAvailableAmount
}

func slotTaken(occupied []domain.Slot, wallet string, amount decimal.Decimal) bool {
	for _, slot := range occupied {
		if slot.Wallet == wallet && slot.Amount.Cmp(amount) == 0 {
			return true
		}
	}
	return false
}
