package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/corepay/usdtgate/internal/core/domain"
	"github.com/corepay/usdtgate/internal/core/utils"
	"github.com/govalues/decimal"
	"go.uber.org/zap"
)

// USDT-TRC20 transfers carry amounts as integers with 6 decimal places.
const ledgerDecimals = 6

// StartReconciler runs ReconcileAll on the given interval until ctx is done.
func (s *Service) StartReconciler(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.ReconcileAll(ctx)
			case <-ctx.Done():
				s.logger.Debug("reconciler stopped")
				return
			}
		}
	}()
}

// ReconcileAll scans ledger activity for every enabled wallet and matches
// incoming transfers to pending orders. A failing wallet is logged and
// skipped; the window re-scan on the next pass self-heals transient misses.
func (s *Service) ReconcileAll(ctx context.Context) {
	s.metrics.ReconcileRuns.Inc()

	wallets, err := s.repo.ListEnabledWallets(ctx)
	if err != nil {
		s.logger.Error("list wallets", zap.Error(err))
		return
	}

	for _, w := range wallets {
		if err := s.reconcileWallet(ctx, w.Address); err != nil {
			s.metrics.ReconcileErrors.Inc()
			s.logger.Error("reconcile wallet", zap.String("wallet", w.Address), zap.Error(err))
		}
	}
}

func (s *Service) reconcileWallet(ctx context.Context, wallet string) error {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.WalletTimeout)
	defer cancel()

	started := time.Now()
	defer func() {
		s.metrics.ReconcileDuration.Observe(time.Since(started).Seconds())
	}()

	end := time.Now()
	transfers, err := s.ledger.ListTransfers(ctx, wallet, end.Add(-s.cfg.ScanWindow), end)
	if err != nil {
		return fmt.Errorf("list transfers: %w", err)
	}

	// Oldest first, so a reused amount slot settles against the
	// earliest still-pending order.
	sort.Slice(transfers, func(i, j int) bool {
		return transfers[i].BlockTime.Before(transfers[j].BlockTime)
	})

	for _, t := range transfers {
		if err := s.applyTransfer(ctx, wallet, t); err != nil {
			s.logger.Error("apply transfer",
				zap.String("wallet", wallet),
				zap.String("hash", t.Hash),
				zap.Error(err))
		}
	}

	return nil
}

func (s *Service) applyTransfer(ctx context.Context, wallet string, t domain.Transfer) error {
	if t.To != wallet || !t.Succeeded {
		return nil
	}

	amount, err := decimal.New(t.AmountRaw, ledgerDecimals)
	if err != nil {
		return fmt.Errorf("convert transfer amount: %w", err)
	}

	order, err := s.repo.GetPendingOrderBySlot(ctx, wallet, amount)
	if errors.Is(err, domain.ErrDataNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	// A transfer older than the order belongs to a previous occupant
	// of the same amount slot.
	if t.BlockTime.Before(order.CreatedAt) {
		return nil
	}

	if order.Expired(s.cfg.Expiry, time.Now()) {
		s.logger.Debug("transfer matches expired order, skipped",
			zap.String("trade_id", order.TradeID),
			zap.String("hash", t.Hash))
		return nil
	}

	paid, err := s.repo.MarkOrderPaid(ctx, order.TradeID, t.Hash)
	if errors.Is(err, domain.ErrNoUpdatedData) {
		// Already paid, another pass won the transition.
		return nil
	}
	if err != nil {
		return err
	}

	s.metrics.OrdersPaid.Inc()
	s.logger.Info("order paid",
		zap.String("trade_id", paid.TradeID),
		zap.String("tx", t.Hash))

	s.notifyPaid(ctx, paid)
	s.sendCallback(ctx, paid)

	return nil
}

func (s *Service) notifyPaid(ctx context.Context, order *domain.Order) {
	msg := fmt.Sprintf(
		"Payment received\ntrade id: %s\norder id: %s\ntx hash: %s\nrequested: %s %s\npaid: %s USDT\nwallet: %s\ncreated: %s",
		order.TradeID,
		order.OrderID,
		order.TxID,
		order.Amount, order.Currency,
		order.ActualAmount,
		order.Wallet,
		order.CreatedAt.Format(time.RFC3339),
	)

	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.Error("send notification", zap.String("trade_id", order.TradeID), zap.Error(err))
	}
}

type callbackPayload struct {
	TradeID            string             `json:"trade_id"`
	OrderID            string             `json:"order_id"`
	Amount             decimal.Decimal    `json:"amount"`
	ActualAmount       decimal.Decimal    `json:"actual_amount"`
	Wallet             string             `json:"token"`
	BlockTransactionID string             `json:"block_transaction_id"`
	Status             domain.OrderStatus `json:"status"`
	Signature          string             `json:"signature"`
}

func (s *Service) sendCallback(ctx context.Context, order *domain.Order) {
	if order.NotifyURL == "" {
		return
	}

	payload := callbackPayload{
		TradeID:            order.TradeID,
		OrderID:            order.OrderID,
		Amount:             order.Amount,
		ActualAmount:       order.ActualAmount,
		Wallet:             order.Wallet,
		BlockTransactionID: order.TxID,
		Status:             order.Status,
	}
	payload.Signature = utils.Sign(map[string]string{
		"trade_id":             payload.TradeID,
		"order_id":             payload.OrderID,
		"amount":               payload.Amount.String(),
		"actual_amount":        payload.ActualAmount.String(),
		"token":                payload.Wallet,
		"block_transaction_id": payload.BlockTransactionID,
		"status":               string(payload.Status),
	}, s.cfg.APISecret)

	body, err := s.callback.Post(ctx, order.NotifyURL, payload)
	if err != nil {
		s.metrics.CallbackFailures.Inc()
		s.logger.Error("callback delivery", zap.String("trade_id", order.TradeID), zap.Error(err))
		return
	}

	// The acknowledgment is informational only, there is no retry path.
	if ack := strings.ToLower(strings.TrimSpace(body)); ack != "success" && ack != "ok" {
		s.logger.Debug("callback not acknowledged",
			zap.String("trade_id", order.TradeID),
			zap.String("body", body))
	}
}
