package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corepay/usdtgate/internal/core/domain"
	"github.com/corepay/usdtgate/internal/core/port/mock"
	"github.com/corepay/usdtgate/internal/core/service"
	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
)

func TestService_ReconcileAll(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	wallet := "TWalletAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	pool := []domain.Wallet{{ID: 1, Address: wallet, Enabled: true}}
	now := time.Now()

	// 14.2857 USDT in 6-decimal ledger units.
	rawAmount := int64(14285700)
	slotAmount := decimal.MustNew(rawAmount, 6)

	pending := func() *domain.Order {
		return &domain.Order{
			ID:           7,
			TradeID:      "trade-1",
			OrderID:      "ORD-1",
			Amount:       decimal.MustParse("100"),
			Currency:     "CNY",
			ActualAmount: decimal.MustParse("14.2857"),
			Wallet:       wallet,
			Status:       domain.OrderStatusPending,
			NotifyURL:    "https://merchant.example.com/notify",
			CreatedAt:    now.Add(-time.Minute),
		}
	}

	type reconcileTest struct {
		name string
		mock func(repo *mock.MockRepository, ledger *mock.MockLedgerReader,
			notifier *mock.MockNotifier, callback *mock.MockCallbackSender)
	}

	tests := []reconcileTest{
		{
			name: "Matched transfer pays the order once",
			mock: func(repo *mock.MockRepository, ledger *mock.MockLedgerReader,
				notifier *mock.MockNotifier, callback *mock.MockCallbackSender) {
				repo.EXPECT().ListEnabledWallets(gomock.Any()).Return(pool, nil)
				ledger.EXPECT().ListTransfers(gomock.Any(), wallet, gomock.Any(), gomock.Any()).
					Return([]domain.Transfer{
						// Noise: wrong destination and failed transfer.
						{To: "TOther", AmountRaw: rawAmount, Succeeded: true, BlockTime: now, Hash: "h0"},
						{To: wallet, AmountRaw: rawAmount, Succeeded: false, BlockTime: now, Hash: "h1"},
						{To: wallet, AmountRaw: rawAmount, Succeeded: true, BlockTime: now, Hash: "h2"},
					}, nil)
				repo.EXPECT().GetPendingOrderBySlot(gomock.Any(), wallet, slotAmount).
					Return(pending(), nil)
				repo.EXPECT().MarkOrderPaid(gomock.Any(), "trade-1", "h2").
					DoAndReturn(func(_ context.Context, tradeID, txID string) (*domain.Order, error) {
						o := pending()
						o.Status = domain.OrderStatusPaid
						o.TxID = txID
						return o, nil
					})
				notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil).Times(1)
				callback.EXPECT().Post(gomock.Any(), "https://merchant.example.com/notify", gomock.Any()).
					Return("success", nil).Times(1)
			},
		},
		{
			name: "Transfer predating the order is ignored",
			mock: func(repo *mock.MockRepository, ledger *mock.MockLedgerReader,
				notifier *mock.MockNotifier, callback *mock.MockCallbackSender) {
				repo.EXPECT().ListEnabledWallets(gomock.Any()).Return(pool, nil)
				ledger.EXPECT().ListTransfers(gomock.Any(), wallet, gomock.Any(), gomock.Any()).
					Return([]domain.Transfer{
						{To: wallet, AmountRaw: rawAmount, Succeeded: true, BlockTime: now.Add(-2 * time.Hour), Hash: "old"},
					}, nil)
				repo.EXPECT().GetPendingOrderBySlot(gomock.Any(), wallet, slotAmount).
					Return(pending(), nil)
			},
		},
		{
			name: "Already paid order produces no second transition",
			mock: func(repo *mock.MockRepository, ledger *mock.MockLedgerReader,
				notifier *mock.MockNotifier, callback *mock.MockCallbackSender) {
				repo.EXPECT().ListEnabledWallets(gomock.Any()).Return(pool, nil)
				ledger.EXPECT().ListTransfers(gomock.Any(), wallet, gomock.Any(), gomock.Any()).
					Return([]domain.Transfer{
						{To: wallet, AmountRaw: rawAmount, Succeeded: true, BlockTime: now, Hash: "h2"},
					}, nil)
				repo.EXPECT().GetPendingOrderBySlot(gomock.Any(), wallet, slotAmount).
					Return(pending(), nil)
				repo.EXPECT().MarkOrderPaid(gomock.Any(), "trade-1", "h2").
					Return(nil, domain.ErrNoUpdatedData)
			},
		},
		{
			name: "No pending order for the amount",
			mock: func(repo *mock.MockRepository, ledger *mock.MockLedgerReader,
				notifier *mock.MockNotifier, callback *mock.MockCallbackSender) {
				repo.EXPECT().ListEnabledWallets(gomock.Any()).Return(pool, nil)
				ledger.EXPECT().ListTransfers(gomock.Any(), wallet, gomock.Any(), gomock.Any()).
					Return([]domain.Transfer{
						{To: wallet, AmountRaw: rawAmount, Succeeded: true, BlockTime: now, Hash: "h2"},
					}, nil)
				repo.EXPECT().GetPendingOrderBySlot(gomock.Any(), wallet, slotAmount).
					Return(nil, domain.ErrDataNotFound)
			},
		},
		{
			name: "Expired order is not paid late",
			mock: func(repo *mock.MockRepository, ledger *mock.MockLedgerReader,
				notifier *mock.MockNotifier, callback *mock.MockCallbackSender) {
				repo.EXPECT().ListEnabledWallets(gomock.Any()).Return(pool, nil)
				ledger.EXPECT().ListTransfers(gomock.Any(), wallet, gomock.Any(), gomock.Any()).
					Return([]domain.Transfer{
						{To: wallet, AmountRaw: rawAmount, Succeeded: true, BlockTime: now, Hash: "h2"},
					}, nil)
				stale := pending()
				stale.CreatedAt = now.Add(-time.Hour)
				repo.EXPECT().GetPendingOrderBySlot(gomock.Any(), wallet, slotAmount).
					Return(stale, nil)
			},
		},
		{
			name: "Failing wallet does not abort the pass",
			mock: func(repo *mock.MockRepository, ledger *mock.MockLedgerReader,
				notifier *mock.MockNotifier, callback *mock.MockCallbackSender) {
				broken := "TWalletBBBBBBBBBBBBBBBBBBBBBBBBBBB"
				repo.EXPECT().ListEnabledWallets(gomock.Any()).
					Return([]domain.Wallet{
						{ID: 2, Address: broken, Enabled: true},
						{ID: 1, Address: wallet, Enabled: true},
					}, nil)
				ledger.EXPECT().ListTransfers(gomock.Any(), broken, gomock.Any(), gomock.Any()).
					Return(nil, errors.New("ledger api down"))
				ledger.EXPECT().ListTransfers(gomock.Any(), wallet, gomock.Any(), gomock.Any()).
					Return(nil, nil)
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := newTestService(t, mockCtrl,
				func(repo *mock.MockRepository, _ *mock.MockRateSource,
					ledger *mock.MockLedgerReader, notifier *mock.MockNotifier, callback *mock.MockCallbackSender) {
					test.mock(repo, ledger, notifier, callback)
				},
				service.Config{APISecret: "secret", Expiry: 10 * time.Minute})

			s.ReconcileAll(context.Background())
		})
	}
}

func TestService_ReconcileOrdersTransfersByBlockTime(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	wallet := "TWalletAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	now := time.Now()
	slotAmount := decimal.MustNew(5000000, 6) // 5 USDT

	order := &domain.Order{
		TradeID:      "trade-9",
		OrderID:      "ORD-9",
		Amount:       decimal.MustParse("5"),
		Currency:     "USDT",
		ActualAmount: decimal.MustParse("5"),
		Wallet:       wallet,
		Status:       domain.OrderStatusPending,
		CreatedAt:    now.Add(-2 * time.Minute),
	}

	s := newTestService(t, mockCtrl,
		func(repo *mock.MockRepository, _ *mock.MockRateSource,
			ledger *mock.MockLedgerReader, notifier *mock.MockNotifier, _ *mock.MockCallbackSender) {
			repo.EXPECT().ListEnabledWallets(gomock.Any()).
				Return([]domain.Wallet{{ID: 1, Address: wallet, Enabled: true}}, nil)
			// Returned newest first, as the ledger API does.
			ledger.EXPECT().ListTransfers(gomock.Any(), wallet, gomock.Any(), gomock.Any()).
				Return([]domain.Transfer{
					{To: wallet, AmountRaw: 5000000, Succeeded: true, BlockTime: now, Hash: "late"},
					{To: wallet, AmountRaw: 5000000, Succeeded: true, BlockTime: now.Add(-time.Minute), Hash: "early"},
				}, nil)
			// First lookup finds the order, the second one runs after the
			// transition and misses. The earliest transfer must win.
			repo.EXPECT().GetPendingOrderBySlot(gomock.Any(), wallet, slotAmount).
				Return(order, nil)
			repo.EXPECT().MarkOrderPaid(gomock.Any(), "trade-9", "early").
				DoAndReturn(func(_ context.Context, _, txID string) (*domain.Order, error) {
					paid := *order
					paid.Status = domain.OrderStatusPaid
					paid.TxID = txID
					return &paid, nil
				})
			repo.EXPECT().GetPendingOrderBySlot(gomock.Any(), wallet, slotAmount).
				Return(nil, domain.ErrDataNotFound)
			notifier.EXPECT().Notify(gomock.Any(), gomock.Any()).Return(nil)
		},
		service.Config{APISecret: "secret", Expiry: 10 * time.Minute})

	s.ReconcileAll(context.Background())
}
