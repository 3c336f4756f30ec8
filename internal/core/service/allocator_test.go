package service_test

import (
	"context"
	"testing"

	"github.com/corepay/usdtgate/internal/core/domain"
	"github.com/corepay/usdtgate/internal/core/port/mock"
	"github.com/corepay/usdtgate/internal/core/service"
	"github.com/corepay/usdtgate/pkg/metrics"
	"github.com/golang/mock/gomock"
	"github.com/govalues/decimal"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type prepareAllocMocks func(repo *mock.MockRepository, rate *mock.MockRateSource)

func newTestService(t *testing.T, mockCtrl *gomock.Controller,
	prepare func(repo *mock.MockRepository, rate *mock.MockRateSource,
		ledger *mock.MockLedgerReader, notifier *mock.MockNotifier, callback *mock.MockCallbackSender),
	cfg service.Config) *service.Service {
	t.Helper()

	repo := mock.NewMockRepository(mockCtrl)
	rate := mock.NewMockRateSource(mockCtrl)
	ledger := mock.NewMockLedgerReader(mockCtrl)
	notifier := mock.NewMockNotifier(mockCtrl)
	callback := mock.NewMockCallbackSender(mockCtrl)
	if prepare != nil {
		prepare(repo, rate, ledger, notifier, callback)
	}

	logger, _ := zap.NewProduction()
	m := metrics.NewPaymentMetrics(prometheus.NewRegistry())

	s, err := service.NewService(repo, rate, ledger, notifier, callback, m, cfg, logger)
	assert.NoError(t, err)
	return s
}

func occupyEverySlot(wallets []string, base decimal.Decimal, count int) []domain.Slot {
	step := decimal.MustNew(1, 4)
	slots := make([]domain.Slot, 0, len(wallets)*count)
	amount := base
	for i := 0; i < count; i++ {
		if i > 0 {
			amount, _ = amount.Add(step)
		}
		for _, w := range wallets {
			slots = append(slots, domain.Slot{Wallet: w, Amount: amount})
		}
	}
	return slots
}

func TestService_CreateOrder(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	walletA := "TWalletAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	walletB := "TWalletBBBBBBBBBBBBBBBBBBBBBBBBBBB"
	pool := []domain.Wallet{
		{ID: 1, Address: walletA, Enabled: true},
		{ID: 2, Address: walletB, Enabled: true},
	}

	rate7 := decimal.MustParse("7")

	type createOrderTest struct {
		name      string
		req       domain.CreateOrderRequest
		mock      prepareAllocMocks
		expError  error
		expAmount string
		expWallet string
	}

	tests := []createOrderTest{
		{
			name: "Allocate fiat order",
			req: domain.CreateOrderRequest{
				OrderID:  "ORD-1",
				Amount:   decimal.MustParse("100"),
				Currency: "CNY",
			},
			mock: func(repo *mock.MockRepository, rate *mock.MockRateSource) {
				repo.EXPECT().GetOrderByOrderID(gomock.Any(), "ORD-1").
					Return(nil, domain.ErrDataNotFound)
				repo.EXPECT().ListEnabledWallets(gomock.Any()).Return(pool, nil)
				rate.EXPECT().Rate(gomock.Any(), "CNY").Return(rate7, nil)
				repo.EXPECT().ListPendingSlots(gomock.Any()).Return(nil, nil)
				repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
						return o, nil
					})
			},
			expAmount: "14.2857",
			expWallet: walletA,
		},
		{
			name: "Truncation never rounds up",
			req: domain.CreateOrderRequest{
				OrderID:  "ORD-2",
				Amount:   decimal.MustParse("100"),
				Currency: "CNY",
			},
			mock: func(repo *mock.MockRepository, rate *mock.MockRateSource) {
				repo.EXPECT().GetOrderByOrderID(gomock.Any(), "ORD-2").
					Return(nil, domain.ErrDataNotFound)
				repo.EXPECT().ListEnabledWallets(gomock.Any()).Return(pool, nil)
				rate.EXPECT().Rate(gomock.Any(), "CNY").Return(decimal.MustParse("7.23"), nil)
				repo.EXPECT().ListPendingSlots(gomock.Any()).Return(nil, nil)
				repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
						return o, nil
					})
			},
			// 100/7.23 = 13.83125..., truncated to 4 places.
			expAmount: "13.8312",
			expWallet: walletA,
		},
		{
			name: "Duplicate order id",
			req: domain.CreateOrderRequest{
				OrderID:  "ORD-1",
				Amount:   decimal.MustParse("100"),
				Currency: "CNY",
			},
			mock: func(repo *mock.MockRepository, rate *mock.MockRateSource) {
				repo.EXPECT().GetOrderByOrderID(gomock.Any(), "ORD-1").
					Return(&domain.Order{OrderID: "ORD-1"}, nil)
			},
			expError: domain.ErrOrderExists,
		},
		{
			name: "No enabled wallet",
			req: domain.CreateOrderRequest{
				OrderID:  "ORD-3",
				Amount:   decimal.MustParse("100"),
				Currency: "CNY",
			},
			mock: func(repo *mock.MockRepository, rate *mock.MockRateSource) {
				repo.EXPECT().GetOrderByOrderID(gomock.Any(), "ORD-3").
					Return(nil, domain.ErrDataNotFound)
				repo.EXPECT().ListEnabledWallets(gomock.Any()).Return(nil, nil)
			},
			expError: domain.ErrNoWalletAvailable,
		},
		{
			name: "Rate unavailable",
			req: domain.CreateOrderRequest{
				OrderID:  "ORD-4",
				Amount:   decimal.MustParse("100"),
				Currency: "CNY",
			},
			mock: func(repo *mock.MockRepository, rate *mock.MockRateSource) {
				repo.EXPECT().GetOrderByOrderID(gomock.Any(), "ORD-4").
					Return(nil, domain.ErrDataNotFound)
				repo.EXPECT().ListEnabledWallets(gomock.Any()).Return(pool, nil)
				rate.EXPECT().Rate(gomock.Any(), "CNY").
					Return(decimal.Decimal{}, domain.ErrRateUnavailable)
			},
			expError: domain.ErrRateUnavailable,
		},
		{
			name: "Amount below minimum",
			req: domain.CreateOrderRequest{
				OrderID:  "ORD-5",
				Amount:   decimal.MustParse("0.001"),
				Currency: "USDT",
			},
			mock: func(repo *mock.MockRepository, rate *mock.MockRateSource) {
				repo.EXPECT().GetOrderByOrderID(gomock.Any(), "ORD-5").
					Return(nil, domain.ErrDataNotFound)
				repo.EXPECT().ListEnabledWallets(gomock.Any()).Return(pool, nil)
			},
			expError: domain.ErrAmountTooSmall,
		},
		{
			name: "Base amount taken on every wallet drifts up",
			req: domain.CreateOrderRequest{
				OrderID:  "ORD-6",
				Amount:   decimal.MustParse("14.2857"),
				Currency: "USDT",
			},
			mock: func(repo *mock.MockRepository, rate *mock.MockRateSource) {
				repo.EXPECT().GetOrderByOrderID(gomock.Any(), "ORD-6").
					Return(nil, domain.ErrDataNotFound)
				repo.EXPECT().ListEnabledWallets(gomock.Any()).Return(pool, nil)
				repo.EXPECT().ListPendingSlots(gomock.Any()).
					Return(occupyEverySlot([]string{walletA, walletB}, decimal.MustParse("14.2857"), 1), nil)
				repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
						return o, nil
					})
			},
			expAmount: "14.2858",
			expWallet: walletA,
		},
		{
			name: "Search space exhausted",
			req: domain.CreateOrderRequest{
				OrderID:  "ORD-7",
				Amount:   decimal.MustParse("14.2857"),
				Currency: "USDT",
			},
			mock: func(repo *mock.MockRepository, rate *mock.MockRateSource) {
				repo.EXPECT().GetOrderByOrderID(gomock.Any(), "ORD-7").
					Return(nil, domain.ErrDataNotFound)
				repo.EXPECT().ListEnabledWallets(gomock.Any()).Return(pool, nil)
				repo.EXPECT().ListPendingSlots(gomock.Any()).
					Return(occupyEverySlot([]string{walletA, walletB}, decimal.MustParse("14.2857"), 100), nil)
			},
			expError: domain.ErrNoAvailableAmount,
		},
		{
			name: "Concurrent claim retries next candidate",
			req: domain.CreateOrderRequest{
				OrderID:  "ORD-8",
				Amount:   decimal.MustParse("14.2857"),
				Currency: "USDT",
			},
			mock: func(repo *mock.MockRepository, rate *mock.MockRateSource) {
				repo.EXPECT().GetOrderByOrderID(gomock.Any(), "ORD-8").
					Return(nil, domain.ErrDataNotFound)
				repo.EXPECT().ListEnabledWallets(gomock.Any()).
					Return([]domain.Wallet{{ID: 1, Address: walletA, Enabled: true}}, nil)
				repo.EXPECT().ListPendingSlots(gomock.Any()).Return(nil, nil)
				repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
					Return(nil, domain.ErrSlotTaken)
				repo.EXPECT().CreateOrder(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, o *domain.Order) (*domain.Order, error) {
						return o, nil
					})
			},
			expAmount: "14.2858",
			expWallet: walletA,
		},
		{
			name: "Empty order id rejected",
			req: domain.CreateOrderRequest{
				Amount:   decimal.MustParse("100"),
				Currency: "CNY",
			},
			mock:     func(repo *mock.MockRepository, rate *mock.MockRateSource) {},
			expError: domain.ErrBadRequest,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := newTestService(t, mockCtrl,
				func(repo *mock.MockRepository, rate *mock.MockRateSource,
					_ *mock.MockLedgerReader, _ *mock.MockNotifier, _ *mock.MockCallbackSender) {
					test.mock(repo, rate)
				},
				service.Config{AppURI: "https://pay.example.com", APISecret: "secret"})

			receipt, err := s.CreateOrder(context.Background(), &test.req)

			if test.expError != nil {
				assert.ErrorIs(t, err, test.expError)
				assert.Nil(t, receipt)
				return
			}

			assert.NoError(t, err)
			assert.NotEmpty(t, receipt.TradeID)
			assert.Equal(t, test.req.OrderID, receipt.OrderID)
			assert.Equal(t, test.expWallet, receipt.Wallet)
			assert.Zero(t, receipt.ActualAmount.Cmp(decimal.MustParse(test.expAmount)),
				"want %s, got %s", test.expAmount, receipt.ActualAmount)
			assert.Equal(t, "https://pay.example.com/pay/checkout-counter/"+receipt.TradeID, receipt.PaymentURL)
			assert.False(t, receipt.ExpiresAt.IsZero())
		})
	}
}
