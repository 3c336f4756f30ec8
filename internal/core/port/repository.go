package port

import (
	"context"

	"github.com/corepay/usdtgate/internal/core/domain"
	"github.com/govalues/decimal"
)

//go:generate mockgen -source=repository.go -destination=mock/repository.go -package=mock
type Repository interface {
	// CreateOrder inserts a pending order. The storage layer enforces
	// slot uniqueness: a second pending order on the same
	// (wallet, actual amount) pair fails with domain.ErrSlotTaken,
	// a duplicate order id with domain.ErrOrderExists.
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetOrderByTradeID(ctx context.Context, tradeID string) (*domain.Order, error)
	GetOrderByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	GetPendingOrderBySlot(ctx context.Context, wallet string, amount decimal.Decimal) (*domain.Order, error)
	ListPendingSlots(ctx context.Context) ([]domain.Slot, error)

	// MarkOrderPaid transitions PENDING -> PAID recording the ledger
	// transaction hash. Returns domain.ErrNoUpdatedData if the order
	// already left pending status.
	MarkOrderPaid(ctx context.Context, tradeID string, txID string) (*domain.Order, error)

	ListEnabledWallets(ctx context.Context) ([]domain.Wallet, error)
}
