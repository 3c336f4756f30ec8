package port

import (
	"context"

	"github.com/corepay/usdtgate/internal/core/domain"
)

type PaymentService interface {
	CreateOrder(ctx context.Context, req *domain.CreateOrderRequest) (*domain.OrderReceipt, error)
	OrderStatus(ctx context.Context, tradeID string) (*domain.OrderStatusView, error)
	CheckoutDetails(ctx context.Context, tradeID string) (*domain.CheckoutView, error)

	ReconcileAll(ctx context.Context)
}
