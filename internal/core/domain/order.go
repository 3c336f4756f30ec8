package domain

import (
	"time"

	"github.com/govalues/decimal"
)

type OrderStatus string

const (
	OrderStatusPending OrderStatus = "PENDING"
	OrderStatusPaid    OrderStatus = "PAID"
	// OrderStatusExpired is derived from order age at read time, never stored.
	OrderStatusExpired OrderStatus = "EXPIRED"
)

// Order is a payment request pinned to a (wallet, actual amount) slot.
// While the order is pending that slot is unique among all pending orders,
// which is what makes an incoming transfer attributable to exactly one order.
type Order struct {
	ID           uint64
	TradeID      string
	OrderID      string
	Amount       decimal.Decimal
	Currency     string
	ActualAmount decimal.Decimal
	Wallet       string
	Status       OrderStatus
	NotifyURL    string
	RedirectURL  string
	TxID         string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Expired reports whether the order's payment window has closed.
func (o *Order) Expired(ttl time.Duration, now time.Time) bool {
	return now.After(o.CreatedAt.Add(ttl))
}

// Slot is a (wallet, amount) pair claimable by at most one pending order.
type Slot struct {
	Wallet string
	Amount decimal.Decimal
}

type CreateOrderRequest struct {
	OrderID     string
	Amount      decimal.Decimal
	Currency    string
	NotifyURL   string
	RedirectURL string
}

// OrderReceipt is returned to the merchant after allocation.
type OrderReceipt struct {
	TradeID      string
	OrderID      string
	Amount       decimal.Decimal
	Currency     string
	ActualAmount decimal.Decimal
	Wallet       string
	ExpiresAt    time.Time
	PaymentURL   string
}

type OrderStatusView struct {
	TradeID      string
	Status       OrderStatus
	ActualAmount decimal.Decimal
}

type CheckoutView struct {
	TradeID      string
	ActualAmount decimal.Decimal
	Wallet       string
	ExpiresAt    time.Time
	RedirectURL  string
}
