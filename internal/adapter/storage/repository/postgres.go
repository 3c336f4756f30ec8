package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/corepay/usdtgate/internal/adapter/storage"
	"github.com/corepay/usdtgate/internal/core/domain"
	"github.com/govalues/decimal"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Names from the initial migration. The allocator relies on which
// constraint fired to tell a duplicate merchant order apart from a
// concurrently claimed payment slot.
const (
	constraintOrderID     = "orders_order_id_key"
	constraintPendingSlot = "uniq_pending_slot"
)

var orderColumns = []string{
	"trade_id", "order_id", "amount", "currency", "actual_amount",
	"wallet", "status", "notify_url", "redirect_url", "tx_id",
	"created_at", "updated_at",
}

type Repository struct {
	db *storage.DB
}

func NewRepository(db *storage.DB) (*Repository, error) {
	return &Repository{db: db}, nil
}

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	statement := r.db.QueryBuilder.Insert("orders").
		Columns(orderColumns...).
		Values(order.TradeID, order.OrderID, order.Amount, order.Currency,
			order.ActualAmount, order.Wallet, order.Status,
			order.NotifyURL, order.RedirectURL, order.TxID,
			order.CreatedAt, order.UpdatedAt).
		Suffix("returning id")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&order.ID)
	if err != nil {
		if pgErr, ok := err.(*pgconn.PgError); ok && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case constraintOrderID:
				return nil, domain.ErrOrderExists
			case constraintPendingSlot:
				return nil, domain.ErrSlotTaken
			default:
				return nil, domain.ErrConflictingData
			}
		}
		return nil, err
	}
	return order, nil
}

func (r *Repository) GetOrderByTradeID(ctx context.Context, tradeID string) (*domain.Order, error) {
	return r.getOrder(ctx, sq.Eq{"trade_id": tradeID})
}

func (r *Repository) GetOrderByOrderID(ctx context.Context, orderID string) (*domain.Order, error) {
	return r.getOrder(ctx, sq.Eq{"order_id": orderID})
}

func (r *Repository) GetPendingOrderBySlot(ctx context.Context, wallet string, amount decimal.Decimal) (*domain.Order, error) {
	return r.getOrder(ctx, sq.Eq{
		"wallet":        wallet,
		"actual_amount": amount,
		"status":        domain.OrderStatusPending,
	})
}

func (r *Repository) getOrder(ctx context.Context, pred sq.Eq) (*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Select(append([]string{"id"}, orderColumns...)...).
		From("orders").
		Where(pred)

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	order := domain.Order{}

	err = r.db.QueryRow(ctx, sql, args...).Scan(
		&order.ID,
		&order.TradeID,
		&order.OrderID,
		&order.Amount,
		&order.Currency,
		&order.ActualAmount,
		&order.Wallet,
		&order.Status,
		&order.NotifyURL,
		&order.RedirectURL,
		&order.TxID,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrDataNotFound
		}
		return nil, err
	}

	return &order, nil
}

func (r *Repository) ListPendingSlots(ctx context.Context) ([]domain.Slot, error) {
	statement := r.db.QueryBuilder.
		Select("wallet", "actual_amount").
		From("orders").
		Where(sq.Eq{"status": domain.OrderStatusPending})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]domain.Slot, 0)
	for rows.Next() {
		slot := domain.Slot{}
		err := rows.Scan(&slot.Wallet, &slot.Amount)
		if err != nil {
			return nil, err
		}
		list = append(list, slot)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return list, nil
}

// MarkOrderPaid flips a pending order to paid. The status predicate makes
// the transition idempotent: a second transfer hitting the same slot
// matches zero rows and reports domain.ErrNoUpdatedData.
func (r *Repository) MarkOrderPaid(ctx context.Context, tradeID string, txID string) (*domain.Order, error) {
	statement := r.db.QueryBuilder.
		Update("orders").
		Set("status", domain.OrderStatusPaid).
		Set("tx_id", txID).
		Set("updated_at", sq.Expr("now()")).
		Where(sq.Eq{"trade_id": tradeID, "status": domain.OrderStatusPending})

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrNoUpdatedData
	}

	return r.GetOrderByTradeID(ctx, tradeID)
}

func (r *Repository) ListEnabledWallets(ctx context.Context) ([]domain.Wallet, error) {
	statement := r.db.QueryBuilder.
		Select("id", "address", "enabled").
		From("wallets").
		Where(sq.Eq{"enabled": true}).
		OrderBy("id")

	sql, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]domain.Wallet, 0)
	for rows.Next() {
		wallet := domain.Wallet{}
		err := rows.Scan(&wallet.ID, &wallet.Address, &wallet.Enabled)
		if err != nil {
			return nil, err
		}
		list = append(list, wallet)
	}

	err = rows.Err()
	if err != nil {
		return nil, err
	}

	return list, nil
}
