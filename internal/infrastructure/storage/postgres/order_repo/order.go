// Package order_repo provides the PostgreSQL implementations of the order,
// payment, prefactura and status history repositories.
package order_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/domain/orders"
	"taller/internal/infrastructure/storage/postgres"
)

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// OrderRepo implements orders.OrderRepository.
type OrderRepo struct {
	txm  *postgres.TxManager
	cols []string
}

var _ orders.OrderRepository = (*OrderRepo)(nil)

func NewOrderRepo(txm *postgres.TxManager) *OrderRepo {
	return &OrderRepo{
		txm:  txm,
		cols: postgres.ExtractDBColumns[orders.Order](),
	}
}

func (r *OrderRepo) Create(ctx context.Context, order *orders.Order) error {
	sql, args, err := builder().
		Insert("orders").
		SetMap(postgres.StructToMap(order)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "order")
	}
	return nil
}

func (r *OrderRepo) GetByID(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	return r.get(ctx, orderID, false)
}

func (r *OrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*orders.Order, error) {
	return r.get(ctx, orderID, true)
}

func (r *OrderRepo) get(ctx context.Context, orderID id.ID, forUpdate bool) (*orders.Order, error) {
	q := builder().
		Select(r.cols...).
		From("orders").
		Where(squirrel.Eq{"id": orderID}).
		Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var order orders.Order
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &order, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("order", orderID.String())
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &order, nil
}

func (r *OrderRepo) UpdateStatus(ctx context.Context, orderID id.ID, status orders.OrderStatus) error {
	sql, args, err := builder().
		Update("orders").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build status update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "order")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("order", orderID.String())
	}
	return nil
}

func (r *OrderRepo) List(ctx context.Context, limit, offset int) ([]orders.Order, error) {
	q := builder().
		Select(r.cols...).
		From("orders").
		OrderBy("created_at DESC")
	if limit > 0 {
		q = q.Limit(uint64(limit)).Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []orders.Order
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return out, nil
}

func (r *OrderRepo) CountFinancialReferences(ctx context.Context, orderID id.ID) (int64, error) {
	const sql = `
		SELECT
			(SELECT COUNT(*) FROM payments WHERE order_id = $1) +
			(SELECT COUNT(*) FROM order_status_history WHERE order_id = $1)`

	var count int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, orderID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count financial references: %w", err)
	}
	return count, nil
}
