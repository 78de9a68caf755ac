package order_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/core/types"
	"taller/internal/domain/orders"
	"taller/internal/infrastructure/storage/postgres"
)

// PaymentRepo implements orders.PaymentRepository.
type PaymentRepo struct {
	txm  *postgres.TxManager
	cols []string
}

var _ orders.PaymentRepository = (*PaymentRepo)(nil)

func NewPaymentRepo(txm *postgres.TxManager) *PaymentRepo {
	return &PaymentRepo{
		txm:  txm,
		cols: postgres.ExtractDBColumns[orders.Payment](),
	}
}

func (r *PaymentRepo) Create(ctx context.Context, payment *orders.Payment) error {
	sql, args, err := builder().
		Insert("payments").
		SetMap(postgres.StructToMap(payment)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "payment")
	}
	return nil
}

func (r *PaymentRepo) GetByID(ctx context.Context, paymentID id.ID) (*orders.Payment, error) {
	sql, args, err := builder().
		Select(r.cols...).
		From("payments").
		Where(squirrel.Eq{"id": paymentID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var p orders.Payment
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &p, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("payment", paymentID.String())
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return &p, nil
}

func (r *PaymentRepo) Update(ctx context.Context, payment *orders.Payment) error {
	data := postgres.StructToMap(payment)
	delete(data, "id")

	sql, args, err := builder().
		Update("payments").
		SetMap(data).
		Where(squirrel.Eq{"id": payment.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "payment")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("payment", payment.ID.String())
	}
	return nil
}

func (r *PaymentRepo) Delete(ctx context.Context, paymentID id.ID) error {
	sql, args, err := builder().
		Delete("payments").
		Where(squirrel.Eq{"id": paymentID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "payment")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("payment", paymentID.String())
	}
	return nil
}

func (r *PaymentRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]orders.Payment, error) {
	sql, args, err := builder().
		Select(r.cols...).
		From("payments").
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []orders.Payment
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return out, nil
}

func (r *PaymentRepo) SumActive(ctx context.Context, orderID id.ID) (types.Money, error) {
	const sql = `
		SELECT COALESCE(SUM(amount), 0)
		FROM payments
		WHERE order_id = $1 AND status <> 'VOIDED'`

	var sum types.Money
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, orderID).Scan(&sum); err != nil {
		return types.Zero(), fmt.Errorf("sum payments: %w", err)
	}
	return sum, nil
}
