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

// PrefacturaRepo implements orders.PrefacturaRepository.
type PrefacturaRepo struct {
	txm  *postgres.TxManager
	cols []string
}

var _ orders.PrefacturaRepository = (*PrefacturaRepo)(nil)

func NewPrefacturaRepo(txm *postgres.TxManager) *PrefacturaRepo {
	return &PrefacturaRepo{
		txm:  txm,
		cols: postgres.ExtractDBColumns[orders.Prefactura](),
	}
}

func (r *PrefacturaRepo) Create(ctx context.Context, pf *orders.Prefactura) error {
	sql, args, err := builder().
		Insert("prefacturas").
		SetMap(postgres.StructToMap(pf)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "prefactura")
	}
	return nil
}

func (r *PrefacturaRepo) GetByOrder(ctx context.Context, orderID id.ID) (*orders.Prefactura, error) {
	sql, args, err := builder().
		Select(r.cols...).
		From("prefacturas").
		Where(squirrel.Eq{"order_id": orderID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var pf orders.Prefactura
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &pf, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("prefactura", orderID.String())
		}
		return nil, fmt.Errorf("get prefactura: %w", err)
	}
	return &pf, nil
}

func (r *PrefacturaRepo) UpdateStatus(ctx context.Context, prefacturaID id.ID, status orders.PrefacturaStatus) error {
	sql, args, err := builder().
		Update("prefacturas").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": prefacturaID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build status update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "prefactura")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("prefactura", prefacturaID.String())
	}
	return nil
}
