package order_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"taller/internal/core/id"
	"taller/internal/domain/orders"
	"taller/internal/infrastructure/storage/postgres"
)

// HistoryRepo implements orders.HistoryRepository. Append-only.
type HistoryRepo struct {
	txm  *postgres.TxManager
	cols []string
}

var _ orders.HistoryRepository = (*HistoryRepo)(nil)

func NewHistoryRepo(txm *postgres.TxManager) *HistoryRepo {
	return &HistoryRepo{
		txm:  txm,
		cols: postgres.ExtractDBColumns[orders.StatusHistory](),
	}
}

func (r *HistoryRepo) Append(ctx context.Context, row *orders.StatusHistory) error {
	sql, args, err := builder().
		Insert("order_status_history").
		SetMap(postgres.StructToMap(row)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "status history")
	}
	return nil
}

func (r *HistoryRepo) ListByOrder(ctx context.Context, orderID id.ID) ([]orders.StatusHistory, error) {
	sql, args, err := builder().
		Select(r.cols...).
		From("order_status_history").
		Where(squirrel.Eq{"order_id": orderID}).
		OrderBy("changed_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []orders.StatusHistory
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list status history: %w", err)
	}
	return out, nil
}
