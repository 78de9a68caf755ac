package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/domain/catalogs/item"
	"taller/internal/infrastructure/storage/postgres"
)

// ItemRepo implements item.Repository and item.AdditionRepository.
type ItemRepo struct {
	txm          *postgres.TxManager
	cols         []string
	additionCols []string
}

var (
	_ item.Repository         = (*ItemRepo)(nil)
	_ item.AdditionRepository = (*ItemRepo)(nil)
)

func NewItemRepo(txm *postgres.TxManager) *ItemRepo {
	return &ItemRepo{
		txm:          txm,
		cols:         postgres.ExtractDBColumns[item.Item](),
		additionCols: postgres.ExtractDBColumns[item.Addition](),
	}
}

func (r *ItemRepo) Create(ctx context.Context, it *item.Item) error {
	sql, args, err := builder().
		Insert("items").
		SetMap(postgres.StructToMap(it)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "item")
	}
	return nil
}

func (r *ItemRepo) GetByID(ctx context.Context, itemID id.ID) (*item.Item, error) {
	sql, args, err := builder().
		Select(r.cols...).
		From("items").
		Where(squirrel.Eq{"id": itemID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var it item.Item
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &it, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("item", itemID.String())
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return &it, nil
}

func (r *ItemRepo) GetByCode(ctx context.Context, code string) (*item.Item, error) {
	sql, args, err := builder().
		Select(r.cols...).
		From("items").
		Where(squirrel.Eq{"code": code}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var it item.Item
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &it, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("item", code)
		}
		return nil, fmt.Errorf("get item by code: %w", err)
	}
	return &it, nil
}

func (r *ItemRepo) Update(ctx context.Context, it *item.Item) error {
	data := postgres.StructToMap(it)
	delete(data, "id")
	delete(data, "version")
	// The snapshot column is owned by the ledger sync.
	delete(data, "stock")

	sql, args, err := builder().
		Update("items").
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": it.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "item")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("item", it.ID.String())
	}
	return nil
}

func (r *ItemRepo) Delete(ctx context.Context, itemID id.ID) error {
	sql, args, err := builder().
		Delete("items").
		Where(squirrel.Eq{"id": itemID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "item")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("item", itemID.String())
	}
	return nil
}

func (r *ItemRepo) List(ctx context.Context, limit, offset int) ([]item.Item, error) {
	q := builder().
		Select(r.cols...).
		From("items").
		OrderBy("code ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit)).Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []item.Item
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return out, nil
}

func (r *ItemRepo) CountMovements(ctx context.Context, itemID id.ID) (int64, error) {
	const sql = `
		SELECT
			(SELECT COUNT(*) FROM inventory_entries WHERE item_id = $1) +
			(SELECT COUNT(*) FROM inventory_outputs WHERE item_id = $1)`

	var count int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, itemID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count item movements: %w", err)
	}
	return count, nil
}

// --- Additions ---

func (r *ItemRepo) CreateAddition(ctx context.Context, a *item.Addition) error {
	sql, args, err := builder().
		Insert("additions").
		SetMap(postgres.StructToMap(a)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "addition")
	}
	return nil
}

func (r *ItemRepo) GetAddition(ctx context.Context, additionID id.ID) (*item.Addition, error) {
	sql, args, err := builder().
		Select(r.additionCols...).
		From("additions").
		Where(squirrel.Eq{"id": additionID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var a item.Addition
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &a, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("addition", additionID.String())
		}
		return nil, fmt.Errorf("get addition: %w", err)
	}
	return &a, nil
}

func (r *ItemRepo) UpdateAddition(ctx context.Context, a *item.Addition) error {
	data := postgres.StructToMap(a)
	delete(data, "id")
	delete(data, "version")

	sql, args, err := builder().
		Update("additions").
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": a.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "addition")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("addition", a.ID.String())
	}
	return nil
}

func (r *ItemRepo) DeleteAddition(ctx context.Context, additionID id.ID) error {
	sql, args, err := builder().
		Delete("additions").
		Where(squirrel.Eq{"id": additionID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "addition")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("addition", additionID.String())
	}
	return nil
}

func (r *ItemRepo) ListAdditions(ctx context.Context, limit, offset int) ([]item.Addition, error) {
	q := builder().
		Select(r.additionCols...).
		From("additions").
		OrderBy("code ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit)).Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []item.Addition
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list additions: %w", err)
	}
	return out, nil
}

func (r *ItemRepo) CountAdditionUses(ctx context.Context, additionID id.ID) (int64, error) {
	sql, args, err := builder().
		Select("COUNT(*)").
		From("quotation_lines").
		Where(squirrel.Eq{"addition_id": additionID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var count int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count addition uses: %w", err)
	}
	return count, nil
}
