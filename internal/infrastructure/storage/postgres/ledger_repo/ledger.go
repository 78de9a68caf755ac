// Package ledger_repo provides the PostgreSQL implementation of the stock
// ledger repository. Quantities are stored as scaled BIGINT columns, so
// sums and comparisons are exact.
package ledger_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/core/types"
	"taller/internal/domain/inventory"
	"taller/internal/infrastructure/storage/postgres"
)

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// LedgerRepo implements inventory.Repository.
type LedgerRepo struct {
	txm        *postgres.TxManager
	entryCols  []string
	outputCols []string
}

var _ inventory.Repository = (*LedgerRepo)(nil)

func NewLedgerRepo(txm *postgres.TxManager) *LedgerRepo {
	return &LedgerRepo{
		txm:        txm,
		entryCols:  postgres.ExtractDBColumns[inventory.Entry](),
		outputCols: postgres.ExtractDBColumns[inventory.Output](),
	}
}

func (r *LedgerRepo) CreateEntry(ctx context.Context, entry *inventory.Entry) error {
	sql, args, err := builder().
		Insert("inventory_entries").
		SetMap(postgres.StructToMap(entry)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "inventory entry")
	}
	return nil
}

func (r *LedgerRepo) GetEntry(ctx context.Context, entryID id.ID) (*inventory.Entry, error) {
	sql, args, err := builder().
		Select(r.entryCols...).
		From("inventory_entries").
		Where(squirrel.Eq{"id": entryID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var e inventory.Entry
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &e, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("inventory entry", entryID.String())
		}
		return nil, fmt.Errorf("get entry: %w", err)
	}
	return &e, nil
}

func (r *LedgerRepo) DeleteEntry(ctx context.Context, entryID id.ID) error {
	sql, args, err := builder().
		Delete("inventory_entries").
		Where(squirrel.Eq{"id": entryID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "inventory entry")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("inventory entry", entryID.String())
	}
	return nil
}

func (r *LedgerRepo) ListEntries(ctx context.Context, itemID id.ID, limit, offset int) ([]inventory.Entry, error) {
	q := builder().
		Select(r.entryCols...).
		From("inventory_entries").
		OrderBy("created_at DESC")
	if !id.IsNil(itemID) {
		q = q.Where(squirrel.Eq{"item_id": itemID})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit)).Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []inventory.Entry
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return out, nil
}

func (r *LedgerRepo) SumEntries(ctx context.Context, itemID id.ID) (types.Quantity, error) {
	const sql = `SELECT COALESCE(SUM(quantity), 0) FROM inventory_entries WHERE item_id = $1`

	var sum int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, itemID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum entries: %w", err)
	}
	return types.NewQuantityFromInt64Scaled(sum), nil
}

func (r *LedgerRepo) CreateOutput(ctx context.Context, output *inventory.Output) error {
	sql, args, err := builder().
		Insert("inventory_outputs").
		SetMap(postgres.StructToMap(output)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "inventory output")
	}
	return nil
}

func (r *LedgerRepo) GetOutput(ctx context.Context, outputID id.ID) (*inventory.Output, error) {
	sql, args, err := builder().
		Select(r.outputCols...).
		From("inventory_outputs").
		Where(squirrel.Eq{"id": outputID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var o inventory.Output
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &o, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("inventory output", outputID.String())
		}
		return nil, fmt.Errorf("get output: %w", err)
	}
	return &o, nil
}

func (r *LedgerRepo) UpdateOutput(ctx context.Context, output *inventory.Output) error {
	data := postgres.StructToMap(output)
	delete(data, "id")

	sql, args, err := builder().
		Update("inventory_outputs").
		SetMap(data).
		Where(squirrel.Eq{"id": output.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "inventory output")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("inventory output", output.ID.String())
	}
	return nil
}

func (r *LedgerRepo) DeleteOutput(ctx context.Context, outputID id.ID) error {
	sql, args, err := builder().
		Delete("inventory_outputs").
		Where(squirrel.Eq{"id": outputID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "inventory output")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("inventory output", outputID.String())
	}
	return nil
}

func (r *LedgerRepo) ListOutputs(ctx context.Context, itemID id.ID, location inventory.Location, limit, offset int) ([]inventory.Output, error) {
	q := builder().
		Select(r.outputCols...).
		From("inventory_outputs").
		OrderBy("created_at DESC")
	if !id.IsNil(itemID) {
		q = q.Where(squirrel.Eq{"item_id": itemID})
	}
	if location != "" {
		q = q.Where(squirrel.Eq{"location": location})
	}
	if limit > 0 {
		q = q.Limit(uint64(limit)).Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []inventory.Output
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list outputs: %w", err)
	}
	return out, nil
}

func (r *LedgerRepo) SumOutputs(ctx context.Context, itemID id.ID, location inventory.Location) (types.Quantity, error) {
	const sql = `SELECT COALESCE(SUM(quantity), 0) FROM inventory_outputs WHERE item_id = $1 AND location = $2`

	var sum int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, itemID, location).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum outputs: %w", err)
	}
	return types.NewQuantityFromInt64Scaled(sum), nil
}

func (r *LedgerRepo) MaxOutputsByLocation(ctx context.Context, itemID id.ID) (types.Quantity, error) {
	const sql = `
		SELECT COALESCE(MAX(t.total), 0) FROM (
			SELECT SUM(quantity) AS total
			FROM inventory_outputs
			WHERE item_id = $1
			GROUP BY location
		) t`

	var max int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, itemID).Scan(&max); err != nil {
		return 0, fmt.Errorf("max outputs by location: %w", err)
	}
	return types.NewQuantityFromInt64Scaled(max), nil
}

// LockItem takes the item row lock that serializes stock check-then-write
// sequences for one item.
func (r *LedgerRepo) LockItem(ctx context.Context, itemID id.ID) error {
	const sql = `SELECT id FROM items WHERE id = $1 FOR UPDATE`

	var locked id.ID
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, itemID).Scan(&locked); err != nil {
		if pgxscan.NotFound(err) {
			return apperror.NewNotFound("item", itemID.String())
		}
		return fmt.Errorf("lock item: %w", err)
	}
	return nil
}

// SyncItemStock rewrites the cached pooled-stock column from the ledger.
func (r *LedgerRepo) SyncItemStock(ctx context.Context, itemID id.ID) error {
	const sql = `
		UPDATE items SET stock =
			COALESCE((SELECT SUM(quantity) FROM inventory_entries WHERE item_id = $1), 0) -
			COALESCE((SELECT SUM(quantity) FROM inventory_outputs WHERE item_id = $1), 0)
		WHERE id = $1`

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, itemID)
	if err != nil {
		return fmt.Errorf("sync item stock: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("item", itemID.String())
	}
	return nil
}

func (r *LedgerRepo) LevelsByItem(ctx context.Context, itemID id.ID) ([]inventory.StockLevel, error) {
	// Pooled entries minus per-location outputs; locations without outputs
	// show the full pool.
	const sql = `
		WITH pool AS (
			SELECT COALESCE(SUM(quantity), 0) AS total
			FROM inventory_entries WHERE item_id = $1
		)
		SELECT
			$1::uuid AS item_id,
			l.location,
			pool.total - COALESCE(o.total, 0) AS quantity
		FROM unnest($2::text[]) AS l(location)
		CROSS JOIN pool
		LEFT JOIN (
			SELECT location, SUM(quantity) AS total
			FROM inventory_outputs
			WHERE item_id = $1
			GROUP BY location
		) o ON o.location = l.location
		ORDER BY l.location`

	locations := make([]string, len(inventory.Locations))
	for i, l := range inventory.Locations {
		locations[i] = string(l)
	}

	var out []inventory.StockLevel
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, itemID, locations); err != nil {
		return nil, fmt.Errorf("levels by item: %w", err)
	}
	return out, nil
}

func (r *LedgerRepo) FindBelowMinimum(ctx context.Context) ([]inventory.LowStockItem, error) {
	const sql = `
		SELECT id AS item_id, code, name, stock, minimum_stock AS min_stock
		FROM items
		WHERE minimum_stock > 0 AND stock < minimum_stock
		ORDER BY code`

	var out []inventory.LowStockItem
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql); err != nil {
		return nil, fmt.Errorf("find below minimum: %w", err)
	}
	return out, nil
}
