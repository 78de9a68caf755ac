// Package catalog_repo provides PostgreSQL implementations for the catalog
// repositories. Repos hold the transaction manager and route every query
// through GetQuerier, so they transparently join an open transaction.
package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/domain/catalogs/client"
	"taller/internal/infrastructure/storage/postgres"
)

// builder returns a squirrel builder with PostgreSQL placeholders.
func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// ClientRepo implements client.Repository.
type ClientRepo struct {
	txm  *postgres.TxManager
	cols []string
}

var _ client.Repository = (*ClientRepo)(nil)

func NewClientRepo(txm *postgres.TxManager) *ClientRepo {
	return &ClientRepo{
		txm:  txm,
		cols: postgres.ExtractDBColumns[client.Client](),
	}
}

func (r *ClientRepo) Create(ctx context.Context, c *client.Client) error {
	sql, args, err := builder().
		Insert("clients").
		SetMap(postgres.StructToMap(c)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "client")
	}
	return nil
}

func (r *ClientRepo) GetByID(ctx context.Context, clientID id.ID) (*client.Client, error) {
	sql, args, err := builder().
		Select(r.cols...).
		From("clients").
		Where(squirrel.Eq{"id": clientID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var c client.Client
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &c, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("client", clientID.String())
		}
		return nil, fmt.Errorf("get client: %w", err)
	}
	return &c, nil
}

func (r *ClientRepo) Update(ctx context.Context, c *client.Client) error {
	data := postgres.StructToMap(c)
	delete(data, "id")
	delete(data, "version")

	sql, args, err := builder().
		Update("clients").
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": c.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "client")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("client", c.ID.String())
	}
	return nil
}

func (r *ClientRepo) Delete(ctx context.Context, clientID id.ID) error {
	sql, args, err := builder().
		Delete("clients").
		Where(squirrel.Eq{"id": clientID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "client")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("client", clientID.String())
	}
	return nil
}

func (r *ClientRepo) List(ctx context.Context, limit, offset int) ([]client.Client, error) {
	q := builder().
		Select(r.cols...).
		From("clients").
		OrderBy("name ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit)).Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []client.Client
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	return out, nil
}

func (r *ClientRepo) CountOrders(ctx context.Context, clientID id.ID) (int64, error) {
	sql, args, err := builder().
		Select("COUNT(*)").
		From("orders").
		Where(squirrel.Eq{"client_id": clientID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var count int64
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count client orders: %w", err)
	}
	return count, nil
}
