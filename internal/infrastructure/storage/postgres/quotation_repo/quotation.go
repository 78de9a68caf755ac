// Package quotation_repo provides the PostgreSQL implementation of the
// quotation repository. Documents and their lines are written together.
package quotation_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/domain/quotations"
	"taller/internal/infrastructure/storage/postgres"
)

func builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// QuotationRepo implements quotations.Repository.
type QuotationRepo struct {
	txm      *postgres.TxManager
	cols     []string
	lineCols []string
}

var _ quotations.Repository = (*QuotationRepo)(nil)

func NewQuotationRepo(txm *postgres.TxManager) *QuotationRepo {
	return &QuotationRepo{
		txm:      txm,
		cols:     postgres.ExtractDBColumns[quotations.Quotation](),
		lineCols: postgres.ExtractDBColumns[quotations.Line](),
	}
}

func (r *QuotationRepo) Create(ctx context.Context, q *quotations.Quotation) error {
	sql, args, err := builder().
		Insert("quotations").
		SetMap(postgres.StructToMap(q)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	if _, err := querier.Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "quotation")
	}
	return r.insertLines(ctx, q)
}

func (r *QuotationRepo) insertLines(ctx context.Context, q *quotations.Quotation) error {
	if len(q.Lines) == 0 {
		return nil
	}

	ins := builder().Insert("quotation_lines").
		Columns("id", "quotation_id", "item_id", "addition_id", "description", "quantity", "unit_price")
	for i := range q.Lines {
		l := &q.Lines[i]
		if id.IsNil(l.ID) {
			l.ID = id.New()
		}
		l.QuotationID = q.ID
		ins = ins.Values(l.ID, l.QuotationID, l.ItemID, l.AdditionID, l.Description, l.Quantity, l.UnitPrice)
	}

	sql, args, err := ins.ToSql()
	if err != nil {
		return fmt.Errorf("build lines insert: %w", err)
	}
	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return postgres.MapError(err, "quotation line")
	}
	return nil
}

func (r *QuotationRepo) GetByID(ctx context.Context, quotationID id.ID) (*quotations.Quotation, error) {
	return r.get(ctx, quotationID, false)
}

func (r *QuotationRepo) GetForUpdate(ctx context.Context, quotationID id.ID) (*quotations.Quotation, error) {
	return r.get(ctx, quotationID, true)
}

func (r *QuotationRepo) get(ctx context.Context, quotationID id.ID, forUpdate bool) (*quotations.Quotation, error) {
	q := builder().
		Select(r.cols...).
		From("quotations").
		Where(squirrel.Eq{"id": quotationID}).
		Limit(1)
	if forUpdate {
		q = q.Suffix("FOR UPDATE")
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var quotation quotations.Quotation
	querier := r.txm.GetQuerier(ctx)
	if err := pgxscan.Get(ctx, querier, &quotation, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("quotation", quotationID.String())
		}
		return nil, fmt.Errorf("get quotation: %w", err)
	}

	if err := r.loadLines(ctx, &quotation); err != nil {
		return nil, err
	}
	return &quotation, nil
}

func (r *QuotationRepo) loadLines(ctx context.Context, q *quotations.Quotation) error {
	sql, args, err := builder().
		Select(r.lineCols...).
		From("quotation_lines").
		Where(squirrel.Eq{"quotation_id": q.ID}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build lines query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &q.Lines, sql, args...); err != nil {
		return fmt.Errorf("load quotation lines: %w", err)
	}
	return nil
}

// Update rewrites the document row and replaces its lines.
func (r *QuotationRepo) Update(ctx context.Context, q *quotations.Quotation) error {
	data := postgres.StructToMap(q)
	delete(data, "id")
	delete(data, "version")

	sql, args, err := builder().
		Update("quotations").
		SetMap(data).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": q.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	querier := r.txm.GetQuerier(ctx)
	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "quotation")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("quotation", q.ID.String())
	}

	delSQL, delArgs, err := builder().
		Delete("quotation_lines").
		Where(squirrel.Eq{"quotation_id": q.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build lines delete: %w", err)
	}
	if _, err := querier.Exec(ctx, delSQL, delArgs...); err != nil {
		return postgres.MapError(err, "quotation line")
	}
	return r.insertLines(ctx, q)
}

func (r *QuotationRepo) UpdateStatus(ctx context.Context, quotationID id.ID, status quotations.Status) error {
	sql, args, err := builder().
		Update("quotations").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": quotationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build status update: %w", err)
	}

	result, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "quotation")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("quotation", quotationID.String())
	}
	return nil
}

func (r *QuotationRepo) Delete(ctx context.Context, quotationID id.ID) error {
	querier := r.txm.GetQuerier(ctx)

	delLines, delLinesArgs, err := builder().
		Delete("quotation_lines").
		Where(squirrel.Eq{"quotation_id": quotationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build lines delete: %w", err)
	}
	if _, err := querier.Exec(ctx, delLines, delLinesArgs...); err != nil {
		return postgres.MapError(err, "quotation line")
	}

	sql, args, err := builder().
		Delete("quotations").
		Where(squirrel.Eq{"id": quotationID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := querier.Exec(ctx, sql, args...)
	if err != nil {
		return postgres.MapError(err, "quotation")
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("quotation", quotationID.String())
	}
	return nil
}

func (r *QuotationRepo) List(ctx context.Context, limit, offset int) ([]quotations.Quotation, error) {
	return r.list(ctx, nil, limit, offset)
}

func (r *QuotationRepo) ListByClient(ctx context.Context, clientID id.ID, limit, offset int) ([]quotations.Quotation, error) {
	return r.list(ctx, squirrel.Eq{"client_id": clientID}, limit, offset)
}

func (r *QuotationRepo) list(ctx context.Context, where any, limit, offset int) ([]quotations.Quotation, error) {
	q := builder().
		Select(r.cols...).
		From("quotations").
		OrderBy("created_at DESC")
	if where != nil {
		q = q.Where(where)
	}
	if limit > 0 {
		q = q.Limit(uint64(limit)).Offset(uint64(offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var out []quotations.Quotation
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &out, sql, args...); err != nil {
		return nil, fmt.Errorf("list quotations: %w", err)
	}
	return out, nil
}
