// Package sequence implements the code allocator on top of PostgreSQL.
// The next suffix is derived from the maximum suffix already stored for
// the prefix; the unique index on the code column settles concurrent
// allocations, callers retry on a duplicate.
package sequence

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"taller/internal/core/apperror"
	"taller/internal/core/sequence"
	"taller/internal/infrastructure/storage/postgres"
)

// kindTables maps a sequence kind to the table and column holding its codes.
var kindTables = map[sequence.Kind]struct {
	table  string
	column string
}{
	sequence.KindItem:      {table: "items", column: "code"},
	sequence.KindAddition:  {table: "additions", column: "code"},
	sequence.KindQuotation: {table: "quotations", column: "code"},
}

// QuerierProvider yields the querier bound to the current context.
// *postgres.TxManager satisfies it.
type QuerierProvider interface {
	GetQuerier(ctx context.Context) postgres.Querier
}

// Allocator scans the backing code column for the highest allocated suffix.
type Allocator struct {
	txm QuerierProvider
}

var _ sequence.Allocator = (*Allocator)(nil)

func NewAllocator(txm QuerierProvider) *Allocator {
	return &Allocator{txm: txm}
}

// NextCode returns the next free code for the sequence. The scan runs on
// the caller's querier, so an allocation inside a transaction sees codes
// inserted earlier in the same transaction.
func (a *Allocator) NextCode(ctx context.Context, cfg sequence.Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	target, ok := kindTables[cfg.Kind]
	if !ok {
		return "", fmt.Errorf("sequence: unknown kind %q", cfg.Kind)
	}

	// The suffix is extracted in SQL so MAX compares numbers, not strings.
	expr := fmt.Sprintf(
		"COALESCE(MAX(SUBSTRING(%s FROM %d)::bigint), 0)",
		target.column, len(cfg.Prefix)+1,
	)
	sql, args, err := squirrel.StatementBuilder.
		PlaceholderFormat(squirrel.Dollar).
		Select(expr).
		From(target.table).
		Where(squirrel.Like{target.column: cfg.Prefix + "%"}).
		Where(fmt.Sprintf("LENGTH(%s) = ?", target.column), len(cfg.Prefix)+cfg.SuffixWidth).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build max-suffix query: %w", err)
	}

	var highest int64
	if err := a.txm.GetQuerier(ctx).QueryRow(ctx, sql, args...).Scan(&highest); err != nil {
		return "", fmt.Errorf("scan max suffix for %q: %w", cfg.Prefix, err)
	}

	next := highest + 1
	if next <= cfg.Base {
		next = cfg.Base + 1
	}
	if next > cfg.MaxSuffix() {
		return "", apperror.NewCapacityExhausted(cfg.Prefix, cfg.MaxSuffix())
	}
	return cfg.Format(next), nil
}
