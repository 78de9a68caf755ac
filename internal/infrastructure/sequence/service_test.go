package sequence

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taller/internal/core/apperror"
	"taller/internal/core/sequence"
	"taller/internal/infrastructure/storage/postgres"
)

type fakeRow struct {
	value int64
}

func (r fakeRow) Scan(dest ...any) error {
	*dest[0].(*int64) = r.value
	return nil
}

type fakeQuerier struct {
	maxSuffix int64
	lastSQL   string
	lastArgs  []any
}

func (q *fakeQuerier) Exec(_ context.Context, _ string, _ ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (q *fakeQuerier) Query(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
	return nil, nil
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.lastSQL = sql
	q.lastArgs = args
	return fakeRow{value: q.maxSuffix}
}

type fakeProvider struct {
	querier *fakeQuerier
}

func (p fakeProvider) GetQuerier(_ context.Context) postgres.Querier {
	return p.querier
}

func newAllocator(maxSuffix int64) (*Allocator, *fakeQuerier) {
	q := &fakeQuerier{maxSuffix: maxSuffix}
	return NewAllocator(fakeProvider{querier: q}), q
}

func TestNextCodeFirstInPrefix(t *testing.T) {
	alloc, q := newAllocator(0)

	code, err := alloc.NextCode(context.Background(), sequence.ForItem("Telas"))
	require.NoError(t, err)
	assert.Equal(t, "TEL01", code)
	assert.Contains(t, q.lastSQL, "FROM items")
	assert.Contains(t, q.lastArgs, "TEL%")
}

func TestNextCodeIncrementsHighest(t *testing.T) {
	alloc, _ := newAllocator(7)

	code, err := alloc.NextCode(context.Background(), sequence.ForItem("Telas"))
	require.NoError(t, err)
	assert.Equal(t, "TEL08", code)
}

func TestNextCodeCapacityExhausted(t *testing.T) {
	alloc, _ := newAllocator(99)

	_, err := alloc.NextCode(context.Background(), sequence.ForItem("Telas"))
	require.Error(t, err)
	assert.True(t, apperror.IsCapacityExhausted(err))
}

func TestNextCodeQuotationBase(t *testing.T) {
	alloc, q := newAllocator(0)

	code, err := alloc.NextCode(context.Background(), sequence.ForQuotation())
	require.NoError(t, err)
	assert.Equal(t, "COT10001", code)
	assert.Contains(t, q.lastSQL, "FROM quotations")
}

func TestNextCodeQuotationContinues(t *testing.T) {
	alloc, _ := newAllocator(10234)

	code, err := alloc.NextCode(context.Background(), sequence.ForQuotation())
	require.NoError(t, err)
	assert.Equal(t, "COT10235", code)
}

func TestNextCodeAdditionTable(t *testing.T) {
	alloc, q := newAllocator(1)

	code, err := alloc.NextCode(context.Background(), sequence.ForAddition("Bordado"))
	require.NoError(t, err)
	assert.Equal(t, "BOR02", code)
	assert.Contains(t, q.lastSQL, "FROM additions")
}

func TestNextCodeUnknownKind(t *testing.T) {
	alloc, _ := newAllocator(0)

	_, err := alloc.NextCode(context.Background(), sequence.Config{
		Kind:        sequence.Kind("invoice"),
		Prefix:      "INV",
		SuffixWidth: 3,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown kind")
}
