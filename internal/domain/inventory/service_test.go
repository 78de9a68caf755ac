package inventory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/core/types"
)

// txStub runs the callback directly; the service under test only needs
// all-or-nothing semantics from the real manager, not from the mock.
type txStub struct{}

func (txStub) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// mockRepo is an in-memory ledger.
type mockRepo struct {
	entries map[id.ID]*Entry
	outputs map[id.ID]*Output

	syncedItems []id.ID

	// onLock fires inside LockItem, letting tests inject a competing
	// write between the unguarded pre-check and the in-transaction one.
	onLock func(itemID id.ID)
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		entries: make(map[id.ID]*Entry),
		outputs: make(map[id.ID]*Output),
	}
}

func (m *mockRepo) CreateEntry(ctx context.Context, entry *Entry) error {
	cp := *entry
	m.entries[entry.ID] = &cp
	return nil
}

func (m *mockRepo) GetEntry(ctx context.Context, entryID id.ID) (*Entry, error) {
	if e, ok := m.entries[entryID]; ok {
		cp := *e
		return &cp, nil
	}
	return nil, apperror.NewNotFound("entry", entryID)
}

func (m *mockRepo) DeleteEntry(ctx context.Context, entryID id.ID) error {
	delete(m.entries, entryID)
	return nil
}

func (m *mockRepo) ListEntries(ctx context.Context, itemID id.ID, limit, offset int) ([]Entry, error) {
	return nil, nil
}

func (m *mockRepo) SumEntries(ctx context.Context, itemID id.ID) (types.Quantity, error) {
	var total types.Quantity
	for _, e := range m.entries {
		if e.ItemID == itemID {
			total += e.Quantity
		}
	}
	return total, nil
}

func (m *mockRepo) CreateOutput(ctx context.Context, output *Output) error {
	cp := *output
	m.outputs[output.ID] = &cp
	return nil
}

func (m *mockRepo) GetOutput(ctx context.Context, outputID id.ID) (*Output, error) {
	if o, ok := m.outputs[outputID]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, apperror.NewNotFound("output", outputID)
}

func (m *mockRepo) UpdateOutput(ctx context.Context, output *Output) error {
	cp := *output
	m.outputs[output.ID] = &cp
	return nil
}

func (m *mockRepo) DeleteOutput(ctx context.Context, outputID id.ID) error {
	delete(m.outputs, outputID)
	return nil
}

func (m *mockRepo) ListOutputs(ctx context.Context, itemID id.ID, location Location, limit, offset int) ([]Output, error) {
	return nil, nil
}

func (m *mockRepo) SumOutputs(ctx context.Context, itemID id.ID, location Location) (types.Quantity, error) {
	var total types.Quantity
	for _, o := range m.outputs {
		if o.ItemID == itemID && o.Location == location {
			total += o.Quantity
		}
	}
	return total, nil
}

func (m *mockRepo) MaxOutputsByLocation(ctx context.Context, itemID id.ID) (types.Quantity, error) {
	perLocation := make(map[Location]types.Quantity)
	for _, o := range m.outputs {
		if o.ItemID == itemID {
			perLocation[o.Location] += o.Quantity
		}
	}
	var max types.Quantity
	for _, q := range perLocation {
		if q > max {
			max = q
		}
	}
	return max, nil
}

func (m *mockRepo) LockItem(ctx context.Context, itemID id.ID) error {
	if m.onLock != nil {
		m.onLock(itemID)
	}
	return nil
}

func (m *mockRepo) SyncItemStock(ctx context.Context, itemID id.ID) error {
	m.syncedItems = append(m.syncedItems, itemID)
	return nil
}

func (m *mockRepo) LevelsByItem(ctx context.Context, itemID id.ID) ([]StockLevel, error) {
	return nil, nil
}

func (m *mockRepo) FindBelowMinimum(ctx context.Context) ([]LowStockItem, error) {
	return nil, nil
}

var _ Repository = (*mockRepo)(nil)

func qty(v float64) types.Quantity { return types.NewQuantityFromFloat64(v) }

func seedEntry(repo *mockRepo, itemID id.ID, quantity types.Quantity) *Entry {
	entry := NewEntry(itemID, nil, quantity, "tester")
	repo.entries[entry.ID] = entry
	return entry
}

func seedOutput(repo *mockRepo, itemID id.ID, location Location, quantity types.Quantity) *Output {
	output := NewOutput(itemID, nil, location, quantity, "seeded", "tester")
	repo.outputs[output.ID] = output
	return output
}

func TestComputeStock(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, txStub{})
	ctx := context.Background()
	itemID := id.New()

	seedEntry(repo, itemID, qty(100))
	seedOutput(repo, itemID, LocationCutting, qty(30))

	stock, err := svc.ComputeStock(ctx, itemID, LocationCutting)
	require.NoError(t, err)
	assert.Equal(t, qty(70), stock)

	// Entries replenish one pool; other locations see the full pool.
	stock, err = svc.ComputeStock(ctx, itemID, LocationSewing)
	require.NoError(t, err)
	assert.Equal(t, qty(100), stock)
}

func TestComputeStockRejectsUnknownLocation(t *testing.T) {
	svc := NewService(newMockRepo(), txStub{})

	_, err := svc.ComputeStock(context.Background(), id.New(), Location("warehouse_9"))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestRecordOutputInsufficientStock(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, txStub{})
	ctx := context.Background()
	itemID := id.New()

	seedEntry(repo, itemID, qty(100))

	_, err := svc.RecordOutput(ctx, itemID, nil, LocationCutting, qty(120), "order cut")
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
	assert.Empty(t, repo.outputs, "rejected output must not be stored")
}

func TestRecordOutputSuccess(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, txStub{})
	ctx := context.Background()
	itemID := id.New()

	seedEntry(repo, itemID, qty(100))

	output, err := svc.RecordOutput(ctx, itemID, nil, LocationCutting, qty(60), "order cut")
	require.NoError(t, err)
	require.NotNil(t, output)
	assert.Len(t, repo.outputs, 1)
	assert.Contains(t, repo.syncedItems, itemID)

	stock, err := svc.ComputeStock(ctx, itemID, LocationCutting)
	require.NoError(t, err)
	assert.Equal(t, qty(40), stock)
}

func TestRecordOutputRaceRecheck(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, txStub{})
	ctx := context.Background()
	itemID := id.New()

	seedEntry(repo, itemID, qty(100))

	// A competing output commits between the unguarded pre-check and the
	// locked re-check. Each request fits alone; together they overdraw.
	repo.onLock = func(lockedItem id.ID) {
		repo.onLock = nil
		seedOutput(repo, itemID, LocationCutting, qty(60))
	}

	_, err := svc.RecordOutput(ctx, itemID, nil, LocationCutting, qty(60), "order cut")
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err), "race loser gets the same rejection as a plain shortage")
	assert.Len(t, repo.outputs, 1, "only the competing output may exist")
}

func TestEditOutputSelfEditNeverRejects(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, txStub{})
	ctx := context.Background()
	itemID := id.New()

	seedEntry(repo, itemID, qty(100))
	output := seedOutput(repo, itemID, LocationCutting, qty(80))

	// Same (item, location, quantity): the row's own quantity is credited
	// back, so the edit must pass even though free stock is only 20.
	updated, err := svc.EditOutput(ctx, output.ID, itemID, LocationCutting, qty(80), "restated reason")
	require.NoError(t, err)
	assert.Equal(t, qty(80), updated.Quantity)
	assert.Equal(t, "restated reason", updated.Reason)

	stock, err := svc.ComputeStock(ctx, itemID, LocationCutting)
	require.NoError(t, err)
	assert.Equal(t, qty(20), stock)
}

func TestEditOutputGrowWithinCredit(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, txStub{})
	ctx := context.Background()
	itemID := id.New()

	seedEntry(repo, itemID, qty(100))
	output := seedOutput(repo, itemID, LocationCutting, qty(80))

	// 20 free + 80 credited back = 100 available.
	_, err := svc.EditOutput(ctx, output.ID, itemID, LocationCutting, qty(100), "full pool")
	require.NoError(t, err)

	_, err = svc.EditOutput(ctx, output.ID, itemID, LocationCutting, qty(101), "overdraw")
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))
}

func TestEditOutputLocationChangeGetsNoCredit(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, txStub{})
	ctx := context.Background()
	itemID := id.New()

	seedEntry(repo, itemID, qty(100))
	seedOutput(repo, itemID, LocationSewing, qty(50))
	output := seedOutput(repo, itemID, LocationCutting, qty(80))

	// Moving to sewing: available there is 100-50=50, and the old cutting
	// quantity is not credited because the pair changed.
	_, err := svc.EditOutput(ctx, output.ID, itemID, LocationSewing, qty(60), "moved")
	require.Error(t, err)
	assert.True(t, apperror.IsInsufficientStock(err))

	_, err = svc.EditOutput(ctx, output.ID, itemID, LocationSewing, qty(50), "moved")
	require.NoError(t, err)
}

func TestEditOutputNotFound(t *testing.T) {
	svc := NewService(newMockRepo(), txStub{})

	_, err := svc.EditOutput(context.Background(), id.New(), id.New(), LocationCutting, qty(1), "x")
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteOutputSyncsStock(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, txStub{})
	ctx := context.Background()
	itemID := id.New()

	seedEntry(repo, itemID, qty(100))
	output := seedOutput(repo, itemID, LocationCutting, qty(40))

	require.NoError(t, svc.DeleteOutput(ctx, output.ID))
	assert.Empty(t, repo.outputs)
	assert.Contains(t, repo.syncedItems, itemID)

	err := svc.DeleteOutput(ctx, output.ID)
	require.Error(t, err)
	assert.True(t, apperror.IsNotFound(err))
}

func TestDeleteEntryBlockedByOutputs(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, txStub{})
	ctx := context.Background()
	itemID := id.New()

	entry := seedEntry(repo, itemID, qty(100))
	seedOutput(repo, itemID, LocationCutting, qty(80))

	err := svc.DeleteEntry(ctx, entry.ID)
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
	assert.Len(t, repo.entries, 1, "blocked delete must keep the entry")
}

func TestDeleteEntryAllowedWhenCovered(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, txStub{})
	ctx := context.Background()
	itemID := id.New()

	seedEntry(repo, itemID, qty(100))
	extra := seedEntry(repo, itemID, qty(50))
	seedOutput(repo, itemID, LocationCutting, qty(80))

	// Pool after delete is 100, still covering the 80 withdrawn.
	require.NoError(t, svc.DeleteEntry(ctx, extra.ID))
	assert.Len(t, repo.entries, 1)
}

func TestRecordEntryValidation(t *testing.T) {
	svc := NewService(newMockRepo(), txStub{})

	_, err := svc.RecordEntry(context.Background(), id.New(), nil, qty(0))
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}

func TestStockNeverNegativeAfterCommittedWrites(t *testing.T) {
	repo := newMockRepo()
	svc := NewService(repo, txStub{})
	ctx := context.Background()
	itemID := id.New()

	seedEntry(repo, itemID, qty(50))

	for _, q := range []types.Quantity{qty(20), qty(20), qty(20)} {
		_, _ = svc.RecordOutput(ctx, itemID, nil, LocationCutting, q, "drain")
	}

	for _, location := range Locations {
		stock, err := svc.ComputeStock(ctx, itemID, location)
		require.NoError(t, err)
		assert.False(t, stock.IsNegative(), "stock at %s went negative", location)
	}
}
