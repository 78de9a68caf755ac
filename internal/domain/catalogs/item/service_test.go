package item

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/core/sequence"
	"taller/internal/core/types"
)

type txStub struct{}

func (txStub) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockRepo struct {
	items     map[id.ID]*Item
	movements map[id.ID]int64

	// failCreates makes the next n Create calls fail with a duplicate,
	// simulating a lost code uniqueness race.
	failCreates int
	creates     int
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		items:     make(map[id.ID]*Item),
		movements: make(map[id.ID]int64),
	}
}

func (m *mockRepo) Create(_ context.Context, it *Item) error {
	m.creates++
	if m.failCreates > 0 {
		m.failCreates--
		return apperror.NewDuplicate("item", "code", it.Code)
	}
	for _, existing := range m.items {
		if existing.Code == it.Code {
			return apperror.NewDuplicate("item", "code", it.Code)
		}
	}
	cp := *it
	m.items[it.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, itemID id.ID) (*Item, error) {
	it, ok := m.items[itemID]
	if !ok {
		return nil, apperror.NewNotFound("item", itemID)
	}
	cp := *it
	return &cp, nil
}

func (m *mockRepo) GetByCode(_ context.Context, code string) (*Item, error) {
	for _, it := range m.items {
		if it.Code == code {
			cp := *it
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("item", code)
}

func (m *mockRepo) Update(_ context.Context, it *Item) error {
	if _, ok := m.items[it.ID]; !ok {
		return apperror.NewNotFound("item", it.ID)
	}
	cp := *it
	m.items[it.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, itemID id.ID) error {
	delete(m.items, itemID)
	return nil
}

func (m *mockRepo) List(_ context.Context, _, _ int) ([]Item, error) {
	out := make([]Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, *it)
	}
	return out, nil
}

func (m *mockRepo) CountMovements(_ context.Context, itemID id.ID) (int64, error) {
	return m.movements[itemID], nil
}

type mockAdditionRepo struct {
	additions map[id.ID]*Addition
	uses      map[id.ID]int64
}

func newMockAdditionRepo() *mockAdditionRepo {
	return &mockAdditionRepo{
		additions: make(map[id.ID]*Addition),
		uses:      make(map[id.ID]int64),
	}
}

func (m *mockAdditionRepo) CreateAddition(_ context.Context, a *Addition) error {
	cp := *a
	m.additions[a.ID] = &cp
	return nil
}

func (m *mockAdditionRepo) GetAddition(_ context.Context, additionID id.ID) (*Addition, error) {
	a, ok := m.additions[additionID]
	if !ok {
		return nil, apperror.NewNotFound("addition", additionID)
	}
	cp := *a
	return &cp, nil
}

func (m *mockAdditionRepo) UpdateAddition(_ context.Context, a *Addition) error {
	if _, ok := m.additions[a.ID]; !ok {
		return apperror.NewNotFound("addition", a.ID)
	}
	cp := *a
	m.additions[a.ID] = &cp
	return nil
}

func (m *mockAdditionRepo) DeleteAddition(_ context.Context, additionID id.ID) error {
	delete(m.additions, additionID)
	return nil
}

func (m *mockAdditionRepo) ListAdditions(_ context.Context, _, _ int) ([]Addition, error) {
	out := make([]Addition, 0, len(m.additions))
	for _, a := range m.additions {
		out = append(out, *a)
	}
	return out, nil
}

func (m *mockAdditionRepo) CountAdditionUses(_ context.Context, additionID id.ID) (int64, error) {
	return m.uses[additionID], nil
}

func newTestService() (*Service, *mockRepo, *mockAdditionRepo) {
	repo := newMockRepo()
	additions := newMockAdditionRepo()
	svc := NewService(repo, additions, &sequence.MockAllocator{}, txStub{})
	return svc, repo, additions
}

func TestCreateAllocatesCode(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first := NewItem("Tela lisa", "Telas Especiales", UnitMeter)
	require.NoError(t, svc.Create(ctx, first))
	assert.Equal(t, "TEL01", first.Code)

	second := NewItem("Tela rayada", "Telas Especiales", UnitMeter)
	require.NoError(t, svc.Create(ctx, second))
	assert.Equal(t, "TEL02", second.Code)

	other := NewItem("Botones", "Botones y Cierres", UnitPiece)
	require.NoError(t, svc.Create(ctx, other))
	assert.Equal(t, "BOT01", other.Code)
}

func TestCreateRetriesOnceOnCodeRace(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.failCreates = 1

	it := NewItem("Tela", "Telas", UnitMeter)
	require.NoError(t, svc.Create(context.Background(), it))
	assert.Equal(t, 2, repo.creates)
	// The retry re-derived the next code instead of reusing the loser.
	assert.Equal(t, "TEL02", it.Code)
}

func TestCreateSurfacesConflictAfterRetry(t *testing.T) {
	svc, repo, _ := newTestService()
	repo.failCreates = 2

	it := NewItem("Tela", "Telas", UnitMeter)
	err := svc.Create(context.Background(), it)
	assert.True(t, apperror.IsDuplicate(err))
	assert.Equal(t, 2, repo.creates)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	err := svc.Create(ctx, NewItem("", "Telas", UnitMeter))
	require.Error(t, err)

	err = svc.Create(ctx, NewItem("Tela", "", UnitMeter))
	require.Error(t, err)

	err = svc.Create(ctx, NewItem("Tela", "Telas", Unit("barrel")))
	require.Error(t, err)
}

func TestUpdateKeepsCodeWithinCategory(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	it := NewItem("Tela", "Telas", UnitMeter)
	require.NoError(t, svc.Create(ctx, it))
	require.Equal(t, "TEL01", it.Code)

	it.Name = "Tela premium"
	require.NoError(t, svc.Update(ctx, it))
	assert.Equal(t, "TEL01", it.Code)
}

func TestUpdateRemintsCodeOnCategoryChange(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	it := NewItem("Tela", "Telas", UnitMeter)
	require.NoError(t, svc.Create(ctx, it))

	it.Category = "Forros"
	require.NoError(t, svc.Update(ctx, it))
	assert.Equal(t, "FOR01", it.Code)
}

func TestUpdatePreservesStockSnapshot(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	it := NewItem("Tela", "Telas", UnitMeter)
	require.NoError(t, svc.Create(ctx, it))
	repo.items[it.ID].Stock = types.NewQuantityFromFloat64(42)

	it.Stock = types.NewQuantityFromFloat64(9999)
	it.Description = strPtr("updated")
	require.NoError(t, svc.Update(ctx, it))

	stored, err := svc.Get(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, types.NewQuantityFromFloat64(42), stored.Stock)
}

func TestDeleteBlockedByMovements(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	it := NewItem("Tela", "Telas", UnitMeter)
	require.NoError(t, svc.Create(ctx, it))
	repo.movements[it.ID] = 3

	err := svc.Delete(ctx, it.ID)
	assert.True(t, apperror.IsConflict(err))

	repo.movements[it.ID] = 0
	require.NoError(t, svc.Delete(ctx, it.ID))
}

func TestAdditionLifecycle(t *testing.T) {
	svc, _, additions := newTestService()
	ctx := context.Background()

	a := NewAddition("Bordado grande", "Bordados", types.NewMoney(150))
	require.NoError(t, svc.CreateAddition(ctx, a))
	assert.Equal(t, "BOR01", a.Code)

	a.Price = types.NewMoney(175)
	require.NoError(t, svc.UpdateAddition(ctx, a))
	assert.Equal(t, "BOR01", a.Code)

	additions.uses[a.ID] = 1
	err := svc.DeleteAddition(ctx, a.ID)
	assert.True(t, apperror.IsConflict(err))
}

func strPtr(s string) *string { return &s }
