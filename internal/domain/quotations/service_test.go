package quotations

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/core/sequence"
	"taller/internal/core/types"
	"taller/internal/domain/orders"
)

type txStub struct{}

func (txStub) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockRepo struct {
	quotations map[id.ID]*Quotation
}

func newMockRepo() *mockRepo {
	return &mockRepo{quotations: make(map[id.ID]*Quotation)}
}

func (m *mockRepo) Create(_ context.Context, q *Quotation) error {
	for _, existing := range m.quotations {
		if existing.Code == q.Code {
			return apperror.NewDuplicate("quotation", "code", q.Code)
		}
	}
	cp := *q
	m.quotations[q.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, quotationID id.ID) (*Quotation, error) {
	q, ok := m.quotations[quotationID]
	if !ok {
		return nil, apperror.NewNotFound("quotation", quotationID)
	}
	cp := *q
	return &cp, nil
}

func (m *mockRepo) GetForUpdate(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	return m.GetByID(ctx, quotationID)
}

func (m *mockRepo) Update(_ context.Context, q *Quotation) error {
	if _, ok := m.quotations[q.ID]; !ok {
		return apperror.NewNotFound("quotation", q.ID)
	}
	cp := *q
	m.quotations[q.ID] = &cp
	return nil
}

func (m *mockRepo) UpdateStatus(_ context.Context, quotationID id.ID, status Status) error {
	q, ok := m.quotations[quotationID]
	if !ok {
		return apperror.NewNotFound("quotation", quotationID)
	}
	q.Status = status
	return nil
}

func (m *mockRepo) Delete(_ context.Context, quotationID id.ID) error {
	delete(m.quotations, quotationID)
	return nil
}

func (m *mockRepo) List(_ context.Context, _, _ int) ([]Quotation, error) {
	out := make([]Quotation, 0, len(m.quotations))
	for _, q := range m.quotations {
		out = append(out, *q)
	}
	return out, nil
}

func (m *mockRepo) ListByClient(_ context.Context, clientID id.ID, _, _ int) ([]Quotation, error) {
	var out []Quotation
	for _, q := range m.quotations {
		if q.ClientID == clientID {
			out = append(out, *q)
		}
	}
	return out, nil
}

type mockOrderCreator struct {
	created []*orders.Order
	err     error
}

func (m *mockOrderCreator) CreateOrder(_ context.Context, order *orders.Order) error {
	if m.err != nil {
		return m.err
	}
	m.created = append(m.created, order)
	return nil
}

func newTestService() (*Service, *mockRepo, *mockOrderCreator) {
	repo := newMockRepo()
	creator := &mockOrderCreator{}
	svc := NewService(repo, creator, &sequence.MockAllocator{}, txStub{})
	return svc, repo, creator
}

func draftQuotation(clientID id.ID) *Quotation {
	q := NewQuotation(clientID, "MXN")
	itemID := id.New()
	q.Lines = []Line{{
		ID:          id.New(),
		QuotationID: q.ID,
		ItemID:      &itemID,
		Description: "Playera bordada",
		Quantity:    types.NewQuantityFromFloat64(10),
		UnitPrice:   types.NewMoney(120),
	}}
	return q
}

func TestCreateAllocatesCOTCode(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	first := draftQuotation(id.New())
	require.NoError(t, svc.Create(ctx, first))
	assert.Equal(t, "COT10001", first.Code)

	second := draftQuotation(id.New())
	require.NoError(t, svc.Create(ctx, second))
	assert.Equal(t, "COT10002", second.Code)
}

func TestCreateValidation(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	q := NewQuotation(id.New(), "MXN")
	require.Error(t, svc.Create(ctx, q), "no lines")

	q = draftQuotation(id.New())
	q.Lines[0].ItemID = nil
	require.Error(t, svc.Create(ctx, q), "line without reference")

	q = draftQuotation(id.New())
	q.DiscountPercent = types.NewMoney(120)
	require.Error(t, svc.Create(ctx, q), "discount above 100")
}

func TestTotals(t *testing.T) {
	q := draftQuotation(id.New())
	// 10 * 120 = 1200
	assert.True(t, q.Subtotal().Equal(types.NewMoney(1200)))

	q.DiscountPercent = types.NewMoney(10)
	q.ShippingFee = types.NewMoney(50)
	// 1200 - 120 + 50 = 1130
	assert.True(t, q.Total().Equal(types.NewMoney(1130)))
}

func TestAcceptOpensOrder(t *testing.T) {
	svc, repo, creator := newTestService()
	ctx := context.Background()

	q := draftQuotation(id.New())
	require.NoError(t, svc.Create(ctx, q))

	order, err := svc.Accept(ctx, q.ID)
	require.NoError(t, err)
	require.Len(t, creator.created, 1)

	assert.Equal(t, q.ClientID, order.ClientID)
	require.NotNil(t, order.QuotationID)
	assert.Equal(t, q.ID, *order.QuotationID)
	assert.True(t, order.Total.Equal(q.Total()))
	assert.Equal(t, orders.OrderPending, order.Status)

	stored, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, stored.Status)
}

func TestAcceptTwiceRejected(t *testing.T) {
	svc, _, creator := newTestService()
	ctx := context.Background()

	q := draftQuotation(id.New())
	require.NoError(t, svc.Create(ctx, q))

	_, err := svc.Accept(ctx, q.ID)
	require.NoError(t, err)

	_, err = svc.Accept(ctx, q.ID)
	assert.True(t, apperror.IsConflict(err))
	assert.Len(t, creator.created, 1)
}

func TestRejectThenAcceptRejected(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	q := draftQuotation(id.New())
	require.NoError(t, svc.Create(ctx, q))
	require.NoError(t, svc.Reject(ctx, q.ID))

	_, err := svc.Accept(ctx, q.ID)
	assert.True(t, apperror.IsConflict(err))
}

func TestUpdateTerminalRejected(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	q := draftQuotation(id.New())
	require.NoError(t, svc.Create(ctx, q))
	_, err := svc.Accept(ctx, q.ID)
	require.NoError(t, err)

	q.ShippingFee = types.NewMoney(10)
	err = svc.Update(ctx, q)
	assert.True(t, apperror.IsConflict(err))
}

func TestDeleteAcceptedRejected(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	q := draftQuotation(id.New())
	require.NoError(t, svc.Create(ctx, q))
	_, err := svc.Accept(ctx, q.ID)
	require.NoError(t, err)

	err = svc.Delete(ctx, q.ID)
	assert.True(t, apperror.IsConflict(err))

	rejected := draftQuotation(id.New())
	require.NoError(t, svc.Create(ctx, rejected))
	require.NoError(t, svc.Reject(ctx, rejected.ID))
	require.NoError(t, svc.Delete(ctx, rejected.ID))
}

func TestSendTransition(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	q := draftQuotation(id.New())
	require.NoError(t, svc.Create(ctx, q))
	require.NoError(t, svc.Send(ctx, q.ID))

	stored, err := repo.GetByID(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, stored.Status)

	err = svc.Send(ctx, q.ID)
	assert.True(t, apperror.IsConflict(err))
}
