package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/core/types"
)

type txStub struct{}

func (txStub) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type mockOrderRepo struct {
	orders map[id.ID]*Order
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[id.ID]*Order)}
}

func (m *mockOrderRepo) Create(_ context.Context, order *Order) error {
	m.orders[order.ID] = order
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, orderID id.ID) (*Order, error) {
	order, ok := m.orders[orderID]
	if !ok {
		return nil, apperror.NewNotFound("order", orderID)
	}
	cp := *order
	return &cp, nil
}

func (m *mockOrderRepo) GetForUpdate(ctx context.Context, orderID id.ID) (*Order, error) {
	return m.GetByID(ctx, orderID)
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, orderID id.ID, status OrderStatus) error {
	order, ok := m.orders[orderID]
	if !ok {
		return apperror.NewNotFound("order", orderID)
	}
	order.Status = status
	return nil
}

func (m *mockOrderRepo) List(_ context.Context, _, _ int) ([]Order, error) {
	out := make([]Order, 0, len(m.orders))
	for _, o := range m.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderRepo) CountFinancialReferences(_ context.Context, _ id.ID) (int64, error) {
	return 0, nil
}

type mockPaymentRepo struct {
	payments map[id.ID]*Payment
}

func newMockPaymentRepo() *mockPaymentRepo {
	return &mockPaymentRepo{payments: make(map[id.ID]*Payment)}
}

func (m *mockPaymentRepo) Create(_ context.Context, p *Payment) error {
	m.payments[p.ID] = p
	return nil
}

func (m *mockPaymentRepo) GetByID(_ context.Context, paymentID id.ID) (*Payment, error) {
	p, ok := m.payments[paymentID]
	if !ok {
		return nil, apperror.NewNotFound("payment", paymentID)
	}
	cp := *p
	return &cp, nil
}

func (m *mockPaymentRepo) Update(_ context.Context, p *Payment) error {
	if _, ok := m.payments[p.ID]; !ok {
		return apperror.NewNotFound("payment", p.ID)
	}
	cp := *p
	m.payments[p.ID] = &cp
	return nil
}

func (m *mockPaymentRepo) Delete(_ context.Context, paymentID id.ID) error {
	delete(m.payments, paymentID)
	return nil
}

func (m *mockPaymentRepo) ListByOrder(_ context.Context, orderID id.ID) ([]Payment, error) {
	var out []Payment
	for _, p := range m.payments {
		if p.OrderID == orderID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPaymentRepo) SumActive(_ context.Context, orderID id.ID) (types.Money, error) {
	sum := types.Zero()
	for _, p := range m.payments {
		if p.OrderID == orderID && p.Status != PaymentVoided {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

type mockPrefacturaRepo struct {
	rows map[id.ID]*Prefactura
}

func newMockPrefacturaRepo() *mockPrefacturaRepo {
	return &mockPrefacturaRepo{rows: make(map[id.ID]*Prefactura)}
}

func (m *mockPrefacturaRepo) Create(_ context.Context, pf *Prefactura) error {
	m.rows[pf.ID] = pf
	return nil
}

func (m *mockPrefacturaRepo) GetByOrder(_ context.Context, orderID id.ID) (*Prefactura, error) {
	for _, pf := range m.rows {
		if pf.OrderID == orderID {
			cp := *pf
			return &cp, nil
		}
	}
	return nil, apperror.NewNotFound("prefactura", orderID)
}

func (m *mockPrefacturaRepo) UpdateStatus(_ context.Context, prefacturaID id.ID, status PrefacturaStatus) error {
	pf, ok := m.rows[prefacturaID]
	if !ok {
		return apperror.NewNotFound("prefactura", prefacturaID)
	}
	pf.Status = status
	return nil
}

type mockHistoryRepo struct {
	rows []StatusHistory
}

func (m *mockHistoryRepo) Append(_ context.Context, row *StatusHistory) error {
	m.rows = append(m.rows, *row)
	return nil
}

func (m *mockHistoryRepo) ListByOrder(_ context.Context, orderID id.ID) ([]StatusHistory, error) {
	var out []StatusHistory
	for _, r := range m.rows {
		if r.OrderID == orderID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fixture struct {
	svc         *Service
	orders      *mockOrderRepo
	payments    *mockPaymentRepo
	prefacturas *mockPrefacturaRepo
	history     *mockHistoryRepo
}

func newFixture() *fixture {
	f := &fixture{
		orders:      newMockOrderRepo(),
		payments:    newMockPaymentRepo(),
		prefacturas: newMockPrefacturaRepo(),
		history:     &mockHistoryRepo{},
	}
	f.svc = NewService(f.orders, f.payments, f.prefacturas, f.history, txStub{})
	return f
}

func (f *fixture) createOrder(t *testing.T, total float64) *Order {
	t.Helper()
	order := NewOrder(id.New(), nil, TypeProduction, "MXN", types.NewMoney(total))
	require.NoError(t, f.svc.CreateOrder(context.Background(), order))
	return order
}

func TestCreateOrderCreatesPrefactura(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 1000)

	pf, err := f.prefacturas.GetByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, PrefacturaPendingAccounting, pf.Status)
	assert.True(t, pf.Total.Equal(order.Total))
	assert.Equal(t, OrderPending, order.Status)
}

func TestCreatePaymentBelowHalf(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 1000)

	res, err := f.svc.CreatePayment(context.Background(),
		NewPayment(order.ID, types.NewMoney(499), MethodTransfer, nil, "tester"))
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, OrderInitialApproval, res.OrderStatus)
	assert.Equal(t, PrefacturaInitialApproval, res.PrefacturaStatus)
	assert.True(t, res.Changed)
	assert.Len(t, f.history.rows, 1)
	assert.Equal(t, OrderPending, f.history.rows[0].FromStatus)
	assert.Equal(t, OrderInitialApproval, f.history.rows[0].ToStatus)
}

func TestCreatePaymentHalfReachesProduction(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 1000)

	res, err := f.svc.CreatePayment(context.Background(),
		NewPayment(order.ID, types.NewMoney(500), MethodCash, nil, "tester"))
	require.NoError(t, err)

	assert.Equal(t, OrderProduction, res.OrderStatus)
	assert.Equal(t, PrefacturaScheduling, res.PrefacturaStatus)

	stored, err := f.orders.GetByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderProduction, stored.Status)

	pf, err := f.prefacturas.GetByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, PrefacturaScheduling, pf.Status)
}

func TestCreatePaymentUnknownOrder(t *testing.T) {
	f := newFixture()

	_, err := f.svc.CreatePayment(context.Background(),
		NewPayment(id.New(), types.NewMoney(100), MethodCash, nil, "tester"))
	assert.True(t, apperror.IsNotFound(err))
}

func TestCreatePaymentValidation(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 1000)

	p := NewPayment(order.ID, types.NewMoney(-5), MethodCash, nil, "tester")
	_, err := f.svc.CreatePayment(context.Background(), p)
	require.Error(t, err)

	p = NewPayment(order.ID, types.NewMoney(100), PaymentMethod("BARTER"), nil, "tester")
	_, err = f.svc.CreatePayment(context.Background(), p)
	require.Error(t, err)
}

func TestReconcileIdempotent(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 1000)

	_, err := f.svc.CreatePayment(context.Background(),
		NewPayment(order.ID, types.NewMoney(600), MethodCard, nil, "tester"))
	require.NoError(t, err)
	require.Len(t, f.history.rows, 1)

	// Re-running with no payment change must not append another row.
	res, err := f.svc.Reconcile(context.Background(), order.ID)
	require.NoError(t, err)
	assert.False(t, res.Changed)
	assert.Equal(t, OrderProduction, res.OrderStatus)
	assert.Len(t, f.history.rows, 1)
}

func TestVoidPaymentRevertsStatus(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 1000)

	payment := NewPayment(order.ID, types.NewMoney(600), MethodTransfer, nil, "tester")
	_, err := f.svc.CreatePayment(context.Background(), payment)
	require.NoError(t, err)

	res, err := f.svc.VoidPayment(context.Background(), payment.ID)
	require.NoError(t, err)

	assert.Equal(t, OrderPending, res.OrderStatus)
	assert.Equal(t, PrefacturaPendingAccounting, res.PrefacturaStatus)
	assert.Len(t, f.history.rows, 2)

	sum, err := f.payments.SumActive(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestVoidAlreadyVoided(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 1000)

	payment := NewPayment(order.ID, types.NewMoney(600), MethodTransfer, nil, "tester")
	_, err := f.svc.CreatePayment(context.Background(), payment)
	require.NoError(t, err)

	_, err = f.svc.VoidPayment(context.Background(), payment.ID)
	require.NoError(t, err)
	before := len(f.history.rows)

	res, err := f.svc.VoidPayment(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Len(t, f.history.rows, before)
}

func TestUpdateVoidedPaymentRejected(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 1000)

	payment := NewPayment(order.ID, types.NewMoney(600), MethodTransfer, nil, "tester")
	_, err := f.svc.CreatePayment(context.Background(), payment)
	require.NoError(t, err)
	_, err = f.svc.VoidPayment(context.Background(), payment.ID)
	require.NoError(t, err)

	payment.Amount = types.NewMoney(700)
	_, err = f.svc.UpdatePayment(context.Background(), payment)
	assert.True(t, apperror.IsConflict(err))
}

func TestDeleteVoidedPaymentRejected(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 1000)

	payment := NewPayment(order.ID, types.NewMoney(600), MethodTransfer, nil, "tester")
	_, err := f.svc.CreatePayment(context.Background(), payment)
	require.NoError(t, err)
	_, err = f.svc.VoidPayment(context.Background(), payment.ID)
	require.NoError(t, err)

	_, err = f.svc.DeletePayment(context.Background(), payment.ID)
	assert.True(t, apperror.IsConflict(err))
}

func TestDeletePaymentReconciles(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 1000)

	payment := NewPayment(order.ID, types.NewMoney(800), MethodCash, nil, "tester")
	_, err := f.svc.CreatePayment(context.Background(), payment)
	require.NoError(t, err)

	res, err := f.svc.DeletePayment(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderPending, res.OrderStatus)

	_, err = f.payments.GetByID(context.Background(), payment.ID)
	assert.True(t, apperror.IsNotFound(err))
}

func TestUpdatePaymentCrossesBoundary(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 1000)

	payment := NewPayment(order.ID, types.NewMoney(300), MethodCard, nil, "tester")
	res, err := f.svc.CreatePayment(context.Background(), payment)
	require.NoError(t, err)
	require.Equal(t, OrderInitialApproval, res.OrderStatus)

	payment.Amount = types.NewMoney(500)
	res, err = f.svc.UpdatePayment(context.Background(), payment)
	require.NoError(t, err)
	assert.Equal(t, OrderProduction, res.OrderStatus)
	assert.Len(t, f.history.rows, 2)
}

func TestReconcileMissingOrderIsNoop(t *testing.T) {
	f := newFixture()

	res, err := f.svc.Reconcile(context.Background(), id.New())
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, f.history.rows)
}

func TestReconcileLeavesManualStages(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 1000)

	_, err := f.svc.CreatePayment(context.Background(),
		NewPayment(order.ID, types.NewMoney(1000), MethodTransfer, nil, "tester"))
	require.NoError(t, err)
	require.NoError(t, f.svc.AdvanceStatus(context.Background(), order.ID, OrderReady))

	// A late payment mutation must not pull the order back into the
	// payment-driven band.
	res, err := f.svc.Reconcile(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, OrderReady, res.OrderStatus)
	assert.False(t, res.Changed)
}

func TestReconcileKeepsInvoicedPrefactura(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 1000)

	pf, err := f.prefacturas.GetByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	require.NoError(t, f.prefacturas.UpdateStatus(context.Background(), pf.ID, PrefacturaInvoiced))

	res, err := f.svc.Reconcile(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, PrefacturaInvoiced, res.PrefacturaStatus)

	pf, err = f.prefacturas.GetByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, PrefacturaInvoiced, pf.Status)
}

func TestMarkPrefacturaInvoiced(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 1000)

	require.NoError(t, f.svc.MarkPrefacturaInvoiced(context.Background(), order.ID))

	pf, err := f.prefacturas.GetByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, PrefacturaInvoiced, pf.Status)

	// Payments after invoicing still reconcile the order but leave the
	// prefactura closed.
	_, err = f.svc.CreatePayment(context.Background(),
		NewPayment(order.ID, types.NewMoney(600), MethodTransfer, nil, "tester"))
	require.NoError(t, err)

	pf, err = f.prefacturas.GetByOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, PrefacturaInvoiced, pf.Status)

	// Invoicing twice is a no-op.
	require.NoError(t, f.svc.MarkPrefacturaInvoiced(context.Background(), order.ID))
}

func TestAdvanceStatus(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 1000)

	_, err := f.svc.CreatePayment(context.Background(),
		NewPayment(order.ID, types.NewMoney(500), MethodCash, nil, "tester"))
	require.NoError(t, err)

	require.NoError(t, f.svc.AdvanceStatus(context.Background(), order.ID, OrderReady))
	require.NoError(t, f.svc.AdvanceStatus(context.Background(), order.ID, OrderDelivered))

	err = f.svc.AdvanceStatus(context.Background(), order.ID, OrderCancelled)
	assert.True(t, apperror.IsConflict(err))

	history, err := f.svc.OrderHistory(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Len(t, history, 3)
}

func TestAdvanceStatusRejectsReconcilerTargets(t *testing.T) {
	f := newFixture()
	order := f.createOrder(t, 1000)

	err := f.svc.AdvanceStatus(context.Background(), order.ID, OrderProduction)
	assert.True(t, apperror.IsConflict(err))
}
