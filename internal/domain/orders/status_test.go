package orders

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taller/internal/core/types"
)

func TestDeriveStatus(t *testing.T) {
	tests := []struct {
		name       string
		total      float64
		paid       float64
		wantOrder  OrderStatus
		wantPf     PrefacturaStatus
	}{
		{"no payments", 1000, 0, OrderPending, PrefacturaPendingAccounting},
		{"just below half", 1000, 499, OrderInitialApproval, PrefacturaInitialApproval},
		{"exactly half", 1000, 500, OrderProduction, PrefacturaScheduling},
		{"above half", 1000, 501, OrderProduction, PrefacturaScheduling},
		{"fully paid", 1000, 1000, OrderProduction, PrefacturaScheduling},
		{"overpaid", 1000, 1500, OrderProduction, PrefacturaScheduling},
		{"tiny payment", 1000, 0.01, OrderInitialApproval, PrefacturaInitialApproval},
		{"zero total", 0, 100, OrderPending, PrefacturaPendingAccounting},
		{"negative total", -10, 100, OrderPending, PrefacturaPendingAccounting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotOrder, gotPf := DeriveStatus(types.NewMoney(tt.total), types.NewMoney(tt.paid))
			assert.Equal(t, tt.wantOrder, gotOrder)
			assert.Equal(t, tt.wantPf, gotPf)
		})
	}
}

func TestPaidPercent(t *testing.T) {
	assert.True(t, PaidPercent(types.NewMoney(200), types.NewMoney(50)).Equal(types.NewMoney(25)))
	assert.True(t, PaidPercent(types.NewMoney(0), types.NewMoney(50)).IsZero())
	assert.True(t, PaidPercent(types.NewMoney(1000), types.Zero()).IsZero())

	// A third paid must not round up across the 50 boundary.
	p := PaidPercent(types.NewMoney(3), types.NewMoney(1))
	assert.True(t, p.LessThan(types.NewMoney(50)))
}

func TestCanAdvanceTo(t *testing.T) {
	tests := []struct {
		from   OrderStatus
		to     OrderStatus
		want   bool
	}{
		{OrderProduction, OrderReady, true},
		{OrderReady, OrderDelivered, true},
		{OrderPending, OrderReady, false},
		{OrderInitialApproval, OrderDelivered, false},
		{OrderPending, OrderCancelled, true},
		{OrderProduction, OrderCancelled, true},
		{OrderReady, OrderCancelled, true},
		{OrderDelivered, OrderCancelled, false},
		{OrderCancelled, OrderCancelled, false},
		// Payment-derived statuses are never manual targets.
		{OrderPending, OrderProduction, false},
		{OrderPending, OrderInitialApproval, false},
		{OrderReady, OrderPending, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanAdvanceTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestOrderStatusIsValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderPending, OrderInitialApproval, OrderProduction, OrderReady, OrderDelivered, OrderCancelled} {
		assert.True(t, s.IsValid())
	}
	assert.False(t, OrderStatus("SHIPPED").IsValid())
	assert.False(t, OrderStatus("").IsValid())
}
