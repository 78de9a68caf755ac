// Package orders provides production orders, their payments, the
// pre-invoice (prefactura) that mirrors them, and the payment
// reconciliation engine that keeps both lifecycle statuses consistent.
package orders

import (
	"taller/internal/core/types"
)

// OrderStatus is the order lifecycle stage, ordered by production readiness.
// PENDING, INITIAL_APPROVAL and PRODUCTION are derived from payment
// progress; the rest are reachable only through manual staff transitions.
type OrderStatus string

const (
	OrderPending         OrderStatus = "PENDING"
	OrderInitialApproval OrderStatus = "INITIAL_APPROVAL"
	OrderProduction      OrderStatus = "PRODUCTION"
	OrderReady           OrderStatus = "READY"
	OrderDelivered       OrderStatus = "DELIVERED"
	OrderCancelled       OrderStatus = "CANCELLED"
)

// IsValid reports whether the status belongs to the enumerated set.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderInitialApproval, OrderProduction, OrderReady, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// manualTargets are the statuses staff may set directly. Everything else
// is owned by the reconciliation engine.
var manualTargets = map[OrderStatus]bool{
	OrderReady:     true,
	OrderDelivered: true,
	OrderCancelled: true,
}

// CanAdvanceTo reports whether a manual transition to target is allowed
// from the current status.
func (s OrderStatus) CanAdvanceTo(target OrderStatus) bool {
	if !manualTargets[target] {
		return false
	}
	switch target {
	case OrderReady:
		return s == OrderProduction
	case OrderDelivered:
		return s == OrderReady
	case OrderCancelled:
		return s != OrderDelivered && s != OrderCancelled
	}
	return false
}

// PrefacturaStatus tracks the pre-invoice through approval, accounting and
// scheduling. Coarser than the order status; mirrors it via DeriveStatus.
type PrefacturaStatus string

const (
	PrefacturaPendingAccounting PrefacturaStatus = "PENDING_ACCOUNTING"
	PrefacturaInitialApproval   PrefacturaStatus = "INITIAL_APPROVAL"
	PrefacturaScheduling        PrefacturaStatus = "SCHEDULING"
	PrefacturaInvoiced          PrefacturaStatus = "INVOICED"
)

// IsValid reports whether the status belongs to the enumerated set.
func (s PrefacturaStatus) IsValid() bool {
	switch s {
	case PrefacturaPendingAccounting, PrefacturaInitialApproval, PrefacturaScheduling, PrefacturaInvoiced:
		return true
	}
	return false
}

// PaymentStatus is the state of a single payment. VOIDED payments are
// excluded from every aggregate but stay in history forever.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentVoided  PaymentStatus = "VOIDED"
)

// IsValid reports whether the status belongs to the enumerated set.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentPending, PaymentPartial, PaymentPaid, PaymentVoided:
		return true
	}
	return false
}

// PaymentMethod is how a payment was made.
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "CASH"
	MethodTransfer PaymentMethod = "TRANSFER"
	MethodCard     PaymentMethod = "CARD"
	MethodCheck    PaymentMethod = "CHECK"
)

// IsValid reports whether the method belongs to the enumerated set.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case MethodCash, MethodTransfer, MethodCard, MethodCheck:
		return true
	}
	return false
}

// PaidPercent returns paid/total*100, or zero when the total is not positive.
func PaidPercent(total, paid types.Money) types.Money {
	if !total.IsPositive() {
		return types.Zero()
	}
	return paid.Div(total).Mul(types.Hundred)
}

// DeriveStatus maps payment progress to the order and prefactura statuses.
// It is a total, deterministic function of the paid percentage:
//
//	paid% >= 50        -> PRODUCTION / SCHEDULING
//	0 < paid% < 50     -> INITIAL_APPROVAL / INITIAL_APPROVAL
//	paid% == 0 (or total <= 0) -> PENDING / PENDING_ACCOUNTING
//
// The reconciliation engine calls this inside the payment transaction; the
// stored status columns are projections of it, never hand-edited.
func DeriveStatus(total, paid types.Money) (OrderStatus, PrefacturaStatus) {
	percent := PaidPercent(total, paid)

	switch {
	case percent.GreaterThanOrEqual(types.NewMoney(50)):
		return OrderProduction, PrefacturaScheduling
	case percent.IsPositive():
		return OrderInitialApproval, PrefacturaInitialApproval
	default:
		return OrderPending, PrefacturaPendingAccounting
	}
}
