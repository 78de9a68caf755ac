package orders

import (
	"context"

	"taller/internal/core/id"
	"taller/internal/core/types"
)

// OrderRepository defines storage operations for orders.
type OrderRepository interface {
	Create(ctx context.Context, order *Order) error
	GetByID(ctx context.Context, orderID id.ID) (*Order, error)

	// GetForUpdate returns the order with a row lock so that concurrent
	// payment mutations against one order serialize their reconciliation.
	// Must be called inside a transaction.
	GetForUpdate(ctx context.Context, orderID id.ID) (*Order, error)

	UpdateStatus(ctx context.Context, orderID id.ID, status OrderStatus) error
	List(ctx context.Context, limit, offset int) ([]Order, error)

	// CountFinancialReferences reports payments and history rows attached
	// to the order. Orders with financial history are never hard-deleted.
	CountFinancialReferences(ctx context.Context, orderID id.ID) (int64, error)
}

// PaymentRepository defines storage operations for order payments.
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) error
	GetByID(ctx context.Context, paymentID id.ID) (*Payment, error)
	Update(ctx context.Context, payment *Payment) error
	Delete(ctx context.Context, paymentID id.ID) error
	ListByOrder(ctx context.Context, orderID id.ID) ([]Payment, error)

	// SumActive totals all non-VOIDED payment amounts for an order.
	SumActive(ctx context.Context, orderID id.ID) (types.Money, error)
}

// PrefacturaRepository defines storage operations for pre-invoices.
type PrefacturaRepository interface {
	Create(ctx context.Context, prefactura *Prefactura) error
	GetByOrder(ctx context.Context, orderID id.ID) (*Prefactura, error)
	UpdateStatus(ctx context.Context, prefacturaID id.ID, status PrefacturaStatus) error
}

// HistoryRepository defines storage operations for the status audit log.
type HistoryRepository interface {
	Append(ctx context.Context, row *StatusHistory) error
	ListByOrder(ctx context.Context, orderID id.ID) ([]StatusHistory, error)
}
