package orders

import (
	"context"
	"time"

	"taller/internal/core/apperror"
	"taller/internal/core/entity"
	"taller/internal/core/id"
	"taller/internal/core/types"
)

// OrderType distinguishes production runs from one-off sample work.
type OrderType string

const (
	TypeProduction OrderType = "production"
	TypeSample     OrderType = "sample"
)

// IsValid reports whether the type belongs to the enumerated set.
func (t OrderType) IsValid() bool {
	return t == TypeProduction || t == TypeSample
}

// Order is a production order. Its Status column is a projection of
// payment progress maintained by the reconciliation engine, plus a small
// set of manual staff transitions.
type Order struct {
	entity.BaseDocument

	ClientID    id.ID       `db:"client_id" json:"clientId"`
	QuotationID *id.ID      `db:"quotation_id" json:"quotationId,omitempty"`
	Type        OrderType   `db:"type" json:"type"`
	Currency    string      `db:"currency" json:"currency"`
	Status      OrderStatus `db:"status" json:"status"`

	Total           types.Money `db:"total" json:"total"`
	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`
	ShippingFee     types.Money `db:"shipping_fee" json:"shippingFee"`
}

// NewOrder creates an order in the PENDING stage.
func NewOrder(clientID id.ID, quotationID *id.ID, orderType OrderType, currency string, total types.Money) *Order {
	return &Order{
		BaseDocument:    entity.NewBaseDocument(),
		ClientID:        clientID,
		QuotationID:     quotationID,
		Type:            orderType,
		Currency:        currency,
		Status:          OrderPending,
		Total:           total,
		DiscountPercent: types.Zero(),
		ShippingFee:     types.Zero(),
	}
}

// Validate implements entity.Validatable.
func (o *Order) Validate(ctx context.Context) error {
	if id.IsNil(o.ClientID) {
		return apperror.NewValidation("client is required").WithDetail("field", "clientId")
	}
	if !o.Type.IsValid() {
		return apperror.NewValidation("unknown order type").
			WithDetail("field", "type").
			WithDetail("value", string(o.Type))
	}
	if o.Currency == "" {
		return apperror.NewValidation("currency is required").WithDetail("field", "currency")
	}
	if o.Total.IsNegative() {
		return apperror.NewValidation("total cannot be negative").WithDetail("field", "total")
	}
	if o.DiscountPercent.IsNegative() || o.DiscountPercent.GreaterThan(types.Hundred) {
		return apperror.NewValidation("discount percent out of range").WithDetail("field", "discountPercent")
	}
	if o.ShippingFee.IsNegative() {
		return apperror.NewValidation("shipping fee cannot be negative").WithDetail("field", "shippingFee")
	}
	return nil
}

// Payment is a single payment against an order.
type Payment struct {
	ID        id.ID         `db:"id" json:"id"`
	OrderID   id.ID         `db:"order_id" json:"orderId"`
	Amount    types.Money   `db:"amount" json:"amount"`
	Method    PaymentMethod `db:"method" json:"method"`
	Status    PaymentStatus `db:"status" json:"status"`
	ProofRef  *string       `db:"proof_ref" json:"proofRef,omitempty"`
	CreatedAt time.Time     `db:"created_at" json:"createdAt"`
	CreatedBy string        `db:"created_by" json:"createdBy,omitempty"`
}

// NewPayment creates a confirmed payment.
func NewPayment(orderID id.ID, amount types.Money, method PaymentMethod, proofRef *string, createdBy string) *Payment {
	return &Payment{
		ID:        id.New(),
		OrderID:   orderID,
		Amount:    amount,
		Method:    method,
		Status:    PaymentPaid,
		ProofRef:  proofRef,
		CreatedAt: time.Now().UTC(),
		CreatedBy: createdBy,
	}
}

// Validate implements entity.Validatable.
func (p *Payment) Validate(ctx context.Context) error {
	if id.IsNil(p.OrderID) {
		return apperror.NewValidation("order is required").WithDetail("field", "orderId")
	}
	if !p.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").WithDetail("field", "amount")
	}
	if !p.Method.IsValid() {
		return apperror.NewValidation("unknown payment method").
			WithDetail("field", "method").
			WithDetail("value", string(p.Method))
	}
	if !p.Status.IsValid() {
		return apperror.NewValidation("unknown payment status").
			WithDetail("field", "status").
			WithDetail("value", string(p.Status))
	}
	return nil
}

// IsVoided reports whether the payment is excluded from aggregates.
func (p *Payment) IsVoided() bool {
	return p.Status == PaymentVoided
}

// Prefactura is the intermediate billing document between a quotation and
// its order. It carries no history log: only current state, rewritten by
// the reconciliation engine on every payment change.
type Prefactura struct {
	ID          id.ID            `db:"id" json:"id"`
	QuotationID *id.ID           `db:"quotation_id" json:"quotationId,omitempty"`
	OrderID     id.ID            `db:"order_id" json:"orderId"`
	Status      PrefacturaStatus `db:"status" json:"status"`
	Subtotal    types.Money      `db:"subtotal" json:"subtotal"`
	Total       types.Money      `db:"total" json:"total"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updatedAt"`
}

// NewPrefactura creates a pre-invoice in the PENDING_ACCOUNTING stage.
func NewPrefactura(orderID id.ID, quotationID *id.ID, subtotal, total types.Money) *Prefactura {
	now := time.Now().UTC()
	return &Prefactura{
		ID:          id.New(),
		QuotationID: quotationID,
		OrderID:     orderID,
		Status:      PrefacturaPendingAccounting,
		Subtotal:    subtotal,
		Total:       total,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// StatusHistory is an append-only audit row, one per order status
// transition. Never mutated.
type StatusHistory struct {
	ID         id.ID       `db:"id" json:"id"`
	OrderID    id.ID       `db:"order_id" json:"orderId"`
	FromStatus OrderStatus `db:"from_status" json:"fromStatus"`
	ToStatus   OrderStatus `db:"to_status" json:"toStatus"`
	ChangedBy  string      `db:"changed_by" json:"changedBy"`
	ChangedAt  time.Time   `db:"changed_at" json:"changedAt"`
}

// NewStatusHistory records one transition.
func NewStatusHistory(orderID id.ID, from, to OrderStatus, changedBy string) *StatusHistory {
	if changedBy == "" {
		changedBy = "system"
	}
	return &StatusHistory{
		ID:         id.New(),
		OrderID:    orderID,
		FromStatus: from,
		ToStatus:   to,
		ChangedBy:  changedBy,
		ChangedAt:  time.Now().UTC(),
	}
}
