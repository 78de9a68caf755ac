// Package quotations provides quotation documents. A quotation carries
// priced lines for a client; accepting it opens a production order with
// its prefactura.
package quotations

import (
	"context"

	"taller/internal/core/apperror"
	"taller/internal/core/entity"
	"taller/internal/core/id"
	"taller/internal/core/types"
)

// Status is the quotation lifecycle stage.
type Status string

const (
	StatusDraft    Status = "DRAFT"
	StatusSent     Status = "SENT"
	StatusAccepted Status = "ACCEPTED"
	StatusRejected Status = "REJECTED"
)

// IsValid reports whether the status belongs to the enumerated set.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusSent, StatusAccepted, StatusRejected:
		return true
	}
	return false
}

// IsTerminal reports whether the quotation can still change.
func (s Status) IsTerminal() bool {
	return s == StatusAccepted || s == StatusRejected
}

// Line is one priced position on a quotation. Either an item or an
// addition, never both.
type Line struct {
	ID          id.ID          `db:"id" json:"id"`
	QuotationID id.ID          `db:"quotation_id" json:"quotationId"`
	ItemID      *id.ID         `db:"item_id" json:"itemId,omitempty"`
	AdditionID  *id.ID         `db:"addition_id" json:"additionId,omitempty"`
	Description string         `db:"description" json:"description"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	UnitPrice   types.Money    `db:"unit_price" json:"unitPrice"`
}

// Total returns quantity times unit price.
func (l *Line) Total() types.Money {
	return l.UnitPrice.Mul(l.Quantity.Decimal())
}

// Quotation is the priced offer document. Its code comes from the flat COT
// sequence, allocated at write time.
type Quotation struct {
	entity.BaseDocument

	Code     string `db:"code" json:"code"`
	ClientID id.ID  `db:"client_id" json:"clientId"`
	Status   Status `db:"status" json:"status"`
	Currency string `db:"currency" json:"currency"`

	DiscountPercent types.Money `db:"discount_percent" json:"discountPercent"`
	ShippingFee     types.Money `db:"shipping_fee" json:"shippingFee"`

	Lines []Line `db:"-" json:"lines"`
}

// NewQuotation creates a draft quotation without a code.
func NewQuotation(clientID id.ID, currency string) *Quotation {
	return &Quotation{
		BaseDocument: entity.NewBaseDocument(),
		ClientID:     clientID,
		Status:       StatusDraft,
		Currency:     currency,
	}
}

// Subtotal sums the line totals.
func (q *Quotation) Subtotal() types.Money {
	sum := types.Zero()
	for i := range q.Lines {
		sum = sum.Add(q.Lines[i].Total())
	}
	return sum
}

// Total applies the discount and adds the shipping fee to the subtotal.
func (q *Quotation) Total() types.Money {
	subtotal := q.Subtotal()
	discount := subtotal.Mul(q.DiscountPercent).Div(types.Hundred)
	return subtotal.Sub(discount).Add(q.ShippingFee)
}

// Validate implements entity.Validatable.
func (q *Quotation) Validate(ctx context.Context) error {
	if id.IsNil(q.ClientID) {
		return apperror.NewValidation("client is required").
			WithDetail("field", "clientId")
	}
	if !q.Status.IsValid() {
		return apperror.NewValidation("unknown quotation status").
			WithDetail("field", "status").
			WithDetail("value", string(q.Status))
	}
	if q.Currency == "" {
		return apperror.NewValidation("currency is required").
			WithDetail("field", "currency")
	}
	if q.DiscountPercent.IsNegative() || q.DiscountPercent.GreaterThan(types.Hundred) {
		return apperror.NewValidation("discount must be between 0 and 100").
			WithDetail("field", "discountPercent")
	}
	if q.ShippingFee.IsNegative() {
		return apperror.NewValidation("shipping fee cannot be negative").
			WithDetail("field", "shippingFee")
	}
	if len(q.Lines) == 0 {
		return apperror.NewValidation("quotation needs at least one line").
			WithDetail("field", "lines")
	}
	for i := range q.Lines {
		l := &q.Lines[i]
		if (l.ItemID == nil) == (l.AdditionID == nil) {
			return apperror.NewValidation("line must reference exactly one of item or addition").
				WithDetail("line", i)
		}
		if l.Quantity <= 0 {
			return apperror.NewValidation("line quantity must be positive").
				WithDetail("line", i)
		}
		if l.UnitPrice.IsNegative() {
			return apperror.NewValidation("line price cannot be negative").
				WithDetail("line", i)
		}
	}
	return nil
}
