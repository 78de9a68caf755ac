package dto

import (
	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/core/types"
	"taller/internal/domain/quotations"
)

// QuotationLineRequest is one line in a quotation body. Exactly one of
// itemId and additionId must be set.
type QuotationLineRequest struct {
	ItemID      *string `json:"itemId"`
	AdditionID  *string `json:"additionId"`
	Description string  `json:"description"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unitPrice" binding:"omitempty,min=0"`
}

func (r *QuotationLineRequest) toLine() (quotations.Line, error) {
	line := quotations.Line{
		ID:          id.New(),
		Description: r.Description,
		Quantity:    types.NewQuantityFromFloat64(r.Quantity),
		UnitPrice:   types.NewMoney(r.UnitPrice),
	}
	if r.ItemID != nil {
		itemID, err := id.Parse(*r.ItemID)
		if err != nil {
			return line, apperror.NewValidation("invalid item id").WithDetail("value", *r.ItemID)
		}
		line.ItemID = &itemID
	}
	if r.AdditionID != nil {
		additionID, err := id.Parse(*r.AdditionID)
		if err != nil {
			return line, apperror.NewValidation("invalid addition id").WithDetail("value", *r.AdditionID)
		}
		line.AdditionID = &additionID
	}
	return line, nil
}

// CreateQuotationRequest is the request body for creating a quotation.
// The COT code is allocated server-side.
type CreateQuotationRequest struct {
	ClientID        string                 `json:"clientId" binding:"required,uuid"`
	Currency        string                 `json:"currency" binding:"required"`
	DiscountPercent float64                `json:"discountPercent" binding:"omitempty,min=0,max=100"`
	ShippingFee     float64                `json:"shippingFee" binding:"omitempty,min=0"`
	Lines           []QuotationLineRequest `json:"lines" binding:"required,min=1"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateQuotationRequest) ToEntity() (*quotations.Quotation, error) {
	clientID, err := id.Parse(r.ClientID)
	if err != nil {
		return nil, apperror.NewValidation("invalid client id").WithDetail("value", r.ClientID)
	}

	q := quotations.NewQuotation(clientID, r.Currency)
	q.DiscountPercent = types.NewMoney(r.DiscountPercent)
	q.ShippingFee = types.NewMoney(r.ShippingFee)
	q.Lines = make([]quotations.Line, 0, len(r.Lines))
	for _, lr := range r.Lines {
		line, err := lr.toLine()
		if err != nil {
			return nil, err
		}
		q.Lines = append(q.Lines, line)
	}
	return q, nil
}

// UpdateQuotationRequest is the request body for updating a quotation.
// The code and client never change after creation.
type UpdateQuotationRequest struct {
	Currency        string                 `json:"currency" binding:"required"`
	DiscountPercent float64                `json:"discountPercent" binding:"omitempty,min=0,max=100"`
	ShippingFee     float64                `json:"shippingFee" binding:"omitempty,min=0"`
	Lines           []QuotationLineRequest `json:"lines" binding:"required,min=1"`
	Version         int                    `json:"version" binding:"required,min=1"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateQuotationRequest) ApplyTo(q *quotations.Quotation) error {
	q.Currency = r.Currency
	q.DiscountPercent = types.NewMoney(r.DiscountPercent)
	q.ShippingFee = types.NewMoney(r.ShippingFee)
	q.Version = r.Version
	q.Lines = make([]quotations.Line, 0, len(r.Lines))
	for _, lr := range r.Lines {
		line, err := lr.toLine()
		if err != nil {
			return err
		}
		q.Lines = append(q.Lines, line)
	}
	return nil
}
