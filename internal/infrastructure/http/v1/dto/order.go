package dto

import (
	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/core/types"
	"taller/internal/domain/orders"
)

// --- Order DTOs ---

// CreateOrderRequest is the request body for creating an order directly,
// without going through a quotation.
type CreateOrderRequest struct {
	ClientID        string           `json:"clientId" binding:"required,uuid"`
	Type            orders.OrderType `json:"type" binding:"required"`
	Currency        string           `json:"currency" binding:"required"`
	Total           float64          `json:"total" binding:"required,gt=0"`
	DiscountPercent float64          `json:"discountPercent" binding:"omitempty,min=0,max=100"`
	ShippingFee     float64          `json:"shippingFee" binding:"omitempty,min=0"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateOrderRequest) ToEntity() (*orders.Order, error) {
	clientID, err := id.Parse(r.ClientID)
	if err != nil {
		return nil, apperror.NewValidation("invalid client id").WithDetail("value", r.ClientID)
	}

	o := orders.NewOrder(clientID, nil, r.Type, r.Currency, types.NewMoney(r.Total))
	o.DiscountPercent = types.NewMoney(r.DiscountPercent)
	o.ShippingFee = types.NewMoney(r.ShippingFee)
	return o, nil
}

// AdvanceStatusRequest is the request body for a manual stage transition.
type AdvanceStatusRequest struct {
	Status orders.OrderStatus `json:"status" binding:"required"`
}

// --- Payment DTOs ---

// CreatePaymentRequest is the request body for registering a payment.
type CreatePaymentRequest struct {
	Amount   float64              `json:"amount" binding:"required,gt=0"`
	Method   orders.PaymentMethod `json:"method" binding:"required"`
	ProofRef *string              `json:"proofRef"`
}

// ToEntity converts DTO to domain entity.
func (r *CreatePaymentRequest) ToEntity(orderID id.ID, createdBy string) *orders.Payment {
	return orders.NewPayment(orderID, types.NewMoney(r.Amount), r.Method, r.ProofRef, createdBy)
}

// UpdatePaymentRequest is the request body for correcting a payment.
type UpdatePaymentRequest struct {
	Amount   float64              `json:"amount" binding:"required,gt=0"`
	Method   orders.PaymentMethod `json:"method" binding:"required"`
	ProofRef *string              `json:"proofRef"`
}

// --- Reconciliation DTOs ---

// ReconcileResponse reports the derived statuses after a payment change.
type ReconcileResponse struct {
	OrderStatus      orders.OrderStatus      `json:"orderStatus"`
	PrefacturaStatus orders.PrefacturaStatus `json:"prefacturaStatus"`
	Changed          bool                    `json:"changed"`
}

// FromReconcileResult creates response from the engine result.
func FromReconcileResult(r *orders.ReconcileResult) *ReconcileResponse {
	if r == nil {
		return nil
	}
	return &ReconcileResponse{
		OrderStatus:      r.OrderStatus,
		PrefacturaStatus: r.PrefacturaStatus,
		Changed:          r.Changed,
	}
}
