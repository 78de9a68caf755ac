package dto

import (
	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/domain/inventory"
)

// CreateEntryRequest is the request body for recording a stock entry.
type CreateEntryRequest struct {
	ItemID     string  `json:"itemId" binding:"required,uuid"`
	SupplierID *string `json:"supplierId" binding:"omitempty,uuid"`
	Quantity   float64 `json:"quantity" binding:"required,gt=0"`
}

// ParseIDs resolves the string IDs in the request.
func (r *CreateEntryRequest) ParseIDs() (id.ID, *id.ID, error) {
	itemID, err := id.Parse(r.ItemID)
	if err != nil {
		return id.Nil(), nil, apperror.NewValidation("invalid item id").WithDetail("value", r.ItemID)
	}
	var supplierID *id.ID
	if r.SupplierID != nil {
		parsed, err := id.Parse(*r.SupplierID)
		if err != nil {
			return id.Nil(), nil, apperror.NewValidation("invalid supplier id").WithDetail("value", *r.SupplierID)
		}
		supplierID = &parsed
	}
	return itemID, supplierID, nil
}

// CreateOutputRequest is the request body for recording a stock output.
type CreateOutputRequest struct {
	ItemID      string             `json:"itemId" binding:"required,uuid"`
	OrderItemID *string            `json:"orderItemId" binding:"omitempty,uuid"`
	Location    inventory.Location `json:"location" binding:"required"`
	Quantity    float64            `json:"quantity" binding:"required,gt=0"`
	Reason      string             `json:"reason"`
}

// ParseIDs resolves the string IDs in the request.
func (r *CreateOutputRequest) ParseIDs() (id.ID, *id.ID, error) {
	itemID, err := id.Parse(r.ItemID)
	if err != nil {
		return id.Nil(), nil, apperror.NewValidation("invalid item id").WithDetail("value", r.ItemID)
	}
	var orderItemID *id.ID
	if r.OrderItemID != nil {
		parsed, err := id.Parse(*r.OrderItemID)
		if err != nil {
			return id.Nil(), nil, apperror.NewValidation("invalid order item id").WithDetail("value", *r.OrderItemID)
		}
		orderItemID = &parsed
	}
	return itemID, orderItemID, nil
}

// EditOutputRequest is the request body for correcting an output.
// The item may change; the ledger re-checks availability on both sides.
type EditOutputRequest struct {
	ItemID   string             `json:"itemId" binding:"required,uuid"`
	Location inventory.Location `json:"location" binding:"required"`
	Quantity float64            `json:"quantity" binding:"required,gt=0"`
	Reason   string             `json:"reason"`
}
