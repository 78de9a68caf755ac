// Package inventory provides the stock ledger: append-only entry and output
// events from which quantity on hand is derived.
//
// Entries replenish a single pool per item; outputs draw from that pool per
// workshop location. Stock for an (item, location) pair is always
// sum(entries of item) - sum(outputs of item at location), recomputed from
// the ledger. The cached stock column on items is a sync target, never a
// source of truth.
package inventory

import (
	"context"
	"time"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/core/types"
)

// Location tags an output with the workshop area that drew the stock.
type Location string

const (
	LocationCutting   Location = "cutting"
	LocationSewing    Location = "sewing"
	LocationFinishing Location = "finishing"
	LocationDispatch  Location = "dispatch"
)

// Locations lists all valid locations.
var Locations = []Location{LocationCutting, LocationSewing, LocationFinishing, LocationDispatch}

// IsValid reports whether the location belongs to the fixed set.
func (l Location) IsValid() bool {
	for _, loc := range Locations {
		if l == loc {
			return true
		}
	}
	return false
}

// Entry is an inventory replenishment event. Append-only: entries are never
// updated, and deletion is blocked while recorded outputs depend on them.
type Entry struct {
	ID         id.ID          `db:"id" json:"id"`
	ItemID     id.ID          `db:"item_id" json:"itemId"`
	SupplierID *id.ID         `db:"supplier_id" json:"supplierId,omitempty"`
	Quantity   types.Quantity `db:"quantity" json:"quantity"`
	CreatedAt  time.Time      `db:"created_at" json:"createdAt"`
	CreatedBy  string         `db:"created_by" json:"createdBy,omitempty"`
}

// NewEntry creates a replenishment event.
func NewEntry(itemID id.ID, supplierID *id.ID, quantity types.Quantity, createdBy string) *Entry {
	return &Entry{
		ID:         id.New(),
		ItemID:     itemID,
		SupplierID: supplierID,
		Quantity:   quantity,
		CreatedAt:  time.Now().UTC(),
		CreatedBy:  createdBy,
	}
}

// Validate implements entity.Validatable.
func (e *Entry) Validate(ctx context.Context) error {
	if id.IsNil(e.ItemID) {
		return apperror.NewValidation("item is required").WithDetail("field", "itemId")
	}
	if !e.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	return nil
}

// Output is an inventory withdrawal event, scoped to a location. Revisable:
// edits and deletes re-validate stock and trigger ledger recomputation.
type Output struct {
	ID          id.ID          `db:"id" json:"id"`
	ItemID      id.ID          `db:"item_id" json:"itemId"`
	OrderItemID *id.ID         `db:"order_item_id" json:"orderItemId,omitempty"`
	Location    Location       `db:"location" json:"location"`
	Quantity    types.Quantity `db:"quantity" json:"quantity"`
	Reason      string         `db:"reason" json:"reason"`
	CreatedAt   time.Time      `db:"created_at" json:"createdAt"`
	CreatedBy   string         `db:"created_by" json:"createdBy,omitempty"`
}

// NewOutput creates a withdrawal event.
func NewOutput(itemID id.ID, orderItemID *id.ID, location Location, quantity types.Quantity, reason, createdBy string) *Output {
	return &Output{
		ID:          id.New(),
		ItemID:      itemID,
		OrderItemID: orderItemID,
		Location:    location,
		Quantity:    quantity,
		Reason:      reason,
		CreatedAt:   time.Now().UTC(),
		CreatedBy:   createdBy,
	}
}

// Validate implements entity.Validatable.
func (o *Output) Validate(ctx context.Context) error {
	if id.IsNil(o.ItemID) {
		return apperror.NewValidation("item is required").WithDetail("field", "itemId")
	}
	if !o.Location.IsValid() {
		return apperror.NewValidation("unknown location").
			WithDetail("field", "location").
			WithDetail("value", string(o.Location))
	}
	if !o.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").WithDetail("field", "quantity")
	}
	if o.Reason == "" {
		return apperror.NewValidation("reason is required").WithDetail("field", "reason")
	}
	return nil
}

// StockLevel is a derived per-location quantity on hand.
type StockLevel struct {
	ItemID   id.ID          `db:"item_id" json:"itemId"`
	Location Location       `db:"location" json:"location"`
	Quantity types.Quantity `db:"quantity" json:"quantity"`
}

// LowStockItem reports an item whose pooled stock fell below its minimum.
type LowStockItem struct {
	ItemID   id.ID          `db:"item_id" json:"itemId"`
	Code     string         `db:"code" json:"code"`
	Name     string         `db:"name" json:"name"`
	Stock    types.Quantity `db:"stock" json:"stock"`
	MinStock types.Quantity `db:"min_stock" json:"minStock"`
}
