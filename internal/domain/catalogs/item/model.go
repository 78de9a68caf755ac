// Package item provides the inventory item catalog and its additions.
// Both are coded entities: their codes come from the sequence allocator,
// a 3-letter prefix derived from the category plus a 2-digit suffix.
package item

import (
	"context"
	"strings"

	"taller/internal/core/apperror"
	"taller/internal/core/entity"
	"taller/internal/core/types"
)

// Unit is the unit of measure for item quantities.
type Unit string

const (
	UnitMeter Unit = "m"
	UnitPiece Unit = "pc"
	UnitKilo  Unit = "kg"
	UnitRoll  Unit = "roll"
)

// IsValid reports whether the unit belongs to the enumerated set.
func (u Unit) IsValid() bool {
	switch u {
	case UnitMeter, UnitPiece, UnitKilo, UnitRoll:
		return true
	}
	return false
}

// Item represents a stocked material or product.
type Item struct {
	entity.BaseCatalog

	// Category drives the code prefix. Changing it re-mints the code.
	Category string `db:"category" json:"category"`

	Unit Unit `db:"unit" json:"unit"`

	// MinimumStock is the low-stock alert threshold, in pooled units.
	MinimumStock types.Quantity `db:"minimum_stock" json:"minimumStock"`

	// Stock is the materialized pooled stock snapshot. Synced from the
	// movement ledger, never written directly.
	Stock types.Quantity `db:"stock" json:"stock"`

	Description *string `db:"description" json:"description,omitempty"`
}

// NewItem creates an item without a code; the service allocates one at
// write time.
func NewItem(name, category string, unit Unit) *Item {
	return &Item{
		BaseCatalog: entity.NewBaseCatalog("", name),
		Category:    category,
		Unit:        unit,
	}
}

// Validate implements entity.Validatable.
func (i *Item) Validate(ctx context.Context) error {
	if err := i.BaseCatalog.Validate(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(i.Category) == "" {
		return apperror.NewValidation("category is required").
			WithDetail("field", "category")
	}
	if !i.Unit.IsValid() {
		return apperror.NewValidation("unknown unit of measure").
			WithDetail("field", "unit").
			WithDetail("value", string(i.Unit))
	}
	if i.MinimumStock < 0 {
		return apperror.NewValidation("minimum stock cannot be negative").
			WithDetail("field", "minimumStock")
	}
	return nil
}

// Addition is an optional extra attached to quoted items (embroidery,
// special finish). Coded like items, from its own category.
type Addition struct {
	entity.BaseCatalog

	Category string      `db:"category" json:"category"`
	Price    types.Money `db:"price" json:"price"`

	Description *string `db:"description" json:"description,omitempty"`
}

// NewAddition creates an addition without a code.
func NewAddition(name, category string, price types.Money) *Addition {
	return &Addition{
		BaseCatalog: entity.NewBaseCatalog("", name),
		Category:    category,
		Price:       price,
	}
}

// Validate implements entity.Validatable.
func (a *Addition) Validate(ctx context.Context) error {
	if err := a.BaseCatalog.Validate(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(a.Category) == "" {
		return apperror.NewValidation("category is required").
			WithDetail("field", "category")
	}
	if a.Price.IsNegative() {
		return apperror.NewValidation("price cannot be negative").
			WithDetail("field", "price")
	}
	return nil
}
