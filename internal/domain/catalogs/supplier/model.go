// Package supplier provides the supplier catalog. Suppliers are referenced
// by inventory entries to record where material came from.
package supplier

import (
	"context"

	"taller/internal/core/entity"
)

// Supplier represents a material vendor.
type Supplier struct {
	entity.BaseCatalog

	ContactName *string `db:"contact_name" json:"contactName,omitempty"`
	Phone       *string `db:"phone" json:"phone,omitempty"`
	Email       *string `db:"email" json:"email,omitempty"`
	Notes       *string `db:"notes" json:"notes,omitempty"`
}

func NewSupplier(code, name string) *Supplier {
	return &Supplier{BaseCatalog: entity.NewBaseCatalog(code, name)}
}

// Validate implements entity.Validatable.
func (s *Supplier) Validate(ctx context.Context) error {
	return s.BaseCatalog.Validate(ctx)
}
