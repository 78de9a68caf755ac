package supplier

import (
	"context"

	"taller/internal/core/id"
)

// Repository defines storage operations for the supplier catalog.
type Repository interface {
	Create(ctx context.Context, supplier *Supplier) error
	GetByID(ctx context.Context, supplierID id.ID) (*Supplier, error)
	Update(ctx context.Context, supplier *Supplier) error
	Delete(ctx context.Context, supplierID id.ID) error
	List(ctx context.Context, limit, offset int) ([]Supplier, error)

	// CountEntries reports inventory entries referencing the supplier.
	CountEntries(ctx context.Context, supplierID id.ID) (int64, error)
}
