package quotations

import (
	"context"

	"taller/internal/core/id"
)

// Repository defines storage operations for quotations. Create and Update
// persist the document together with its lines.
type Repository interface {
	Create(ctx context.Context, quotation *Quotation) error
	GetByID(ctx context.Context, quotationID id.ID) (*Quotation, error)

	// GetForUpdate returns the quotation with a row lock so that accept
	// and edit serialize. Must be called inside a transaction.
	GetForUpdate(ctx context.Context, quotationID id.ID) (*Quotation, error)

	Update(ctx context.Context, quotation *Quotation) error
	UpdateStatus(ctx context.Context, quotationID id.ID, status Status) error
	Delete(ctx context.Context, quotationID id.ID) error
	List(ctx context.Context, limit, offset int) ([]Quotation, error)
	ListByClient(ctx context.Context, clientID id.ID, limit, offset int) ([]Quotation, error)
}
