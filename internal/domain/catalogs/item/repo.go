package item

import (
	"context"

	"taller/internal/core/id"
)

// Repository defines storage operations for the item catalog.
type Repository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, itemID id.ID) (*Item, error)
	GetByCode(ctx context.Context, code string) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, itemID id.ID) error
	List(ctx context.Context, limit, offset int) ([]Item, error)

	// CountMovements reports ledger rows (entries plus outputs) referencing
	// the item. Items with movement history are never hard-deleted.
	CountMovements(ctx context.Context, itemID id.ID) (int64, error)
}

// AdditionRepository defines storage operations for additions.
type AdditionRepository interface {
	CreateAddition(ctx context.Context, addition *Addition) error
	GetAddition(ctx context.Context, additionID id.ID) (*Addition, error)
	UpdateAddition(ctx context.Context, addition *Addition) error
	DeleteAddition(ctx context.Context, additionID id.ID) error
	ListAdditions(ctx context.Context, limit, offset int) ([]Addition, error)

	// CountAdditionUses reports quotation lines referencing the addition.
	CountAdditionUses(ctx context.Context, additionID id.ID) (int64, error)
}
