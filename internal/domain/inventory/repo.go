package inventory

import (
	"context"

	"taller/internal/core/id"
	"taller/internal/core/types"
)

// Repository defines storage operations for the stock ledger.
// Aggregation methods read through the active transaction when one is in
// the context, which is what makes the in-transaction stock re-check see
// the latest committed state.
type Repository interface {
	// Entry operations

	CreateEntry(ctx context.Context, entry *Entry) error
	GetEntry(ctx context.Context, entryID id.ID) (*Entry, error)
	DeleteEntry(ctx context.Context, entryID id.ID) error
	ListEntries(ctx context.Context, itemID id.ID, limit, offset int) ([]Entry, error)

	// SumEntries totals all replenishments for an item (location-agnostic pool).
	SumEntries(ctx context.Context, itemID id.ID) (types.Quantity, error)

	// Output operations

	CreateOutput(ctx context.Context, output *Output) error
	GetOutput(ctx context.Context, outputID id.ID) (*Output, error)
	UpdateOutput(ctx context.Context, output *Output) error
	DeleteOutput(ctx context.Context, outputID id.ID) error
	ListOutputs(ctx context.Context, itemID id.ID, location Location, limit, offset int) ([]Output, error)

	// SumOutputs totals withdrawals for an (item, location) pair.
	SumOutputs(ctx context.Context, itemID id.ID, location Location) (types.Quantity, error)

	// MaxOutputsByLocation returns the largest per-location withdrawal total
	// for an item. Used to check whether an entry delete would drive any
	// location negative.
	MaxOutputsByLocation(ctx context.Context, itemID id.ID) (types.Quantity, error)

	// Locking and sync

	// LockItem takes a row lock on the item so that concurrent
	// check-then-write pairs for its stock cannot interleave.
	// Must be called inside a transaction.
	LockItem(ctx context.Context, itemID id.ID) error

	// SyncItemStock recomputes the cached pooled-stock column on the item
	// from the ledger. The column is for reporting only.
	SyncItemStock(ctx context.Context, itemID id.ID) error

	// Reporting

	// LevelsByItem derives quantity on hand per location for an item.
	LevelsByItem(ctx context.Context, itemID id.ID) ([]StockLevel, error)

	// FindBelowMinimum lists items whose pooled stock is below their
	// minimum threshold.
	FindBelowMinimum(ctx context.Context) ([]LowStockItem, error)
}
