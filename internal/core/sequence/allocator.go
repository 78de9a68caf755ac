package sequence

import (
	"context"
)

// Allocator derives the next code in a per-prefix sequence.
// This is the domain contract; the postgres implementation scans the
// maximum existing suffix for the prefix.
//
// Allocation is intentionally not re-validated inside the insert
// transaction the way stock is: two concurrent allocations under one
// prefix may mint the same code, and the unique index on the code column
// resolves the race. Callers treat the resulting duplicate error as a
// retryable conflict and re-run the whole allocate-and-insert operation.
type Allocator interface {
	// NextCode returns the next free code for the sequence, or a
	// capacity-exhausted error when the suffix range is full.
	NextCode(ctx context.Context, cfg Config) (string, error)
}
