package inventory

import (
	"context"
	"fmt"

	"taller/internal/core/apperror"
	appctx "taller/internal/core/context"
	"taller/internal/core/id"
	"taller/internal/core/tx"
	"taller/internal/core/types"
	"taller/pkg/logger"
)

// Service provides business operations for the stock ledger.
type Service struct {
	repo Repository
	txm  tx.Manager
}

// NewService creates a new stock ledger service.
func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{
		repo: repo,
		txm:  txm,
	}
}

// ComputeStock returns the derived quantity on hand for an (item, location)
// pair: sum of the item's entries minus sum of the location's outputs.
// It reports the true derived value without clamping.
func (s *Service) ComputeStock(ctx context.Context, itemID id.ID, location Location) (types.Quantity, error) {
	if !location.IsValid() {
		return 0, apperror.NewValidation("unknown location").WithDetail("value", string(location))
	}

	entries, err := s.repo.SumEntries(ctx, itemID)
	if err != nil {
		return 0, fmt.Errorf("sum entries: %w", err)
	}
	outputs, err := s.repo.SumOutputs(ctx, itemID, location)
	if err != nil {
		return 0, fmt.Errorf("sum outputs: %w", err)
	}

	return entries - outputs, nil
}

// RecordEntry appends a replenishment event and refreshes the cached stock.
func (s *Service) RecordEntry(ctx context.Context, itemID id.ID, supplierID *id.ID, quantity types.Quantity) (*Entry, error) {
	entry := NewEntry(itemID, supplierID, quantity, appctx.GetUserID(ctx))
	if err := entry.Validate(ctx); err != nil {
		return nil, err
	}

	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.CreateEntry(ctx, entry); err != nil {
			return fmt.Errorf("create entry: %w", err)
		}
		if err := s.repo.SyncItemStock(ctx, itemID); err != nil {
			return fmt.Errorf("sync stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "inventory entry recorded",
		"entry_id", entry.ID,
		"item_id", itemID,
		"quantity", quantity,
	)
	return entry, nil
}

// DeleteEntry removes a replenishment event. Blocked with a conflict when
// the remaining pool could no longer cover withdrawals already recorded at
// some location.
func (s *Service) DeleteEntry(ctx context.Context, entryID id.ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		entry, err := s.repo.GetEntry(ctx, entryID)
		if err != nil {
			return err
		}

		if err := s.repo.LockItem(ctx, entry.ItemID); err != nil {
			return fmt.Errorf("lock item: %w", err)
		}

		pool, err := s.repo.SumEntries(ctx, entry.ItemID)
		if err != nil {
			return fmt.Errorf("sum entries: %w", err)
		}
		maxOut, err := s.repo.MaxOutputsByLocation(ctx, entry.ItemID)
		if err != nil {
			return fmt.Errorf("max outputs: %w", err)
		}
		if pool-entry.Quantity < maxOut {
			return apperror.NewConflict("entry is backing recorded outputs").
				WithDetail("entry_id", entryID).
				WithDetail("item_id", entry.ItemID)
		}

		if err := s.repo.DeleteEntry(ctx, entryID); err != nil {
			return fmt.Errorf("delete entry: %w", err)
		}
		return s.repo.SyncItemStock(ctx, entry.ItemID)
	})
}

// RecordOutput appends a withdrawal event after validating it against
// current stock.
//
// The availability check runs twice: once before the transaction on an
// unguarded read, and again inside the transaction under the item row lock
// immediately before the insert. Two concurrent outputs that each pass the
// first check cannot both pass the second; the loser's transaction aborts
// with the same insufficient-stock rejection, never a silent retry.
func (s *Service) RecordOutput(ctx context.Context, itemID id.ID, orderItemID *id.ID, location Location, quantity types.Quantity, reason string) (*Output, error) {
	output := NewOutput(itemID, orderItemID, location, quantity, reason, appctx.GetUserID(ctx))
	if err := output.Validate(ctx); err != nil {
		return nil, err
	}

	stock, err := s.ComputeStock(ctx, itemID, location)
	if err != nil {
		return nil, err
	}
	if quantity > stock {
		return nil, apperror.NewInsufficientStock(itemID.String(), string(location), quantity.Float64(), stock.Float64())
	}

	err = s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.LockItem(ctx, itemID); err != nil {
			return fmt.Errorf("lock item: %w", err)
		}

		// Re-check under the lock: the first check raced other writers.
		stock, err := s.ComputeStock(ctx, itemID, location)
		if err != nil {
			return err
		}
		if quantity > stock {
			return apperror.NewInsufficientStock(itemID.String(), string(location), quantity.Float64(), stock.Float64())
		}

		if err := s.repo.CreateOutput(ctx, output); err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		return s.repo.SyncItemStock(ctx, itemID)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "inventory output recorded",
		"output_id", output.ID,
		"item_id", itemID,
		"location", location,
		"quantity", quantity,
	)
	return output, nil
}

// EditOutput revises a withdrawal event with the same stock re-validation
// as RecordOutput. When the (item, location) pair is unchanged the row's
// own pre-edit quantity is credited back to the available stock, so a
// no-op edit never self-rejects. When the pair changes no credit applies.
func (s *Service) EditOutput(ctx context.Context, outputID id.ID, itemID id.ID, location Location, quantity types.Quantity, reason string) (*Output, error) {
	var updated *Output
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		output, err := s.repo.GetOutput(ctx, outputID)
		if err != nil {
			return err
		}

		next := *output
		next.ItemID = itemID
		next.Location = location
		next.Quantity = quantity
		next.Reason = reason
		if err := next.Validate(ctx); err != nil {
			return err
		}

		if err := s.lockItems(ctx, output.ItemID, itemID); err != nil {
			return err
		}

		available, err := s.ComputeStock(ctx, itemID, location)
		if err != nil {
			return err
		}
		if itemID == output.ItemID && location == output.Location {
			available += output.Quantity
		}
		if quantity > available {
			return apperror.NewInsufficientStock(itemID.String(), string(location), quantity.Float64(), available.Float64())
		}

		if err := s.repo.UpdateOutput(ctx, &next); err != nil {
			return fmt.Errorf("update output: %w", err)
		}

		if err := s.repo.SyncItemStock(ctx, itemID); err != nil {
			return fmt.Errorf("sync stock: %w", err)
		}
		if output.ItemID != itemID {
			if err := s.repo.SyncItemStock(ctx, output.ItemID); err != nil {
				return fmt.Errorf("sync previous item stock: %w", err)
			}
		}

		updated = &next
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "inventory output updated",
		"output_id", outputID,
		"item_id", itemID,
		"location", location,
		"quantity", quantity,
	)
	return updated, nil
}

// DeleteOutput removes a withdrawal event. Deletion only increases
// available stock, so no check is needed; the cached stock is resynced
// after the delete.
func (s *Service) DeleteOutput(ctx context.Context, outputID id.ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		output, err := s.repo.GetOutput(ctx, outputID)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteOutput(ctx, outputID); err != nil {
			return fmt.Errorf("delete output: %w", err)
		}
		return s.repo.SyncItemStock(ctx, output.ItemID)
	})
}

// GetOutput retrieves a withdrawal event.
func (s *Service) GetOutput(ctx context.Context, outputID id.ID) (*Output, error) {
	return s.repo.GetOutput(ctx, outputID)
}

// ListEntries retrieves replenishment events for an item.
func (s *Service) ListEntries(ctx context.Context, itemID id.ID, limit, offset int) ([]Entry, error) {
	return s.repo.ListEntries(ctx, itemID, limit, offset)
}

// ListOutputs retrieves withdrawal events for an item, optionally filtered
// by location (empty location means all).
func (s *Service) ListOutputs(ctx context.Context, itemID id.ID, location Location, limit, offset int) ([]Output, error) {
	if location != "" && !location.IsValid() {
		return nil, apperror.NewValidation("unknown location").WithDetail("value", string(location))
	}
	return s.repo.ListOutputs(ctx, itemID, location, limit, offset)
}

// Levels derives per-location quantity on hand for an item.
func (s *Service) Levels(ctx context.Context, itemID id.ID) ([]StockLevel, error) {
	return s.repo.LevelsByItem(ctx, itemID)
}

// LowStock lists items whose pooled stock fell below their minimum threshold.
func (s *Service) LowStock(ctx context.Context) ([]LowStockItem, error) {
	return s.repo.FindBelowMinimum(ctx)
}

// lockItems locks one or two item rows in a stable order so that two
// concurrent edits touching the same pair cannot deadlock.
func (s *Service) lockItems(ctx context.Context, a, b id.ID) error {
	if a == b {
		if err := s.repo.LockItem(ctx, a); err != nil {
			return fmt.Errorf("lock item: %w", err)
		}
		return nil
	}
	first, second := a, b
	if second.String() < first.String() {
		first, second = second, first
	}
	if err := s.repo.LockItem(ctx, first); err != nil {
		return fmt.Errorf("lock item: %w", err)
	}
	if err := s.repo.LockItem(ctx, second); err != nil {
		return fmt.Errorf("lock item: %w", err)
	}
	return nil
}
