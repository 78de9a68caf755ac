package item

import (
	"context"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/core/sequence"
	"taller/internal/core/tx"
	"taller/pkg/logger"
)

// Service provides business logic for items and additions. Codes are minted
// by the sequence allocator inside the same transaction as the insert; a
// lost uniqueness race on the code column retries the whole
// allocate-and-insert once before surfacing the conflict.
type Service struct {
	repo      Repository
	additions AdditionRepository
	alloc     sequence.Allocator
	txm       tx.Manager
}

func NewService(repo Repository, additions AdditionRepository, alloc sequence.Allocator, txm tx.Manager) *Service {
	return &Service{repo: repo, additions: additions, alloc: alloc, txm: txm}
}

// withCodeRetry runs op, and once more when it loses a code uniqueness
// race. The retry re-derives the next code, so the whole operation is
// repeated, not just the insert.
func (s *Service) withCodeRetry(ctx context.Context, op func(ctx context.Context) error) error {
	err := s.txm.RunInTransaction(ctx, op)
	if err == nil || !apperror.IsDuplicate(err) {
		return err
	}
	logger.Warn(ctx, "code allocation race lost, retrying")
	return s.txm.RunInTransaction(ctx, op)
}

func (s *Service) Create(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}
	err := s.withCodeRetry(ctx, func(ctx context.Context) error {
		code, err := s.alloc.NextCode(ctx, sequence.ForItem(it.Category))
		if err != nil {
			return err
		}
		it.Code = code
		return s.repo.Create(ctx, it)
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "item created", "item_id", it.ID.String(), "code", it.Code)
	return nil
}

func (s *Service) Get(ctx context.Context, itemID id.ID) (*Item, error) {
	return s.repo.GetByID(ctx, itemID)
}

func (s *Service) GetByCode(ctx context.Context, code string) (*Item, error) {
	return s.repo.GetByCode(ctx, code)
}

// Update persists descriptive changes. A category change moves the item to
// another prefix, so the code is re-minted through the allocator; codes are
// never edited in place.
func (s *Service) Update(ctx context.Context, it *Item) error {
	if err := it.Validate(ctx); err != nil {
		return err
	}
	return s.withCodeRetry(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, it.ID)
		if err != nil {
			return err
		}
		it.CreatedAt = current.CreatedAt
		it.Stock = current.Stock
		it.Code = current.Code
		if current.Category != it.Category || current.Code == "" {
			code, err := s.alloc.NextCode(ctx, sequence.ForItem(it.Category))
			if err != nil {
				return err
			}
			it.Code = code
		}
		it.Touch()
		return s.repo.Update(ctx, it)
	})
}

// Delete removes an item without movement history. Items referenced by the
// ledger stay, because deleting them would orphan the movement rows.
func (s *Service) Delete(ctx context.Context, itemID id.ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, itemID); err != nil {
			return err
		}
		refs, err := s.repo.CountMovements(ctx, itemID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return apperror.NewConflict("item has inventory movements and cannot be deleted").
				WithDetail("movements", refs)
		}
		return s.repo.Delete(ctx, itemID)
	})
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Item, error) {
	return s.repo.List(ctx, limit, offset)
}

// --- Additions ---

func (s *Service) CreateAddition(ctx context.Context, a *Addition) error {
	if err := a.Validate(ctx); err != nil {
		return err
	}
	return s.withCodeRetry(ctx, func(ctx context.Context) error {
		code, err := s.alloc.NextCode(ctx, sequence.ForAddition(a.Category))
		if err != nil {
			return err
		}
		a.Code = code
		return s.additions.CreateAddition(ctx, a)
	})
}

func (s *Service) GetAddition(ctx context.Context, additionID id.ID) (*Addition, error) {
	return s.additions.GetAddition(ctx, additionID)
}

func (s *Service) UpdateAddition(ctx context.Context, a *Addition) error {
	if err := a.Validate(ctx); err != nil {
		return err
	}
	return s.withCodeRetry(ctx, func(ctx context.Context) error {
		current, err := s.additions.GetAddition(ctx, a.ID)
		if err != nil {
			return err
		}
		a.CreatedAt = current.CreatedAt
		a.Code = current.Code
		if current.Category != a.Category || current.Code == "" {
			code, err := s.alloc.NextCode(ctx, sequence.ForAddition(a.Category))
			if err != nil {
				return err
			}
			a.Code = code
		}
		a.Touch()
		return s.additions.UpdateAddition(ctx, a)
	})
}

func (s *Service) DeleteAddition(ctx context.Context, additionID id.ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.additions.GetAddition(ctx, additionID); err != nil {
			return err
		}
		refs, err := s.additions.CountAdditionUses(ctx, additionID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return apperror.NewConflict("addition is used by quotations and cannot be deleted").
				WithDetail("uses", refs)
		}
		return s.additions.DeleteAddition(ctx, additionID)
	})
}

func (s *Service) ListAdditions(ctx context.Context, limit, offset int) ([]Addition, error) {
	return s.additions.ListAdditions(ctx, limit, offset)
}
