package supplier

import (
	"context"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/core/tx"
)

// Service provides business logic for the supplier catalog.
type Service struct {
	repo Repository
	txm  tx.Manager
}

func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{repo: repo, txm: txm}
}

func (s *Service) Create(ctx context.Context, sup *Supplier) error {
	if err := sup.Validate(ctx); err != nil {
		return err
	}
	return s.repo.Create(ctx, sup)
}

func (s *Service) Get(ctx context.Context, supplierID id.ID) (*Supplier, error) {
	return s.repo.GetByID(ctx, supplierID)
}

func (s *Service) Update(ctx context.Context, sup *Supplier) error {
	if err := sup.Validate(ctx); err != nil {
		return err
	}
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, sup.ID)
		if err != nil {
			return err
		}
		sup.CreatedAt = current.CreatedAt
		sup.Touch()
		return s.repo.Update(ctx, sup)
	})
}

// Delete removes a supplier unless inventory entries reference it.
func (s *Service) Delete(ctx context.Context, supplierID id.ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, supplierID); err != nil {
			return err
		}
		refs, err := s.repo.CountEntries(ctx, supplierID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return apperror.NewConflict("supplier has inventory entries and cannot be deleted").
				WithDetail("entries", refs)
		}
		return s.repo.Delete(ctx, supplierID)
	})
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Supplier, error) {
	return s.repo.List(ctx, limit, offset)
}
