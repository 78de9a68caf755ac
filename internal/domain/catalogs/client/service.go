package client

import (
	"context"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/core/tx"
	"taller/pkg/logger"
)

// Service provides business logic for the client catalog.
type Service struct {
	repo Repository
	txm  tx.Manager
}

func NewService(repo Repository, txm tx.Manager) *Service {
	return &Service{repo: repo, txm: txm}
}

func (s *Service) Create(ctx context.Context, c *Client) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return err
	}
	logger.Info(ctx, "client created", "client_id", c.ID.String(), "name", c.Name)
	return nil
}

func (s *Service) Get(ctx context.Context, clientID id.ID) (*Client, error) {
	return s.repo.GetByID(ctx, clientID)
}

func (s *Service) Update(ctx context.Context, c *Client) error {
	if err := c.Validate(ctx); err != nil {
		return err
	}
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetByID(ctx, c.ID)
		if err != nil {
			return err
		}
		c.CreatedAt = current.CreatedAt
		c.Touch()
		return s.repo.Update(ctx, c)
	})
}

// Delete removes a client. Clients referenced by orders are kept and the
// delete is rejected with a conflict.
func (s *Service) Delete(ctx context.Context, clientID id.ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.repo.GetByID(ctx, clientID); err != nil {
			return err
		}
		refs, err := s.repo.CountOrders(ctx, clientID)
		if err != nil {
			return err
		}
		if refs > 0 {
			return apperror.NewConflict("client has orders and cannot be deleted").
				WithDetail("orders", refs)
		}
		return s.repo.Delete(ctx, clientID)
	})
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Client, error) {
	return s.repo.List(ctx, limit, offset)
}
