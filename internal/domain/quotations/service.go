package quotations

import (
	"context"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/core/sequence"
	"taller/internal/core/tx"
	"taller/internal/domain/orders"
	"taller/pkg/logger"
)

// OrderCreator opens production orders. Satisfied by the orders service.
type OrderCreator interface {
	CreateOrder(ctx context.Context, order *orders.Order) error
}

// Service provides business logic for quotations. Accepting a quotation
// opens a production order through the orders service; both writes share
// one transaction.
type Service struct {
	repo   Repository
	orders OrderCreator
	alloc  sequence.Allocator
	txm    tx.Manager
}

func NewService(repo Repository, ordersSvc OrderCreator, alloc sequence.Allocator, txm tx.Manager) *Service {
	return &Service{repo: repo, orders: ordersSvc, alloc: alloc, txm: txm}
}

// Create allocates a COT code and persists the quotation. A lost code
// uniqueness race retries the whole allocate-and-insert once.
func (s *Service) Create(ctx context.Context, q *Quotation) error {
	if err := q.Validate(ctx); err != nil {
		return err
	}
	op := func(ctx context.Context) error {
		code, err := s.alloc.NextCode(ctx, sequence.ForQuotation())
		if err != nil {
			return err
		}
		q.Code = code
		return s.repo.Create(ctx, q)
	}
	err := s.txm.RunInTransaction(ctx, op)
	if err != nil && apperror.IsDuplicate(err) {
		logger.Warn(ctx, "quotation code race lost, retrying")
		err = s.txm.RunInTransaction(ctx, op)
	}
	if err != nil {
		return err
	}
	logger.Info(ctx, "quotation created", "quotation_id", q.ID.String(), "code", q.Code)
	return nil
}

func (s *Service) Get(ctx context.Context, quotationID id.ID) (*Quotation, error) {
	return s.repo.GetByID(ctx, quotationID)
}

// Update rewrites a non-terminal quotation. The code never changes.
func (s *Service) Update(ctx context.Context, q *Quotation) error {
	if err := q.Validate(ctx); err != nil {
		return err
	}
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.repo.GetForUpdate(ctx, q.ID)
		if err != nil {
			return err
		}
		if current.Status.IsTerminal() {
			return apperror.NewConflict(
				"quotation is " + string(current.Status) + " and cannot be modified")
		}
		q.Code = current.Code
		q.CreatedAt = current.CreatedAt
		q.CreatedBy = current.CreatedBy
		q.Touch()
		return s.repo.Update(ctx, q)
	})
}

// Send marks a draft as sent to the client.
func (s *Service) Send(ctx context.Context, quotationID id.ID) error {
	return s.transition(ctx, quotationID, StatusDraft, StatusSent)
}

// Reject closes the quotation without an order.
func (s *Service) Reject(ctx context.Context, quotationID id.ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		q, err := s.repo.GetForUpdate(ctx, quotationID)
		if err != nil {
			return err
		}
		if q.Status.IsTerminal() {
			return apperror.NewConflict("quotation is already " + string(q.Status))
		}
		return s.repo.UpdateStatus(ctx, quotationID, StatusRejected)
	})
}

// Accept closes the quotation and opens a production order carrying its
// totals. The order starts unpaid; the reconciliation engine moves it once
// payments arrive.
func (s *Service) Accept(ctx context.Context, quotationID id.ID) (*orders.Order, error) {
	var order *orders.Order
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		q, err := s.repo.GetForUpdate(ctx, quotationID)
		if err != nil {
			return err
		}
		if q.Status.IsTerminal() {
			return apperror.NewConflict("quotation is already " + string(q.Status))
		}
		if err := s.repo.UpdateStatus(ctx, quotationID, StatusAccepted); err != nil {
			return err
		}

		order = orders.NewOrder(q.ClientID, &q.ID, orders.TypeProduction, q.Currency, q.Total())
		order.DiscountPercent = q.DiscountPercent
		order.ShippingFee = q.ShippingFee
		return s.orders.CreateOrder(ctx, order)
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "quotation accepted",
		"quotation_id", quotationID.String(),
		"order_id", order.ID.String(),
	)
	return order, nil
}

// Delete removes a draft or rejected quotation. Accepted quotations are
// referenced by their order and stay.
func (s *Service) Delete(ctx context.Context, quotationID id.ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		q, err := s.repo.GetForUpdate(ctx, quotationID)
		if err != nil {
			return err
		}
		if q.Status == StatusAccepted {
			return apperror.NewConflict("accepted quotations cannot be deleted")
		}
		return s.repo.Delete(ctx, quotationID)
	})
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]Quotation, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListByClient(ctx context.Context, clientID id.ID, limit, offset int) ([]Quotation, error) {
	return s.repo.ListByClient(ctx, clientID, limit, offset)
}

func (s *Service) transition(ctx context.Context, quotationID id.ID, from, to Status) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		q, err := s.repo.GetForUpdate(ctx, quotationID)
		if err != nil {
			return err
		}
		if q.Status != from {
			return apperror.NewConflict(
				"cannot move quotation from " + string(q.Status) + " to " + string(to))
		}
		return s.repo.UpdateStatus(ctx, quotationID, to)
	})
}
