package orders

import (
	"context"

	"taller/internal/core/apperror"
	appctx "taller/internal/core/context"
	"taller/internal/core/id"
	"taller/internal/core/tx"
	"taller/pkg/logger"
)

// ReconcileResult carries the statuses effective after a reconciliation pass.
type ReconcileResult struct {
	OrderStatus      OrderStatus
	PrefacturaStatus PrefacturaStatus
	Changed          bool
}

// Service owns order lifecycle, payments and payment-driven status
// reconciliation. Every payment mutation and its reconciliation run in a
// single transaction.
type Service struct {
	orders      OrderRepository
	payments    PaymentRepository
	prefacturas PrefacturaRepository
	history     HistoryRepository
	txm         tx.Manager
}

func NewService(
	orders OrderRepository,
	payments PaymentRepository,
	prefacturas PrefacturaRepository,
	history HistoryRepository,
	txm tx.Manager,
) *Service {
	return &Service{
		orders:      orders,
		payments:    payments,
		prefacturas: prefacturas,
		history:     history,
		txm:         txm,
	}
}

// CreateOrder persists a new order together with its prefactura.
func (s *Service) CreateOrder(ctx context.Context, order *Order) error {
	if err := order.Validate(ctx); err != nil {
		return err
	}
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.orders.Create(ctx, order); err != nil {
			return err
		}
		pf := NewPrefactura(order.ID, order.QuotationID, order.Total, order.Total)
		return s.prefacturas.Create(ctx, pf)
	})
	if err != nil {
		return err
	}
	logger.Info(ctx, "order created",
		"order_id", order.ID.String(),
		"client_id", order.ClientID.String(),
		"total", order.Total.String(),
	)
	return nil
}

func (s *Service) GetOrder(ctx context.Context, orderID id.ID) (*Order, error) {
	return s.orders.GetByID(ctx, orderID)
}

func (s *Service) ListOrders(ctx context.Context, limit, offset int) ([]Order, error) {
	return s.orders.List(ctx, limit, offset)
}

func (s *Service) ListPayments(ctx context.Context, orderID id.ID) ([]Payment, error) {
	return s.payments.ListByOrder(ctx, orderID)
}

func (s *Service) OrderHistory(ctx context.Context, orderID id.ID) ([]StatusHistory, error) {
	return s.history.ListByOrder(ctx, orderID)
}

func (s *Service) GetPrefactura(ctx context.Context, orderID id.ID) (*Prefactura, error) {
	return s.prefacturas.GetByOrder(ctx, orderID)
}

// AdvanceStatus applies a manual status transition. Payment-derived statuses
// cannot be set by hand; the reconciler owns those.
func (s *Service) AdvanceStatus(ctx context.Context, orderID id.ID, target OrderStatus) error {
	if !target.IsValid() {
		return apperror.NewValidation("unknown order status: " + string(target))
	}
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		order, err := s.orders.GetForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if !order.Status.CanAdvanceTo(target) {
			return apperror.NewConflict(
				"cannot move order from " + string(order.Status) + " to " + string(target))
		}
		if err := s.orders.UpdateStatus(ctx, orderID, target); err != nil {
			return err
		}
		return s.history.Append(ctx, NewStatusHistory(
			orderID, order.Status, target, appctx.GetUserID(ctx)))
	})
}

// MarkPrefacturaInvoiced closes the prefactura manually. The reconciler
// never rewrites an INVOICED prefactura afterwards.
func (s *Service) MarkPrefacturaInvoiced(ctx context.Context, orderID id.ID) error {
	return s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		pf, err := s.prefacturas.GetByOrder(ctx, orderID)
		if err != nil {
			return err
		}
		if pf.Status == PrefacturaInvoiced {
			return nil
		}
		if err := s.prefacturas.UpdateStatus(ctx, pf.ID, PrefacturaInvoiced); err != nil {
			return err
		}
		logger.Info(ctx, "prefactura invoiced",
			"order_id", orderID.String(),
			"prefactura_id", pf.ID.String(),
		)
		return nil
	})
}

// CreatePayment records a payment against an order and reconciles the order
// and prefactura statuses in the same transaction.
func (s *Service) CreatePayment(ctx context.Context, payment *Payment) (*ReconcileResult, error) {
	if err := payment.Validate(ctx); err != nil {
		return nil, err
	}
	var result *ReconcileResult
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := s.orders.GetByID(ctx, payment.OrderID); err != nil {
			return err
		}
		if err := s.payments.Create(ctx, payment); err != nil {
			return err
		}
		var err error
		result, err = s.Reconcile(ctx, payment.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "payment recorded",
		"payment_id", payment.ID.String(),
		"order_id", payment.OrderID.String(),
		"amount", payment.Amount.String(),
	)
	return result, nil
}

// UpdatePayment changes a payment's amount, method or proof reference and
// reconciles. Voided payments are immutable.
func (s *Service) UpdatePayment(ctx context.Context, payment *Payment) (*ReconcileResult, error) {
	if err := payment.Validate(ctx); err != nil {
		return nil, err
	}
	var result *ReconcileResult
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		current, err := s.payments.GetByID(ctx, payment.ID)
		if err != nil {
			return err
		}
		if current.IsVoided() {
			return apperror.NewConflict("voided payments cannot be modified")
		}
		payment.OrderID = current.OrderID
		payment.Status = current.Status
		payment.CreatedAt = current.CreatedAt
		payment.CreatedBy = current.CreatedBy
		if err := s.payments.Update(ctx, payment); err != nil {
			return err
		}
		result, err = s.Reconcile(ctx, payment.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// VoidPayment marks a payment as VOIDED, excluding it from the paid total,
// and reconciles. Voiding an already voided payment is a no-op.
func (s *Service) VoidPayment(ctx context.Context, paymentID id.ID) (*ReconcileResult, error) {
	var result *ReconcileResult
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		payment, err := s.payments.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if payment.IsVoided() {
			return nil
		}
		payment.Status = PaymentVoided
		if err := s.payments.Update(ctx, payment); err != nil {
			return err
		}
		result, err = s.Reconcile(ctx, payment.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeletePayment removes a non-voided payment and reconciles. Voided payments
// stay in place as audit evidence.
func (s *Service) DeletePayment(ctx context.Context, paymentID id.ID) (*ReconcileResult, error) {
	var result *ReconcileResult
	err := s.txm.RunInTransaction(ctx, func(ctx context.Context) error {
		payment, err := s.payments.GetByID(ctx, paymentID)
		if err != nil {
			return err
		}
		if payment.IsVoided() {
			return apperror.NewConflict("voided payments cannot be deleted")
		}
		if err := s.payments.Delete(ctx, paymentID); err != nil {
			return err
		}
		result, err = s.Reconcile(ctx, payment.OrderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
