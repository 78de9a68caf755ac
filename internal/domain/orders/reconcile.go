package orders

import (
	"context"

	"taller/internal/core/apperror"
	appctx "taller/internal/core/context"
	"taller/internal/core/id"
	"taller/pkg/logger"
)

// Reconcile recomputes the order and prefactura statuses from the current
// non-voided payment total. Must be called inside a transaction. A missing
// order is treated as a no-op so that reconciliation triggered for payments
// whose order has since disappeared never fails the caller.
//
// The order status is only rewritten, with a history row, when the derived
// status differs from the stored one; re-running reconcile with no payment
// change appends nothing. The prefactura status is rewritten unconditionally.
func (s *Service) Reconcile(ctx context.Context, orderID id.ID) (*ReconcileResult, error) {
	order, err := s.orders.GetForUpdate(ctx, orderID)
	if err != nil {
		if apperror.IsNotFound(err) {
			logger.Warn(ctx, "reconcile skipped, order not found", "order_id", orderID.String())
			return nil, nil
		}
		return nil, err
	}

	paid, err := s.payments.SumActive(ctx, orderID)
	if err != nil {
		return nil, err
	}

	orderStatus, pfStatus := DeriveStatus(order.Total, paid)
	result := &ReconcileResult{OrderStatus: order.Status, PrefacturaStatus: pfStatus}

	// Manual stages past PRODUCTION are downstream of payment gating and
	// are never rolled back by the reconciler.
	if reconcilable(order.Status) && order.Status != orderStatus {
		if err := s.orders.UpdateStatus(ctx, orderID, orderStatus); err != nil {
			return nil, err
		}
		if err := s.history.Append(ctx, NewStatusHistory(
			orderID, order.Status, orderStatus, appctx.GetUserID(ctx))); err != nil {
			return nil, err
		}
		result.OrderStatus = orderStatus
		result.Changed = true
	}

	pf, err := s.prefacturas.GetByOrder(ctx, orderID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return result, nil
		}
		return nil, err
	}
	if pf.Status != PrefacturaInvoiced {
		if err := s.prefacturas.UpdateStatus(ctx, pf.ID, pfStatus); err != nil {
			return nil, err
		}
	} else {
		result.PrefacturaStatus = PrefacturaInvoiced
	}
	return result, nil
}

// reconcilable reports whether the order status is still in the
// payment-driven band.
func reconcilable(status OrderStatus) bool {
	switch status {
	case OrderPending, OrderInitialApproval, OrderProduction:
		return true
	}
	return false
}
