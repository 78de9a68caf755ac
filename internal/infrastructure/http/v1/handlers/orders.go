package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"taller/internal/core/types"
	"taller/internal/domain/orders"
	"taller/internal/infrastructure/http/v1/dto"
)

// OrderHandler handles order, payment and prefactura endpoints.
type OrderHandler struct {
	*BaseHandler
	service *orders.Service
}

// NewOrderHandler creates a new order handler.
func NewOrderHandler(base *BaseHandler, service *orders.Service) *OrderHandler {
	return &OrderHandler{BaseHandler: base, service: service}
}

// --- Orders ---

// Create handles POST /api/v1/orders
func (h *OrderHandler) Create(c *gin.Context) {
	var req dto.CreateOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	order, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.CreateOrder(c.Request.Context(), order); err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, order.ID)
}

// Get handles GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// List handles GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	list, err := h.service.ListOrders(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(list, len(list), page.Limit, page.Offset))
}

// AdvanceStatus handles POST /api/v1/orders/:id/status
// Manual stage transitions only; payment-derived stages are rejected.
func (h *OrderHandler) AdvanceStatus(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.AdvanceStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.AdvanceStatus(c.Request.Context(), orderID, req.Status); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "status updated")
}

// History handles GET /api/v1/orders/:id/history
func (h *OrderHandler) History(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	history, err := h.service.OrderHistory(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, history)
}

// Prefactura handles GET /api/v1/orders/:id/prefactura
func (h *OrderHandler) Prefactura(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	prefactura, err := h.service.GetPrefactura(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, prefactura)
}

// InvoicePrefactura handles POST /api/v1/orders/:id/prefactura/invoice
func (h *OrderHandler) InvoicePrefactura(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.MarkPrefacturaInvoiced(c.Request.Context(), orderID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "prefactura invoiced")
}

// --- Payments ---

// CreatePayment handles POST /api/v1/orders/:id/payments
// Registering a payment runs the reconciliation engine; the response
// carries the derived statuses.
func (h *OrderHandler) CreatePayment(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.CreatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payment := req.ToEntity(orderID, h.GetUserID(c))
	result, err := h.service.CreatePayment(c.Request.Context(), payment)
	if err != nil {
		h.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":             payment.ID.String(),
		"reconciliation": dto.FromReconcileResult(result),
	})
}

// ListPayments handles GET /api/v1/orders/:id/payments
func (h *OrderHandler) ListPayments(c *gin.Context) {
	orderID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	payments, err := h.service.ListPayments(c.Request.Context(), orderID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, payments)
}

// UpdatePayment handles PUT /api/v1/payments/:id
func (h *OrderHandler) UpdatePayment(c *gin.Context) {
	paymentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdatePaymentRequest
	if !h.BindJSON(c, &req) {
		return
	}

	payment := &orders.Payment{
		ID:       paymentID,
		Amount:   types.NewMoney(req.Amount),
		Method:   req.Method,
		ProofRef: req.ProofRef,
	}
	result, err := h.service.UpdatePayment(c.Request.Context(), payment)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"reconciliation": dto.FromReconcileResult(result)})
}

// VoidPayment handles POST /api/v1/payments/:id/void
func (h *OrderHandler) VoidPayment(c *gin.Context) {
	paymentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.VoidPayment(c.Request.Context(), paymentID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, gin.H{"reconciliation": dto.FromReconcileResult(result)})
}

// DeletePayment handles DELETE /api/v1/payments/:id
func (h *OrderHandler) DeletePayment(c *gin.Context) {
	paymentID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if _, err := h.service.DeletePayment(c.Request.Context(), paymentID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}
