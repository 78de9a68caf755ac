package handlers

import (
	"github.com/gin-gonic/gin"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/domain/quotations"
	"taller/internal/infrastructure/http/v1/dto"
)

// QuotationHandler handles quotation endpoints.
type QuotationHandler struct {
	*BaseHandler
	service *quotations.Service
}

// NewQuotationHandler creates a new quotation handler.
func NewQuotationHandler(base *BaseHandler, service *quotations.Service) *QuotationHandler {
	return &QuotationHandler{BaseHandler: base, service: service}
}

// Create handles POST /api/v1/quotations
func (h *QuotationHandler) Create(c *gin.Context) {
	var req dto.CreateQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entity, err := req.ToEntity()
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := h.service.Create(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}
	h.CreatedCoded(c, entity.ID, entity.Code)
}

// Get handles GET /api/v1/quotations/:id
func (h *QuotationHandler) Get(c *gin.Context) {
	quotationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	entity, err := h.service.Get(c.Request.Context(), quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entity)
}

// Update handles PUT /api/v1/quotations/:id
func (h *QuotationHandler) Update(c *gin.Context) {
	quotationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateQuotationRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entity, err := h.service.Get(c.Request.Context(), quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}
	if err := req.ApplyTo(entity); err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.Update(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entity)
}

// Send handles POST /api/v1/quotations/:id/send
func (h *QuotationHandler) Send(c *gin.Context) {
	quotationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Send(c.Request.Context(), quotationID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "quotation sent")
}

// Reject handles POST /api/v1/quotations/:id/reject
func (h *QuotationHandler) Reject(c *gin.Context) {
	quotationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Reject(c.Request.Context(), quotationID); err != nil {
		h.Error(c, err)
		return
	}
	h.Success(c, "quotation rejected")
}

// Accept handles POST /api/v1/quotations/:id/accept
// Accepting opens a production order and returns it.
func (h *QuotationHandler) Accept(c *gin.Context) {
	quotationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	order, err := h.service.Accept(c.Request.Context(), quotationID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, order)
}

// Delete handles DELETE /api/v1/quotations/:id
func (h *QuotationHandler) Delete(c *gin.Context) {
	quotationID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), quotationID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// List handles GET /api/v1/quotations
// Accepts an optional clientId query parameter.
func (h *QuotationHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	ctx := c.Request.Context()

	var (
		list []quotations.Quotation
		err  error
	)
	if raw := c.Query("clientId"); raw != "" {
		clientID, parseErr := id.Parse(raw)
		if parseErr != nil {
			h.Error(c, apperror.NewValidation("invalid client id").WithDetail("value", raw))
			return
		}
		list, err = h.service.ListByClient(ctx, clientID, page.Limit, page.Offset)
	} else {
		list, err = h.service.List(ctx, page.Limit, page.Offset)
	}
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(list, len(list), page.Limit, page.Offset))
}
