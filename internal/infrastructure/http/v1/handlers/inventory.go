package handlers

import (
	"github.com/gin-gonic/gin"

	"taller/internal/core/apperror"
	"taller/internal/core/id"
	"taller/internal/core/types"
	"taller/internal/domain/inventory"
	"taller/internal/infrastructure/http/v1/dto"
)

// InventoryHandler handles stock ledger endpoints.
type InventoryHandler struct {
	*BaseHandler
	service *inventory.Service
}

// NewInventoryHandler creates a new inventory handler.
func NewInventoryHandler(base *BaseHandler, service *inventory.Service) *InventoryHandler {
	return &InventoryHandler{BaseHandler: base, service: service}
}

// --- Entries ---

// CreateEntry handles POST /api/v1/inventory/entries
func (h *InventoryHandler) CreateEntry(c *gin.Context) {
	var req dto.CreateEntryRequest
	if !h.BindJSON(c, &req) {
		return
	}

	itemID, supplierID, err := req.ParseIDs()
	if err != nil {
		h.Error(c, err)
		return
	}

	entry, err := h.service.RecordEntry(c.Request.Context(), itemID, supplierID,
		types.NewQuantityFromFloat64(req.Quantity))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, entry.ID)
}

// DeleteEntry handles DELETE /api/v1/inventory/entries/:id
// Rejected when removal would leave any pool negative.
func (h *InventoryHandler) DeleteEntry(c *gin.Context) {
	entryID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteEntry(c.Request.Context(), entryID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ListEntries handles GET /api/v1/inventory/items/:id/entries
func (h *InventoryHandler) ListEntries(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	entries, err := h.service.ListEntries(c.Request.Context(), itemID, page.Limit, page.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(entries, len(entries), page.Limit, page.Offset))
}

// --- Outputs ---

// CreateOutput handles POST /api/v1/inventory/outputs
func (h *InventoryHandler) CreateOutput(c *gin.Context) {
	var req dto.CreateOutputRequest
	if !h.BindJSON(c, &req) {
		return
	}

	itemID, orderItemID, err := req.ParseIDs()
	if err != nil {
		h.Error(c, err)
		return
	}

	output, err := h.service.RecordOutput(c.Request.Context(), itemID, orderItemID,
		req.Location, types.NewQuantityFromFloat64(req.Quantity), req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.Created(c, output.ID)
}

// EditOutput handles PUT /api/v1/inventory/outputs/:id
func (h *InventoryHandler) EditOutput(c *gin.Context) {
	outputID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.EditOutputRequest
	if !h.BindJSON(c, &req) {
		return
	}

	itemID, err := id.Parse(req.ItemID)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid item id").WithDetail("value", req.ItemID))
		return
	}

	output, err := h.service.EditOutput(c.Request.Context(), outputID, itemID,
		req.Location, types.NewQuantityFromFloat64(req.Quantity), req.Reason)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, output)
}

// DeleteOutput handles DELETE /api/v1/inventory/outputs/:id
// Deleting an output returns the quantity to the pool.
func (h *InventoryHandler) DeleteOutput(c *gin.Context) {
	outputID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteOutput(c.Request.Context(), outputID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ListOutputs handles GET /api/v1/inventory/items/:id/outputs
// Accepts an optional location query parameter.
func (h *InventoryHandler) ListOutputs(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	location := inventory.Location(c.Query("location"))
	outputs, err := h.service.ListOutputs(c.Request.Context(), itemID, location, page.Limit, page.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(outputs, len(outputs), page.Limit, page.Offset))
}

// --- Stock views ---

// Levels handles GET /api/v1/inventory/items/:id/levels
// Returns the remaining quantity per location pool.
func (h *InventoryHandler) Levels(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	levels, err := h.service.Levels(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, levels)
}

// LowStock handles GET /api/v1/inventory/low-stock
func (h *InventoryHandler) LowStock(c *gin.Context) {
	items, err := h.service.LowStock(c.Request.Context())
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, items)
}
