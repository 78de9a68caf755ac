package handlers

import (
	"github.com/gin-gonic/gin"

	"taller/internal/domain/catalogs/item"
	"taller/internal/infrastructure/http/v1/dto"
)

// ItemHandler handles item and addition catalog endpoints. Both live in
// the item service because they share the code allocation machinery.
type ItemHandler struct {
	*BaseHandler
	service *item.Service
}

// NewItemHandler creates a new item handler.
func NewItemHandler(base *BaseHandler, service *item.Service) *ItemHandler {
	return &ItemHandler{BaseHandler: base, service: service}
}

// --- Items ---

// Create handles POST /api/v1/items
func (h *ItemHandler) Create(c *gin.Context) {
	var req dto.CreateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entity := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}
	h.CreatedCoded(c, entity.ID, entity.Code)
}

// Get handles GET /api/v1/items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	entity, err := h.service.Get(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entity)
}

// GetByCode handles GET /api/v1/items/code/:code
func (h *ItemHandler) GetByCode(c *gin.Context) {
	entity, err := h.service.GetByCode(c.Request.Context(), c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entity)
}

// Update handles PUT /api/v1/items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entity, err := h.service.Get(c.Request.Context(), itemID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(entity)

	if err := h.service.Update(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entity)
}

// Delete handles DELETE /api/v1/items/:id
func (h *ItemHandler) Delete(c *gin.Context) {
	itemID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), itemID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// List handles GET /api/v1/items
func (h *ItemHandler) List(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	items, err := h.service.List(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(items, len(items), page.Limit, page.Offset))
}

// --- Additions ---

// CreateAddition handles POST /api/v1/additions
func (h *ItemHandler) CreateAddition(c *gin.Context) {
	var req dto.CreateAdditionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entity := req.ToEntity()
	if err := h.service.CreateAddition(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}
	h.CreatedCoded(c, entity.ID, entity.Code)
}

// GetAddition handles GET /api/v1/additions/:id
func (h *ItemHandler) GetAddition(c *gin.Context) {
	additionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	entity, err := h.service.GetAddition(c.Request.Context(), additionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entity)
}

// UpdateAddition handles PUT /api/v1/additions/:id
func (h *ItemHandler) UpdateAddition(c *gin.Context) {
	additionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateAdditionRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entity, err := h.service.GetAddition(c.Request.Context(), additionID)
	if err != nil {
		h.Error(c, err)
		return
	}
	req.ApplyTo(entity)

	if err := h.service.UpdateAddition(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, entity)
}

// DeleteAddition handles DELETE /api/v1/additions/:id
func (h *ItemHandler) DeleteAddition(c *gin.Context) {
	additionID, ok := h.ParseID(c, "id")
	if !ok {
		return
	}

	if err := h.service.DeleteAddition(c.Request.Context(), additionID); err != nil {
		h.Error(c, err)
		return
	}
	h.NoContent(c)
}

// ListAdditions handles GET /api/v1/additions
func (h *ItemHandler) ListAdditions(c *gin.Context) {
	var page dto.PaginationRequest
	if !h.BindQuery(c, &page) {
		return
	}
	page.Defaults()

	additions, err := h.service.ListAdditions(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		h.Error(c, err)
		return
	}
	h.OK(c, dto.NewListResponse(additions, len(additions), page.Limit, page.Offset))
}
