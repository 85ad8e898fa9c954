package handlers

import (
	"github.com/gin-gonic/gin"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/domain/purchase_order"
	"procura/internal/infrastructure/http/v1/dto"
)

// PurchaseOrderHandler handles HTTP requests for purchase orders.
type PurchaseOrderHandler struct {
	*BaseHandler
	service *purchase_order.Service
}

// NewPurchaseOrderHandler creates a new purchase order handler.
func NewPurchaseOrderHandler(base *BaseHandler, service *purchase_order.Service) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{BaseHandler: base, service: service}
}

// Create handles POST /purchase-orders.
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req dto.CreatePurchaseOrderRequest
	if !h.BindJSON(c, &req) {
		return
	}

	po, items, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid request id format"))
		return
	}

	if err := h.service.Create(c.Request.Context(), po, items); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, po)
}

// GetByID handles GET /purchase-orders/:id.
func (h *PurchaseOrderHandler) GetByID(c *gin.Context) {
	poID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	po, err := h.service.GetByID(c.Request.Context(), poID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, po)
}

// List handles GET /purchase-orders.
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	filter := purchase_order.ListFilter{
		CreatedBy: c.Query("created_by"),
		Limit:     h.ParseIntQuery(c, "limit", 50),
	}

	if raw := c.Query("status"); raw != "" {
		status := purchase_order.Status(raw)
		if !status.Valid() {
			h.Error(c, apperror.NewValidation("invalid status value").
				WithDetail("value", raw))
			return
		}
		filter.Status = &status
	}

	orders, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: orders, Count: len(orders)})
}

// UpdateStatus handles PUT /purchase-orders/:id/status.
func (h *PurchaseOrderHandler) UpdateStatus(c *gin.Context) {
	poID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), poID, purchase_order.Status(req.Status)); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "status updated")
}

// AddItem handles POST /purchase-orders/:id/items.
func (h *PurchaseOrderHandler) AddItem(c *gin.Context) {
	poID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.PurchaseOrderItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.service.AddItem(c.Request.Context(), poID, req.ToInput())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, item)
}

// UpdateItem handles PUT /po-items/:id.
func (h *PurchaseOrderHandler) UpdateItem(c *gin.Context) {
	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdatePurchaseOrderItemRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item, err := h.service.UpdateItem(c.Request.Context(), itemID, req.ToUpdate())
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, item)
}

// DeleteItem handles DELETE /po-items/:id.
func (h *PurchaseOrderHandler) DeleteItem(c *gin.Context) {
	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	if err := h.service.DeleteItem(c.Request.Context(), itemID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}
