package handlers

import (
	"github.com/gin-gonic/gin"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/domain/goods_receipt"
	"procura/internal/infrastructure/http/v1/dto"
)

// GoodsReceiptHandler handles HTTP requests for goods receipts.
type GoodsReceiptHandler struct {
	*BaseHandler
	service *goods_receipt.Service
}

// NewGoodsReceiptHandler creates a new goods receipt handler.
func NewGoodsReceiptHandler(base *BaseHandler, service *goods_receipt.Service) *GoodsReceiptHandler {
	return &GoodsReceiptHandler{BaseHandler: base, service: service}
}

// Create handles POST /goods-receipts. The response carries the created
// receipt together with the three-way-match report computed against its
// purchase order.
func (h *GoodsReceiptHandler) Create(c *gin.Context) {
	var req dto.CreateGoodsReceiptRequest
	if !h.BindJSON(c, &req) {
		return
	}

	gr, items, err := req.ToEntity()
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format in request"))
		return
	}

	match, err := h.service.Create(c.Request.Context(), gr, items)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.CreateGoodsReceiptResponse{Receipt: gr, Match: match})
}

// GetByID handles GET /goods-receipts/:id.
func (h *GoodsReceiptHandler) GetByID(c *gin.Context) {
	grID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	gr, err := h.service.GetByID(c.Request.Context(), grID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gr)
}

// List handles GET /goods-receipts. With po_id it lists receipts of one
// order; otherwise the most recent receipts across all orders.
func (h *GoodsReceiptHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	if raw := c.Query("po_id"); raw != "" {
		poID, err := id.Parse(raw)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid po_id format"))
			return
		}
		items, err := h.service.ListByPO(ctx, poID)
		if err != nil {
			h.Error(c, err)
			return
		}
		h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
		return
	}

	items, err := h.service.ListRecent(ctx, h.ParseIntQuery(c, "limit", goods_receipt.MaxListLimit))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// UpdateStatus handles PUT /goods-receipts/:id/status.
func (h *GoodsReceiptHandler) UpdateStatus(c *gin.Context) {
	grID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), grID, goods_receipt.Status(req.Status)); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "status updated")
}

// UpdateItem handles PUT /gr-items/:id. Changing the received quantity
// re-runs reconciliation against the purchase order.
func (h *GoodsReceiptHandler) UpdateItem(c *gin.Context) {
	itemID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateGoodsReceiptItemRequest
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
