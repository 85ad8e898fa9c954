package handlers

import (
	"github.com/gin-gonic/gin"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/domain/requests"
	"procura/internal/infrastructure/http/v1/dto"
)

// AssetRequestHandler handles HTTP requests for asset requests.
type AssetRequestHandler struct {
	*BaseHandler
	service *requests.Service
}

// NewAssetRequestHandler creates a new asset request handler.
func NewAssetRequestHandler(base *BaseHandler, service *requests.Service) *AssetRequestHandler {
	return &AssetRequestHandler{BaseHandler: base, service: service}
}

// Create handles POST /asset-requests.
func (h *AssetRequestHandler) Create(c *gin.Context) {
	var req dto.CreateAssetRequestRequest
	if !h.BindJSON(c, &req) {
		return
	}

	entity := req.ToEntity()
	if err := h.service.Create(c.Request.Context(), entity); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, entity)
}

// GetByID handles GET /asset-requests/:id.
func (h *AssetRequestHandler) GetByID(c *gin.Context) {
	reqID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	entity, err := h.service.GetByID(c.Request.Context(), reqID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, entity)
}

// List handles GET /asset-requests.
func (h *AssetRequestHandler) List(c *gin.Context) {
	filter := requests.ListFilter{
		RequestedBy: c.Query("requested_by"),
		Department:  c.Query("department"),
		Limit:       h.ParseIntQuery(c, "limit", 50),
	}

	if raw := c.Query("status"); raw != "" {
		status := requests.Status(raw)
		if !status.Valid() {
			h.Error(c, apperror.NewValidation("invalid status value").
				WithDetail("value", raw))
			return
		}
		filter.Status = &status
	}

	items, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: items, Count: len(items)})
}

// UpdateStatus handles PUT /asset-requests/:id/status.
func (h *AssetRequestHandler) UpdateStatus(c *gin.Context) {
	reqID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	var req dto.UpdateStatusRequest
	if !h.BindJSON(c, &req) {
		return
	}

	if err := h.service.UpdateStatus(c.Request.Context(), reqID, requests.Status(req.Status)); err != nil {
		h.Error(c, err)
		return
	}

	h.Success(c, "status updated")
}
