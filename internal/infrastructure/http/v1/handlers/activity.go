package handlers

import (
	"github.com/gin-gonic/gin"

	"procura/internal/core/apperror"
	"procura/internal/core/id"
	"procura/internal/infrastructure/http/v1/dto"
	"procura/internal/infrastructure/storage/postgres"
)

// ActivityHandler exposes the activity trail of an entity.
type ActivityHandler struct {
	*BaseHandler
	store *postgres.ActivityStore
}

// NewActivityHandler creates a new activity handler.
func NewActivityHandler(base *BaseHandler, store *postgres.ActivityStore) *ActivityHandler {
	return &ActivityHandler{BaseHandler: base, store: store}
}

// History handles GET /activity/:entityType/:id.
func (h *ActivityHandler) History(c *gin.Context) {
	entityID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid id format"))
		return
	}

	limit := h.ParseIntQuery(c, "limit", 50)
	records, err := h.store.EntityHistory(c.Request.Context(), c.Param("entityType"), entityID, limit)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{Items: records, Count: len(records)})
}
