package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"linkdesk-backend/internal/middleware"
	"linkdesk-backend/internal/services"
)

type ExportHandler struct {
	dbClient OrderStore
	exports  *services.ExportService
}

func NewExportHandler(dbClient OrderStore, exports *services.ExportService) *ExportHandler {
	return &ExportHandler{dbClient: dbClient, exports: exports}
}

// ExportReview godoc
// @Summary     Export the review as xlsx
// @Description Renders the current review (one row per slot plus an Unassigned sheet), stores it in Supabase Storage and returns its public URL
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Success     201 {object} services.ExportResult
// @Failure     404 {object} models.ErrorResponse
// @Failure     422 {object} models.MalformedOrderResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /orders/{order_id}/export [post]
func (h *ExportHandler) ExportReview(c *gin.Context) {
	order, ok := loadOrder(c, h.dbClient)
	if !ok {
		return
	}

	result, err := h.exports.ExportReview(c.Request.Context(), order.ID, middleware.UserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}
