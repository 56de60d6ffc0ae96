package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"linkdesk-backend/internal/models"
)

// HealthCheck probes one dependency.
type HealthCheck func(ctx context.Context) error

type HealthHandler struct {
	checks map[string]HealthCheck
}

// NewHealthHandler takes named probes, e.g. "database" and "redis". A nil
// probe is skipped.
func NewHealthHandler(checks map[string]HealthCheck) *HealthHandler {
	return &HealthHandler{checks: checks}
}

// Health godoc
// @Summary     Health check
// @Description Returns the health status of the API and its dependencies
// @Tags        health
// @Produce     json
// @Success     200 {object} models.HealthResponse
// @Failure     503 {object} models.HealthResponse
// @Router      /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	response := models.HealthResponse{Status: "ok"}
	code := http.StatusOK
	for name, check := range h.checks {
		if check == nil {
			continue
		}
		if response.Services == nil {
			response.Services = make(map[string]string, len(h.checks))
		}
		if err := check(ctx); err != nil {
			response.Services[name] = "unavailable"
			response.Status = "degraded"
			code = http.StatusServiceUnavailable
			continue
		}
		response.Services[name] = "ok"
	}
	c.JSON(code, response)
}
