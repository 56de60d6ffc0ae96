package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"linkdesk-backend/internal/dataforseo"
	"linkdesk-backend/internal/drafts"
	"linkdesk-backend/internal/middleware"
	"linkdesk-backend/internal/models"
	"linkdesk-backend/internal/qualification"
	"linkdesk-backend/internal/review"
	"linkdesk-backend/internal/slots"
	"linkdesk-backend/internal/supabase"
	"linkdesk-backend/internal/workflow"
)

// OrdersRedirect is where the dashboard goes when an order cannot be shown.
const OrdersRedirect = "/orders"

var errForbidden = errors.New("order belongs to another account")

var statusByError = []struct {
	err    error
	status int
}{
	{supabase.ErrNotFound, http.StatusNotFound},
	{review.ErrGroupNotFound, http.StatusNotFound},
	{review.ErrSubmissionNotInGroup, http.StatusNotFound},
	{qualification.ErrDomainNotFound, http.StatusNotFound},
	{dataforseo.ErrDomainMismatch, http.StatusNotFound},

	{errForbidden, http.StatusForbidden},

	{review.ErrRowBusy, http.StatusConflict},
	{review.ErrNotAlternative, http.StatusConflict},
	{qualification.ErrRowBusy, http.StatusConflict},
	{dataforseo.ErrAnalysisRunning, http.StatusConflict},
	{supabase.ErrConflict, http.StatusConflict},

	{workflow.ErrInvalidTransition, http.StatusUnprocessableEntity},
	{review.ErrUnknownTarget, http.StatusUnprocessableEntity},
	{qualification.ErrNotQualified, http.StatusUnprocessableEntity},

	{review.ErrInvalidStatus, http.StatusBadRequest},
	{review.ErrEmptyUpdate, http.StatusBadRequest},
	{review.ErrInvalidTableState, http.StatusBadRequest},
	{qualification.ErrInvalidStatus, http.StatusBadRequest},
	{qualification.ErrInvalidSource, http.StatusBadRequest},
	{workflow.ErrUnknownStatus, http.StatusBadRequest},
	{dataforseo.ErrMissingDomain, http.StatusBadRequest},
	{drafts.ErrInvalidPayload, http.StatusBadRequest},

	{drafts.ErrClosed, http.StatusServiceUnavailable},
	{context.DeadlineExceeded, http.StatusGatewayTimeout},
}

// respondError maps err to a status code and writes models.ErrorResponse.
// Malformed orders get the redirect body instead.
func respondError(c *gin.Context, err error) {
	if errors.Is(err, slots.ErrMalformedOrder) {
		c.JSON(http.StatusUnprocessableEntity, models.MalformedOrderResponse{
			Error:    "malformed order",
			Redirect: OrdersRedirect,
		})
		return
	}

	for _, m := range statusByError {
		if errors.Is(err, m.err) {
			c.JSON(m.status, models.ErrorResponse{
				Error:   http.StatusText(m.status),
				Message: err.Error(),
			})
			return
		}
	}

	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal error",
		Message: err.Error(),
	})
}

func badRequest(c *gin.Context, msg string, err error) {
	resp := models.ErrorResponse{Error: msg}
	if err != nil {
		resp.Message = err.Error()
	}
	c.JSON(http.StatusBadRequest, resp)
}

// uuidParam parses a path parameter, writing a 400 when it is not a UUID.
func uuidParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		badRequest(c, "invalid "+name, err)
		return uuid.Nil, false
	}
	return id, true
}

func currentUser(c *gin.Context) (uuid.UUID, bool) {
	raw := middleware.UserID(c)
	if raw == "" {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "user id not found"})
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "invalid user id", err)
		return uuid.Nil, false
	}
	return id, true
}

func actor(c *gin.Context) review.Actor {
	return review.Actor{
		ID:     middleware.UserID(c),
		Client: !middleware.IsInternal(c),
	}
}
