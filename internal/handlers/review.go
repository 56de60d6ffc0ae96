package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"linkdesk-backend/internal/models"
	"linkdesk-backend/internal/review"
	"linkdesk-backend/internal/slots"
)

// ReviewHandler serves the client review table and its per-row mutations.
// Every mutation returns the freshly re-read order.
type ReviewHandler struct {
	dbClient OrderStore
	review   *review.Service
}

func NewReviewHandler(dbClient OrderStore, reviewService *review.Service) *ReviewHandler {
	return &ReviewHandler{dbClient: dbClient, review: reviewService}
}

// GetReview godoc
// @Summary     Review table
// @Description Resolves every slot of the order and renders the review table. expand is "all" or comma separated group ids; edit is "<groupId>:<slotIndex>" and opens the single alternatives panel.
// @Tags        review
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Param       expand query string false "Expanded groups"
// @Param       edit query string false "Open alternatives panel"
// @Success     200 {object} review.View
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     422 {object} models.MalformedOrderResponse
// @Router      /orders/{order_id}/review [get]
func (h *ReviewHandler) GetReview(c *gin.Context) {
	order, ok := loadOrder(c, h.dbClient)
	if !ok {
		return
	}

	resolved, err := h.review.ResolveLoaded(order)
	if err != nil {
		respondError(c, err)
		return
	}

	state, err := tableState(c, resolved)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.review.Render(resolved, state))
}

// AssignTargetPage godoc
// @Summary     Assign a target page
// @Description Moves a submission onto one of its group's slot targets
// @Tags        review
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Param       group_id path string true "Order group ID"
// @Param       submission_id path string true "Site submission ID"
// @Param       request body models.AssignTargetPageRequest true "Target page"
// @Success     200 {object} review.View
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /orders/{order_id}/groups/{group_id}/submissions/{submission_id}/assign [post]
func (h *ReviewHandler) AssignTargetPage(c *gin.Context) {
	var req models.AssignTargetPageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	h.mutate(c, func(orderID, groupID, submissionID uuid.UUID) (*slots.ResolvedOrder, error) {
		return h.review.AssignTargetPage(c.Request.Context(), orderID, groupID, submissionID, req.TargetPageURL, actor(c))
	})
}

// SwitchPool godoc
// @Summary     Make primary
// @Description Promotes an alternative to the primary pool, demoting the current primary for its target
// @Tags        review
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Param       group_id path string true "Order group ID"
// @Param       submission_id path string true "Site submission ID"
// @Success     200 {object} review.View
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /orders/{order_id}/groups/{group_id}/submissions/{submission_id}/switch [post]
func (h *ReviewHandler) SwitchPool(c *gin.Context) {
	h.mutate(c, func(orderID, groupID, submissionID uuid.UUID) (*slots.ResolvedOrder, error) {
		return h.review.SwitchPool(c.Request.Context(), orderID, groupID, submissionID, actor(c))
	})
}

// Approve godoc
// @Summary     Approve a submission
// @Tags        review
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Param       group_id path string true "Order group ID"
// @Param       submission_id path string true "Site submission ID"
// @Success     200 {object} review.View
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /orders/{order_id}/groups/{group_id}/submissions/{submission_id}/approve [post]
func (h *ReviewHandler) Approve(c *gin.Context) {
	h.mutate(c, func(orderID, groupID, submissionID uuid.UUID) (*slots.ResolvedOrder, error) {
		return h.review.Approve(c.Request.Context(), orderID, groupID, submissionID, actor(c))
	})
}

// Reject godoc
// @Summary     Reject a submission
// @Tags        review
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Param       group_id path string true "Order group ID"
// @Param       submission_id path string true "Site submission ID"
// @Param       request body models.RejectSubmissionRequest false "Reason"
// @Success     200 {object} review.View
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /orders/{order_id}/groups/{group_id}/submissions/{submission_id}/reject [post]
func (h *ReviewHandler) Reject(c *gin.Context) {
	var req models.RejectSubmissionRequest
	// body is optional
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, "invalid request body", err)
		return
	}

	h.mutate(c, func(orderID, groupID, submissionID uuid.UUID) (*slots.ResolvedOrder, error) {
		return h.review.Reject(c.Request.Context(), orderID, groupID, submissionID, actor(c), req.Reason)
	})
}

func (h *ReviewHandler) mutate(c *gin.Context, fn func(orderID, groupID, submissionID uuid.UUID) (*slots.ResolvedOrder, error)) {
	groupID, ok := uuidParam(c, "group_id")
	if !ok {
		return
	}
	submissionID, ok := uuidParam(c, "submission_id")
	if !ok {
		return
	}

	order, ok := loadOrder(c, h.dbClient)
	if !ok {
		return
	}

	resolved, err := fn(order.ID, groupID, submissionID)
	if err != nil {
		respondError(c, err)
		return
	}
	renderReview(c, h.review, resolved)
}
