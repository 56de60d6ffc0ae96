package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"linkdesk-backend/internal/middleware"
	"linkdesk-backend/internal/models"
	"linkdesk-backend/internal/review"
	"linkdesk-backend/internal/services"
	"linkdesk-backend/internal/slots"
	"linkdesk-backend/internal/supabase"
	"linkdesk-backend/internal/workflow"
)

// OrderStore is the order persistence the HTTP layer reads and writes
// directly. Review mutations go through review.Service instead.
type OrderStore interface {
	ListOrders(ctx context.Context, accountID uuid.UUID) ([]models.Order, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to models.OrderStatus) error
	DeleteOrder(ctx context.Context, orderID uuid.UUID) error
	UpdateGroupTargets(ctx context.Context, groupID uuid.UUID, pages []models.TargetPage, anchors []string) error
}

type OrdersHandler struct {
	dbClient OrderStore
	review   *review.Service
	exports  *services.ExportService
}

func NewOrdersHandler(dbClient OrderStore, reviewService *review.Service, exports *services.ExportService) *OrdersHandler {
	return &OrdersHandler{
		dbClient: dbClient,
		review:   reviewService,
		exports:  exports,
	}
}

// ListOrders godoc
// @Summary     List orders
// @Description Lists the orders of the authenticated account, newest first
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.OrderListResponse
// @Failure     401 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /orders [get]
func (h *OrdersHandler) ListOrders(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	orders, err := h.dbClient.ListOrders(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := models.OrderListResponse{Orders: make([]models.OrderSummary, len(orders))}
	for i, o := range orders {
		response.Orders[i] = models.OrderSummary{
			ID:        o.ID.String(),
			Status:    o.Status,
			CreatedAt: o.CreatedAt,
			UpdatedAt: o.UpdatedAt,
		}
	}
	c.JSON(http.StatusOK, response)
}

// GetOrder godoc
// @Summary     Get order
// @Description Returns the order with its groups and site submissions
// @Tags        orders
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Success     200 {object} models.Order
// @Failure     404 {object} models.ErrorResponse
// @Failure     422 {object} models.MalformedOrderResponse
// @Router      /orders/{order_id} [get]
func (h *OrdersHandler) GetOrder(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, order)
}

// DeleteOrder godoc
// @Summary     Delete order
// @Description Deletes a draft, pending or cancelled order with its groups, submissions and stored exports
// @Tags        orders
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Success     204
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /orders/{order_id} [delete]
func (h *OrdersHandler) DeleteOrder(c *gin.Context) {
	order, ok := h.loadOrder(c)
	if !ok {
		return
	}

	if !workflow.Deletable(order.Status) {
		respondError(c, fmt.Errorf("order is %s: %w", order.Status, supabase.ErrConflict))
		return
	}

	if err := h.dbClient.DeleteOrder(c.Request.Context(), order.ID); err != nil {
		respondError(c, err)
		return
	}

	// exports are only files; a failed cleanup does not undo the delete
	if h.exports != nil {
		_ = h.exports.RemoveExports(order.ID)
	}

	c.Status(http.StatusNoContent)
}

// UpdateState godoc
// @Summary     Change order status
// @Description Moves the order along its workflow. Undefined transitions are rejected.
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Param       request body models.UpdateOrderStateRequest true "Target status"
// @Success     200 {object} models.OrderSummary
// @Failure     400 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /orders/{order_id}/state [post]
func (h *OrdersHandler) UpdateState(c *gin.Context) {
	var req models.UpdateOrderStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	order, ok := h.loadOrder(c)
	if !ok {
		return
	}

	if err := workflow.Validate(order.Status, req.Status); err != nil {
		respondError(c, err)
		return
	}
	if err := h.dbClient.UpdateOrderStatus(c.Request.Context(), order.ID, order.Status, req.Status); err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.dbClient.GetOrder(c.Request.Context(), order.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OrderSummary{
		ID:        updated.ID.String(),
		Status:    updated.Status,
		CreatedAt: updated.CreatedAt,
		UpdatedAt: updated.UpdatedAt,
	})
}

// UpdateGroupTargets godoc
// @Summary     Edit target pages and anchors
// @Description Replaces a group's target pages and anchor texts while the order is still a draft or pending confirmation
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Param       group_id path string true "Order group ID"
// @Param       request body models.UpdateGroupTargetsRequest true "Target pages and anchors"
// @Success     200 {object} models.Order
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /orders/{order_id}/groups/{group_id} [put]
func (h *OrdersHandler) UpdateGroupTargets(c *gin.Context) {
	groupID, ok := uuidParam(c, "group_id")
	if !ok {
		return
	}

	var req models.UpdateGroupTargetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	for i, tp := range req.TargetPages {
		if strings.TrimSpace(tp.URL) == "" {
			badRequest(c, fmt.Sprintf("targetPages[%d].url is required", i), nil)
			return
		}
	}

	order, ok := h.loadOrder(c)
	if !ok {
		return
	}
	if order.Group(groupID) == nil {
		respondError(c, fmt.Errorf("group %s: %w", groupID, review.ErrGroupNotFound))
		return
	}
	if !order.TargetPagesEditable() && !middleware.IsInternal(c) {
		respondError(c, fmt.Errorf("order is %s: %w", order.Status, supabase.ErrConflict))
		return
	}

	if err := h.dbClient.UpdateGroupTargets(c.Request.Context(), groupID, req.TargetPages, req.AnchorTexts); err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.dbClient.GetOrder(c.Request.Context(), order.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

// UpdateLineItem godoc
// @Summary     Update a line item
// @Description Changes the status and/or notes of a site submission and returns the re-resolved review
// @Tags        orders
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       order_id path string true "Order ID"
// @Param       item_id path string true "Site submission ID"
// @Param       request body models.UpdateLineItemRequest true "Fields to change"
// @Success     200 {object} review.View
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /orders/{order_id}/line-items/{item_id} [patch]
func (h *OrdersHandler) UpdateLineItem(c *gin.Context) {
	itemID, ok := uuidParam(c, "item_id")
	if !ok {
		return
	}

	var req models.UpdateLineItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	order, ok := h.loadOrder(c)
	if !ok {
		return
	}

	resolved, err := h.review.UpdateLineItem(c.Request.Context(), order.ID, itemID, review.LineItemUpdate{
		Status: req.Status,
		Notes:  req.Notes,
	}, actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	renderReview(c, h.review, resolved)
}

// loadOrder fetches the :order_id order and checks the caller may see it.
// It writes the error response itself and returns false on failure.
func (h *OrdersHandler) loadOrder(c *gin.Context) (*models.Order, bool) {
	return loadOrder(c, h.dbClient)
}

func loadOrder(c *gin.Context, store OrderStore) (*models.Order, bool) {
	orderID, err := uuid.Parse(c.Param("order_id"))
	if err != nil || orderID == uuid.Nil {
		respondError(c, slots.ErrMalformedOrder)
		return nil, false
	}

	order, err := store.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		respondError(c, err)
		return nil, false
	}

	if !middleware.IsInternal(c) && order.AccountID.String() != middleware.UserID(c) {
		respondError(c, fmt.Errorf("order %s: %w", orderID, errForbidden))
		return nil, false
	}
	return order, true
}

// tableState reads the expand/edit query parameters against the order's
// groups.
func tableState(c *gin.Context, resolved *slots.ResolvedOrder) (*review.TableState, error) {
	groupIDs := make([]uuid.UUID, len(resolved.Groups))
	for i, g := range resolved.Groups {
		groupIDs[i] = g.GroupID
	}
	return review.ParseTableState(c.Query("expand"), c.Query("edit"), groupIDs)
}

// renderReview writes the review view after a mutation. An unusable table
// state falls back to the collapsed default; the mutation already happened.
func renderReview(c *gin.Context, svc *review.Service, resolved *slots.ResolvedOrder) {
	state, err := tableState(c, resolved)
	if err != nil {
		state = review.NewTableState()
	}
	c.JSON(http.StatusOK, svc.Render(resolved, state))
}
