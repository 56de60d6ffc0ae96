package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"linkdesk-backend/internal/drafts"
	"linkdesk-backend/internal/models"
)

type DraftsHandler struct {
	drafts *drafts.Service
}

func NewDraftsHandler(svc *drafts.Service) *DraftsHandler {
	return &DraftsHandler{drafts: svc}
}

// CreateDraft godoc
// @Summary     Create a draft order
// @Tags        drafts
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       request body models.DraftRequest false "Initial payload"
// @Success     201 {object} models.DraftOrder
// @Failure     400 {object} models.ErrorResponse
// @Router      /orders/drafts [post]
func (h *DraftsHandler) CreateDraft(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.DraftRequest
	// body is optional; an empty draft starts as {}
	_ = c.ShouldBindJSON(&req)

	draft, err := h.drafts.Create(c.Request.Context(), userID, req.Payload)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, draft)
}

// SaveDraft godoc
// @Summary     Save a draft order
// @Description Writes the payload immediately, or with autosave=true queues it behind the per-draft debounce window and answers 202
// @Tags        drafts
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       draft_id path string true "Draft ID"
// @Param       autosave query bool false "Debounce the write"
// @Param       request body models.DraftRequest true "Payload"
// @Success     202 {object} models.AutosaveResponse
// @Success     204
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     503 {object} models.ErrorResponse
// @Router      /orders/drafts/{draft_id} [put]
func (h *DraftsHandler) SaveDraft(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	draftID, ok := uuidParam(c, "draft_id")
	if !ok {
		return
	}

	var req models.DraftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	if c.Query("autosave") == "true" {
		if err := h.drafts.Autosave(userID, draftID, req.Payload); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusAccepted, models.AutosaveResponse{DraftID: draftID.String(), Status: "scheduled"})
		return
	}

	if err := h.drafts.Save(c.Request.Context(), userID, draftID, req.Payload); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListDrafts godoc
// @Summary     List draft orders
// @Tags        drafts
// @Produce     json
// @Security    Bearer
// @Success     200 {object} models.DraftListResponse
// @Router      /orders/drafts [get]
func (h *DraftsHandler) ListDrafts(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	list, err := h.drafts.List(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DraftListResponse{Drafts: list})
}
