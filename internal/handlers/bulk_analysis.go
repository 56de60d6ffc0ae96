package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"linkdesk-backend/internal/models"
	"linkdesk-backend/internal/qualification"
)

type BulkAnalysisHandler struct {
	qualification *qualification.Service
}

func NewBulkAnalysisHandler(svc *qualification.Service) *BulkAnalysisHandler {
	return &BulkAnalysisHandler{qualification: svc}
}

// ListDomains godoc
// @Summary     List bulk analysis domains
// @Tags        bulk-analysis
// @Produce     json
// @Security    Bearer
// @Param       client_id path string true "Client ID"
// @Success     200 {object} models.DomainListResponse
// @Failure     403 {object} models.ErrorResponse
// @Router      /clients/{client_id}/bulk-analysis/domains [get]
func (h *BulkAnalysisHandler) ListDomains(c *gin.Context) {
	clientID, ok := uuidParam(c, "client_id")
	if !ok {
		return
	}

	domains, err := h.qualification.List(c.Request.Context(), clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.DomainListResponse{Domains: domains})
}

// UpdateStatus godoc
// @Summary     Set qualification status
// @Description Sets the verdict from any state; isManual=true also marks it manual and a manual pending resets the domain. source=ai records an automated verdict, which only applies to pending domains never judged by hand.
// @Tags        bulk-analysis
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       client_id path string true "Client ID"
// @Param       domain_id path string true "Domain ID"
// @Param       request body models.UpdateQualificationRequest true "Verdict"
// @Success     200 {object} models.QualificationResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Router      /clients/{client_id}/bulk-analysis/domains/{domain_id}/status [post]
func (h *BulkAnalysisHandler) UpdateStatus(c *gin.Context) {
	clientID, domainID, ok := clientDomainParams(c)
	if !ok {
		return
	}

	var req models.UpdateQualificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	var (
		domain  *models.BulkAnalysisDomain
		changed bool
		err     error
	)
	switch {
	case req.Source == string(qualification.SourceAI):
		domain, changed, err = h.qualification.QualifyWithAI(c.Request.Context(), clientID, domainID, req.Status, req.Reasoning)
	case req.Source != "":
		badRequest(c, "invalid source", fmt.Errorf("%q: %w", req.Source, qualification.ErrInvalidSource))
		return
	default:
		userID, ok := currentUser(c)
		if !ok {
			return
		}
		source := qualification.SourceUpdate
		if req.IsManual {
			source = qualification.SourceDropdown
			if req.Status == models.QualificationPending {
				source = qualification.SourceReset
			}
		}
		domain, changed, err = h.qualification.UpdateStatus(c.Request.Context(), clientID, domainID, req.Status, source, &userID)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.QualificationResponse{Domain: domain, Changed: changed})
}

// Verify godoc
// @Summary     Verify a verdict
// @Description Marks the current non-pending verdict as checked by a human
// @Tags        bulk-analysis
// @Produce     json
// @Security    Bearer
// @Param       client_id path string true "Client ID"
// @Param       domain_id path string true "Domain ID"
// @Success     200 {object} models.QualificationResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     422 {object} models.ErrorResponse
// @Router      /clients/{client_id}/bulk-analysis/domains/{domain_id}/verify [post]
func (h *BulkAnalysisHandler) Verify(c *gin.Context) {
	clientID, domainID, ok := clientDomainParams(c)
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	domain, changed, err := h.qualification.Verify(c.Request.Context(), clientID, domainID, &userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.QualificationResponse{Domain: domain, Changed: changed})
}

// Shortcut godoc
// @Summary     Keyboard shortcut
// @Description Feeds one key to the caller's table navigator: j/k or arrows move focus, 1/2/3 qualify the focused pending domain. domainId in the path (or body) focuses that row first.
// @Tags        bulk-analysis
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       client_id path string true "Client ID"
// @Param       domain_id path string true "Domain ID to focus"
// @Param       request body models.ShortcutRequest true "Key"
// @Success     200 {object} qualification.ShortcutResult
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /clients/{client_id}/bulk-analysis/domains/{domain_id}/shortcut [post]
func (h *BulkAnalysisHandler) Shortcut(c *gin.Context) {
	clientID, ok := uuidParam(c, "client_id")
	if !ok {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.ShortcutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}

	raw := c.Param("domain_id")
	if raw == "" && req.DomainID != nil {
		raw = *req.DomainID
	}
	var focus *uuid.UUID
	if raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			badRequest(c, "invalid domain id", err)
			return
		}
		focus = &id
	}

	result, err := h.qualification.Shortcut(c.Request.Context(), clientID, userID, focus, req.Key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func clientDomainParams(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	clientID, ok := uuidParam(c, "client_id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	domainID, ok := uuidParam(c, "domain_id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	return clientID, domainID, true
}
