package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"linkdesk-backend/internal/dataforseo"
	"linkdesk-backend/internal/models"
)

type DataForSEOHandler struct {
	analysis *dataforseo.Service
}

func NewDataForSEOHandler(svc *dataforseo.Service) *DataForSEOHandler {
	return &DataForSEOHandler{analysis: svc}
}

// CheckAnalyzed godoc
// @Summary     Check stored keyword analysis
// @Tags        dataforseo
// @Produce     json
// @Security    Bearer
// @Param       client_id path string true "Client ID"
// @Param       domainId query string true "Domain ID"
// @Success     200 {object} dataforseo.AnalysisStatus
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /clients/{client_id}/bulk-analysis/dataforseo/check-analyzed [get]
func (h *DataForSEOHandler) CheckAnalyzed(c *gin.Context) {
	clientID, domainID, ok := clientAndDomainQuery(c)
	if !ok {
		return
	}

	status, err := h.analysis.CheckAnalyzed(c.Request.Context(), clientID, domainID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Results godoc
// @Summary     Stored keyword results
// @Tags        dataforseo
// @Produce     json
// @Security    Bearer
// @Param       client_id path string true "Client ID"
// @Param       domainId query string true "Domain ID"
// @Param       limit query int false "Max results (default 100, max 1000)"
// @Success     200 {object} models.KeywordResultsResponse
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Router      /clients/{client_id}/bulk-analysis/dataforseo/results [get]
func (h *DataForSEOHandler) Results(c *gin.Context) {
	clientID, domainID, ok := clientAndDomainQuery(c)
	if !ok {
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "invalid limit", err)
			return
		}
		limit = n
	}

	results, err := h.analysis.Results(c.Request.Context(), clientID, domainID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.KeywordResultsResponse{
		DomainID: domainID.String(),
		Results:  results,
	})
}

// Analyze godoc
// @Summary     Run DataForSEO analysis
// @Description Fetches ranked keywords for the domain, keeps the requested ones and replaces the stored results. useCache serves a cached ranking when one exists.
// @Tags        dataforseo
// @Accept      json
// @Produce     json
// @Security    Bearer
// @Param       client_id path string true "Client ID"
// @Param       request body models.AnalyzeDataForSEORequest true "Analysis request"
// @Success     200 {object} dataforseo.AnalyzeResult
// @Failure     400 {object} models.ErrorResponse
// @Failure     404 {object} models.ErrorResponse
// @Failure     409 {object} models.ErrorResponse
// @Failure     500 {object} models.ErrorResponse
// @Router      /clients/{client_id}/bulk-analysis/analyze-dataforseo [post]
func (h *DataForSEOHandler) Analyze(c *gin.Context) {
	clientID, ok := uuidParam(c, "client_id")
	if !ok {
		return
	}

	var req models.AnalyzeDataForSEORequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body", err)
		return
	}
	domainID, err := uuid.Parse(req.DomainID)
	if err != nil {
		badRequest(c, "invalid domainId", err)
		return
	}

	result, err := h.analysis.Analyze(c.Request.Context(), dataforseo.AnalyzeRequest{
		ClientID: clientID,
		DomainID: domainID,
		Domain:   req.Domain,
		Keywords: req.Keywords,
		UseCache: req.UseCache,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func clientAndDomainQuery(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	clientID, ok := uuidParam(c, "client_id")
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	raw := c.Query("domainId")
	if raw == "" {
		respondError(c, dataforseo.ErrMissingDomain)
		return uuid.Nil, uuid.Nil, false
	}
	domainID, err := uuid.Parse(raw)
	if err != nil {
		badRequest(c, "invalid domainId", err)
		return uuid.Nil, uuid.Nil, false
	}
	return clientID, domainID, true
}
