package models

import "time"

type OrderListResponse struct {
	Orders []OrderSummary `json:"orders"`
}

type OrderSummary struct {
	ID        string      `json:"id"`
	Status    OrderStatus `json:"status"`
	CreatedAt time.Time   `json:"createdAt"`
	UpdatedAt time.Time   `json:"updatedAt"`
}

// MalformedOrderResponse tells the dashboard to leave the detail view.
type MalformedOrderResponse struct {
	Error    string `json:"error"`
	Redirect string `json:"redirect"`
}

type DomainListResponse struct {
	Domains []BulkAnalysisDomain `json:"domains"`
}

type QualificationResponse struct {
	Domain  *BulkAnalysisDomain `json:"domain"`
	Changed bool                `json:"changed"`
}

type KeywordResultsResponse struct {
	DomainID string          `json:"domainId"`
	Results  []KeywordResult `json:"results"`
}

type DraftListResponse struct {
	Drafts []DraftOrder `json:"drafts"`
}

type AutosaveResponse struct {
	DraftID string `json:"draftId"`
	Status  string `json:"status" example:"scheduled"`
}

type HealthResponse struct {
	Status   string            `json:"status"`
	Services map[string]string `json:"services,omitempty"`
}
