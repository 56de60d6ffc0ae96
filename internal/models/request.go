package models

import "encoding/json"

type UpdateOrderStateRequest struct {
	Status OrderStatus `json:"status" binding:"required" example:"client_review"`
}

type UpdateGroupTargetsRequest struct {
	TargetPages []TargetPage `json:"targetPages" binding:"required"`
	AnchorTexts []string     `json:"anchorTexts"`
}

// UpdateLineItemRequest changes a submission's status, notes or both.
type UpdateLineItemRequest struct {
	Status *SubmissionStatus `json:"status,omitempty" example:"approved"`
	Notes  *string           `json:"notes,omitempty"`
}

type AssignTargetPageRequest struct {
	TargetPageURL string `json:"targetPageUrl" binding:"required" example:"https://client.example/services"`
}

type RejectSubmissionRequest struct {
	Reason string `json:"reason,omitempty"`
}

// UpdateQualificationRequest sets a domain verdict. isManual also marks the
// domain as manually qualified. source "ai" records an automated verdict,
// which only lands on pending domains that no human has qualified.
type UpdateQualificationRequest struct {
	Status    QualificationStatus `json:"status" binding:"required" example:"high_quality"`
	IsManual  bool                `json:"isManual"`
	Source    string              `json:"source,omitempty" example:"ai"`
	Reasoning string              `json:"reasoning,omitempty"`
}

type ShortcutRequest struct {
	Key      string  `json:"key" binding:"required" example:"j"`
	DomainID *string `json:"domainId,omitempty"`
}

type AnalyzeDataForSEORequest struct {
	DomainID string   `json:"domainId" binding:"required"`
	Domain   string   `json:"domain,omitempty" example:"blog.example"`
	Keywords []string `json:"keywords,omitempty"`
	UseCache bool     `json:"useCache"`
}

type DraftRequest struct {
	Payload json.RawMessage `json:"payload" swaggertype:"object"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
