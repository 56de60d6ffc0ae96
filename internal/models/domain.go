package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type QualificationStatus string

const (
	QualificationPending      QualificationStatus = "pending"
	QualificationHighQuality  QualificationStatus = "high_quality"
	QualificationAverage      QualificationStatus = "average_quality"
	QualificationDisqualified QualificationStatus = "disqualified"
)

func (q QualificationStatus) Valid() bool {
	switch q {
	case QualificationPending, QualificationHighQuality, QualificationAverage, QualificationDisqualified:
		return true
	}
	return false
}

// BulkAnalysisDomain is a candidate domain under triage for a client,
// independent of any order.
type BulkAnalysisDomain struct {
	ID                       uuid.UUID           `json:"id"`
	ClientID                 uuid.UUID           `json:"clientId"`
	Domain                   string              `json:"domain"`
	QualificationStatus      QualificationStatus `json:"qualificationStatus"`
	KeywordCount             int                 `json:"keywordCount"`
	HasDataForSeoResults     bool                `json:"hasDataForSeoResults"`
	AIQualificationReasoning string              `json:"aiQualificationReasoning,omitempty"`
	AIQualifiedAt            *time.Time          `json:"aiQualifiedAt,omitempty"`
	WasManuallyQualified     bool                `json:"wasManuallyQualified"`
	WasHumanVerified         bool                `json:"wasHumanVerified"`
	TargetPageIDs            []string            `json:"targetPageIds"`
	Notes                    string              `json:"notes,omitempty"`
	CheckedBy                *uuid.UUID          `json:"checkedBy,omitempty"`
	CheckedAt                *time.Time          `json:"checkedAt,omitempty"`
	UpdatedAt                time.Time           `json:"updatedAt"`
}

type KeywordResult struct {
	DomainID     uuid.UUID `json:"domainId"`
	Keyword      string    `json:"keyword"`
	Position     int       `json:"position"`
	SearchVolume int64     `json:"searchVolume"`
	URL          string    `json:"url"`
	AnalyzedAt   time.Time `json:"analyzedAt"`
}

// KeywordSummary describes what is stored for a domain's last analysis.
type KeywordSummary struct {
	Count          int
	LastAnalyzedAt *time.Time
}

type DraftOrder struct {
	ID        uuid.UUID       `json:"id"`
	AccountID uuid.UUID       `json:"accountId"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

type ReviewEventType string

const (
	EventAssigned ReviewEventType = "assigned"
	EventSwitched ReviewEventType = "switched"
	EventApproved ReviewEventType = "approved"
	EventRejected ReviewEventType = "rejected"
	EventUpdated  ReviewEventType = "updated"
	EventExported ReviewEventType = "exported"
)

type ReviewEvent struct {
	OrderID      uuid.UUID              `json:"order_id"`
	GroupID      *uuid.UUID             `json:"group_id,omitempty"`
	SubmissionID *uuid.UUID             `json:"submission_id,omitempty"`
	Type         ReviewEventType        `json:"type"`
	ActorID      string                 `json:"actor_id,omitempty"`
	Payload      map[string]interface{} `json:"payload,omitempty"`
}
