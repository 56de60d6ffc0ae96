package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type SubmissionStatus string

const (
	StatusPending        SubmissionStatus = "pending"
	StatusSubmitted      SubmissionStatus = "submitted"
	StatusApproved       SubmissionStatus = "approved"
	StatusRejected       SubmissionStatus = "rejected"
	StatusClientApproved SubmissionStatus = "client_approved"
	StatusClientRejected SubmissionStatus = "client_rejected"
)

func (s SubmissionStatus) Valid() bool {
	switch s {
	case StatusPending, StatusSubmitted, StatusApproved, StatusRejected,
		StatusClientApproved, StatusClientRejected:
		return true
	}
	return false
}

func (s SubmissionStatus) IsRejection() bool {
	return s == StatusRejected || s == StatusClientRejected
}

type SelectionPool string

const (
	PoolPrimary     SelectionPool = "primary"
	PoolAlternative SelectionPool = "alternative"
)

// DefaultPoolRank is used when a submission carries no explicit rank.
const DefaultPoolRank = 1

type SubmissionDomain struct {
	Domain              string `json:"domain"`
	QualificationStatus string `json:"qualificationStatus,omitempty"`
	Notes               string `json:"notes,omitempty"`
}

type SiteSubmission struct {
	ID               uuid.UUID          `json:"id"`
	OrderGroupID     uuid.UUID          `json:"orderGroupId"`
	DomainID         *uuid.UUID         `json:"domainId,omitempty"`
	Domain           *SubmissionDomain  `json:"domain"`
	Price            int64              `json:"price"`
	Status           SubmissionStatus   `json:"status"`
	SubmissionStatus SubmissionStatus   `json:"submissionStatus,omitempty"`
	TargetPageURL    string             `json:"targetPageUrl,omitempty"`
	AnchorText       string             `json:"anchorText,omitempty"`
	SelectionPool    SelectionPool      `json:"selectionPool,omitempty"`
	PoolRank         *int               `json:"poolRank,omitempty"`
	Notes            string             `json:"notes,omitempty"`
	RejectionReason  string             `json:"rejectionReason,omitempty"`
	Metadata         SubmissionMetadata `json:"metadata"`
	CreatedAt        time.Time          `json:"createdAt"`
	UpdatedAt        time.Time          `json:"updatedAt"`
}

// TargetPage returns the slot this submission is assigned to. The column wins
// over the metadata copy; both mean the same thing.
func (s *SiteSubmission) TargetPage() string {
	if s.TargetPageURL != "" {
		return s.TargetPageURL
	}
	return s.Metadata.TargetPageURL
}

func (s *SiteSubmission) IsAssigned() bool {
	return s.TargetPage() != ""
}

// EffectiveStatus collapses status and submissionStatus; the latter is the
// review-facing field and wins when set.
func (s *SiteSubmission) EffectiveStatus() SubmissionStatus {
	if s.SubmissionStatus != "" {
		return s.SubmissionStatus
	}
	return s.Status
}

func (s *SiteSubmission) IsRejected() bool {
	return s.EffectiveStatus().IsRejection()
}

func (s *SiteSubmission) Rank() int {
	if s.PoolRank == nil {
		return DefaultPoolRank
	}
	return *s.PoolRank
}

func (s *SiteSubmission) DomainName() string {
	if s.Domain == nil {
		return ""
	}
	return s.Domain.Domain
}

type Evidence struct {
	DirectCount  int `json:"directCount"`
	RelatedCount int `json:"relatedCount"`
}

// SubmissionMetadata is the typed extension record written by the analysis
// pipeline. Keys it does not know are kept in Extra and written back as-is.
type SubmissionMetadata struct {
	TargetPageURL            string                     `json:"targetPageUrl,omitempty"`
	AnchorText               string                     `json:"anchorText,omitempty"`
	QualificationStatus      string                     `json:"qualificationStatus,omitempty"`
	OverlapStatus            string                     `json:"overlapStatus,omitempty"`
	AuthorityDirect          string                     `json:"authorityDirect,omitempty"`
	AuthorityRelated         string                     `json:"authorityRelated,omitempty"`
	Evidence                 *Evidence                  `json:"evidence,omitempty"`
	HasDataForSeoResults     bool                       `json:"hasDataForSeoResults,omitempty"`
	AIQualificationReasoning string                     `json:"aiQualificationReasoning,omitempty"`
	Extra                    map[string]json.RawMessage `json:"-"`
}

var metadataKeys = []string{
	"targetPageUrl", "anchorText", "qualificationStatus", "overlapStatus",
	"authorityDirect", "authorityRelated", "evidence", "hasDataForSeoResults",
	"aiQualificationReasoning",
}

type metadataAlias SubmissionMetadata

func (m *SubmissionMetadata) UnmarshalJSON(data []byte) error {
	var known metadataAlias
	if err := json.Unmarshal(data, &known); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, k := range metadataKeys {
		delete(all, k)
	}
	if len(all) == 0 {
		all = nil
	}

	*m = SubmissionMetadata(known)
	m.Extra = all
	return nil
}

func (m SubmissionMetadata) MarshalJSON() ([]byte, error) {
	known, err := json.Marshal(metadataAlias(m))
	if err != nil {
		return nil, err
	}
	if len(m.Extra) == 0 {
		return known, nil
	}

	merged := make(map[string]json.RawMessage, len(m.Extra)+len(metadataKeys))
	for k, v := range m.Extra {
		merged[k] = v
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(known, &fields); err != nil {
		return nil, err
	}
	for k, v := range fields {
		merged[k] = v
	}
	return json.Marshal(merged)
}
