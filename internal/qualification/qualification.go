// Package qualification implements domain triage for bulk analysis: who may
// set which verdict, keyboard navigation and the persistence flow.
package qualification

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"linkdesk-backend/internal/models"
)

var (
	ErrInvalidStatus  = errors.New("invalid qualification status")
	ErrInvalidSource  = errors.New("invalid qualification source")
	ErrNotQualified   = errors.New("domain has no verdict to verify")
	ErrDomainNotFound = errors.New("domain not found")
)

// Source says where a verdict came from.
type Source string

const (
	// SourceDropdown is the explicit menu; it may re-classify from any state.
	SourceDropdown Source = "dropdown"
	// SourceShortcut is a 1/2/3 key press; it only acts on pending domains.
	SourceShortcut Source = "shortcut"
	// SourceAI is the automated qualifier; it never overrides a human.
	SourceAI Source = "ai"
	// SourceReset returns a domain to pending.
	SourceReset Source = "reset"
	// SourceUpdate is a plain status write from the API; it sets the verdict
	// from any state and leaves the provenance flags alone.
	SourceUpdate Source = "update"
)

func (s Source) Valid() bool {
	switch s {
	case SourceDropdown, SourceShortcut, SourceAI, SourceReset, SourceUpdate:
		return true
	}
	return false
}

// ShortcutStatus maps the keys 1, 2 and 3 to their verdicts.
var ShortcutStatus = map[string]models.QualificationStatus{
	"1": models.QualificationHighQuality,
	"2": models.QualificationAverage,
	"3": models.QualificationDisqualified,
}

type Change struct {
	Status    models.QualificationStatus
	Source    Source
	Reasoning string
	Actor     *uuid.UUID
	At        time.Time
}

// Apply updates d in place and reports whether anything changed. Changes the
// source is not allowed to make are silent no-ops, not errors.
func Apply(d *models.BulkAnalysisDomain, c Change) (bool, error) {
	if !c.Source.Valid() {
		return false, fmt.Errorf("%q: %w", c.Source, ErrInvalidSource)
	}
	if c.Source == SourceReset {
		c.Status = models.QualificationPending
	}
	if !c.Status.Valid() {
		return false, fmt.Errorf("%q: %w", c.Status, ErrInvalidStatus)
	}

	pending := d.QualificationStatus == models.QualificationPending

	switch c.Source {
	case SourceDropdown:
		if d.QualificationStatus == c.Status && d.WasManuallyQualified {
			return false, nil
		}
		d.QualificationStatus = c.Status
		d.WasManuallyQualified = c.Status != models.QualificationPending
		d.WasHumanVerified = false
		stampChecked(d, c)

	case SourceUpdate:
		if d.QualificationStatus == c.Status {
			return false, nil
		}
		d.QualificationStatus = c.Status
		stampChecked(d, c)

	case SourceShortcut:
		if !pending || c.Status == models.QualificationPending {
			return false, nil
		}
		d.QualificationStatus = c.Status
		d.WasManuallyQualified = true
		stampChecked(d, c)

	case SourceAI:
		if !pending || d.WasManuallyQualified || c.Status == models.QualificationPending {
			return false, nil
		}
		at := c.At
		d.QualificationStatus = c.Status
		d.AIQualificationReasoning = c.Reasoning
		d.AIQualifiedAt = &at

	case SourceReset:
		if pending && !d.WasManuallyQualified && !d.WasHumanVerified {
			return false, nil
		}
		d.QualificationStatus = models.QualificationPending
		d.WasManuallyQualified = false
		d.WasHumanVerified = false
		stampChecked(d, c)
	}
	return true, nil
}

// Verify records that a human confirmed the current verdict.
func Verify(d *models.BulkAnalysisDomain, actor *uuid.UUID, at time.Time) (bool, error) {
	if d.QualificationStatus == models.QualificationPending {
		return false, ErrNotQualified
	}
	if d.WasHumanVerified {
		return false, nil
	}
	d.WasHumanVerified = true
	stampChecked(d, Change{Actor: actor, At: at})
	return true, nil
}

func stampChecked(d *models.BulkAnalysisDomain, c Change) {
	at := c.At
	d.CheckedAt = &at
	d.CheckedBy = c.Actor
}
