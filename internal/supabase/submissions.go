package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"linkdesk-backend/internal/models"
)

// canonicalTarget mirrors SiteSubmission.TargetPage in SQL.
const canonicalTarget = `COALESCE(NULLIF(target_page_url, ''), metadata->>'targetPageUrl', '')`

const effectiveStatus = `COALESCE(NULLIF(submission_status, ''), status)`

func (d *DatabaseClient) CreateSubmission(ctx context.Context, s *models.SiteSubmission) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Status == "" {
		s.Status = models.StatusPending
	}

	metadata, err := json.Marshal(s.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	var (
		domainID      uuid.NullUUID
		domain        sql.NullString
		qualification string
		domainNotes   string
		rank          sql.NullInt64
	)
	if s.DomainID != nil {
		domainID = uuid.NullUUID{UUID: *s.DomainID, Valid: true}
	}
	if s.Domain != nil {
		domain = sql.NullString{String: s.Domain.Domain, Valid: true}
		qualification = s.Domain.QualificationStatus
		domainNotes = s.Domain.Notes
	}
	if s.PoolRank != nil {
		rank = sql.NullInt64{Int64: int64(*s.PoolRank), Valid: true}
	}

	err = d.db.QueryRowContext(ctx, `
		INSERT INTO site_submissions (id, order_group_id, domain_id, domain, domain_qualification,
			domain_notes, price_cents, status, submission_status, target_page_url, anchor_text,
			selection_pool, pool_rank, notes, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING created_at, updated_at
	`, s.ID, s.OrderGroupID, domainID, domain, qualification, domainNotes, s.Price,
		s.Status, s.SubmissionStatus, s.TargetPageURL, s.AnchorText, s.SelectionPool,
		rank, s.Notes, metadata,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create site submission: %w", err)
	}
	return nil
}

// AssignTargetPage points the submission at a slot. The metadata copy of the
// target is dropped so the column is the only source.
func (d *DatabaseClient) AssignTargetPage(ctx context.Context, submissionID uuid.UUID, targetURL string) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE site_submissions
		SET target_page_url = $1,
			metadata = metadata - 'targetPageUrl',
			updated_at = NOW()
		WHERE id = $2
	`, targetURL, submissionID)
	if err != nil {
		return fmt.Errorf("failed to assign target page: %w", err)
	}
	return requireRow(res, "site submission")
}

// SetSubmissionStatus writes status to both status columns so older readers
// agree with the review-facing one.
func (d *DatabaseClient) SetSubmissionStatus(ctx context.Context, submissionID uuid.UUID, status models.SubmissionStatus, reason string) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE site_submissions
		SET status = $1,
			submission_status = $1,
			rejection_reason = CASE WHEN $2 <> '' THEN $2 ELSE rejection_reason END,
			updated_at = NOW()
		WHERE id = $3
	`, status, reason, submissionID)
	if err != nil {
		return fmt.Errorf("failed to update submission status: %w", err)
	}
	return requireRow(res, "site submission")
}

// UpdateLineItem applies a partial update; nil fields are left untouched.
func (d *DatabaseClient) UpdateLineItem(ctx context.Context, submissionID uuid.UUID, status *models.SubmissionStatus, notes *string) error {
	var (
		statusArg sql.NullString
		notesArg  sql.NullString
	)
	if status != nil {
		statusArg = sql.NullString{String: string(*status), Valid: true}
	}
	if notes != nil {
		notesArg = sql.NullString{String: *notes, Valid: true}
	}

	res, err := d.db.ExecContext(ctx, `
		UPDATE site_submissions
		SET status = COALESCE($1, status),
			submission_status = COALESCE($1, submission_status),
			notes = COALESCE($2, notes),
			updated_at = NOW()
		WHERE id = $3
	`, statusArg, notesArg, submissionID)
	if err != nil {
		return fmt.Errorf("failed to update line item: %w", err)
	}
	return requireRow(res, "site submission")
}

// SwitchToPrimary promotes an alternative to primary for its slot target and
// demotes the current primary, swapping their ranks. It returns ErrConflict
// when the submission is no longer an alternative.
func (d *DatabaseClient) SwitchToPrimary(ctx context.Context, groupID, submissionID uuid.UUID) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		target string
		pool   string
		rank   sql.NullInt64
	)
	err = tx.QueryRowContext(ctx, `
		SELECT `+canonicalTarget+`, selection_pool, pool_rank
		FROM site_submissions
		WHERE id = $1 AND order_group_id = $2
		FOR UPDATE
	`, submissionID, groupID).Scan(&target, &pool, &rank)
	if err != nil {
		return notFound(err, "site submission")
	}
	if models.SelectionPool(pool) != models.PoolAlternative {
		return fmt.Errorf("submission is %q, not alternative: %w", pool, ErrConflict)
	}

	var (
		currentID   uuid.UUID
		currentRank sql.NullInt64
	)
	err = tx.QueryRowContext(ctx, `
		SELECT id, pool_rank
		FROM site_submissions
		WHERE order_group_id = $1
			AND selection_pool = 'primary'
			AND `+canonicalTarget+` = $2
			AND `+effectiveStatus+` NOT IN ('rejected', 'client_rejected')
		ORDER BY COALESCE(pool_rank, 1), created_at, id
		LIMIT 1
		FOR UPDATE
	`, groupID, target).Scan(&currentID, &currentRank)
	hasPrimary := true
	if err == sql.ErrNoRows {
		hasPrimary = false
	} else if err != nil {
		return fmt.Errorf("failed to find current primary: %w", err)
	}

	promotedRank := sql.NullInt64{Int64: models.DefaultPoolRank, Valid: true}
	if hasPrimary {
		if currentRank.Valid {
			promotedRank = currentRank
		}
		if _, err := tx.ExecContext(ctx, `
			UPDATE site_submissions
			SET selection_pool = 'alternative', pool_rank = $1, updated_at = NOW()
			WHERE id = $2
		`, rank, currentID); err != nil {
			return fmt.Errorf("failed to demote primary: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE site_submissions
		SET selection_pool = 'primary', pool_rank = $1, updated_at = NOW()
		WHERE id = $2
	`, promotedRank, submissionID); err != nil {
		return fmt.Errorf("failed to promote alternative: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit pool switch: %w", err)
	}
	return nil
}
