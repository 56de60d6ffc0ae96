package supabase

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"linkdesk-backend/internal/models"
)

const domainColumns = `id, client_id, domain, qualification_status, keyword_count,
	has_dataforseo_results, ai_qualification_reasoning, ai_qualified_at,
	was_manually_qualified, was_human_verified, target_page_ids, notes,
	checked_by, checked_at, updated_at`

func scanDomain(row rowScanner) (*models.BulkAnalysisDomain, error) {
	var (
		d         models.BulkAnalysisDomain
		status    string
		aiAt      sql.NullTime
		checkedBy uuid.NullUUID
		checkedAt sql.NullTime
		pageIDs   pq.StringArray
	)
	err := row.Scan(&d.ID, &d.ClientID, &d.Domain, &status, &d.KeywordCount,
		&d.HasDataForSeoResults, &d.AIQualificationReasoning, &aiAt,
		&d.WasManuallyQualified, &d.WasHumanVerified, &pageIDs, &d.Notes,
		&checkedBy, &checkedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}

	d.QualificationStatus = models.QualificationStatus(status)
	d.TargetPageIDs = []string(pageIDs)
	if d.TargetPageIDs == nil {
		d.TargetPageIDs = []string{}
	}
	if aiAt.Valid {
		t := aiAt.Time
		d.AIQualifiedAt = &t
	}
	if checkedBy.Valid {
		id := checkedBy.UUID
		d.CheckedBy = &id
	}
	if checkedAt.Valid {
		t := checkedAt.Time
		d.CheckedAt = &t
	}
	return &d, nil
}

func (d *DatabaseClient) ListDomains(ctx context.Context, clientID uuid.UUID) ([]models.BulkAnalysisDomain, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+domainColumns+`
		FROM bulk_analysis_domains
		WHERE client_id = $1
		ORDER BY domain
	`, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	domains := []models.BulkAnalysisDomain{}
	for rows.Next() {
		dom, err := scanDomain(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, *dom)
	}
	return domains, rows.Err()
}

func (d *DatabaseClient) GetDomain(ctx context.Context, domainID uuid.UUID) (*models.BulkAnalysisDomain, error) {
	row := d.db.QueryRowContext(ctx, `SELECT `+domainColumns+` FROM bulk_analysis_domains WHERE id = $1`, domainID)
	dom, err := scanDomain(row)
	if err != nil {
		return nil, notFound(err, "domain")
	}
	return dom, nil
}

// SaveQualification persists the qualification fields of dom as a whole.
func (d *DatabaseClient) SaveQualification(ctx context.Context, dom *models.BulkAnalysisDomain) error {
	var (
		aiAt      sql.NullTime
		checkedBy uuid.NullUUID
		checkedAt sql.NullTime
	)
	if dom.AIQualifiedAt != nil {
		aiAt = sql.NullTime{Time: *dom.AIQualifiedAt, Valid: true}
	}
	if dom.CheckedBy != nil {
		checkedBy = uuid.NullUUID{UUID: *dom.CheckedBy, Valid: true}
	}
	if dom.CheckedAt != nil {
		checkedAt = sql.NullTime{Time: *dom.CheckedAt, Valid: true}
	}

	err := d.db.QueryRowContext(ctx, `
		UPDATE bulk_analysis_domains
		SET qualification_status = $1,
			ai_qualification_reasoning = $2,
			ai_qualified_at = $3,
			was_manually_qualified = $4,
			was_human_verified = $5,
			checked_by = $6,
			checked_at = $7,
			updated_at = NOW()
		WHERE id = $8
		RETURNING updated_at
	`, dom.QualificationStatus, dom.AIQualificationReasoning, aiAt,
		dom.WasManuallyQualified, dom.WasHumanVerified, checkedBy, checkedAt, dom.ID,
	).Scan(&dom.UpdatedAt)
	if err != nil {
		return notFound(err, "domain")
	}
	return nil
}
