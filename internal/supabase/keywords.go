package supabase

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"linkdesk-backend/internal/models"
)

// ReplaceKeywordResults swaps the stored results of a domain for results and
// refreshes the domain's keyword counters in the same transaction.
func (d *DatabaseClient) ReplaceKeywordResults(ctx context.Context, domainID uuid.UUID, results []models.KeywordResult) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM keyword_analysis_results WHERE domain_id = $1`, domainID); err != nil {
		return fmt.Errorf("failed to clear keyword results: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO keyword_analysis_results (domain_id, keyword, position, search_volume, url, analyzed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare keyword insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range results {
		if _, err := stmt.ExecContext(ctx, domainID, r.Keyword, r.Position, r.SearchVolume, r.URL, r.AnalyzedAt); err != nil {
			return fmt.Errorf("failed to insert keyword %q: %w", r.Keyword, err)
		}
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE bulk_analysis_domains
		SET keyword_count = $1, has_dataforseo_results = $2, updated_at = NOW()
		WHERE id = $3
	`, len(results), len(results) > 0, domainID)
	if err != nil {
		return fmt.Errorf("failed to update domain keyword count: %w", err)
	}
	if err := requireRow(res, "domain"); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit keyword results: %w", err)
	}
	return nil
}

func (d *DatabaseClient) KeywordResults(ctx context.Context, domainID uuid.UUID, limit int) ([]models.KeywordResult, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT domain_id, keyword, position, search_volume, url, analyzed_at
		FROM keyword_analysis_results
		WHERE domain_id = $1
		ORDER BY position, keyword
		LIMIT $2
	`, domainID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list keyword results: %w", err)
	}
	defer rows.Close()

	results := []models.KeywordResult{}
	for rows.Next() {
		var r models.KeywordResult
		if err := rows.Scan(&r.DomainID, &r.Keyword, &r.Position, &r.SearchVolume, &r.URL, &r.AnalyzedAt); err != nil {
			return nil, fmt.Errorf("failed to scan keyword result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (d *DatabaseClient) KeywordSummary(ctx context.Context, domainID uuid.UUID) (models.KeywordSummary, error) {
	var (
		summary models.KeywordSummary
		last    sql.NullTime
	)
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*), MAX(analyzed_at)
		FROM keyword_analysis_results
		WHERE domain_id = $1
	`, domainID).Scan(&summary.Count, &last)
	if err != nil {
		return summary, fmt.Errorf("failed to summarize keyword results: %w", err)
	}
	if last.Valid {
		t := last.Time
		summary.LastAnalyzedAt = &t
	}
	return summary, nil
}
