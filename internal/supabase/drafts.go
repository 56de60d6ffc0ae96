package supabase

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"linkdesk-backend/internal/models"
)

func (d *DatabaseClient) CreateDraft(ctx context.Context, draft *models.DraftOrder) error {
	if draft.ID == uuid.Nil {
		draft.ID = uuid.New()
	}
	if len(draft.Payload) == 0 {
		draft.Payload = json.RawMessage(`{}`)
	}

	err := d.db.QueryRowContext(ctx, `
		INSERT INTO order_drafts (id, account_id, payload)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at
	`, draft.ID, draft.AccountID, []byte(draft.Payload)).Scan(&draft.CreatedAt, &draft.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create draft: %w", err)
	}
	return nil
}

// SaveDraft overwrites the payload of a draft owned by accountID.
func (d *DatabaseClient) SaveDraft(ctx context.Context, accountID, draftID uuid.UUID, payload json.RawMessage) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE order_drafts
		SET payload = $1, updated_at = NOW()
		WHERE id = $2 AND account_id = $3
	`, []byte(payload), draftID, accountID)
	if err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return requireRow(res, "draft")
}

func (d *DatabaseClient) ListDrafts(ctx context.Context, accountID uuid.UUID) ([]models.DraftOrder, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT id, account_id, payload, created_at, updated_at
		FROM order_drafts
		WHERE account_id = $1
		ORDER BY updated_at DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list drafts: %w", err)
	}
	defer rows.Close()

	drafts := []models.DraftOrder{}
	for rows.Next() {
		var (
			dr      models.DraftOrder
			payload []byte
		)
		if err := rows.Scan(&dr.ID, &dr.AccountID, &payload, &dr.CreatedAt, &dr.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan draft: %w", err)
		}
		dr.Payload = json.RawMessage(payload)
		drafts = append(drafts, dr)
	}
	return drafts, rows.Err()
}
