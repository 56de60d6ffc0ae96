package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"linkdesk-backend/internal/models"
)

const orderColumns = `id, account_id, status, notes, created_at, updated_at`

const groupColumns = `id, order_id, client_id, client_name, client_website, link_count,
	target_pages, anchor_texts, package_type, package_price_cents, created_at`

const submissionColumns = `s.id, s.order_group_id, s.domain_id, s.domain, s.domain_qualification,
	s.domain_notes, s.price_cents, s.status, s.submission_status, s.target_page_url,
	s.anchor_text, s.selection_pool, s.pool_rank, s.notes, s.rejection_reason,
	s.metadata, s.created_at, s.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner, o *models.Order) error {
	var status string
	if err := row.Scan(&o.ID, &o.AccountID, &status, &o.Notes, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return err
	}
	o.Status = models.OrderStatus(status)
	return nil
}

func (d *DatabaseClient) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.Status == "" {
		order.Status = models.OrderDraft
	}

	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `
		INSERT INTO orders (id, account_id, status, notes)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`, order.ID, order.AccountID, order.Status, order.Notes).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	for i := range order.Groups {
		g := &order.Groups[i]
		if g.ID == uuid.Nil {
			g.ID = uuid.New()
		}
		g.OrderID = order.ID

		pages, err := json.Marshal(targetPagesOrEmpty(g.TargetPages))
		if err != nil {
			return fmt.Errorf("failed to marshal target pages: %w", err)
		}
		err = tx.QueryRowContext(ctx, `
			INSERT INTO order_groups (id, order_id, client_id, client_name, client_website,
				link_count, target_pages, anchor_texts, package_type, package_price_cents)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at
		`, g.ID, g.OrderID, g.ClientID, g.Client.Name, g.Client.Website, g.LinkCount,
			pages, pq.StringArray(g.AnchorTexts), g.PackageType, g.PackagePrice,
		).Scan(&g.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to create order group: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

// GetOrder loads the order with its groups and their submissions.
func (d *DatabaseClient) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	row := d.db.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)
	if err := scanOrder(row, &order); err != nil {
		return nil, notFound(err, "order")
	}

	groups, err := d.listGroups(ctx, orderID)
	if err != nil {
		return nil, err
	}

	subs, err := d.listSubmissions(ctx, orderID)
	if err != nil {
		return nil, err
	}

	byGroup := make(map[uuid.UUID]int, len(groups))
	for i := range groups {
		byGroup[groups[i].ID] = i
	}
	for _, s := range subs {
		if i, ok := byGroup[s.OrderGroupID]; ok {
			groups[i].Submissions = append(groups[i].Submissions, s)
		}
	}

	order.Groups = groups
	return &order, nil
}

func (d *DatabaseClient) ListOrders(ctx context.Context, accountID uuid.UUID) ([]models.Order, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE account_id = $1
		ORDER BY created_at DESC
	`, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// UpdateOrderStatus moves the order from one status to another. It fails with
// ErrConflict when the stored status is no longer from.
func (d *DatabaseClient) UpdateOrderStatus(ctx context.Context, orderID uuid.UUID, from, to models.OrderStatus) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE orders
		SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`, to, orderID, from)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if err := requireRow(res, "order"); err != nil {
		return fmt.Errorf("order status changed concurrently: %w", ErrConflict)
	}
	return nil
}

func (d *DatabaseClient) DeleteOrder(ctx context.Context, orderID uuid.UUID) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return requireRow(res, "order")
}

func (d *DatabaseClient) UpdateGroupTargets(ctx context.Context, groupID uuid.UUID, pages []models.TargetPage, anchors []string) error {
	pagesJSON, err := json.Marshal(targetPagesOrEmpty(pages))
	if err != nil {
		return fmt.Errorf("failed to marshal target pages: %w", err)
	}

	res, err := d.db.ExecContext(ctx, `
		UPDATE order_groups
		SET target_pages = $1, anchor_texts = $2
		WHERE id = $3
	`, pagesJSON, pq.StringArray(anchors), groupID)
	if err != nil {
		return fmt.Errorf("failed to update group targets: %w", err)
	}
	return requireRow(res, "order group")
}

func (d *DatabaseClient) listGroups(ctx context.Context, orderID uuid.UUID) ([]models.OrderGroup, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+groupColumns+`
		FROM order_groups
		WHERE order_id = $1
		ORDER BY created_at, id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order groups: %w", err)
	}
	defer rows.Close()

	var groups []models.OrderGroup
	for rows.Next() {
		var (
			g       models.OrderGroup
			pages   []byte
			anchors pq.StringArray
		)
		err := rows.Scan(&g.ID, &g.OrderID, &g.ClientID, &g.Client.Name, &g.Client.Website,
			&g.LinkCount, &pages, &anchors, &g.PackageType, &g.PackagePrice, &g.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order group: %w", err)
		}
		if len(pages) > 0 {
			if err := json.Unmarshal(pages, &g.TargetPages); err != nil {
				return nil, fmt.Errorf("failed to decode target pages of group %s: %w", g.ID, err)
			}
		}
		g.AnchorTexts = []string(anchors)
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

func (d *DatabaseClient) listSubmissions(ctx context.Context, orderID uuid.UUID) ([]models.SiteSubmission, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+submissionColumns+`
		FROM site_submissions s
		JOIN order_groups g ON g.id = s.order_group_id
		WHERE g.order_id = $1
		ORDER BY s.created_at, s.id
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list site submissions: %w", err)
	}
	defer rows.Close()

	var subs []models.SiteSubmission
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, s)
	}
	return subs, rows.Err()
}

func scanSubmission(row rowScanner) (models.SiteSubmission, error) {
	var (
		s             models.SiteSubmission
		domainID      uuid.NullUUID
		domain        sql.NullString
		qualification string
		domainNotes   string
		status        string
		subStatus     string
		pool          string
		rank          sql.NullInt64
		metadata      []byte
	)

	err := row.Scan(&s.ID, &s.OrderGroupID, &domainID, &domain, &qualification,
		&domainNotes, &s.Price, &status, &subStatus, &s.TargetPageURL,
		&s.AnchorText, &pool, &rank, &s.Notes, &s.RejectionReason,
		&metadata, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return s, fmt.Errorf("failed to scan site submission: %w", err)
	}

	if domainID.Valid {
		id := domainID.UUID
		s.DomainID = &id
	}
	if domain.Valid {
		s.Domain = &models.SubmissionDomain{
			Domain:              domain.String,
			QualificationStatus: qualification,
			Notes:               domainNotes,
		}
	}
	s.Status = models.SubmissionStatus(status)
	s.SubmissionStatus = models.SubmissionStatus(subStatus)
	s.SelectionPool = models.SelectionPool(pool)
	if rank.Valid {
		r := int(rank.Int64)
		s.PoolRank = &r
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &s.Metadata); err != nil {
			return s, fmt.Errorf("failed to decode metadata of submission %s: %w", s.ID, err)
		}
	}
	return s, nil
}

func targetPagesOrEmpty(pages []models.TargetPage) []models.TargetPage {
	if pages == nil {
		return []models.TargetPage{}
	}
	return pages
}
