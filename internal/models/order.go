package models

import (
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	OrderDraft               OrderStatus = "draft"
	OrderPendingConfirmation OrderStatus = "pending_confirmation"
	OrderConfirmed           OrderStatus = "confirmed"
	OrderSitesReady          OrderStatus = "sites_ready"
	OrderClientReview        OrderStatus = "client_review"
	OrderApproved            OrderStatus = "approved"
	OrderInProgress          OrderStatus = "in_progress"
	OrderCompleted           OrderStatus = "completed"
	OrderCancelled           OrderStatus = "cancelled"
)

type Order struct {
	ID        uuid.UUID    `json:"id"`
	AccountID uuid.UUID    `json:"accountId"`
	Status    OrderStatus  `json:"status"`
	Notes     string       `json:"notes,omitempty"`
	Groups    []OrderGroup `json:"orderGroups"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// Group returns the group with the given id, or nil.
func (o *Order) Group(id uuid.UUID) *OrderGroup {
	for i := range o.Groups {
		if o.Groups[i].ID == id {
			return &o.Groups[i]
		}
	}
	return nil
}

// TargetPagesEditable reports whether clients may still change target pages
// and anchors. Orders become read-mostly once confirmed.
func (o *Order) TargetPagesEditable() bool {
	return o.Status == OrderDraft || o.Status == OrderPendingConfirmation
}

type ClientInfo struct {
	Name    string `json:"name"`
	Website string `json:"website"`
}

type TargetPage struct {
	ID  string `json:"id,omitempty"`
	URL string `json:"url"`
}

type OrderGroup struct {
	ID           uuid.UUID        `json:"id"`
	OrderID      uuid.UUID        `json:"orderId"`
	ClientID     uuid.UUID        `json:"clientId"`
	Client       ClientInfo       `json:"client"`
	LinkCount    int              `json:"linkCount"`
	TargetPages  []TargetPage     `json:"targetPages"`
	AnchorTexts  []string         `json:"anchorTexts"`
	PackageType  string           `json:"packageType,omitempty"`
	PackagePrice int64            `json:"packagePrice"`
	Submissions  []SiteSubmission `json:"siteSubmissions"`
	CreatedAt    time.Time        `json:"createdAt"`
}

// HasTargetPage reports whether url is one of the group's slot targets.
func (g *OrderGroup) HasTargetPage(url string) bool {
	if url == "" {
		return false
	}
	for _, tp := range g.TargetPages {
		if tp.URL == url {
			return true
		}
	}
	return false
}

// Submission returns the group's submission with the given id, or nil.
func (g *OrderGroup) Submission(id uuid.UUID) *SiteSubmission {
	for i := range g.Submissions {
		if g.Submissions[i].ID == id {
			return &g.Submissions[i]
		}
	}
	return nil
}
