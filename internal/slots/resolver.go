package slots

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"linkdesk-backend/internal/models"
)

// ErrMalformedOrder is returned for orders that cannot be rendered at all.
var ErrMalformedOrder = errors.New("malformed order")

// DisplayStrategy decides which primary submission a slot displays.
type DisplayStrategy int

const (
	// DisplayByTarget gives the k-th slot with a given target URL the k-th
	// ranked primary assigned to that URL.
	DisplayByTarget DisplayStrategy = iota
	// DisplayByPosition indexes the group-wide ranked primary list by slot
	// position. Kept for dashboards that depend on the old layout.
	DisplayByPosition
)

// ParseDisplayStrategy maps "target" (or "") and "position" to a strategy.
func ParseDisplayStrategy(name string) (DisplayStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "target":
		return DisplayByTarget, nil
	case "position":
		return DisplayByPosition, nil
	}
	return DisplayByTarget, fmt.Errorf("unknown slot display strategy %q", name)
}

type Slot struct {
	Index              int                      `json:"index"`
	TargetPageURL      string                   `json:"targetPageUrl,omitempty"`
	AnchorText         string                   `json:"anchorText,omitempty"`
	DisplaySubmission  *models.SiteSubmission   `json:"displaySubmission"`
	AvailableForTarget []*models.SiteSubmission `json:"availableForTarget"`
}

type ResolvedGroup struct {
	Group      *models.OrderGroup       `json:"-"`
	GroupID    uuid.UUID                `json:"groupId"`
	Slots      []Slot                   `json:"slots"`
	Unassigned []*models.SiteSubmission `json:"unassigned"`
	Orphaned   []*models.SiteSubmission `json:"orphaned"`
}

type ResolvedOrder struct {
	OrderID uuid.UUID          `json:"orderId"`
	Status  models.OrderStatus `json:"status"`
	Groups  []ResolvedGroup    `json:"groups"`
}

// ResolveGroup resolves every slot in [0, linkCount). Missing target pages,
// anchors or submissions resolve to empty values; it never fails.
func ResolveGroup(group *models.OrderGroup, strategy DisplayStrategy) ResolvedGroup {
	n := group.LinkCount
	if n < 0 {
		n = 0
	}

	rg := ResolvedGroup{
		Group:      group,
		GroupID:    group.ID,
		Slots:      make([]Slot, n),
		Unassigned: nonNil(Unassigned(group.Submissions)),
		Orphaned:   nonNil(Orphaned(group)),
	}

	var positional []*models.SiteSubmission
	if strategy == DisplayByPosition {
		positional = groupPrimaries(group.Submissions)
	}

	// occurrences of each target URL seen so far, for slots sharing a target
	seen := make(map[string]int)

	for i := 0; i < n; i++ {
		slot := Slot{Index: i}
		if i < len(group.TargetPages) {
			slot.TargetPageURL = group.TargetPages[i].URL
		}
		if i < len(group.AnchorTexts) {
			slot.AnchorText = group.AnchorTexts[i]
		}

		idx := Index(group.Submissions, slot.TargetPageURL)
		slot.AvailableForTarget = nonNil(idx.Available)

		switch strategy {
		case DisplayByPosition:
			slot.DisplaySubmission = at(positional, i)
		default:
			candidates := idx.Primary
			if slot.TargetPageURL == "" {
				candidates = rankedPrimaries(idx.Unassigned)
			}
			slot.DisplaySubmission = at(candidates, seen[slot.TargetPageURL])
			seen[slot.TargetPageURL]++
		}

		rg.Slots[i] = slot
	}

	return rg
}

// ResolveOrder resolves every group of the order.
func ResolveOrder(order *models.Order, strategy DisplayStrategy) (*ResolvedOrder, error) {
	if order == nil || order.ID == uuid.Nil {
		return nil, ErrMalformedOrder
	}

	ro := &ResolvedOrder{
		OrderID: order.ID,
		Status:  order.Status,
		Groups:  make([]ResolvedGroup, len(order.Groups)),
	}
	for i := range order.Groups {
		ro.Groups[i] = ResolveGroup(&order.Groups[i], strategy)
	}
	return ro, nil
}

// groupPrimaries is every non-rejected primary in the group, ranked.
func groupPrimaries(submissions []models.SiteSubmission) []*models.SiteSubmission {
	all := make([]*models.SiteSubmission, len(submissions))
	for i := range submissions {
		all[i] = &submissions[i]
	}
	return rankedPrimaries(all)
}

func at(list []*models.SiteSubmission, i int) *models.SiteSubmission {
	if i < 0 || i >= len(list) {
		return nil
	}
	return list[i]
}

// nonNil keeps empty lists as [] rather than null on the wire.
func nonNil(list []*models.SiteSubmission) []*models.SiteSubmission {
	if list == nil {
		return []*models.SiteSubmission{}
	}
	return list
}
