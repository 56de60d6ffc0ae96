// Package slots maps a group's pool of site submissions onto its requested
// link slots. Everything here is a pure function of its inputs.
package slots

import (
	"sort"

	"github.com/google/uuid"
	"linkdesk-backend/internal/models"
)

// PoolIndex is the partition of one group's submissions as seen from a
// single slot target.
type PoolIndex struct {
	Matching   []*models.SiteSubmission
	Primary    []*models.SiteSubmission
	Unassigned []*models.SiteSubmission
	Available  []*models.SiteSubmission
}

// Index partitions submissions for the slot targeting targetURL.
//
// Matching holds submissions assigned to targetURL. Primary is the
// non-rejected primary-pool subset of Matching ordered by rank; ties keep
// input order. Unassigned holds submissions with no target at all. Available
// is Matching followed by Unassigned with rejected submissions removed.
// An empty targetURL matches nothing.
func Index(submissions []models.SiteSubmission, targetURL string) PoolIndex {
	var idx PoolIndex

	for i := range submissions {
		s := &submissions[i]
		target := s.TargetPage()
		switch {
		case target == "":
			idx.Unassigned = append(idx.Unassigned, s)
		case target == targetURL:
			idx.Matching = append(idx.Matching, s)
		}
	}

	idx.Primary = rankedPrimaries(idx.Matching)

	seen := make(map[uuid.UUID]struct{}, len(idx.Matching)+len(idx.Unassigned))
	for _, group := range [][]*models.SiteSubmission{idx.Matching, idx.Unassigned} {
		for _, s := range group {
			if s.IsRejected() {
				continue
			}
			if _, dup := seen[s.ID]; dup {
				continue
			}
			seen[s.ID] = struct{}{}
			idx.Available = append(idx.Available, s)
		}
	}

	return idx
}

// rankedPrimaries returns the non-rejected primary-pool members of subs
// ordered by ascending rank.
func rankedPrimaries(subs []*models.SiteSubmission) []*models.SiteSubmission {
	var out []*models.SiteSubmission
	for _, s := range subs {
		if s.SelectionPool == models.PoolPrimary && !s.IsRejected() {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rank() < out[j].Rank()
	})
	return out
}

// Unassigned returns the group's shared pool: submissions without a target.
func Unassigned(submissions []models.SiteSubmission) []*models.SiteSubmission {
	var out []*models.SiteSubmission
	for i := range submissions {
		if !submissions[i].IsAssigned() {
			out = append(out, &submissions[i])
		}
	}
	return out
}

// Orphaned returns submissions assigned to a target that is not one of the
// group's slots. They are reported, never resolved into a slot.
func Orphaned(group *models.OrderGroup) []*models.SiteSubmission {
	var out []*models.SiteSubmission
	for i := range group.Submissions {
		s := &group.Submissions[i]
		if s.IsAssigned() && !group.HasTargetPage(s.TargetPage()) {
			out = append(out, s)
		}
	}
	return out
}
