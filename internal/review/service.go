// Package review implements the order review flow: mutations on site
// submissions followed by a full refetch, and the review table view model.
package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"linkdesk-backend/internal/inflight"
	"linkdesk-backend/internal/logger"
	"linkdesk-backend/internal/metrics"
	"linkdesk-backend/internal/models"
	"linkdesk-backend/internal/slots"
)

var (
	ErrRowBusy              = errors.New("another change to this row is still in progress")
	ErrNotAlternative       = errors.New("submission is not in the alternative pool")
	ErrUnknownTarget        = errors.New("target page is not one of the group's slots")
	ErrSubmissionNotInGroup = errors.New("submission does not belong to the group")
	ErrGroupNotFound        = errors.New("order group not found")
	ErrInvalidStatus        = errors.New("invalid submission status")
	ErrEmptyUpdate          = errors.New("nothing to update")
)

// Store is the persistence the review flow needs.
type Store interface {
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	AssignTargetPage(ctx context.Context, submissionID uuid.UUID, targetURL string) error
	SwitchToPrimary(ctx context.Context, groupID, submissionID uuid.UUID) error
	SetSubmissionStatus(ctx context.Context, submissionID uuid.UUID, status models.SubmissionStatus, reason string) error
	UpdateLineItem(ctx context.Context, submissionID uuid.UUID, status *models.SubmissionStatus, notes *string) error
}

type EventPublisher interface {
	PublishAsync(event models.ReviewEvent)
}

// Actor is whoever triggered a mutation. Client actors produce the
// client_* statuses.
type Actor struct {
	ID     string
	Client bool
}

type LineItemUpdate struct {
	Status *models.SubmissionStatus
	Notes  *string
}

type Options struct {
	MutationTimeout time.Duration
	Strategy        slots.DisplayStrategy
}

type Service struct {
	store   Store
	events  EventPublisher
	rows    *inflight.Tracker
	metrics *metrics.Metrics
	log     logger.Logger
	opts    Options
}

func NewService(store Store, events EventPublisher, m *metrics.Metrics, log logger.Logger, opts Options) *Service {
	if opts.MutationTimeout <= 0 {
		opts.MutationTimeout = 15 * time.Second
	}
	return &Service{
		store:   store,
		events:  events,
		rows:    inflight.New(),
		metrics: m,
		log:     log,
		opts:    opts,
	}
}

// Rows exposes the per-submission in-flight states.
func (s *Service) Rows() *inflight.Tracker {
	return s.rows
}

// Resolve loads the order and resolves all of its slots.
func (s *Service) Resolve(ctx context.Context, orderID uuid.UUID) (*slots.ResolvedOrder, error) {
	if orderID == uuid.Nil {
		return nil, slots.ErrMalformedOrder
	}
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.ResolveLoaded(order)
}

// ResolveLoaded resolves an order the caller already fetched.
func (s *Service) ResolveLoaded(order *models.Order) (*slots.ResolvedOrder, error) {
	return slots.ResolveOrder(order, s.opts.Strategy)
}

// View resolves the order and renders the table for state.
func (s *Service) View(ctx context.Context, orderID uuid.UUID, state *TableState) (*View, error) {
	resolved, err := s.Resolve(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return s.Render(resolved, state), nil
}

// Render builds the view for an already resolved order.
func (s *Service) Render(resolved *slots.ResolvedOrder, state *TableState) *View {
	rows := map[string]inflight.RowState{}
	if keys := submissionKeys(resolved); len(keys) > 0 {
		rows = s.rows.Snapshot(keys...)
	}
	return BuildTable(resolved, state, rows)
}

// write performs one change and returns the event describing it, or nil when
// the change was a no-op.
type write func(ctx context.Context, order *models.Order) (*models.ReviewEvent, error)

// mutate runs a write for one submission row: acquire the row, load the
// order, write under a deadline, publish, then refetch and resolve.
func (s *Service) mutate(ctx context.Context, op string, orderID, submissionID uuid.UUID, fn write) (resolved *slots.ResolvedOrder, err error) {
	if orderID == uuid.Nil {
		return nil, slots.ErrMalformedOrder
	}

	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveMutation(op, start, err)
		}
	}()

	key := submissionID.String()
	if !s.rows.TryStart(key) {
		if s.metrics != nil {
			s.metrics.RowBusyTotal.WithLabelValues(op).Inc()
		}
		return nil, ErrRowBusy
	}

	ctx, cancel := context.WithTimeout(ctx, s.opts.MutationTimeout)
	defer cancel()

	event, err := s.runWrite(ctx, orderID, fn)
	s.rows.Finish(key, err)
	if err != nil {
		s.log.Warn("Review mutation failed",
			logger.String("operation", op),
			logger.String("order_id", orderID.String()),
			logger.String("submission_id", key),
			logger.Error(err),
		)
		return nil, err
	}

	if event != nil && s.events != nil {
		s.events.PublishAsync(*event)
	}

	return s.Resolve(ctx, orderID)
}

func (s *Service) runWrite(ctx context.Context, orderID uuid.UUID, fn write) (*models.ReviewEvent, error) {
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return fn(ctx, order)
}

func locate(order *models.Order, groupID, submissionID uuid.UUID) (*models.OrderGroup, *models.SiteSubmission, error) {
	group := order.Group(groupID)
	if group == nil {
		return nil, nil, fmt.Errorf("group %s: %w", groupID, ErrGroupNotFound)
	}
	sub := group.Submission(submissionID)
	if sub == nil {
		return nil, nil, fmt.Errorf("submission %s: %w", submissionID, ErrSubmissionNotInGroup)
	}
	return group, sub, nil
}

func newEvent(order *models.Order, groupID, submissionID uuid.UUID, typ models.ReviewEventType, actor Actor, payload map[string]interface{}) *models.ReviewEvent {
	g, sub := groupID, submissionID
	return &models.ReviewEvent{
		OrderID:      order.ID,
		GroupID:      &g,
		SubmissionID: &sub,
		Type:         typ,
		ActorID:      actor.ID,
		Payload:      payload,
	}
}

// AssignTargetPage moves a submission onto one of its group's slot targets.
// Pool and rank are left alone. Assigning the current target is a no-op.
func (s *Service) AssignTargetPage(ctx context.Context, orderID, groupID, submissionID uuid.UUID, targetURL string, actor Actor) (*slots.ResolvedOrder, error) {
	return s.mutate(ctx, "assign", orderID, submissionID, func(ctx context.Context, order *models.Order) (*models.ReviewEvent, error) {
		group, sub, err := locate(order, groupID, submissionID)
		if err != nil {
			return nil, err
		}
		if !group.HasTargetPage(targetURL) {
			return nil, fmt.Errorf("%q: %w", targetURL, ErrUnknownTarget)
		}
		if sub.TargetPage() == targetURL {
			return nil, nil
		}

		if err := s.store.AssignTargetPage(ctx, submissionID, targetURL); err != nil {
			return nil, err
		}
		return newEvent(order, groupID, submissionID, models.EventAssigned, actor, map[string]interface{}{
			"targetPageUrl":  targetURL,
			"previousTarget": sub.TargetPage(),
		}), nil
	})
}

// SwitchPool makes an alternative the primary for its slot target; the
// current primary takes its place in the alternative pool.
func (s *Service) SwitchPool(ctx context.Context, orderID, groupID, submissionID uuid.UUID, actor Actor) (*slots.ResolvedOrder, error) {
	return s.mutate(ctx, "switch", orderID, submissionID, func(ctx context.Context, order *models.Order) (*models.ReviewEvent, error) {
		_, sub, err := locate(order, groupID, submissionID)
		if err != nil {
			return nil, err
		}
		if sub.SelectionPool != models.PoolAlternative {
			return nil, ErrNotAlternative
		}

		if err := s.store.SwitchToPrimary(ctx, groupID, submissionID); err != nil {
			return nil, err
		}
		return newEvent(order, groupID, submissionID, models.EventSwitched, actor, map[string]interface{}{
			"targetPageUrl": sub.TargetPage(),
		}), nil
	})
}

// Approve is idempotent: a submission already at the actor's approval status
// is left untouched.
func (s *Service) Approve(ctx context.Context, orderID, groupID, submissionID uuid.UUID, actor Actor) (*slots.ResolvedOrder, error) {
	status := models.StatusApproved
	if actor.Client {
		status = models.StatusClientApproved
	}

	return s.mutate(ctx, "approve", orderID, submissionID, func(ctx context.Context, order *models.Order) (*models.ReviewEvent, error) {
		_, sub, err := locate(order, groupID, submissionID)
		if err != nil {
			return nil, err
		}
		if sub.EffectiveStatus() == status {
			return nil, nil
		}

		if err := s.store.SetSubmissionStatus(ctx, submissionID, status, ""); err != nil {
			return nil, err
		}
		return newEvent(order, groupID, submissionID, models.EventApproved, actor, map[string]interface{}{
			"status": string(status),
		}), nil
	})
}

// Reject marks the submission rejected. Rejected submissions stay in the
// pool but are never displayed or offered again.
func (s *Service) Reject(ctx context.Context, orderID, groupID, submissionID uuid.UUID, actor Actor, reason string) (*slots.ResolvedOrder, error) {
	status := models.StatusRejected
	if actor.Client {
		status = models.StatusClientRejected
	}

	return s.mutate(ctx, "reject", orderID, submissionID, func(ctx context.Context, order *models.Order) (*models.ReviewEvent, error) {
		_, sub, err := locate(order, groupID, submissionID)
		if err != nil {
			return nil, err
		}
		if sub.EffectiveStatus() == status && (reason == "" || reason == sub.RejectionReason) {
			return nil, nil
		}

		if err := s.store.SetSubmissionStatus(ctx, submissionID, status, reason); err != nil {
			return nil, err
		}
		return newEvent(order, groupID, submissionID, models.EventRejected, actor, map[string]interface{}{
			"status": string(status),
			"reason": reason,
		}), nil
	})
}

// UpdateLineItem applies a partial {status, notes} update to a submission
// anywhere in the order.
func (s *Service) UpdateLineItem(ctx context.Context, orderID, submissionID uuid.UUID, update LineItemUpdate, actor Actor) (*slots.ResolvedOrder, error) {
	if update.Status == nil && update.Notes == nil {
		return nil, ErrEmptyUpdate
	}
	if update.Status != nil && !update.Status.Valid() {
		return nil, fmt.Errorf("%q: %w", *update.Status, ErrInvalidStatus)
	}

	return s.mutate(ctx, "update", orderID, submissionID, func(ctx context.Context, order *models.Order) (*models.ReviewEvent, error) {
		var groupID uuid.UUID
		for i := range order.Groups {
			if order.Groups[i].Submission(submissionID) != nil {
				groupID = order.Groups[i].ID
				break
			}
		}
		if groupID == uuid.Nil {
			return nil, fmt.Errorf("submission %s: %w", submissionID, ErrSubmissionNotInGroup)
		}

		if err := s.store.UpdateLineItem(ctx, submissionID, update.Status, update.Notes); err != nil {
			return nil, err
		}

		payload := map[string]interface{}{}
		if update.Status != nil {
			payload["status"] = string(*update.Status)
		}
		if update.Notes != nil {
			payload["notes"] = *update.Notes
		}
		return newEvent(order, groupID, submissionID, models.EventUpdated, actor, payload), nil
	})
}

func submissionKeys(resolved *slots.ResolvedOrder) []string {
	if resolved == nil {
		return nil
	}
	var keys []string
	for _, g := range resolved.Groups {
		if g.Group == nil {
			continue
		}
		for _, sub := range g.Group.Submissions {
			keys = append(keys, sub.ID.String())
		}
	}
	return keys
}
