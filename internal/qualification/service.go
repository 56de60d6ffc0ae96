package qualification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"linkdesk-backend/internal/inflight"
	"linkdesk-backend/internal/logger"
	"linkdesk-backend/internal/metrics"
	"linkdesk-backend/internal/models"
)

// ErrRowBusy is returned while another change to the same domain is running.
var ErrRowBusy = errors.New("another change to this domain is still in progress")

const (
	// navigatorIdleTTL drops keyboard focus nobody has used for a while.
	navigatorIdleTTL = 30 * time.Minute
	maxNavigators    = 1024
)

type navigatorEntry struct {
	nav  *Navigator
	used time.Time
}

type Store interface {
	ListDomains(ctx context.Context, clientID uuid.UUID) ([]models.BulkAnalysisDomain, error)
	GetDomain(ctx context.Context, domainID uuid.UUID) (*models.BulkAnalysisDomain, error)
	SaveQualification(ctx context.Context, d *models.BulkAnalysisDomain) error
}

type Service struct {
	store   Store
	rows    *inflight.Tracker
	metrics *metrics.Metrics
	log     logger.Logger
	now     func() time.Time

	mu         sync.Mutex
	navigators map[string]*navigatorEntry
}

func NewService(store Store, m *metrics.Metrics, log logger.Logger) *Service {
	return &Service{
		store:      store,
		rows:       inflight.New(),
		metrics:    m,
		log:        log,
		now:        time.Now,
		navigators: make(map[string]*navigatorEntry),
	}
}

func (s *Service) Rows() *inflight.Tracker {
	return s.rows
}

func (s *Service) List(ctx context.Context, clientID uuid.UUID) ([]models.BulkAnalysisDomain, error) {
	return s.store.ListDomains(ctx, clientID)
}

// UpdateStatus applies a verdict from source. The returned bool is false when
// the source was not allowed to change the domain.
func (s *Service) UpdateStatus(ctx context.Context, clientID, domainID uuid.UUID, status models.QualificationStatus, source Source, actor *uuid.UUID) (*models.BulkAnalysisDomain, bool, error) {
	return s.change(ctx, clientID, domainID, func(d *models.BulkAnalysisDomain) (bool, error) {
		changed, err := Apply(d, Change{Status: status, Source: source, Actor: actor, At: s.now()})
		if changed && s.metrics != nil {
			s.metrics.QualificationsTotal.WithLabelValues(string(source), string(d.QualificationStatus)).Inc()
		}
		return changed, err
	})
}

// QualifyWithAI records an automated verdict with its reasoning.
func (s *Service) QualifyWithAI(ctx context.Context, clientID, domainID uuid.UUID, status models.QualificationStatus, reasoning string) (*models.BulkAnalysisDomain, bool, error) {
	return s.change(ctx, clientID, domainID, func(d *models.BulkAnalysisDomain) (bool, error) {
		changed, err := Apply(d, Change{Status: status, Source: SourceAI, Reasoning: reasoning, At: s.now()})
		if changed && s.metrics != nil {
			s.metrics.QualificationsTotal.WithLabelValues(string(SourceAI), string(status)).Inc()
		}
		return changed, err
	})
}

func (s *Service) Verify(ctx context.Context, clientID, domainID uuid.UUID, actor *uuid.UUID) (*models.BulkAnalysisDomain, bool, error) {
	return s.change(ctx, clientID, domainID, func(d *models.BulkAnalysisDomain) (bool, error) {
		return Verify(d, actor, s.now())
	})
}

type ShortcutResult struct {
	FocusedDomainID *uuid.UUID                 `json:"focusedDomainId"`
	Domain          *models.BulkAnalysisDomain `json:"domain,omitempty"`
	Changed         bool                       `json:"changed"`
}

// Shortcut feeds one key press to the actor's navigator for the client's
// table. focus, when set, moves focus there first.
func (s *Service) Shortcut(ctx context.Context, clientID uuid.UUID, actor uuid.UUID, focus *uuid.UUID, key string) (*ShortcutResult, error) {
	domains, err := s.store.ListDomains(ctx, clientID)
	if err != nil {
		return nil, err
	}
	rows := make([]uuid.UUID, len(domains))
	for i := range domains {
		rows[i] = domains[i].ID
	}

	nav := s.navigator(actor, clientID)
	nav.SetRows(rows)
	if focus != nil && !nav.Focus(*focus) {
		return nil, fmt.Errorf("domain %s: %w", *focus, ErrDomainNotFound)
	}

	action := nav.HandleKey(key)
	result := &ShortcutResult{}
	if id, ok := nav.Focused(); ok {
		result.FocusedDomainID = &id
	}

	if action.Kind != ActionQualify {
		return result, nil
	}

	d, changed, err := s.UpdateStatus(ctx, clientID, action.DomainID, action.Status, SourceShortcut, &actor)
	if err != nil {
		return nil, err
	}
	result.Domain = d
	result.Changed = changed
	return result, nil
}

func (s *Service) navigator(actor, clientID uuid.UUID) *Navigator {
	key := actor.String() + "/" + clientID.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.navigators[key]; ok {
		e.used = now
		return e.nav
	}

	s.evictNavigators(now)
	e := &navigatorEntry{nav: NewNavigator(nil), used: now}
	s.navigators[key] = e
	return e.nav
}

// evictNavigators drops idle navigators and, when still full, the least
// recently used one. mu must be held.
func (s *Service) evictNavigators(now time.Time) {
	var (
		oldestKey  string
		oldestUsed time.Time
	)
	for k, e := range s.navigators {
		if now.Sub(e.used) > navigatorIdleTTL {
			delete(s.navigators, k)
			continue
		}
		if oldestKey == "" || e.used.Before(oldestUsed) {
			oldestKey, oldestUsed = k, e.used
		}
	}
	if len(s.navigators) >= maxNavigators && oldestKey != "" {
		delete(s.navigators, oldestKey)
	}
}

// Navigators reports how many keyboard navigators are held.
func (s *Service) Navigators() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.navigators)
}

// change loads the domain, applies fn and saves only when fn changed it.
func (s *Service) change(ctx context.Context, clientID, domainID uuid.UUID, fn func(*models.BulkAnalysisDomain) (bool, error)) (*models.BulkAnalysisDomain, bool, error) {
	key := domainID.String()
	if !s.rows.TryStart(key) {
		return nil, false, ErrRowBusy
	}

	d, changed, err := s.applyChange(ctx, clientID, domainID, fn)
	s.rows.Finish(key, err)
	if err != nil {
		s.log.Warn("Domain qualification failed",
			logger.String("domain_id", key),
			logger.Error(err),
		)
		return nil, false, err
	}
	return d, changed, nil
}

func (s *Service) applyChange(ctx context.Context, clientID, domainID uuid.UUID, fn func(*models.BulkAnalysisDomain) (bool, error)) (*models.BulkAnalysisDomain, bool, error) {
	d, err := s.store.GetDomain(ctx, domainID)
	if err != nil {
		return nil, false, err
	}
	if d.ClientID != clientID {
		return nil, false, fmt.Errorf("domain %s: %w", domainID, ErrDomainNotFound)
	}

	changed, err := fn(d)
	if err != nil || !changed {
		return d, false, err
	}
	if err := s.store.SaveQualification(ctx, d); err != nil {
		return nil, false, err
	}
	return d, true, nil
}
