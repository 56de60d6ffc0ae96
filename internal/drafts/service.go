// Package drafts stores in-progress orders and debounces autosaves.
package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"linkdesk-backend/internal/logger"
	"linkdesk-backend/internal/metrics"
	"linkdesk-backend/internal/models"
)

var (
	ErrClosed         = errors.New("draft autosave is shutting down")
	ErrInvalidPayload = errors.New("draft payload must be a JSON object")
)

type Store interface {
	CreateDraft(ctx context.Context, draft *models.DraftOrder) error
	SaveDraft(ctx context.Context, accountID, draftID uuid.UUID, payload json.RawMessage) error
	ListDrafts(ctx context.Context, accountID uuid.UUID) ([]models.DraftOrder, error)
}

type Service struct {
	store     Store
	autosaver *Autosaver
	metrics   *metrics.Metrics
	log       logger.Logger
}

func NewService(store Store, delay time.Duration, m *metrics.Metrics, log logger.Logger) *Service {
	s := &Service{store: store, metrics: m, log: log}
	s.autosaver = NewAutosaver(delay, s.persist("autosave"), log)
	return s
}

func (s *Service) Create(ctx context.Context, accountID uuid.UUID, payload json.RawMessage) (*models.DraftOrder, error) {
	if len(payload) > 0 && !isObject(payload) {
		return nil, ErrInvalidPayload
	}
	draft := &models.DraftOrder{AccountID: accountID, Payload: payload}
	if err := s.store.CreateDraft(ctx, draft); err != nil {
		return nil, err
	}
	return draft, nil
}

// Save writes the payload now, bypassing the debounce window. An autosave
// still waiting for the draft is discarded so it cannot overwrite this write.
func (s *Service) Save(ctx context.Context, accountID, draftID uuid.UUID, payload json.RawMessage) error {
	if !isObject(payload) {
		return ErrInvalidPayload
	}
	s.autosaver.Cancel(draftID)
	return s.persist("immediate")(ctx, accountID, draftID, payload)
}

// Autosave queues payload behind the per-draft debounce window.
func (s *Service) Autosave(accountID, draftID uuid.UUID, payload json.RawMessage) error {
	if !isObject(payload) {
		return ErrInvalidPayload
	}
	if !s.autosaver.Schedule(accountID, draftID, payload) {
		return ErrClosed
	}
	return nil
}

func (s *Service) List(ctx context.Context, accountID uuid.UUID) ([]models.DraftOrder, error) {
	return s.store.ListDrafts(ctx, accountID)
}

// Pending reports whether an autosave is waiting or running for the draft.
func (s *Service) Pending(draftID uuid.UUID) bool {
	return s.autosaver.Pending(draftID)
}

func (s *Service) Flush() {
	s.autosaver.Flush()
}

func (s *Service) Close() {
	s.autosaver.Close()
}

func (s *Service) persist(mode string) PersistFunc {
	return func(ctx context.Context, accountID, draftID uuid.UUID, payload json.RawMessage) error {
		err := s.store.SaveDraft(ctx, accountID, draftID, payload)
		if s.metrics != nil {
			s.metrics.DraftPersistsTotal.WithLabelValues(mode, metrics.Outcome(err)).Inc()
		}
		if err == nil {
			s.log.Debug("Draft saved",
				logger.String("draft_id", draftID.String()),
				logger.String("mode", mode),
			)
		}
		return err
	}
}

func isObject(payload json.RawMessage) bool {
	var v map[string]json.RawMessage
	return json.Unmarshal(payload, &v) == nil && v != nil
}
