package drafts_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"linkdesk-backend/internal/drafts"
	"linkdesk-backend/internal/logger"
	"linkdesk-backend/internal/metrics"
	"linkdesk-backend/internal/models"
)

type saved struct {
	accountID uuid.UUID
	draftID   uuid.UUID
	payload   string
}

type recordingStore struct {
	mu    sync.Mutex
	saves []saved
	err   error
	delay time.Duration
}

func (r *recordingStore) CreateDraft(_ context.Context, d *models.DraftOrder) error {
	d.ID = uuid.New()
	return r.err
}

func (r *recordingStore) SaveDraft(_ context.Context, accountID, draftID uuid.UUID, payload json.RawMessage) error {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves = append(r.saves, saved{accountID, draftID, string(payload)})
	return r.err
}

func (r *recordingStore) ListDrafts(context.Context, uuid.UUID) ([]models.DraftOrder, error) {
	return []models.DraftOrder{}, r.err
}

func (r *recordingStore) snapshot() []saved {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]saved(nil), r.saves...)
}

func newDrafts(store *recordingStore, delay time.Duration) (*drafts.Service, *metrics.Metrics) {
	m := metrics.New(prometheus.NewRegistry())
	return drafts.NewService(store, delay, m, logger.NewNop()), m
}

func TestAutosave_CollapsesBurstIntoLastPayload(t *testing.T) {
	store := &recordingStore{}
	svc, m := newDrafts(store, 50*time.Millisecond)
	account, draft := uuid.New(), uuid.New()

	for i := 1; i <= 5; i++ {
		require.NoError(t, svc.Autosave(account, draft, json.RawMessage(`{"step":`+string(rune('0'+i))+`}`)))
	}

	require.Eventually(t, func() bool { return len(store.snapshot()) == 1 }, time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool { return !svc.Pending(draft) }, time.Second, 5*time.Millisecond)

	saves := store.snapshot()
	require.Len(t, saves, 1)
	assert.Equal(t, `{"step":5}`, saves[0].payload)
	assert.Equal(t, account, saves[0].accountID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DraftPersistsTotal.WithLabelValues("autosave", "success")))
}

func TestAutosave_DraftsAreIndependent(t *testing.T) {
	store := &recordingStore{}
	svc, _ := newDrafts(store, 20*time.Millisecond)
	account := uuid.New()

	require.NoError(t, svc.Autosave(account, uuid.New(), json.RawMessage(`{"a":1}`)))
	require.NoError(t, svc.Autosave(account, uuid.New(), json.RawMessage(`{"b":1}`)))

	require.Eventually(t, func() bool { return len(store.snapshot()) == 2 }, time.Second, 5*time.Millisecond)
}

func TestFlush_WritesPendingImmediately(t *testing.T) {
	store := &recordingStore{}
	svc, _ := newDrafts(store, time.Hour)
	draft := uuid.New()

	require.NoError(t, svc.Autosave(uuid.New(), draft, json.RawMessage(`{"title":"x"}`)))
	assert.True(t, svc.Pending(draft))
	assert.Empty(t, store.snapshot())

	svc.Flush()

	saves := store.snapshot()
	require.Len(t, saves, 1)
	assert.Equal(t, `{"title":"x"}`, saves[0].payload)
	assert.False(t, svc.Pending(draft))
}

func TestFlush_PicksUpPayloadQueuedDuringWrite(t *testing.T) {
	store := &recordingStore{delay: 50 * time.Millisecond}
	svc, _ := newDrafts(store, time.Millisecond)
	account, draft := uuid.New(), uuid.New()

	require.NoError(t, svc.Autosave(account, draft, json.RawMessage(`{"v":1}`)))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, svc.Autosave(account, draft, json.RawMessage(`{"v":2}`)))

	svc.Flush()

	saves := store.snapshot()
	require.NotEmpty(t, saves)
	assert.Equal(t, `{"v":2}`, saves[len(saves)-1].payload)
	assert.False(t, svc.Pending(draft))
}

func TestClose_RejectsNewPayloads(t *testing.T) {
	store := &recordingStore{}
	svc, _ := newDrafts(store, time.Hour)
	draft := uuid.New()

	require.NoError(t, svc.Autosave(uuid.New(), draft, json.RawMessage(`{}`)))
	svc.Close()

	assert.Len(t, store.snapshot(), 1)
	assert.ErrorIs(t, svc.Autosave(uuid.New(), draft, json.RawMessage(`{}`)), drafts.ErrClosed)
}

func TestSave_IsImmediateAndCounted(t *testing.T) {
	store := &recordingStore{err: errors.New("db down")}
	svc, m := newDrafts(store, time.Hour)

	err := svc.Save(context.Background(), uuid.New(), uuid.New(), json.RawMessage(`{"a":1}`))
	require.Error(t, err)
	assert.Len(t, store.snapshot(), 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DraftPersistsTotal.WithLabelValues("immediate", "error")))
}

func TestSave_DiscardsWaitingAutosave(t *testing.T) {
	store := &recordingStore{}
	svc, _ := newDrafts(store, 50*time.Millisecond)
	account, draft := uuid.New(), uuid.New()

	require.NoError(t, svc.Autosave(account, draft, json.RawMessage(`{"v":"old"}`)))
	require.NoError(t, svc.Save(context.Background(), account, draft, json.RawMessage(`{"v":"new"}`)))
	assert.False(t, svc.Pending(draft))

	time.Sleep(200 * time.Millisecond)

	saves := store.snapshot()
	require.Len(t, saves, 1)
	assert.Equal(t, `{"v":"new"}`, saves[0].payload)
}

func TestSave_WaitsForRunningAutosave(t *testing.T) {
	store := &recordingStore{delay: 50 * time.Millisecond}
	svc, _ := newDrafts(store, time.Millisecond)
	account, draft := uuid.New(), uuid.New()

	require.NoError(t, svc.Autosave(account, draft, json.RawMessage(`{"v":"old"}`)))
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, svc.Save(context.Background(), account, draft, json.RawMessage(`{"v":"new"}`)))

	time.Sleep(100 * time.Millisecond)

	saves := store.snapshot()
	require.Len(t, saves, 2)
	assert.Equal(t, `{"v":"old"}`, saves[0].payload)
	assert.Equal(t, `{"v":"new"}`, saves[1].payload)
}

func TestPayloadMustBeObject(t *testing.T) {
	svc, _ := newDrafts(&recordingStore{}, time.Hour)

	assert.ErrorIs(t, svc.Autosave(uuid.New(), uuid.New(), json.RawMessage(`[1,2]`)), drafts.ErrInvalidPayload)
	assert.ErrorIs(t, svc.Save(context.Background(), uuid.New(), uuid.New(), json.RawMessage(`null`)), drafts.ErrInvalidPayload)

	_, err := svc.Create(context.Background(), uuid.New(), json.RawMessage(`"x"`))
	assert.ErrorIs(t, err, drafts.ErrInvalidPayload)

	d, err := svc.Create(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, d.ID)
}
