package drafts

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"linkdesk-backend/internal/logger"
)

// PersistFunc writes one draft payload.
type PersistFunc func(ctx context.Context, accountID, draftID uuid.UUID, payload json.RawMessage) error

type pending struct {
	accountID uuid.UUID
	payload   json.RawMessage
	timer     *time.Timer
	// flushing is set while a write for this draft runs; a payload arriving
	// meanwhile waits for the next timer.
	flushing bool
}

// Autosaver collapses bursts of saves per draft into a single trailing write
// after a quiet period. At most one write per draft runs at a time.
type Autosaver struct {
	delay   time.Duration
	persist PersistFunc
	log     logger.Logger
	timeout time.Duration

	mu      sync.Mutex
	idle    *sync.Cond
	drafts  map[uuid.UUID]*pending
	running int
	closed  bool
}

func NewAutosaver(delay time.Duration, persist PersistFunc, log logger.Logger) *Autosaver {
	a := &Autosaver{
		delay:   delay,
		persist: persist,
		log:     log,
		timeout: 15 * time.Second,
		drafts:  make(map[uuid.UUID]*pending),
	}
	a.idle = sync.NewCond(&a.mu)
	return a
}

// Schedule records payload as the latest version of the draft and (re)arms
// its timer. It returns false once the autosaver is closed.
func (a *Autosaver) Schedule(accountID, draftID uuid.UUID, payload json.RawMessage) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return false
	}

	p, ok := a.drafts[draftID]
	if !ok {
		p = &pending{}
		a.drafts[draftID] = p
	}
	p.accountID = accountID
	p.payload = payload
	a.arm(draftID, p)
	return true
}

// Pending reports whether a write is waiting or running for the draft.
func (a *Autosaver) Pending(draftID uuid.UUID) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.drafts[draftID]
	return ok
}

// Cancel drops any waiting payload for the draft and blocks until a write
// already running for it has finished. Nothing queued before the call is
// written afterwards.
func (a *Autosaver) Cancel(draftID uuid.UUID) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for {
		p, ok := a.drafts[draftID]
		if !ok {
			return
		}
		p.payload = nil
		if p.timer != nil {
			p.timer.Stop()
			p.timer = nil
		}
		if !p.flushing {
			delete(a.drafts, draftID)
			return
		}
		a.idle.Wait()
	}
}

// arm must be called with mu held.
func (a *Autosaver) arm(draftID uuid.UUID, p *pending) {
	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(a.delay, func() { a.fire(draftID) })
}

func (a *Autosaver) fire(draftID uuid.UUID) {
	a.mu.Lock()
	p, ok := a.drafts[draftID]
	if !ok || p.payload == nil {
		a.mu.Unlock()
		return
	}
	if p.flushing {
		a.arm(draftID, p)
		a.mu.Unlock()
		return
	}
	accountID, payload := p.accountID, p.payload
	p.payload = nil
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.flushing = true
	a.running++
	a.mu.Unlock()

	a.write(accountID, draftID, payload)

	a.mu.Lock()
	p.flushing = false
	if p.payload == nil && p.timer == nil && a.drafts[draftID] == p {
		delete(a.drafts, draftID)
	}
	a.running--
	a.idle.Broadcast()
	a.mu.Unlock()
}

func (a *Autosaver) write(accountID, draftID uuid.UUID, payload json.RawMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	if err := a.persist(ctx, accountID, draftID, payload); err != nil {
		a.log.Error("Draft autosave failed",
			logger.String("draft_id", draftID.String()),
			logger.Error(err),
		)
	}
}

// Flush writes every waiting payload now and returns once no write is
// running.
func (a *Autosaver) Flush() {
	for {
		a.mu.Lock()
		var due []uuid.UUID
		for id, p := range a.drafts {
			if p.payload != nil && !p.flushing {
				due = append(due, id)
			}
		}
		if len(due) == 0 {
			for a.running > 0 {
				a.idle.Wait()
			}
			more := false
			for _, p := range a.drafts {
				if p.payload != nil {
					more = true
					break
				}
			}
			a.mu.Unlock()
			if !more {
				return
			}
			continue
		}
		a.mu.Unlock()

		for _, id := range due {
			a.fire(id)
		}
	}
}

// Close stops accepting payloads and flushes what is left.
func (a *Autosaver) Close() {
	a.mu.Lock()
	a.closed = true
	a.mu.Unlock()
	a.Flush()
}
