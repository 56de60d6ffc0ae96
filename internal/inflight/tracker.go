// Package inflight tracks per-row operation state so that one row's pending
// request never blocks another row.
package inflight

import (
	"sync"
	"time"
)

// DefaultErrorTTL is how long a failed row keeps reporting its error.
const DefaultErrorTTL = 5 * time.Minute

type State string

const (
	Idle    State = "idle"
	Loading State = "loading"
	Error   State = "error"
)

type entry struct {
	state  State
	err    string
	failed time.Time
}

type RowState struct {
	State State  `json:"state"`
	Error string `json:"error,omitempty"`
}

// Tracker maps row keys (submission or domain ids) to their state. The zero
// value is not usable; use New.
type Tracker struct {
	mu       sync.Mutex
	rows     map[string]entry
	errorTTL time.Duration
	now      func() time.Time
}

type Option func(*Tracker)

// WithErrorTTL sets how long error rows are kept before they read as idle.
func WithErrorTTL(ttl time.Duration) Option {
	return func(t *Tracker) { t.errorTTL = ttl }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

func New(opts ...Option) *Tracker {
	t := &Tracker{
		rows:     make(map[string]entry),
		errorTTL: DefaultErrorTTL,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// expire drops error rows older than the TTL. mu must be held.
func (t *Tracker) expire() {
	cutoff := t.now().Add(-t.errorTTL)
	for k, e := range t.rows {
		if e.state == Error && e.failed.Before(cutoff) {
			delete(t.rows, k)
		}
	}
}

// Len reports how many rows are loading or failed.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.expire()
	return len(t.rows)
}

// TryStart moves key to Loading. It returns false when key is already loading.
func (t *Tracker) TryStart(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.rows[key].state == Loading {
		return false
	}
	t.rows[key] = entry{state: Loading}
	return true
}

// Finish settles key. A nil error returns the row to Idle and forgets it.
func (t *Tracker) Finish(key string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err == nil {
		delete(t.rows, key)
		return
	}
	t.expire()
	t.rows[key] = entry{state: Error, err: err.Error(), failed: t.now()}
}

func (t *Tracker) Get(key string) RowState {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.expire()
	e, ok := t.rows[key]
	if !ok {
		return RowState{State: Idle}
	}
	return RowState{State: e.state, Error: e.err}
}

// Snapshot returns the non-idle rows among keys, or all non-idle rows when
// keys is empty.
func (t *Tracker) Snapshot(keys ...string) map[string]RowState {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.expire()
	out := make(map[string]RowState)
	if len(keys) == 0 {
		for k, e := range t.rows {
			out[k] = RowState{State: e.state, Error: e.err}
		}
		return out
	}
	for _, k := range keys {
		if e, ok := t.rows[k]; ok {
			out[k] = RowState{State: e.state, Error: e.err}
		}
	}
	return out
}
