package qualification

import (
	"sync"

	"github.com/google/uuid"
	"linkdesk-backend/internal/models"
)

type ActionKind int

const (
	ActionNone ActionKind = iota
	ActionMove
	ActionQualify
)

type Action struct {
	Kind     ActionKind
	DomainID uuid.UUID
	Status   models.QualificationStatus
}

// Navigator tracks the single focused row of a domain table.
type Navigator struct {
	mu      sync.Mutex
	rows    []uuid.UUID
	focused uuid.UUID
}

func NewNavigator(rows []uuid.UUID) *Navigator {
	n := &Navigator{}
	n.SetRows(rows)
	return n
}

// SetRows replaces the row order. Focus survives when its row is still there.
func (n *Navigator) SetRows(rows []uuid.UUID) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.rows = append([]uuid.UUID(nil), rows...)
	if n.indexOf(n.focused) < 0 {
		n.focused = uuid.Nil
	}
}

// Focus moves focus to id. It returns false for unknown rows.
func (n *Navigator) Focus(id uuid.UUID) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.indexOf(id) < 0 {
		return false
	}
	n.focused = id
	return true
}

func (n *Navigator) Focused() (uuid.UUID, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.focused, n.focused != uuid.Nil
}

// HandleKey interprets one key press. j/k and the arrow keys move focus,
// clamped at the ends; 1/2/3 ask to qualify the focused row.
func (n *Navigator) HandleKey(key string) Action {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.rows) == 0 {
		return Action{}
	}

	switch key {
	case "j", "ArrowDown":
		return n.move(1)
	case "k", "ArrowUp":
		return n.move(-1)
	}

	status, ok := ShortcutStatus[key]
	if !ok || n.focused == uuid.Nil {
		return Action{}
	}
	return Action{Kind: ActionQualify, DomainID: n.focused, Status: status}
}

func (n *Navigator) move(delta int) Action {
	i := n.indexOf(n.focused)
	switch {
	case i < 0:
		i = 0
	default:
		i += delta
		if i < 0 {
			i = 0
		}
		if i >= len(n.rows) {
			i = len(n.rows) - 1
		}
	}
	n.focused = n.rows[i]
	return Action{Kind: ActionMove, DomainID: n.focused}
}

func (n *Navigator) indexOf(id uuid.UUID) int {
	if id == uuid.Nil {
		return -1
	}
	for i, r := range n.rows {
		if r == id {
			return i
		}
	}
	return -1
}
