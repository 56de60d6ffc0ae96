package review

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"linkdesk-backend/internal/badges"
	"linkdesk-backend/internal/inflight"
	"linkdesk-backend/internal/models"
	"linkdesk-backend/internal/slots"
)

const NoSitesPlaceholder = "No sites available"

var ErrInvalidTableState = errors.New("invalid table state")

// Focus is the comparison panel state: Closed or OpenAt. At most one panel
// is open at a time.
type Focus interface {
	isFocus()
}

type Closed struct{}

type OpenAt struct {
	GroupID uuid.UUID
	Index   int
}

func (Closed) isFocus() {}
func (OpenAt) isFocus() {}

type TableState struct {
	expanded map[uuid.UUID]bool
	focus    Focus
}

func NewTableState() *TableState {
	return &TableState{expanded: make(map[uuid.UUID]bool), focus: Closed{}}
}

func (t *TableState) ToggleGroup(groupID uuid.UUID) {
	if t.expanded[groupID] {
		delete(t.expanded, groupID)
		return
	}
	t.expanded[groupID] = true
}

func (t *TableState) ExpandAll(groupIDs []uuid.UUID) {
	for _, id := range groupIDs {
		t.expanded[id] = true
	}
}

func (t *TableState) IsExpanded(groupID uuid.UUID) bool {
	return t.expanded[groupID]
}

// OpenEditor opens the panel for one slot, closing any other. The slot's
// group is expanded so the panel is visible.
func (t *TableState) OpenEditor(groupID uuid.UUID, index int) {
	t.expanded[groupID] = true
	t.focus = OpenAt{GroupID: groupID, Index: index}
}

func (t *TableState) CloseEditor() {
	t.focus = Closed{}
}

func (t *TableState) Focus() Focus {
	return t.focus
}

// HandleKey closes the open panel on Escape. It reports whether the key was
// consumed; keys are ignored while nothing is open.
func (t *TableState) HandleKey(key string) bool {
	if _, open := t.focus.(OpenAt); !open {
		return false
	}
	if key != "Escape" {
		return false
	}
	t.CloseEditor()
	return true
}

func (t *TableState) HandleOutsideClick() {
	t.CloseEditor()
}

// ParseTableState reads the query form used by the dashboard:
// expand is "all" or a comma separated list of group ids, edit is
// "<groupID>:<index>".
func ParseTableState(expand, edit string, groupIDs []uuid.UUID) (*TableState, error) {
	state := NewTableState()

	switch expand = strings.TrimSpace(expand); expand {
	case "":
	case "all":
		state.ExpandAll(groupIDs)
	default:
		for _, raw := range strings.Split(expand, ",") {
			id, err := uuid.Parse(strings.TrimSpace(raw))
			if err != nil {
				return nil, fmt.Errorf("expand %q: %w", raw, ErrInvalidTableState)
			}
			state.expanded[id] = true
		}
	}

	if edit = strings.TrimSpace(edit); edit != "" {
		groupPart, indexPart, ok := strings.Cut(edit, ":")
		if !ok {
			return nil, fmt.Errorf("edit %q: %w", edit, ErrInvalidTableState)
		}
		id, err := uuid.Parse(groupPart)
		if err != nil {
			return nil, fmt.Errorf("edit %q: %w", edit, ErrInvalidTableState)
		}
		index, err := strconv.Atoi(indexPart)
		if err != nil || index < 0 {
			return nil, fmt.Errorf("edit %q: %w", edit, ErrInvalidTableState)
		}
		state.OpenEditor(id, index)
	}

	return state, nil
}

type Editor struct {
	Open    bool      `json:"open"`
	GroupID uuid.UUID `json:"groupId,omitempty"`
	Index   int       `json:"index,omitempty"`
}

type Candidate struct {
	SubmissionID  uuid.UUID         `json:"submissionId"`
	Domain        string            `json:"domain"`
	Price         int64             `json:"price"`
	SelectionPool string            `json:"selectionPool,omitempty"`
	Status        badges.Badge      `json:"status"`
	Qualification badges.Badge      `json:"qualification"`
	Overlap       badges.Badge      `json:"overlap"`
	Authority     badges.Badge      `json:"authority"`
	RowState      inflight.RowState `json:"rowState"`
}

type Row struct {
	Index          int         `json:"index"`
	TargetPageURL  string      `json:"targetPageUrl,omitempty"`
	AnchorText     string      `json:"anchorText,omitempty"`
	Display        *Candidate  `json:"display"`
	Alternatives   []Candidate `json:"alternatives,omitempty"`
	AlternateCount int         `json:"alternateCount"`
	Placeholder    string      `json:"placeholder,omitempty"`
	EditorOpen     bool        `json:"editorOpen"`
}

type GroupView struct {
	GroupID       uuid.UUID `json:"groupId"`
	ClientName    string    `json:"clientName"`
	Website       string    `json:"website"`
	LinkCount     int       `json:"linkCount"`
	ApprovedCount int       `json:"approvedCount"`
	Expanded      bool      `json:"expanded"`
	Rows          []Row     `json:"rows"`
	OrphanCount   int       `json:"orphanCount"`
}

type View struct {
	Order     *slots.ResolvedOrder         `json:"order"`
	Groups    []GroupView                  `json:"groups"`
	Editor    Editor                       `json:"editor"`
	RowStates map[string]inflight.RowState `json:"rowStates"`
}

// BuildTable renders the view model. Collapsed groups carry only their
// header; rows are built for expanded groups.
func BuildTable(resolved *slots.ResolvedOrder, state *TableState, rowStates map[string]inflight.RowState) *View {
	if state == nil {
		state = NewTableState()
	}
	if rowStates == nil {
		rowStates = map[string]inflight.RowState{}
	}

	view := &View{
		Order:     resolved,
		Groups:    []GroupView{},
		RowStates: rowStates,
	}
	if open, ok := state.focus.(OpenAt); ok {
		view.Editor = Editor{Open: true, GroupID: open.GroupID, Index: open.Index}
	}
	if resolved == nil {
		return view
	}

	for _, rg := range resolved.Groups {
		gv := GroupView{
			GroupID:     rg.GroupID,
			Expanded:    state.IsExpanded(rg.GroupID),
			Rows:        []Row{},
			OrphanCount: len(rg.Orphaned),
		}
		if rg.Group != nil {
			gv.ClientName = rg.Group.Client.Name
			gv.Website = rg.Group.Client.Website
			gv.LinkCount = rg.Group.LinkCount
			gv.ApprovedCount = approvedCount(rg.Group.Submissions)
		}

		if gv.Expanded {
			for _, slot := range rg.Slots {
				gv.Rows = append(gv.Rows, buildRow(slot, rg.GroupID, view.Editor, rowStates))
			}
		}
		view.Groups = append(view.Groups, gv)
	}
	return view
}

func buildRow(slot slots.Slot, groupID uuid.UUID, editor Editor, rowStates map[string]inflight.RowState) Row {
	row := Row{
		Index:         slot.Index,
		TargetPageURL: slot.TargetPageURL,
		AnchorText:    slot.AnchorText,
		EditorOpen:    editor.Open && editor.GroupID == groupID && editor.Index == slot.Index,
	}

	if slot.DisplaySubmission != nil {
		c := candidate(slot.DisplaySubmission, rowStates)
		row.Display = &c
	}
	for _, sub := range slot.AvailableForTarget {
		if slot.DisplaySubmission != nil && sub.ID == slot.DisplaySubmission.ID {
			continue
		}
		row.AlternateCount++
		if row.EditorOpen {
			row.Alternatives = append(row.Alternatives, candidate(sub, rowStates))
		}
	}
	if row.EditorOpen {
		sort.SliceStable(row.Alternatives, func(i, j int) bool {
			return row.Alternatives[i].SelectionPool == string(models.PoolPrimary) &&
				row.Alternatives[j].SelectionPool != string(models.PoolPrimary)
		})
	}

	if row.Display == nil && row.AlternateCount == 0 {
		row.Placeholder = NoSitesPlaceholder
	}
	return row
}

func candidate(s *models.SiteSubmission, rowStates map[string]inflight.RowState) Candidate {
	qualification := s.Metadata.QualificationStatus
	if s.Domain != nil && s.Domain.QualificationStatus != "" {
		qualification = s.Domain.QualificationStatus
	}

	state, ok := rowStates[s.ID.String()]
	if !ok {
		state = inflight.RowState{State: inflight.Idle}
	}

	return Candidate{
		SubmissionID:  s.ID,
		Domain:        s.DomainName(),
		Price:         s.Price,
		SelectionPool: string(s.SelectionPool),
		Status:        badges.ForSubmission(s),
		Qualification: badges.QualificationBadge(qualification),
		Overlap:       badges.OverlapBadge(s.Metadata.OverlapStatus),
		Authority:     badges.AuthorityBadge(s.Metadata.AuthorityDirect),
		RowState:      state,
	}
}

func approvedCount(subs []models.SiteSubmission) int {
	n := 0
	for i := range subs {
		switch subs[i].EffectiveStatus() {
		case models.StatusApproved, models.StatusClientApproved:
			n++
		}
	}
	return n
}
