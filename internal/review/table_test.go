package review_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"linkdesk-backend/internal/inflight"
	"linkdesk-backend/internal/models"
	"linkdesk-backend/internal/review"
	"linkdesk-backend/internal/slots"
)

func TestTableState_SinglePanel(t *testing.T) {
	g1, g2 := uuid.New(), uuid.New()
	state := review.NewTableState()

	assert.Equal(t, review.Closed{}, state.Focus())

	state.OpenEditor(g1, 0)
	state.OpenEditor(g2, 3)
	assert.Equal(t, review.OpenAt{GroupID: g2, Index: 3}, state.Focus())
	assert.True(t, state.IsExpanded(g2))

	assert.False(t, state.HandleKey("Enter"))
	assert.True(t, state.HandleKey("Escape"))
	assert.Equal(t, review.Closed{}, state.Focus())
	assert.False(t, state.HandleKey("Escape"))

	state.OpenEditor(g1, 1)
	state.HandleOutsideClick()
	assert.Equal(t, review.Closed{}, state.Focus())
}

func TestTableState_ToggleAndExpandAll(t *testing.T) {
	g1, g2 := uuid.New(), uuid.New()
	state := review.NewTableState()

	state.ToggleGroup(g1)
	assert.True(t, state.IsExpanded(g1))
	state.ToggleGroup(g1)
	assert.False(t, state.IsExpanded(g1))

	state.ExpandAll([]uuid.UUID{g1, g2})
	assert.True(t, state.IsExpanded(g1))
	assert.True(t, state.IsExpanded(g2))
}

func TestParseTableState(t *testing.T) {
	g1, g2 := uuid.New(), uuid.New()

	state, err := review.ParseTableState("all", g2.String()+":1", []uuid.UUID{g1, g2})
	require.NoError(t, err)
	assert.True(t, state.IsExpanded(g1))
	assert.Equal(t, review.OpenAt{GroupID: g2, Index: 1}, state.Focus())

	state, err = review.ParseTableState(g1.String(), "", nil)
	require.NoError(t, err)
	assert.True(t, state.IsExpanded(g1))
	assert.False(t, state.IsExpanded(g2))

	for _, tc := range []struct{ expand, edit string }{
		{"not-a-uuid", ""},
		{"", g1.String()},
		{"", g1.String() + ":x"},
		{"", g1.String() + ":-1"},
	} {
		_, err := review.ParseTableState(tc.expand, tc.edit, nil)
		assert.ErrorIs(t, err, review.ErrInvalidTableState, "expand=%q edit=%q", tc.expand, tc.edit)
	}
}

func TestBuildTable_PlaceholderWhenNoSites(t *testing.T) {
	order := &models.Order{
		ID: uuid.New(),
		Groups: []models.OrderGroup{{
			ID:          uuid.New(),
			LinkCount:   2,
			Client:      models.ClientInfo{Name: "Acme"},
			TargetPages: []models.TargetPage{{URL: "/a"}, {URL: "/b"}},
		}},
	}
	resolved, err := slots.ResolveOrder(order, slots.DisplayByTarget)
	require.NoError(t, err)

	state := review.NewTableState()
	state.ExpandAll([]uuid.UUID{order.Groups[0].ID})

	view := review.BuildTable(resolved, state, nil)
	require.Len(t, view.Groups, 1)
	rows := view.Groups[0].Rows
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Nil(t, row.Display)
		assert.Zero(t, row.AlternateCount)
		assert.Equal(t, review.NoSitesPlaceholder, row.Placeholder)
	}
	assert.Equal(t, "Acme", view.Groups[0].ClientName)
	assert.False(t, view.Editor.Open)
}

func TestBuildTable_OpenPanelListsAlternatives(t *testing.T) {
	groupID := uuid.New()
	s1, s3 := uuid.New(), uuid.New()
	order := &models.Order{
		ID: uuid.New(),
		Groups: []models.OrderGroup{{
			ID:          groupID,
			LinkCount:   1,
			TargetPages: []models.TargetPage{{URL: "/a"}},
			Submissions: []models.SiteSubmission{
				{ID: s1, TargetPageURL: "/a", SelectionPool: models.PoolPrimary, SubmissionStatus: models.StatusClientApproved,
					Domain: &models.SubmissionDomain{Domain: "one.example", QualificationStatus: "high_quality"}},
				{ID: s3, SelectionPool: models.PoolAlternative, Domain: &models.SubmissionDomain{Domain: "three.example"}},
			},
		}},
	}
	resolved, err := slots.ResolveOrder(order, slots.DisplayByTarget)
	require.NoError(t, err)

	state := review.NewTableState()
	state.OpenEditor(groupID, 0)
	rowStates := map[string]inflight.RowState{s3.String(): {State: inflight.Loading}}

	view := review.BuildTable(resolved, state, rowStates)
	row := view.Groups[0].Rows[0]

	require.NotNil(t, row.Display)
	assert.Equal(t, "one.example", row.Display.Domain)
	assert.True(t, row.EditorOpen)
	assert.Equal(t, 1, row.AlternateCount)
	require.Len(t, row.Alternatives, 1)
	assert.Equal(t, s3, row.Alternatives[0].SubmissionID)
	assert.Equal(t, inflight.Loading, row.Alternatives[0].RowState.State)
	assert.Empty(t, row.Placeholder)
	assert.Equal(t, 1, view.Groups[0].ApprovedCount)
}

func TestBuildTable_CollapsedGroupHasNoRows(t *testing.T) {
	order := &models.Order{ID: uuid.New(), Groups: []models.OrderGroup{{ID: uuid.New(), LinkCount: 3}}}
	resolved, err := slots.ResolveOrder(order, slots.DisplayByTarget)
	require.NoError(t, err)

	view := review.BuildTable(resolved, nil, nil)
	require.Len(t, view.Groups, 1)
	assert.False(t, view.Groups[0].Expanded)
	assert.Empty(t, view.Groups[0].Rows)
	assert.Equal(t, 3, view.Groups[0].LinkCount)
}
