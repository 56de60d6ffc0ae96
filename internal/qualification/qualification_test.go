package qualification_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"linkdesk-backend/internal/models"
	"linkdesk-backend/internal/qualification"
)

func domain(status models.QualificationStatus) *models.BulkAnalysisDomain {
	return &models.BulkAnalysisDomain{ID: uuid.New(), Domain: "blog.example", QualificationStatus: status}
}

func TestApply_ShortcutOnlyFromPending(t *testing.T) {
	for _, status := range []models.QualificationStatus{
		models.QualificationHighQuality, models.QualificationAverage, models.QualificationDisqualified,
	} {
		d := domain(status)
		changed, err := qualification.Apply(d, qualification.Change{
			Status: models.QualificationDisqualified, Source: qualification.SourceShortcut, At: time.Now(),
		})
		require.NoError(t, err)
		assert.False(t, changed, "shortcut changed a %s domain", status)
		assert.Equal(t, status, d.QualificationStatus)
	}

	d := domain(models.QualificationPending)
	changed, err := qualification.Apply(d, qualification.Change{
		Status: models.QualificationHighQuality, Source: qualification.SourceShortcut, At: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.QualificationHighQuality, d.QualificationStatus)
	assert.True(t, d.WasManuallyQualified)
	assert.NotNil(t, d.CheckedAt)
}

func TestApply_DropdownReclassifies(t *testing.T) {
	d := domain(models.QualificationHighQuality)
	d.WasHumanVerified = true

	changed, err := qualification.Apply(d, qualification.Change{
		Status: models.QualificationDisqualified, Source: qualification.SourceDropdown, At: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.QualificationDisqualified, d.QualificationStatus)
	assert.True(t, d.WasManuallyQualified)
	assert.False(t, d.WasHumanVerified)

	changed, err = qualification.Apply(d, qualification.Change{
		Status: models.QualificationDisqualified, Source: qualification.SourceDropdown, At: time.Now(),
	})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestApply_AINeverOverridesHuman(t *testing.T) {
	d := domain(models.QualificationPending)
	d.WasManuallyQualified = true

	changed, err := qualification.Apply(d, qualification.Change{
		Status: models.QualificationHighQuality, Source: qualification.SourceAI, Reasoning: "strong overlap",
	})
	require.NoError(t, err)
	assert.False(t, changed)

	d = domain(models.QualificationPending)
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	changed, err = qualification.Apply(d, qualification.Change{
		Status: models.QualificationAverage, Source: qualification.SourceAI, Reasoning: "some overlap", At: at,
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, "some overlap", d.AIQualificationReasoning)
	require.NotNil(t, d.AIQualifiedAt)
	assert.Equal(t, at, *d.AIQualifiedAt)
	assert.False(t, d.WasManuallyQualified)
}

func TestApply_UpdateSetsStatusKeepingFlags(t *testing.T) {
	d := domain(models.QualificationHighQuality)
	d.WasManuallyQualified = true

	changed, err := qualification.Apply(d, qualification.Change{
		Status: models.QualificationDisqualified, Source: qualification.SourceUpdate, At: time.Now(),
	})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.QualificationDisqualified, d.QualificationStatus)
	assert.True(t, d.WasManuallyQualified)

	changed, err = qualification.Apply(d, qualification.Change{
		Status: models.QualificationDisqualified, Source: qualification.SourceUpdate, At: time.Now(),
	})
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestApply_Reset(t *testing.T) {
	d := domain(models.QualificationAverage)
	d.WasManuallyQualified = true
	d.WasHumanVerified = true

	changed, err := qualification.Apply(d, qualification.Change{Source: qualification.SourceReset, At: time.Now()})
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, models.QualificationPending, d.QualificationStatus)
	assert.False(t, d.WasManuallyQualified)
	assert.False(t, d.WasHumanVerified)
}

func TestApply_RejectsUnknownValues(t *testing.T) {
	d := domain(models.QualificationPending)

	_, err := qualification.Apply(d, qualification.Change{Status: "great", Source: qualification.SourceDropdown})
	assert.ErrorIs(t, err, qualification.ErrInvalidStatus)

	_, err = qualification.Apply(d, qualification.Change{Status: models.QualificationAverage, Source: "keyboard"})
	assert.ErrorIs(t, err, qualification.ErrInvalidSource)
}

func TestVerify(t *testing.T) {
	actor := uuid.New()

	_, err := qualification.Verify(domain(models.QualificationPending), &actor, time.Now())
	assert.ErrorIs(t, err, qualification.ErrNotQualified)

	d := domain(models.QualificationHighQuality)
	changed, err := qualification.Verify(d, &actor, time.Now())
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, d.WasHumanVerified)
	assert.Equal(t, &actor, d.CheckedBy)

	changed, err = qualification.Verify(d, &actor, time.Now())
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestNavigator(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	nav := qualification.NewNavigator([]uuid.UUID{a, b, c})

	_, ok := nav.Focused()
	assert.False(t, ok)
	assert.Equal(t, qualification.ActionNone, nav.HandleKey("1").Kind)

	assert.Equal(t, a, nav.HandleKey("j").DomainID)
	assert.Equal(t, b, nav.HandleKey("ArrowDown").DomainID)
	assert.Equal(t, c, nav.HandleKey("j").DomainID)
	assert.Equal(t, c, nav.HandleKey("j").DomainID)
	assert.Equal(t, b, nav.HandleKey("k").DomainID)
	assert.Equal(t, a, nav.HandleKey("ArrowUp").DomainID)
	assert.Equal(t, a, nav.HandleKey("ArrowUp").DomainID)

	action := nav.HandleKey("3")
	assert.Equal(t, qualification.ActionQualify, action.Kind)
	assert.Equal(t, a, action.DomainID)
	assert.Equal(t, models.QualificationDisqualified, action.Status)

	assert.Equal(t, qualification.ActionNone, nav.HandleKey("x").Kind)

	nav.SetRows([]uuid.UUID{b, c})
	_, ok = nav.Focused()
	assert.False(t, ok)

	assert.True(t, nav.Focus(c))
	assert.False(t, nav.Focus(a))
	focused, _ := nav.Focused()
	assert.Equal(t, c, focused)
}
