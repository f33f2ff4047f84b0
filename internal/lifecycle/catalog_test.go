package lifecycle

import (
	"testing"

	"NeighborGuard/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPriorities(t *testing.T) {
	p := DefaultPriorities()
	assert.Len(t, p, len(models.AllStatuses))
	assert.Less(t, p.Rank(models.StatusOpen), p.Rank(models.StatusFalseAlarm))
	assert.Less(t, p.Rank(models.StatusFalseAlarm), p.Rank(models.StatusResolvedOK))
	assert.Less(t, p.Rank(models.StatusResolvedOK), p.Rank(models.StatusAcked))
	assert.Less(t, p.Rank(models.StatusAcked), p.Rank(models.StatusWatching))
	assert.Less(t, p.Rank(models.StatusWatching), p.Rank(models.StatusResolvedWarning))
	assert.Less(t, p.Rank(models.StatusResolvedWarning), p.Rank(models.StatusEscalated))
	assert.Equal(t, 0, p.Rank("BOGUS"))
}

func TestCategoryFor(t *testing.T) {
	assert.Equal(t, CategoryBreakin, CategoryFor("break_in_attempt"))
	assert.Equal(t, CategoryBreakin, CategoryFor("perimeter_damage"))
	assert.Equal(t, CategorySuspicious, CategoryFor("suspicious_vehicle"))
	assert.Equal(t, CategoryPackage, CategoryFor("package_event"))
	assert.Equal(t, CategoryCustom, CategoryFor("custom"))
	assert.Equal(t, CategoryCustom, CategoryFor("something_else"))
}

func TestCatalog_OptionsAreCopies(t *testing.T) {
	c := DefaultCatalog()
	opts := c.OptionsFor("package_event")
	require.Len(t, opts, 4)
	assert.Equal(t, ReactionPackageOK, opts[0].Code)

	opts[0].Code = "MUTATED"
	assert.Equal(t, ReactionPackageOK, c.OptionsFor("package_event")[0].Code)
}

func TestCatalog_CopiesInputs(t *testing.T) {
	res := map[ReactionCode]models.EventStatus{"X": models.StatusAcked}
	c := NewCatalog(DefaultPriorities(), res, nil)
	res["X"] = models.StatusEscalated
	res["Y"] = models.StatusEscalated

	got, ok := c.Resolution("X")
	assert.True(t, ok)
	assert.Equal(t, models.StatusAcked, got)
	_, ok = c.Resolution("Y")
	assert.False(t, ok)
}

func TestCatalog_EveryOptionResolves(t *testing.T) {
	c := DefaultCatalog()
	for _, cat := range []Category{CategorySuspicious, CategoryBreakin, CategoryPackage, CategoryCustom} {
		for _, o := range c.Options(cat) {
			_, ok := c.Resolution(o.Code)
			assert.True(t, ok, "option %s in %s has no resolution", o.Code, cat)
			assert.NotEmpty(t, o.Label)
		}
	}
}

func TestCatalog_LabelAndParse(t *testing.T) {
	c := DefaultCatalog()
	assert.Equal(t, "包裹不见了", c.Label(ReactionPackageMissing))
	assert.Equal(t, "NOT_A_CODE", c.Label("NOT_A_CODE"))

	code, ok := c.ParseReactionCode("WATCHING")
	assert.True(t, ok)
	assert.Equal(t, ReactionWatching, code)

	code, ok = c.ParseReactionCode("NOT_A_CODE")
	assert.False(t, ok)
	assert.Equal(t, ReactionCode("NOT_A_CODE"), code)

	// codes with a resolution but no option entry are still known
	assert.True(t, c.Known(ReactionFalseAlarmConfirmed))
}

func TestEventTypes(t *testing.T) {
	types := EventTypes()
	require.Len(t, types, 7)
	types[0].Value = "mutated"
	_, ok := LookupEventType("break_in_attempt")
	assert.True(t, ok)

	pkg, ok := LookupEventType("package_event")
	require.True(t, ok)
	assert.Equal(t, models.SeverityLow, pkg.Severity)
	assert.True(t, pkg.AllowsZone("FRONT_DOOR"))
	assert.False(t, pkg.AllowsZone("BACK_STREET"))
	assert.False(t, pkg.AllowsZone(""))

	custom, _ := LookupEventType("custom")
	assert.True(t, custom.AllowsZone("ANYWHERE"))

	_, ok = LookupEventType("nope")
	assert.False(t, ok)
}
