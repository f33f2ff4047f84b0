package lifecycle

import (
	"testing"

	"NeighborGuard/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestResolve_Examples(t *testing.T) {
	e := NewEngine(nil)
	cases := []struct {
		name    string
		current models.EventStatus
		code    ReactionCode
		want    models.EventStatus
		wantOK  bool
	}{
		{"acked to watching", models.StatusAcked, ReactionWatching, models.StatusWatching, true},
		{"no downgrade", models.StatusWatching, ReactionNormalOK, "", false},
		{"terminal from escalated", models.StatusEscalated, ReactionFalseAlarmConfirmed, models.StatusFalseAlarm, true},
		{"unknown code", models.StatusOpen, "SOME_UNSEEN_CODE", "", false},
		{"open to escalated", models.StatusOpen, ReactionEscalateCalledPolice, models.StatusEscalated, true},
		{"same rank is no change", models.StatusAcked, ReactionSuspicious, "", false},
		{"warning over escalated", models.StatusEscalated, ReactionPackageMissing, models.StatusResolvedWarning, true},
		{"taken by member after false alarm", models.StatusFalseAlarm, ReactionPackageTakenByMember, models.StatusResolvedOK, true},
		{"ack outranks false alarm", models.StatusFalseAlarm, ReactionNormalOK, models.StatusAcked, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := e.Resolve(tc.current, tc.code)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestResolve_Grid(t *testing.T) {
	e := NewEngine(nil)
	cat := e.Catalog()
	for code, target := range defaultResolutions() {
		for _, current := range models.AllStatuses {
			got, ok := e.Resolve(current, code)
			switch {
			case target.IsTerminalResolution():
				assert.True(t, ok, "%s from %s", code, current)
				assert.Equal(t, target, got)
			case cat.Rank(target) > cat.Rank(current):
				assert.True(t, ok, "%s from %s", code, current)
				assert.Equal(t, target, got)
				assert.Greater(t, cat.Rank(got), cat.Rank(current))
			default:
				assert.False(t, ok, "%s from %s", code, current)
				assert.Empty(t, got)
			}
		}
	}
}

func TestResolve_NonTerminalNeverLowersRank(t *testing.T) {
	e := NewEngine(nil)
	cat := e.Catalog()
	for code := range defaultResolutions() {
		for _, current := range models.AllStatuses {
			got, ok := e.Resolve(current, code)
			if ok && !got.IsTerminalResolution() {
				assert.Greater(t, cat.Rank(got), cat.Rank(current))
			}
		}
	}
}

func TestResolve_CustomCatalog(t *testing.T) {
	cat := NewCatalog(
		PriorityTable{models.StatusOpen: 0, models.StatusAcked: 10},
		map[ReactionCode]models.EventStatus{"SEEN": models.StatusAcked},
		nil,
	)
	e := NewEngine(cat)
	got, ok := e.Resolve(models.StatusOpen, "SEEN")
	assert.True(t, ok)
	assert.Equal(t, models.StatusAcked, got)

	_, ok = e.Resolve(models.StatusOpen, ReactionWatching)
	assert.False(t, ok)
}
