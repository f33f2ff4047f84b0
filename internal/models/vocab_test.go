package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusGroups(t *testing.T) {
	for _, s := range AllStatuses {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, EventStatus("CLOSED").Valid())

	assert.True(t, StatusFalseAlarm.IsTerminalResolution())
	assert.False(t, StatusEscalated.IsTerminalResolution())

	assert.True(t, StatusEscalated.IsResolutionEquivalent())
	assert.False(t, StatusFalseAlarm.IsResolutionEquivalent())
	assert.False(t, StatusWatching.IsResolutionEquivalent())
}

func TestStatusGroupFilter(t *testing.T) {
	active, ok := StatusGroup("active")
	assert.True(t, ok)
	assert.Equal(t, []EventStatus{StatusOpen, StatusAcked, StatusWatching, StatusEscalated}, active)

	resolved, ok := StatusGroup("Resolved")
	assert.True(t, ok)
	assert.Equal(t, []EventStatus{StatusResolvedOK, StatusResolvedWarning, StatusFalseAlarm}, resolved)

	one, ok := StatusGroup("watching")
	assert.True(t, ok)
	assert.Equal(t, []EventStatus{StatusWatching}, one)

	_, ok = StatusGroup("closed")
	assert.False(t, ok)
}

func TestMemberSeverityPreference(t *testing.T) {
	m := CircleMember{NotifyOnHighSeverity: true}
	assert.True(t, m.WantsSeverity(SeverityHigh))
	assert.False(t, m.WantsSeverity(SeverityMedium))
	assert.False(t, m.WantsSeverity(SeverityLow))
	assert.True(t, m.WantsSeverity(""))
}

func TestRoles(t *testing.T) {
	assert.False(t, RoleObserver.CanReact())
	assert.True(t, RoleNeighbor.CanReact())
	assert.False(t, RoleNeighbor.CanReportPolice())
	assert.True(t, RoleHousehold.CanReportPolice())
}
