package models

import "strings"

// EventStatus 事件状态，取值与客户端保持逐字一致
type EventStatus string

const (
	StatusOpen            EventStatus = "OPEN"
	StatusAcked           EventStatus = "ACKED"
	StatusWatching        EventStatus = "WATCHING"
	StatusResolvedOK      EventStatus = "RESOLVED_OK"
	StatusResolvedWarning EventStatus = "RESOLVED_WARNING"
	StatusEscalated       EventStatus = "ESCALATED"
	StatusFalseAlarm      EventStatus = "FALSE_ALARM"
)

// AllStatuses lists every status in declaration order.
var AllStatuses = []EventStatus{
	StatusOpen, StatusAcked, StatusWatching, StatusResolvedOK,
	StatusResolvedWarning, StatusEscalated, StatusFalseAlarm,
}

func (s EventStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusAcked, StatusWatching, StatusResolvedOK,
		StatusResolvedWarning, StatusEscalated, StatusFalseAlarm:
		return true
	}
	return false
}

// IsTerminalResolution reports the statuses a reaction may always apply,
// whatever the current priority.
func (s EventStatus) IsTerminalResolution() bool {
	return s == StatusResolvedOK || s == StatusResolvedWarning || s == StatusFalseAlarm
}

// IsResolutionEquivalent reports the statuses that police auto-escalation
// must leave alone.
func (s EventStatus) IsResolutionEquivalent() bool {
	return s == StatusEscalated || s == StatusResolvedWarning || s == StatusResolvedOK
}

// IsActive 仍需关注的事件
func (s EventStatus) IsActive() bool {
	return s == StatusOpen || s == StatusAcked || s == StatusWatching || s == StatusEscalated
}

// StatusGroup expands a list filter. "active" and "resolved" split
// AllStatuses by IsActive; anything else must name a single status.
func StatusGroup(name string) ([]EventStatus, bool) {
	group := strings.ToLower(strings.TrimSpace(name))
	if group == "active" || group == "resolved" {
		var out []EventStatus
		for _, s := range AllStatuses {
			if s.IsActive() == (group == "active") {
				out = append(out, s)
			}
		}
		return out, true
	}
	s := EventStatus(strings.ToUpper(group))
	return []EventStatus{s}, s.Valid()
}

type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
)

func (s Severity) Valid() bool {
	return s == SeverityHigh || s == SeverityMedium || s == SeverityLow
}

type NoteType string

const (
	NoteSystem   NoteType = "SYSTEM"
	NoteComment  NoteType = "COMMENT"
	NoteReaction NoteType = "REACTION"
)

type MemberRole string

const (
	RoleOwner     MemberRole = "OWNER"
	RoleHousehold MemberRole = "HOUSEHOLD"
	RoleNeighbor  MemberRole = "NEIGHBOR"
	RoleRelative  MemberRole = "RELATIVE"
	RoleObserver  MemberRole = "OBSERVER"
)

// CanReact 观察员只读
func (r MemberRole) CanReact() bool {
	switch r {
	case RoleOwner, RoleHousehold, RoleNeighbor, RoleRelative:
		return true
	}
	return false
}

func (r MemberRole) CanReportPolice() bool {
	return r == RoleOwner || r == RoleHousehold
}

type Platform string

const (
	PlatformIOS     Platform = "IOS"
	PlatformAndroid Platform = "ANDROID"
)

// UpdateType 事件更新通知的类型
type UpdateType string

const (
	UpdateResolved       UpdateType = "resolved"
	UpdateFalseAlarm     UpdateType = "false_alarm"
	UpdatePoliceReported UpdateType = "police_reported"
	UpdateNewNote        UpdateType = "new_note"
	UpdateNewMedia       UpdateType = "new_media"
)
