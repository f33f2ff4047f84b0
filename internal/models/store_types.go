package models

import (
	"time"

	apperrors "NeighborGuard/pkg/errors"
)

// ErrNotFound is returned by the record store for missing or soft-deleted rows.
var ErrNotFound = apperrors.Sentinel(apperrors.CodeNotFound, "record not found")

// PoliceReportUpdate carries the police-report columns to write; nil fields
// are left untouched.
type PoliceReportUpdate struct {
	Reported     *bool
	ReportNumber *string
	ReportedAt   *time.Time
}

// EventFilter narrows ListEvents; zero fields match everything.
type EventFilter struct {
	Statuses  []EventStatus
	Severity  Severity
	ZoneID    string
	EventType string
	CreatorID string
	Limit     int
	Offset    int
}

// EventPage 一页事件，Total 为过滤后的总数
type EventPage struct {
	Events  []Event
	Total   int64
	Limit   int
	Offset  int
	HasMore bool
}

// EventEdit carries the user-editable event columns; nil fields are left
// untouched.
type EventEdit struct {
	Title       *string
	Description *string
	Severity    *Severity
	OccurredAt  *time.Time
}
