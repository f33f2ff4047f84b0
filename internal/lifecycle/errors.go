package lifecycle

import apperrors "NeighborGuard/pkg/errors"

var (
	ErrEventNotFound    = apperrors.Sentinel(apperrors.CodeNotFound, "event not found")
	ErrInvalidStatus    = apperrors.Sentinel(apperrors.CodeInvalidInput, "invalid status")
	ErrInvalidEventType = apperrors.Sentinel(apperrors.CodeInvalidInput, "invalid event type")
	ErrInvalidSeverity  = apperrors.Sentinel(apperrors.CodeInvalidInput, "invalid severity")
	ErrZoneNotFound     = apperrors.Sentinel(apperrors.CodeInvalidInput, "zone not found in circle")
	ErrZoneNotAllowed   = apperrors.Sentinel(apperrors.CodeInvalidInput, "event type not allowed in zone")
	ErrMissingFields    = apperrors.Sentinel(apperrors.CodeInvalidInput, "eventType, zoneId and title are required")
	ErrEmptyTitle       = apperrors.Sentinel(apperrors.CodeInvalidInput, "title must not be empty")
	ErrMissingReaction  = apperrors.Sentinel(apperrors.CodeInvalidInput, "reaction code is required")
	ErrEmptyBody        = apperrors.Sentinel(apperrors.CodeInvalidInput, "note body is required")
	ErrNotAllowed       = apperrors.Sentinel(apperrors.CodeForbidden, "not allowed")
	ErrNotMember        = apperrors.Sentinel(apperrors.CodeForbidden, "actor is not an active member of the event's circle")
)
