package notify

import (
	"sync"

	"NeighborGuard/internal/models"
	"NeighborGuard/pkg/i18n"
	"NeighborGuard/pkg/notification"
)

var severityIcons = map[models.Severity]string{
	models.SeverityHigh:   "🚨",
	models.SeverityMedium: "⚠️",
	models.SeverityLow:    "ℹ️",
}

var updateTitles = map[models.UpdateType]string{
	models.UpdateResolved:       i18n.MsgPushUpdateResolved,
	models.UpdateFalseAlarm:     i18n.MsgPushUpdateFalseAlarm,
	models.UpdatePoliceReported: i18n.MsgPushUpdatePolice,
	models.UpdateNewNote:        i18n.MsgPushUpdateNewNote,
	models.UpdateNewMedia:       i18n.MsgPushUpdateNewMedia,
}

// PayloadBuilder renders push payloads in one language.
type PayloadBuilder struct {
	texts *i18n.I18nSupport
	lang  string
}

func NewPayloadBuilder(texts *i18n.I18nSupport, lang string) *PayloadBuilder {
	if texts == nil {
		texts = i18n.MustDefault()
	}
	return &PayloadBuilder{texts: texts, lang: lang}
}

// NewEvent is the alert for a freshly filed event.
func (b *PayloadBuilder) NewEvent(ev models.Event, circleName string) *notification.Payload {
	icon, ok := severityIcons[ev.Severity]
	if !ok {
		icon = "📢"
	}
	body := ev.Description
	if body == "" {
		body = b.texts.T(b.lang, i18n.MsgPushNewEventBody, nil)
	}
	badge := 1
	return &notification.Payload{
		Aps: notification.Aps{
			Alert: notification.Alert{
				Title:    icon + " " + circleName,
				Subtitle: ev.Title,
				Body:     body,
			},
			Sound:          "default",
			Badge:          &badge,
			MutableContent: 1,
			ThreadID:       ev.CircleID,
		},
		Data: map[string]string{
			"type":      "new_event",
			"eventId":   ev.ID,
			"circleId":  ev.CircleID,
			"severity":  string(ev.Severity),
			"eventType": ev.EventType,
		},
	}
}

// EventUpdate is the alert for a change to an existing event.
func (b *PayloadBuilder) EventUpdate(ev models.Event, circleName string, u models.UpdateType) *notification.Payload {
	key, ok := updateTitles[u]
	if !ok {
		key = i18n.MsgPushUpdateGeneric
	}
	return &notification.Payload{
		Aps: notification.Aps{
			Alert: notification.Alert{
				Title:    b.texts.T(b.lang, key, nil),
				Subtitle: circleName,
				Body:     ev.Title,
			},
			Sound:    "default",
			ThreadID: ev.CircleID,
		},
		Data: map[string]string{
			"type":       "event_update",
			"updateType": string(u),
			"eventId":    ev.ID,
			"circleId":   ev.CircleID,
		},
	}
}

var defaultBuilder = sync.OnceValue(func() *PayloadBuilder {
	return NewPayloadBuilder(i18n.MustDefault(), "")
})

func NewEventPayload(ev models.Event, circleName string) *notification.Payload {
	return defaultBuilder().NewEvent(ev, circleName)
}

func EventUpdatePayload(ev models.Event, circleName string, u models.UpdateType) *notification.Payload {
	return defaultBuilder().EventUpdate(ev, circleName, u)
}
