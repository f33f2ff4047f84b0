package notify

import (
	"testing"

	"NeighborGuard/internal/models"
	"NeighborGuard/pkg/i18n"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEvent() models.Event {
	return models.Event{
		Base:      models.Base{ID: "e1"},
		CircleID:  "c1",
		EventType: "package_event",
		Title:     "Box at the door",
		Severity:  models.SeverityHigh,
	}
}

func TestNewEventPayload(t *testing.T) {
	p := NewEventPayload(sampleEvent(), "Maple St")
	assert.Equal(t, "🚨 Maple St", p.Aps.Alert.Title)
	assert.Equal(t, "Box at the door", p.Aps.Alert.Subtitle)
	assert.Equal(t, "有新的安全事件", p.Aps.Alert.Body)
	require.NotNil(t, p.Aps.Badge)
	assert.Equal(t, 1, *p.Aps.Badge)
	assert.Equal(t, 1, p.Aps.MutableContent)
	assert.Equal(t, "c1", p.Aps.ThreadID)
	assert.Equal(t, map[string]string{
		"type": "new_event", "eventId": "e1", "circleId": "c1", "severity": "HIGH", "eventType": "package_event",
	}, p.Data)
}

func TestNewEventPayload_IconsAndDescription(t *testing.T) {
	ev := sampleEvent()
	ev.Description = "brown box"
	ev.Severity = models.SeverityLow
	p := NewEventPayload(ev, "C")
	assert.Equal(t, "ℹ️ C", p.Aps.Alert.Title)
	assert.Equal(t, "brown box", p.Aps.Alert.Body)

	ev.Severity = ""
	assert.Equal(t, "📢 C", NewEventPayload(ev, "C").Aps.Alert.Title)
}

func TestEventUpdatePayload(t *testing.T) {
	b := NewPayloadBuilder(i18n.MustDefault(), "en")
	cases := map[models.UpdateType]string{
		models.UpdateResolved:       "✅ Event Resolved",
		models.UpdateFalseAlarm:     "ℹ️ False Alarm",
		models.UpdatePoliceReported: "🚔 Police Notified",
		models.UpdateNewNote:        "💬 New Comment",
		models.UpdateNewMedia:       "📷 New Evidence",
		"something":                 "📢 Event Update",
	}
	for u, title := range cases {
		p := b.EventUpdate(sampleEvent(), "Maple St", u)
		assert.Equal(t, title, p.Aps.Alert.Title, u)
		assert.Equal(t, "Maple St", p.Aps.Alert.Subtitle)
		assert.Equal(t, "Box at the door", p.Aps.Alert.Body)
		assert.Nil(t, p.Aps.Badge)
		assert.Equal(t, "event_update", p.Data["type"])
		assert.Equal(t, string(u), p.Data["updateType"])
	}

	assert.Equal(t, "✅ 事件已解决", EventUpdatePayload(sampleEvent(), "x", models.UpdateResolved).Aps.Alert.Title)
}
