package listeners

import (
	"context"
	"errors"
	"sync"
	"testing"

	"NeighborGuard/internal/models"
	"NeighborGuard/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errNoCircle = errors.New("not found")

type countingNamer struct {
	mu    sync.Mutex
	calls int
	names map[string]string
}

func (c *countingNamer) CircleName(_ context.Context, id string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	n, ok := c.names[id]
	if !ok {
		return "", errNoCircle
	}
	return n, nil
}

func (c *countingNamer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

type sliceQueue struct {
	jobs []notify.Job
	full bool
}

func (q *sliceQueue) Enqueue(j notify.Job) bool {
	if q.full {
		return false
	}
	q.jobs = append(q.jobs, j)
	return true
}

func event() models.Event {
	return models.Event{Base: models.Base{ID: "e1"}, CircleID: "c1", Title: "Glass broken", Severity: models.SeverityHigh}
}

func TestEventCreated(t *testing.T) {
	namer := &countingNamer{names: map[string]string{"c1": "Maple St"}}
	q := &sliceQueue{}
	n := NewEventNotifier(namer, nil, q, nil, nil)

	n.EventCreated(event(), "u-creator")
	require.Len(t, q.jobs, 1)
	j := q.jobs[0]
	assert.Equal(t, "new_event", j.Kind)
	assert.Equal(t, "c1", j.CircleID)
	assert.Equal(t, "e1", j.EventID)
	assert.Equal(t, notify.Options{ExcludeUserID: "u-creator", SeverityFilter: models.SeverityHigh}, j.Options)

	// nothing is looked up until a worker builds the payload
	assert.Zero(t, namer.count())
	require.NotNil(t, j.Build)
	p, err := j.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "🚨 Maple St", p.Aps.Alert.Title)
	assert.Equal(t, 1, namer.count())
}

func TestEventUpdated_NoSeverityFilter(t *testing.T) {
	namer := &countingNamer{names: map[string]string{"c1": "Maple St"}}
	q := &sliceQueue{}
	n := NewEventNotifier(namer, nil, q, nil, nil)

	n.EventUpdated(event(), models.UpdatePoliceReported, "u-owner")
	require.Len(t, q.jobs, 1)
	j := q.jobs[0]
	assert.Equal(t, "event_update", j.Kind)
	assert.Equal(t, notify.Options{ExcludeUserID: "u-owner"}, j.Options)
	p, err := j.Build(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "police_reported", p.Data["updateType"])
}

func TestCircleNameCached(t *testing.T) {
	namer := &countingNamer{names: map[string]string{"c1": "Maple St"}}
	q := &sliceQueue{}
	n := NewEventNotifier(namer, nil, q, nil, nil)

	n.EventCreated(event(), "u")
	n.EventUpdated(event(), models.UpdateNewNote, "u")
	n.EventUpdated(event(), models.UpdateResolved, "u")
	require.Len(t, q.jobs, 3)
	for _, j := range q.jobs {
		_, err := j.Build(context.Background())
		require.NoError(t, err)
	}
	assert.Equal(t, 1, namer.count())
}

func TestUnknownCircleFailsBuild(t *testing.T) {
	namer := &countingNamer{names: map[string]string{}}
	q := &sliceQueue{}
	n := NewEventNotifier(namer, nil, q, nil, nil)

	n.EventCreated(event(), "u")
	require.Len(t, q.jobs, 1)
	_, err := q.jobs[0].Build(context.Background())
	assert.ErrorIs(t, err, errNoCircle)
}

func TestFullQueueDoesNotBlock(t *testing.T) {
	namer := &countingNamer{names: map[string]string{"c1": "Maple St"}}
	n := NewEventNotifier(namer, nil, &sliceQueue{full: true}, nil, nil)
	assert.NotPanics(t, func() { n.EventCreated(event(), "u") })
	assert.Zero(t, namer.count())
}
