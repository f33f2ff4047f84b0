package notify

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"NeighborGuard/pkg/metrics"
	"NeighborGuard/pkg/notification"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu     sync.Mutex
	calls  []string
	bodies []string
	block  chan struct{}
	err    error
}

func (n *recordingNotifier) Notify(ctx context.Context, circleID string, p *notification.Payload, _ Options) (Result, error) {
	if n.block != nil {
		select {
		case <-n.block:
		case <-ctx.Done():
			return Result{}, ctx.Err()
		}
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls = append(n.calls, circleID)
	if p != nil {
		n.bodies = append(n.bodies, p.Aps.Alert.Body)
	}
	return Result{Sent: 1}, n.err
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.calls)
}

func TestQueue_DrainsOnClose(t *testing.T) {
	n := &recordingNotifier{}
	q := NewQueue(n, 2, 16)
	for i := 0; i < 10; i++ {
		require.True(t, q.Enqueue(Job{Kind: "new_event", CircleID: "c1"}))
	}
	require.NoError(t, q.Close(context.Background()))
	assert.Equal(t, 10, n.count())

	assert.False(t, q.Enqueue(Job{CircleID: "late"}))
	assert.NoError(t, q.Close(context.Background()))
}

func TestQueue_DropsWhenFull(t *testing.T) {
	n := &recordingNotifier{block: make(chan struct{})}
	m := metrics.NewMetrics(prometheus.NewRegistry())
	q := NewQueue(n, 1, 1, WithQueueMetrics(m))

	// one job is picked up by the worker and blocks, one fills the buffer
	require.True(t, q.Enqueue(Job{CircleID: "a"}))
	require.Eventually(t, func() bool { return q.Len() == 0 }, time.Second, 5*time.Millisecond)
	require.True(t, q.Enqueue(Job{CircleID: "b"}))
	assert.False(t, q.Enqueue(Job{CircleID: "c"}))

	close(n.block)
	require.NoError(t, q.Close(context.Background()))
	assert.Equal(t, 2, n.count())
}

func TestQueue_CloseTimeoutCancelsWork(t *testing.T) {
	n := &recordingNotifier{block: make(chan struct{})}
	q := NewQueue(n, 1, 4)
	require.True(t, q.Enqueue(Job{CircleID: "a"}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 0, n.count())
}

func TestQueue_NotifierErrorDoesNotStopWorkers(t *testing.T) {
	n := &recordingNotifier{err: errors.New("boom")}
	q := NewQueue(n, 1, 4)
	require.True(t, q.Enqueue(Job{CircleID: "a"}))
	require.True(t, q.Enqueue(Job{CircleID: "b"}))
	require.NoError(t, q.Close(context.Background()))
	assert.Equal(t, 2, n.count())
}

func TestQueue_BuildsPayloadInWorker(t *testing.T) {
	n := &recordingNotifier{}
	q := NewQueue(n, 1, 4)
	require.True(t, q.Enqueue(Job{
		CircleID: "a",
		Build: func(context.Context) (*notification.Payload, error) {
			return &notification.Payload{Aps: notification.Aps{Alert: notification.Alert{Body: "built"}}}, nil
		},
	}))
	require.True(t, q.Enqueue(Job{
		CircleID: "gone",
		Build: func(context.Context) (*notification.Payload, error) {
			return nil, errors.New("circle missing")
		},
	}))
	require.NoError(t, q.Close(context.Background()))

	n.mu.Lock()
	defer n.mu.Unlock()
	assert.Equal(t, []string{"a"}, n.calls)
	assert.Equal(t, []string{"built"}, n.bodies)
}
