package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCron_RunsAndStops(t *testing.T) {
	cr := NewCron(time.UTC, zap.NewNop())
	var runs atomic.Int32
	var sawCancel atomic.Bool

	_, err := cr.Add("@every 1s", FuncJob(func(ctx context.Context) {
		runs.Add(1)
		<-ctx.Done()
		sawCancel.Store(true)
	}))
	require.NoError(t, err)
	assert.Len(t, cr.Entries(), 1)

	cr.Start()
	require.Eventually(t, func() bool { return runs.Load() >= 1 }, 3*time.Second, 10*time.Millisecond)
	cr.Stop()
	assert.True(t, sawCancel.Load())
	// the blocked run is never overlapped
	assert.EqualValues(t, 1, runs.Load())
}

func TestCron_RecoversPanics(t *testing.T) {
	cr := NewCron(nil, nil)
	var runs atomic.Int32
	_, err := cr.Add("@every 1s", FuncJob(func(context.Context) {
		runs.Add(1)
		panic("boom")
	}))
	require.NoError(t, err)
	cr.Start()
	defer cr.Stop()
	require.Eventually(t, func() bool { return runs.Load() >= 2 }, 4*time.Second, 10*time.Millisecond)
}

func TestCron_BadSpec(t *testing.T) {
	cr := NewCron(time.UTC, nil)
	_, err := cr.Add("every now and then", FuncJob(func(context.Context) {}))
	assert.Error(t, err)
}
