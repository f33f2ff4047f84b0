package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"NeighborGuard/internal/models"
	"NeighborGuard/internal/store"
	"NeighborGuard/pkg/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	cutoff time.Time
	err    error
}

func (f *fakePurger) PurgeInactiveDeviceTokens(_ context.Context, cutoff time.Time) (int64, error) {
	f.cutoff = cutoff
	return 3, f.err
}

func TestTokenPurgeJob_Cutoff(t *testing.T) {
	now := time.Date(2024, 6, 1, 4, 0, 0, 0, time.UTC)
	p := &fakePurger{}
	job := &TokenPurgeJob{Store: p, After: 90 * 24 * time.Hour, Now: func() time.Time { return now }}
	job.Run(context.Background())
	assert.Equal(t, now.Add(-90*24*time.Hour), p.cutoff)

	p.err = errors.New("db down")
	assert.NotPanics(t, func() { job.Run(context.Background()) })
}

func TestTokenPurgeJob_Store(t *testing.T) {
	db, err := util.CreateDatabaseInstance("sqlite", "", "test")
	require.NoError(t, err)
	s := store.New(db)
	require.NoError(t, s.AutoMigrate())
	ctx := context.Background()

	_, err = s.RegisterDeviceToken(ctx, &models.DeviceToken{UserID: "u1", Token: "old"})
	require.NoError(t, err)
	_, err = s.RegisterDeviceToken(ctx, &models.DeviceToken{UserID: "u1", Token: "live"})
	require.NoError(t, err)
	_, err = s.UnregisterDeviceToken(ctx, "u1", "old")
	require.NoError(t, err)

	// running "a year later" removes only the inactive token
	job := &TokenPurgeJob{Store: s, After: 90 * 24 * time.Hour, Now: func() time.Time { return time.Now().Add(365 * 24 * time.Hour) }}
	job.Run(ctx)

	tokens, err := s.FindActiveDeviceTokens(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	assert.Equal(t, "live", tokens[0].Token)
	var count int64
	require.NoError(t, db.Model(&models.DeviceToken{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}
