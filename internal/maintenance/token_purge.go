package maintenance

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// TokenPurger deletes device tokens that stayed inactive past a cutoff.
type TokenPurger interface {
	PurgeInactiveDeviceTokens(ctx context.Context, cutoff time.Time) (int64, error)
}

// TokenPurgeJob is run from cron; it removes tokens unregistered more than
// After ago.
type TokenPurgeJob struct {
	Store  TokenPurger
	After  time.Duration
	Logger *zap.Logger
	Now    func() time.Time
}

func (j *TokenPurgeJob) Run(ctx context.Context) {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	log := j.Logger
	if log == nil {
		log = zap.NewNop()
	}
	cutoff := now().UTC().Add(-j.After)
	n, err := j.Store.PurgeInactiveDeviceTokens(ctx, cutoff)
	if err != nil {
		log.Error("purge inactive device tokens failed", zap.Error(err))
		return
	}
	log.Info("purged inactive device tokens", zap.Int64("count", n), zap.Time("cutoff", cutoff))
}
