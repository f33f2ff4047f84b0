package notify

import (
	"context"
	"sync"
	"time"

	"NeighborGuard/internal/models"
	"NeighborGuard/pkg/metrics"
	"NeighborGuard/pkg/notification"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultSendTimeout = 10 * time.Second
	defaultFanout      = 8
)

// Directory is the read side the dispatcher needs, plus token pruning.
type Directory interface {
	FindMembers(ctx context.Context, circleID string, activeOnly bool) ([]models.CircleMember, error)
	FindActiveDeviceTokens(ctx context.Context, userID string) ([]models.DeviceToken, error)
	// DeleteDeviceToken must treat an already deleted token as success.
	DeleteDeviceToken(ctx context.Context, tokenID string) error
}

// Options narrows the audience of one dispatch.
type Options struct {
	ExcludeUserID  string
	SeverityFilter models.Severity
}

// Result 一次分发的统计
type Result struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
	Pruned  int `json:"pruned"`
}

// Dispatcher fans one payload out to every active device of a circle's
// audience. Sends are independent: one device failing or hanging never stops
// the others.
type Dispatcher struct {
	dir         Directory
	gateway     notification.Gateway
	sendTimeout time.Duration
	fanout      int
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

type DispatcherOption func(*Dispatcher)

func WithSendTimeout(d time.Duration) DispatcherOption {
	return func(x *Dispatcher) {
		if d > 0 {
			x.sendTimeout = d
		}
	}
}

func WithFanout(n int) DispatcherOption {
	return func(x *Dispatcher) {
		if n > 0 {
			x.fanout = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) DispatcherOption { return func(x *Dispatcher) { x.metrics = m } }

func WithLogger(l *zap.Logger) DispatcherOption { return func(x *Dispatcher) { x.logger = l } }

func NewDispatcher(dir Directory, gw notification.Gateway, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		dir:         dir,
		gateway:     gw,
		sendTimeout: defaultSendTimeout,
		fanout:      defaultFanout,
		logger:      zap.NewNop(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

type target struct {
	userID  string
	tokenID string
	token   string
}

// Notify sends p to the circle's active members that pass opts. The error is
// non-nil only when the audience itself cannot be loaded.
func (d *Dispatcher) Notify(ctx context.Context, circleID string, p *notification.Payload, opts Options) (Result, error) {
	var res Result
	if !d.gateway.Enabled() {
		d.logger.Debug("push disabled, skipping dispatch", zap.String("circle_id", circleID))
		return res, nil
	}

	members, err := d.dir.FindMembers(ctx, circleID, true)
	if err != nil {
		return res, err
	}
	var targets []target
	for i := range members {
		m := &members[i]
		if opts.ExcludeUserID != "" && m.UserID == opts.ExcludeUserID {
			res.Skipped++
			continue
		}
		if !m.WantsSeverity(opts.SeverityFilter) {
			continue
		}
		tokens, err := d.dir.FindActiveDeviceTokens(ctx, m.UserID)
		if err != nil {
			d.logger.Warn("load device tokens failed", zap.String("user_id", m.UserID), zap.Error(err))
			continue
		}
		for _, t := range tokens {
			targets = append(targets, target{userID: m.UserID, tokenID: t.ID, token: t.Token})
		}
	}

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(d.fanout)
	for _, t := range targets {
		t := t
		g.Go(func() error {
			delivered, pruned := d.sendOne(ctx, t, p)
			mu.Lock()
			defer mu.Unlock()
			if delivered {
				res.Sent++
			} else {
				res.Failed++
			}
			if pruned {
				res.Pruned++
			}
			return nil
		})
	}
	_ = g.Wait()

	d.logger.Info("dispatch finished",
		zap.String("circle_id", circleID),
		zap.Int("sent", res.Sent),
		zap.Int("failed", res.Failed),
		zap.Int("skipped", res.Skipped),
		zap.Int("pruned", res.Pruned))
	return res, nil
}

func (d *Dispatcher) sendOne(ctx context.Context, t target, p *notification.Payload) (delivered, pruned bool) {
	sctx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()

	start := time.Now()
	r := d.gateway.Send(sctx, t.token, p)
	switch {
	case r.Delivered:
		d.metrics.ObservePush("sent", time.Since(start))
		return true, false
	case r.Fatal:
		d.metrics.ObservePush("rejected", time.Since(start))
	default:
		d.metrics.ObservePush("failed", time.Since(start))
	}
	if !r.Fatal {
		return false, false
	}
	// best effort; a concurrent dispatch may have pruned it already
	if err := d.dir.DeleteDeviceToken(ctx, t.tokenID); err != nil {
		d.logger.Warn("prune device token failed", zap.String("token_id", t.tokenID), zap.Error(err))
		return false, false
	}
	d.metrics.TokenPruned()
	d.logger.Info("pruned dead device token",
		zap.String("user_id", t.userID),
		zap.String("token_id", t.tokenID),
		zap.String("reason", r.Reason))
	return false, true
}
