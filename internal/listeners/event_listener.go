package listeners

import (
	"context"
	"time"

	"NeighborGuard/internal/lifecycle"
	"NeighborGuard/internal/models"
	"NeighborGuard/internal/notify"
	"NeighborGuard/pkg/cache"
	apperrors "NeighborGuard/pkg/errors"
	"NeighborGuard/pkg/notification"

	"go.uber.org/zap"
)

const (
	circleNameTTL     = 10 * time.Minute
	circleLookupLimit = 3 * time.Second
)

// CircleNamer resolves a circle's display name.
type CircleNamer interface {
	CircleName(ctx context.Context, circleID string) (string, error)
}

// Enqueuer accepts dispatch jobs without blocking.
type Enqueuer interface {
	Enqueue(j notify.Job) bool
}

// EventNotifier turns committed lifecycle changes into push dispatch jobs.
// It runs on the request goroutine and only enqueues; the circle name is
// resolved by the queue worker when the job's payload is built.
type EventNotifier struct {
	circles  CircleNamer
	cache    cache.Cache
	queue    Enqueuer
	payloads *notify.PayloadBuilder
	logger   *zap.Logger
}

func NewEventNotifier(circles CircleNamer, c cache.Cache, q Enqueuer, payloads *notify.PayloadBuilder, logger *zap.Logger) *EventNotifier {
	if c == nil {
		c = cache.NewLocalCache(cache.DefaultLocalConfig())
	}
	if payloads == nil {
		payloads = notify.NewPayloadBuilder(nil, "")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventNotifier{circles: circles, cache: c, queue: q, payloads: payloads, logger: logger}
}

// EventCreated alerts members who opted into the event's severity.
func (n *EventNotifier) EventCreated(ev models.Event, actorUserID string) {
	n.enqueue(notify.Job{
		Kind:     "new_event",
		CircleID: ev.CircleID,
		EventID:  ev.ID,
		Build: func(ctx context.Context) (*notification.Payload, error) {
			name, err := n.circleName(ctx, ev.CircleID)
			if err != nil {
				return nil, err
			}
			return n.payloads.NewEvent(ev, name), nil
		},
		Options: notify.Options{ExcludeUserID: actorUserID, SeverityFilter: ev.Severity},
	})
}

// EventUpdated alerts every active member except the actor, whatever
// their severity preferences.
func (n *EventNotifier) EventUpdated(ev models.Event, update models.UpdateType, actorUserID string) {
	n.enqueue(notify.Job{
		Kind:     "event_update",
		CircleID: ev.CircleID,
		EventID:  ev.ID,
		Build: func(ctx context.Context) (*notification.Payload, error) {
			name, err := n.circleName(ctx, ev.CircleID)
			if err != nil {
				return nil, err
			}
			return n.payloads.EventUpdate(ev, name, update), nil
		},
		Options: notify.Options{ExcludeUserID: actorUserID},
	})
}

func (n *EventNotifier) enqueue(j notify.Job) {
	if !n.queue.Enqueue(j) {
		n.logger.Warn("notification not queued", zap.String("kind", j.Kind), zap.String("event_id", j.EventID))
	}
}

// circleName is called from queue workers. An unknown circle means nobody
// to notify, so the error drops the job.
func (n *EventNotifier) circleName(ctx context.Context, circleID string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, circleLookupLimit)
	defer cancel()

	key := "circle:name:" + circleID
	if v, ok := n.cache.Get(ctx, key); ok {
		if s, ok := v.(string); ok {
			return s, nil
		}
	}
	name, err := n.circles.CircleName(ctx, circleID)
	if err != nil {
		return "", apperrors.Wrapf(err, "resolve circle %s", circleID)
	}
	if err := n.cache.Set(ctx, key, name, circleNameTTL); err != nil {
		n.logger.Debug("cache circle name failed", zap.Error(err))
	}
	return name, nil
}

var _ lifecycle.Observer = (*EventNotifier)(nil)
