package lifecycle

import (
	"context"
	"errors"
	"strings"
	"time"

	"NeighborGuard/internal/models"
	"NeighborGuard/pkg/i18n"
	"NeighborGuard/pkg/metrics"

	"go.uber.org/zap"
)

// maxStatusAttempts bounds the compare-and-swap retries of one operation.
const maxStatusAttempts = 3

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// Repository is the slice of the record store the lifecycle needs. Methods
// called with the ctx handed to a Transaction callback run inside that
// transaction.
type Repository interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
	FindEvent(ctx context.Context, id string) (*models.Event, error)
	CreateEvent(ctx context.Context, ev *models.Event) error
	SoftDeleteEvent(ctx context.Context, id string) error
	AppendNote(ctx context.Context, note *models.EventNote) error
	// SetEventStatus writes next only while the stored status equals
	// expected; an empty expected writes unconditionally.
	SetEventStatus(ctx context.Context, id string, expected, next models.EventStatus) (bool, error)
	SetPoliceReportFields(ctx context.Context, id string, u models.PoliceReportUpdate) error
	UpdateEventFields(ctx context.Context, id string, e models.EventEdit) error
	ListEvents(ctx context.Context, circleID string, f models.EventFilter) (*models.EventPage, error)
	ListNotes(ctx context.Context, eventID string) ([]models.EventNote, error)
	FindMember(ctx context.Context, memberID string) (*models.CircleMember, error)
	FindZone(ctx context.Context, zoneID string) (*models.Zone, error)
}

// Observer hears about committed changes. Calls are made synchronously after
// commit, so implementations must hand work off instead of blocking.
type Observer interface {
	EventCreated(ev models.Event, actorUserID string)
	EventUpdated(ev models.Event, update models.UpdateType, actorUserID string)
}

type nopObserver struct{}

func (nopObserver) EventCreated(models.Event, string)                    {}
func (nopObserver) EventUpdated(models.Event, models.UpdateType, string) {}

// Outcome is what a lifecycle operation committed.
type Outcome struct {
	Event          models.Event
	Note           *models.EventNote
	PreviousStatus models.EventStatus
	Changed        bool
	// Conflict is set when concurrent writers kept moving the status and the
	// reaction gave up; the note is still recorded.
	Conflict bool
}

// CreateEventInput 新建事件参数
type CreateEventInput struct {
	CircleID      string
	ZoneID        string
	ActorMemberID string
	EventType     string
	Title         string
	Description   string
	Severity      models.Severity
	OccurredAt    time.Time
}

// UpdateEventInput 编辑事件，nil 字段保持不变
type UpdateEventInput struct {
	Title       *string
	Description *string
	Severity    *models.Severity
	OccurredAt  *time.Time
}

type Service struct {
	repo     Repository
	engine   *Engine
	texts    *i18n.I18nSupport
	observer Observer
	metrics  *metrics.Metrics
	logger   *zap.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithObserver(o Observer) Option { return func(s *Service) { s.observer = o } }

func WithTexts(t *i18n.I18nSupport) Option { return func(s *Service) { s.texts = t } }

func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

func WithLogger(l *zap.Logger) Option { return func(s *Service) { s.logger = l } }

func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

func NewService(repo Repository, engine *Engine, opts ...Option) *Service {
	s := &Service{
		repo:     repo,
		engine:   engine,
		observer: nopObserver{},
		logger:   zap.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	if s.engine == nil {
		s.engine = NewEngine(nil)
	}
	if s.texts == nil {
		s.texts = i18n.MustDefault()
	}
	return s
}

// Catalog 当前使用的配置
func (s *Service) Catalog() *Catalog { return s.engine.Catalog() }

// CreateEvent files a new OPEN event together with its creation note.
func (s *Service) CreateEvent(ctx context.Context, in CreateEventInput) (*Outcome, error) {
	if in.EventType == "" || in.ZoneID == "" || strings.TrimSpace(in.Title) == "" {
		return nil, ErrMissingFields
	}
	et, ok := LookupEventType(in.EventType)
	if !ok {
		return nil, ErrInvalidEventType
	}
	severity := in.Severity
	if severity == "" {
		severity = et.Severity
	} else if !severity.Valid() {
		return nil, ErrInvalidSeverity
	}
	occurred := in.OccurredAt
	if occurred.IsZero() {
		occurred = s.now()
	}

	var (
		out   Outcome
		actor *models.CircleMember
	)
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		var err error
		actor, err = s.activeMember(ctx, in.ActorMemberID, in.CircleID)
		if err != nil {
			return err
		}
		zone, err := s.repo.FindZone(ctx, in.ZoneID)
		if errors.Is(err, models.ErrNotFound) || (err == nil && zone.CircleID != in.CircleID) {
			return ErrZoneNotFound
		}
		if err != nil {
			return err
		}
		if !et.AllowsZone(zone.ZoneType) {
			return ErrZoneNotAllowed
		}
		ev := &models.Event{
			CircleID:    in.CircleID,
			ZoneID:      in.ZoneID,
			CreatorID:   actor.ID,
			EventType:   in.EventType,
			Title:       strings.TrimSpace(in.Title),
			Description: in.Description,
			Severity:    severity,
			Status:      models.StatusOpen,
			OccurredAt:  occurred,
		}
		if err := s.repo.CreateEvent(ctx, ev); err != nil {
			return err
		}
		note := &models.EventNote{
			EventID:  ev.ID,
			AuthorID: actor.ID,
			NoteType: models.NoteSystem,
			Body:     s.texts.TWithDefaultLang(i18n.MsgEventCreated, nil),
		}
		if err := s.repo.AppendNote(ctx, note); err != nil {
			return err
		}
		out = Outcome{Event: *ev, Note: note, Changed: true}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("event created",
		zap.String("event_id", out.Event.ID),
		zap.String("circle_id", out.Event.CircleID),
		zap.String("severity", string(out.Event.Severity)))
	s.observer.EventCreated(out.Event, actor.UserID)
	return &out, nil
}

// ApplyReaction records a REACTION note and moves the status when the engine
// says so. Codes outside the catalog are recorded without a status change.
func (s *Service) ApplyReaction(ctx context.Context, eventID, actorMemberID, rawCode, label string) (*Outcome, error) {
	raw := strings.TrimSpace(rawCode)
	if raw == "" {
		return nil, ErrMissingReaction
	}
	code, known := s.Catalog().ParseReactionCode(raw)
	if !known {
		s.logger.Debug("unrecognized reaction code", zap.String("code", raw), zap.String("event_id", eventID))
	}
	if strings.TrimSpace(label) == "" {
		label = s.Catalog().Label(code)
	}

	var out Outcome
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		ev, _, err := s.loadForActor(ctx, eventID, actorMemberID)
		if err != nil {
			return err
		}
		codeStr := string(code)
		note := &models.EventNote{
			EventID:      ev.ID,
			AuthorID:     actorMemberID,
			NoteType:     models.NoteReaction,
			ReactionCode: &codeStr,
			Body:         label,
		}
		if err := s.repo.AppendNote(ctx, note); err != nil {
			return err
		}
		out = Outcome{Note: note, PreviousStatus: ev.Status}

		for attempt := 1; ; attempt++ {
			next, ok := s.engine.Resolve(ev.Status, code)
			if !ok || next == ev.Status {
				break
			}
			swapped, err := s.repo.SetEventStatus(ctx, ev.ID, ev.Status, next)
			if err != nil {
				return err
			}
			if swapped {
				out.PreviousStatus = ev.Status
				ev.Status = next
				out.Changed = true
				break
			}
			if attempt >= maxStatusAttempts {
				out.Conflict = true
				break
			}
			// someone else moved the status; resolve again against it
			if ev, err = s.findEvent(ctx, eventID); err != nil {
				return err
			}
		}
		out.Event = *ev
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Changed {
		s.metrics.ObserveTransition(string(out.PreviousStatus), string(out.Event.Status), "reaction")
	}
	if out.Conflict {
		s.logger.Warn("reaction lost status race",
			zap.String("event_id", eventID), zap.String("code", raw))
	}
	return &out, nil
}

// AddComment appends a COMMENT note.
func (s *Service) AddComment(ctx context.Context, eventID, actorMemberID, body string) (*Outcome, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyBody
	}
	var (
		out   Outcome
		actor *models.CircleMember
	)
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		ev, member, err := s.loadForActor(ctx, eventID, actorMemberID)
		if err != nil {
			return err
		}
		actor = member
		note := &models.EventNote{EventID: ev.ID, AuthorID: actorMemberID, NoteType: models.NoteComment, Body: body}
		if err := s.repo.AppendNote(ctx, note); err != nil {
			return err
		}
		out = Outcome{Event: *ev, Note: note, PreviousStatus: ev.Status}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.observer.EventUpdated(out.Event, models.UpdateNewNote, actor.UserID)
	return &out, nil
}

// SetStatus is the administrative transition: any known status is honored,
// no priority check, and a SYSTEM note records old and new verbatim.
func (s *Service) SetStatus(ctx context.Context, eventID, actorMemberID string, newStatus models.EventStatus) (*Outcome, error) {
	if !newStatus.Valid() {
		return nil, ErrInvalidStatus
	}
	var (
		out   Outcome
		actor *models.CircleMember
	)
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		ev, member, err := s.loadForActor(ctx, eventID, actorMemberID)
		if err != nil {
			return err
		}
		actor = member
		old := ev.Status
		swapped, err := s.repo.SetEventStatus(ctx, ev.ID, "", newStatus)
		if err != nil {
			return err
		}
		if !swapped {
			// deleted between the read and the write
			return ErrEventNotFound
		}
		note := &models.EventNote{
			EventID:  ev.ID,
			AuthorID: actorMemberID,
			NoteType: models.NoteSystem,
			Body: s.texts.TWithDefaultLang(i18n.MsgStatusChanged, map[string]interface{}{
				"Old": string(old),
				"New": string(newStatus),
			}),
		}
		if err := s.repo.AppendNote(ctx, note); err != nil {
			return err
		}
		ev.Status = newStatus
		out = Outcome{Event: *ev, Note: note, PreviousStatus: old, Changed: old != newStatus}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Changed {
		s.metrics.ObserveTransition(string(out.PreviousStatus), string(newStatus), "admin")
	}
	switch newStatus {
	case models.StatusResolvedOK:
		s.observer.EventUpdated(out.Event, models.UpdateResolved, actor.UserID)
	case models.StatusFalseAlarm:
		s.observer.EventUpdated(out.Event, models.UpdateFalseAlarm, actor.UserID)
	}
	return &out, nil
}

// SetPoliceReported updates the police-report fields. The false->true edge
// stamps the time, writes a SYSTEM note and escalates unless the event is
// already escalated or resolved-equivalent. Repeating reported=true changes
// nothing but the report number.
func (s *Service) SetPoliceReported(ctx context.Context, eventID, actorMemberID string, reported bool, reportNumber *string) (*Outcome, error) {
	var (
		out   Outcome
		actor *models.CircleMember
		edge  bool
	)
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		ev, member, err := s.loadForActor(ctx, eventID, actorMemberID)
		if err != nil {
			return err
		}
		actor = member
		out = Outcome{PreviousStatus: ev.Status}
		edge = reported && !ev.PoliceReported

		update := models.PoliceReportUpdate{Reported: &reported, ReportNumber: reportNumber}
		if edge {
			now := s.now()
			update.ReportedAt = &now
			ev.PoliceReportedAt = &now
		}
		if err := s.repo.SetPoliceReportFields(ctx, ev.ID, update); err != nil {
			return err
		}
		ev.PoliceReported = reported
		if reportNumber != nil {
			ev.PoliceReportNumber = reportNumber
		}

		if edge {
			for attempt := 1; !ev.Status.IsResolutionEquivalent(); attempt++ {
				swapped, err := s.repo.SetEventStatus(ctx, ev.ID, ev.Status, models.StatusEscalated)
				if err != nil {
					return err
				}
				if swapped {
					out.PreviousStatus = ev.Status
					ev.Status = models.StatusEscalated
					out.Changed = true
					break
				}
				if attempt >= maxStatusAttempts {
					out.Conflict = true
					break
				}
				fresh, err := s.findEvent(ctx, eventID)
				if err != nil {
					return err
				}
				ev.Status = fresh.Status
			}

			body := s.texts.TWithDefaultLang(i18n.MsgPoliceReported, nil)
			if reportNumber != nil && *reportNumber != "" {
				body = s.texts.TWithDefaultLang(i18n.MsgPoliceReportedNumbered, map[string]interface{}{"Number": *reportNumber})
			}
			note := &models.EventNote{EventID: ev.ID, AuthorID: actorMemberID, NoteType: models.NoteSystem, Body: body}
			if err := s.repo.AppendNote(ctx, note); err != nil {
				return err
			}
			out.Note = note
		}
		out.Event = *ev
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out.Changed {
		s.metrics.ObserveTransition(string(out.PreviousStatus), string(out.Event.Status), "police")
	}
	if edge {
		s.observer.EventUpdated(out.Event, models.UpdatePoliceReported, actor.UserID)
	}
	return &out, nil
}

// UpdateEvent edits the descriptive fields of an event. The circle owner, a
// household member or the event's creator may do so; status and police
// fields are not touched and nobody is notified.
func (s *Service) UpdateEvent(ctx context.Context, eventID, actorMemberID string, in UpdateEventInput) (*Outcome, error) {
	if in.Title != nil {
		title := strings.TrimSpace(*in.Title)
		if title == "" {
			return nil, ErrEmptyTitle
		}
		in.Title = &title
	}
	if in.Severity != nil && !in.Severity.Valid() {
		return nil, ErrInvalidSeverity
	}
	var out Outcome
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		ev, actor, err := s.loadForActor(ctx, eventID, actorMemberID)
		if err != nil {
			return err
		}
		if actor.Role != models.RoleOwner && actor.Role != models.RoleHousehold && ev.CreatorID != actor.ID {
			return ErrNotAllowed
		}
		edit := models.EventEdit{Title: in.Title, Description: in.Description, Severity: in.Severity, OccurredAt: in.OccurredAt}
		if err := s.repo.UpdateEventFields(ctx, ev.ID, edit); err != nil {
			return err
		}
		if in.Title != nil {
			ev.Title = *in.Title
		}
		if in.Description != nil {
			ev.Description = *in.Description
		}
		if in.Severity != nil {
			ev.Severity = *in.Severity
		}
		if in.OccurredAt != nil {
			ev.OccurredAt = *in.OccurredAt
		}
		ev.UpdatedAt = s.now()
		out = Outcome{Event: *ev, PreviousStatus: ev.Status}
		return nil
	})
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	s.logger.Info("event edited", zap.String("event_id", eventID), zap.String("member_id", actorMemberID))
	return &out, nil
}

// ListEvents pages a circle's live events, newest first. Limit defaults to
// 50 and is capped at 100.
func (s *Service) ListEvents(ctx context.Context, circleID, actorMemberID string, f models.EventFilter) (*models.EventPage, error) {
	if _, err := s.activeMember(ctx, actorMemberID, circleID); err != nil {
		return nil, err
	}
	if f.Severity != "" && !f.Severity.Valid() {
		return nil, ErrInvalidSeverity
	}
	for _, st := range f.Statuses {
		if !st.Valid() {
			return nil, ErrInvalidStatus
		}
	}
	switch {
	case f.Limit <= 0:
		f.Limit = defaultListLimit
	case f.Limit > maxListLimit:
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return s.repo.ListEvents(ctx, circleID, f)
}

// DeleteEvent soft-deletes an event. Only the circle owner or the event's
// creator may do so; notes are kept.
func (s *Service) DeleteEvent(ctx context.Context, eventID, actorMemberID string) error {
	err := s.repo.Transaction(ctx, func(ctx context.Context) error {
		ev, actor, err := s.loadForActor(ctx, eventID, actorMemberID)
		if err != nil {
			return err
		}
		if actor.Role != models.RoleOwner && ev.CreatorID != actor.ID {
			return ErrNotAllowed
		}
		return s.repo.SoftDeleteEvent(ctx, ev.ID)
	})
	if errors.Is(err, models.ErrNotFound) {
		return ErrEventNotFound
	}
	if err == nil {
		s.logger.Info("event deleted", zap.String("event_id", eventID), zap.String("member_id", actorMemberID))
	}
	return err
}

// ListNotes returns the audit trail of a live event, oldest first.
func (s *Service) ListNotes(ctx context.Context, eventID string) ([]models.EventNote, error) {
	if _, err := s.findEvent(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repo.ListNotes(ctx, eventID)
}

// GetEvent 返回未删除的事件
func (s *Service) GetEvent(ctx context.Context, eventID string) (*models.Event, error) {
	return s.findEvent(ctx, eventID)
}

func (s *Service) findEvent(ctx context.Context, eventID string) (*models.Event, error) {
	ev, err := s.repo.FindEvent(ctx, eventID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *Service) loadForActor(ctx context.Context, eventID, actorMemberID string) (*models.Event, *models.CircleMember, error) {
	ev, err := s.findEvent(ctx, eventID)
	if err != nil {
		return nil, nil, err
	}
	actor, err := s.activeMember(ctx, actorMemberID, ev.CircleID)
	if err != nil {
		return nil, nil, err
	}
	return ev, actor, nil
}

func (s *Service) activeMember(ctx context.Context, memberID, circleID string) (*models.CircleMember, error) {
	m, err := s.repo.FindMember(ctx, memberID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrNotMember
	}
	if err != nil {
		return nil, err
	}
	if m.CircleID != circleID || !m.Active() {
		return nil, ErrNotMember
	}
	return m, nil
}
