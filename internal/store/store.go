package store

import (
	"context"
	"errors"
	"time"

	"NeighborGuard/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type txKey struct{}

// Store is the gorm-backed record store. It satisfies lifecycle.Repository
// and notify.Directory.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate 建表
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(models.All()...)
}

// DB 暴露底层连接，供健康检查使用
func (s *Store) DB() *gorm.DB { return s.db }

// Transaction runs fn inside one database transaction; store calls made with
// the ctx passed to fn join it. Nested calls reuse the outer transaction.
func (s *Store) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (s *Store) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return s.db.WithContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ErrNotFound
	}
	return err
}

// FindEvent returns a live (not soft-deleted) event.
func (s *Store) FindEvent(ctx context.Context, id string) (*models.Event, error) {
	var ev models.Event
	err := s.conn(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&ev).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &ev, nil
}

func (s *Store) CreateEvent(ctx context.Context, ev *models.Event) error {
	return s.conn(ctx).Create(ev).Error
}

// SoftDeleteEvent 软删除，保留审计记录
func (s *Store) SoftDeleteEvent(ctx context.Context, id string) error {
	now := time.Now().UTC()
	res := s.conn(ctx).Model(&models.Event{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", &now)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) AppendNote(ctx context.Context, note *models.EventNote) error {
	return s.conn(ctx).Create(note).Error
}

// SetEventStatus is a compare-and-swap on the status column; expected == ""
// writes unconditionally. swapped is false when no live row matched.
func (s *Store) SetEventStatus(ctx context.Context, id string, expected, next models.EventStatus) (bool, error) {
	q := s.conn(ctx).Model(&models.Event{}).Where("id = ? AND deleted_at IS NULL", id)
	if expected != "" {
		q = q.Where("status = ?", expected)
	}
	res := q.Updates(map[string]interface{}{"status": next, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) SetPoliceReportFields(ctx context.Context, id string, u models.PoliceReportUpdate) error {
	fields := map[string]interface{}{"updated_at": time.Now().UTC()}
	if u.Reported != nil {
		fields["police_reported"] = *u.Reported
	}
	if u.ReportNumber != nil {
		fields["police_report_number"] = *u.ReportNumber
	}
	if u.ReportedAt != nil {
		fields["police_reported_at"] = *u.ReportedAt
	}
	res := s.conn(ctx).Model(&models.Event{}).Where("id = ? AND deleted_at IS NULL", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListEvents pages the live events of a circle, newest first.
func (s *Store) ListEvents(ctx context.Context, circleID string, f models.EventFilter) (*models.EventPage, error) {
	scope := func(db *gorm.DB) *gorm.DB {
		db = db.Where("circle_id = ? AND deleted_at IS NULL", circleID)
		if len(f.Statuses) > 0 {
			db = db.Where("status IN ?", f.Statuses)
		}
		if f.Severity != "" {
			db = db.Where("severity = ?", f.Severity)
		}
		if f.ZoneID != "" {
			db = db.Where("zone_id = ?", f.ZoneID)
		}
		if f.EventType != "" {
			db = db.Where("event_type = ?", f.EventType)
		}
		if f.CreatorID != "" {
			db = db.Where("creator_id = ?", f.CreatorID)
		}
		return db
	}

	page := &models.EventPage{Limit: f.Limit, Offset: f.Offset}
	if err := s.conn(ctx).Model(&models.Event{}).Scopes(scope).Count(&page.Total).Error; err != nil {
		return nil, err
	}
	q := s.conn(ctx).Scopes(scope).Order("created_at DESC").Order("id DESC").Offset(f.Offset)
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if err := q.Find(&page.Events).Error; err != nil {
		return nil, err
	}
	page.HasMore = int64(f.Offset+len(page.Events)) < page.Total
	return page, nil
}

// UpdateEventFields writes the edited columns of a live event.
func (s *Store) UpdateEventFields(ctx context.Context, id string, e models.EventEdit) error {
	fields := map[string]interface{}{"updated_at": time.Now().UTC()}
	if e.Title != nil {
		fields["title"] = *e.Title
	}
	if e.Description != nil {
		fields["description"] = *e.Description
	}
	if e.Severity != nil {
		fields["severity"] = *e.Severity
	}
	if e.OccurredAt != nil {
		fields["occurred_at"] = *e.OccurredAt
	}
	res := s.conn(ctx).Model(&models.Event{}).Where("id = ? AND deleted_at IS NULL", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// ListNotes 按创建时间升序
func (s *Store) ListNotes(ctx context.Context, eventID string) ([]models.EventNote, error) {
	var notes []models.EventNote
	err := s.conn(ctx).Where("event_id = ?", eventID).Order("created_at ASC").Order("id ASC").Find(&notes).Error
	return notes, err
}

func (s *Store) FindMember(ctx context.Context, memberID string) (*models.CircleMember, error) {
	var m models.CircleMember
	if err := s.conn(ctx).Where("id = ?", memberID).First(&m).Error; err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// FindZone 按 ID 查找区域
func (s *Store) FindZone(ctx context.Context, zoneID string) (*models.Zone, error) {
	var z models.Zone
	if err := s.conn(ctx).Where("id = ?", zoneID).First(&z).Error; err != nil {
		return nil, notFound(err)
	}
	return &z, nil
}

// FindMemberByUser returns the active membership of a user in a circle.
func (s *Store) FindMemberByUser(ctx context.Context, circleID, userID string) (*models.CircleMember, error) {
	var m models.CircleMember
	err := s.conn(ctx).
		Where("circle_id = ? AND user_id = ? AND left_at IS NULL", circleID, userID).
		First(&m).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &m, nil
}

// FindMembers lists a circle's members with their user preloaded.
func (s *Store) FindMembers(ctx context.Context, circleID string, activeOnly bool) ([]models.CircleMember, error) {
	var members []models.CircleMember
	q := s.conn(ctx).Preload("User").Where("circle_id = ?", circleID)
	if activeOnly {
		q = q.Where("left_at IS NULL")
	}
	err := q.Order("created_at ASC").Find(&members).Error
	return members, err
}

func (s *Store) FindActiveDeviceTokens(ctx context.Context, userID string) ([]models.DeviceToken, error) {
	var tokens []models.DeviceToken
	err := s.conn(ctx).Where("user_id = ? AND is_active = ?", userID, true).Find(&tokens).Error
	return tokens, err
}

// DeleteDeviceToken is idempotent: deleting a missing token is not an error.
func (s *Store) DeleteDeviceToken(ctx context.Context, tokenID string) error {
	return s.conn(ctx).Where("id = ?", tokenID).Delete(&models.DeviceToken{}).Error
}

// RegisterDeviceToken upserts by token value, moving it to userID and
// reactivating it.
func (s *Store) RegisterDeviceToken(ctx context.Context, dt *models.DeviceToken) (*models.DeviceToken, error) {
	now := time.Now().UTC()
	dt.IsActive = true
	dt.LastUsedAt = &now
	if dt.Platform == "" {
		dt.Platform = models.PlatformIOS
	}
	err := s.conn(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "token"}},
		DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "device_name", "app_version", "is_active", "last_used_at", "updated_at"}),
	}).Create(dt).Error
	if err != nil {
		return nil, err
	}
	var saved models.DeviceToken
	if err := s.conn(ctx).Where("token = ?", dt.Token).First(&saved).Error; err != nil {
		return nil, notFound(err)
	}
	return &saved, nil
}

// UnregisterDeviceToken marks the user's token inactive; it reports how many
// rows changed.
func (s *Store) UnregisterDeviceToken(ctx context.Context, userID, token string) (int64, error) {
	res := s.conn(ctx).Model(&models.DeviceToken{}).
		Where("token = ? AND user_id = ?", token, userID).
		Updates(map[string]interface{}{"is_active": false, "updated_at": time.Now().UTC()})
	return res.RowsAffected, res.Error
}

// PurgeInactiveDeviceTokens deletes tokens that have been inactive since
// before cutoff.
func (s *Store) PurgeInactiveDeviceTokens(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.conn(ctx).
		Where("is_active = ? AND updated_at < ?", false, cutoff).
		Delete(&models.DeviceToken{})
	return res.RowsAffected, res.Error
}

// CircleName 推送标题使用的圈子名
func (s *Store) CircleName(ctx context.Context, circleID string) (string, error) {
	var c models.Circle
	if err := s.conn(ctx).Select("id", "display_name").Where("id = ?", circleID).First(&c).Error; err != nil {
		return "", notFound(err)
	}
	return c.DisplayName, nil
}
