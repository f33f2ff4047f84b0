package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base 字符串 UUID 主键
type Base struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Base) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

type User struct {
	Base
	Email       string `gorm:"size:255;uniqueIndex" json:"email"`
	DisplayName string `gorm:"size:128" json:"displayName"`
	AvatarURL   string `gorm:"size:1024" json:"avatarUrl,omitempty"`
}

type Circle struct {
	Base
	OwnerID     string `gorm:"size:36;index" json:"ownerId"`
	DisplayName string `gorm:"size:128" json:"displayName"`
}

// Zone 圈子内的一个物理区域，ZoneType 决定可上报的事件类型
type Zone struct {
	Base
	CircleID    string `gorm:"size:36;index" json:"circleId"`
	ZoneType    string `gorm:"size:32" json:"zoneType"`
	DisplayName string `gorm:"size:128" json:"displayName"`
}

// CircleMember 用户在某个圈子中的成员身份，退出时只写 LeftAt
type CircleMember struct {
	Base
	CircleID               string     `gorm:"size:36;index:idx_member_circle_user" json:"circleId"`
	UserID                 string     `gorm:"size:36;index:idx_member_circle_user" json:"userId"`
	Role                   MemberRole `gorm:"size:16" json:"role"`
	DisplayName            string     `gorm:"size:128" json:"displayName,omitempty"`
	NotifyOnHighSeverity   bool       `json:"notifyOnHighSeverity"`
	NotifyOnMediumSeverity bool       `json:"notifyOnMediumSeverity"`
	NotifyOnLowSeverity    bool       `json:"notifyOnLowSeverity"`
	LeftAt                 *time.Time `json:"leftAt,omitempty"`
	User                   User       `gorm:"foreignKey:UserID" json:"-"`
}

// Active 未退出
func (m *CircleMember) Active() bool { return m.LeftAt == nil }

// WantsSeverity reports the member's preference for a severity filter; an
// empty or unknown filter matches everyone.
func (m *CircleMember) WantsSeverity(s Severity) bool {
	switch s {
	case SeverityHigh:
		return m.NotifyOnHighSeverity
	case SeverityMedium:
		return m.NotifyOnMediumSeverity
	case SeverityLow:
		return m.NotifyOnLowSeverity
	}
	return true
}

// Event 只能通过 lifecycle.Service 修改；删除为软删除
type Event struct {
	Base
	CircleID           string      `gorm:"size:36;index" json:"circleId"`
	ZoneID             string      `gorm:"size:36" json:"zoneId"`
	CreatorID          string      `gorm:"size:36" json:"creatorId"`
	EventType          string      `gorm:"size:64" json:"eventType"`
	Title              string      `gorm:"size:255" json:"title"`
	Description        string      `gorm:"type:text" json:"description,omitempty"`
	Severity           Severity    `gorm:"size:16" json:"severity"`
	Status             EventStatus `gorm:"size:32;index" json:"status"`
	OccurredAt         time.Time   `json:"occurredAt"`
	PoliceReported     bool        `json:"policeReported"`
	PoliceReportNumber *string     `gorm:"size:64" json:"policeReportNumber,omitempty"`
	PoliceReportedAt   *time.Time  `json:"policeReportedAt,omitempty"`
	DeletedAt          *time.Time  `gorm:"index" json:"-"`
}

// EventNote 追加写入，不修改不删除
type EventNote struct {
	Base
	EventID      string   `gorm:"size:36;index" json:"eventId"`
	AuthorID     string   `gorm:"size:36" json:"authorId"`
	NoteType     NoteType `gorm:"size:16" json:"noteType"`
	ReactionCode *string  `gorm:"size:64" json:"reactionCode,omitempty"`
	Body         string   `gorm:"type:text" json:"body"`
}

type DeviceToken struct {
	Base
	UserID     string     `gorm:"size:36;index" json:"-"`
	Token      string     `gorm:"size:255;uniqueIndex" json:"-"`
	Platform   Platform   `gorm:"size:16" json:"platform"`
	DeviceName string     `gorm:"size:128" json:"deviceName,omitempty"`
	AppVersion string     `gorm:"size:32" json:"appVersion,omitempty"`
	IsActive   bool       `json:"isActive"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

// All returns every record for AutoMigrate.
func All() []any {
	return []any{&User{}, &Circle{}, &Zone{}, &CircleMember{}, &Event{}, &EventNote{}, &DeviceToken{}}
}
