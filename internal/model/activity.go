package model

import "time"

// Activity 状态
const (
	ActivityStatusDraft     = "draft"
	ActivityStatusPublished = "published"
	ActivityStatusCancelled = "cancelled"
)

// Activity 可报名的正式活动（动态转化的目标）
type Activity struct {
	ID                   string `gorm:"primaryKey;type:varchar(36)"`
	UserID               string `gorm:"type:varchar(36);index:idx_activity_host;not null"` // 主办人
	Title                string `gorm:"type:varchar(255);not null"`
	Description          string `gorm:"type:text"`
	LocationName         string `gorm:"type:varchar(255)"`
	Latitude             *float64
	Longitude            *float64
	Tags                 []string  `gorm:"serializer:json"`
	StartTime            time.Time `gorm:"index"`
	EndTime              time.Time
	MaxAttendees         int
	Price                float64 `gorm:"type:decimal(10,2);default:0"`
	IsPaid               bool
	Status               string  `gorm:"type:varchar(16);index;default:draft"`
	OriginatedFromPostID *string `gorm:"type:varchar(36);index"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

func (Activity) TableName() string { return "activities" }

func (a *Activity) IsFree() bool { return a.Price == 0 }

func (a *Activity) HasLocation() bool { return a.Latitude != nil && a.Longitude != nil }
