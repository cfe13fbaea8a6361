package model

import "time"

// 投递方式
const (
	DeliveryInApp = "in_app"
	DeliveryEmail = "email"
)

// 投递状态
const (
	DeliveryStatusSent    = "sent"
	DeliveryStatusPending = "pending"
)

// Notification 用户通知（read_at: null -> 时间戳，单向，不可回退）
type Notification struct {
	ID             string         `gorm:"primaryKey;type:varchar(36)"`
	UserID         string         `gorm:"type:varchar(36);index:idx_notification_user;not null"`
	Type           string         `gorm:"type:varchar(64);index;not null"`
	Title          string         `gorm:"type:varchar(255)"`
	Message        string         `gorm:"type:text"`
	Data           map[string]any `gorm:"serializer:json"`
	DeliveryMethod string         `gorm:"type:varchar(16);default:in_app"`
	DeliveryStatus string         `gorm:"type:varchar(16);default:sent"`
	ReadAt         *time.Time
	CreatedAt      time.Time `gorm:"index:idx_notification_user"`
}

func (Notification) TableName() string { return "notifications" }

func (n *Notification) IsRead() bool { return n.ReadAt != nil }
