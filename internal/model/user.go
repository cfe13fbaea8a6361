package model

import "time"

// 通知偏好取值
const (
	PrefAll       = "all"
	PrefInAppOnly = "in_app_only"
	PrefEmailOnly = "email_only"
	PrefNone      = "none"
)

// User 用户（通知偏好决定扇出时是否投递邮件）
type User struct {
	ID                     string `gorm:"primaryKey;type:varchar(36)"`
	Username               string `gorm:"type:varchar(64);uniqueIndex;not null"`
	DisplayName            string `gorm:"type:varchar(64)"`
	Email                  string `gorm:"type:varchar(128);uniqueIndex;not null"`
	Password               string `gorm:"type:varchar(128)"` // bcrypt hash
	Age                    int
	Latitude               *float64
	Longitude              *float64
	NotificationPreference string `gorm:"type:varchar(16);default:all"`
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

func (User) TableName() string { return "users" }

// WantsEmail 站内通知始终落库，邮件按偏好投递
func (u *User) WantsEmail() bool {
	return u.NotificationPreference == PrefAll || u.NotificationPreference == PrefEmailOnly
}

// HasLocation 是否具备地理上下文（搜索半径过滤需要）
func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}
