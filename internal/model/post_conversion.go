package model

import "time"

// 转化触发方式
const (
	TriggerManual = "manual"
	TriggerAuto   = "auto"
)

// PostConversion 动态转化记录（一条动态至多转化一次）
type PostConversion struct {
	ID                    string    `gorm:"primaryKey;type:varchar(36)"`
	PostID                string    `gorm:"type:varchar(36);uniqueIndex;not null"`
	ActivityID            string    `gorm:"type:varchar(36);not null"`
	ConvertedBy           string    `gorm:"type:varchar(36);not null"`
	ReactionsAtConversion int       `gorm:"not null"`
	TriggerType           string    `gorm:"type:varchar(16);not null"`
	InvitedUsersNotified  int       `gorm:"not null;default:0"`
	CreatedAt             time.Time
}

func (PostConversion) TableName() string { return "post_conversions" }
