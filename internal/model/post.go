package model

import "time"

// Post 状态
const (
	PostStatusActive    = "active"
	PostStatusExpired   = "expired"
	PostStatusConverted = "converted"
)

// Post 临时状态动态（达到阈值可转化为 Activity）
type Post struct {
	ID            string `gorm:"primaryKey;type:varchar(36)"`
	UserID        string `gorm:"type:varchar(36);index:idx_post_user;not null"`
	Title         string `gorm:"type:varchar(255);not null"`
	Description   string `gorm:"type:text"`
	LocationName  string `gorm:"type:varchar(255)"`
	Latitude      *float64
	Longitude     *float64
	Tags          []string `gorm:"serializer:json"`
	Mood          string   `gorm:"type:varchar(32)"`
	TimeHint      string   `gorm:"type:varchar(64)"`
	Status        string   `gorm:"type:varchar(16);index;default:active"`
	ReactionCount int      `gorm:"not null;default:0"`
	ViewCount     int      `gorm:"not null;default:0"`
	// 软阈值建议只发一次：null -> 时间戳，单向
	ConversionSuggestedAt *time.Time
	// 自动转化触发护栏：null -> 时间戳，单向（重试/并发下保证事件只发一次）
	ConversionTriggeredAt *time.Time
	ConvertedActivityID   *string   `gorm:"type:varchar(36)"`
	ExpiresAt             time.Time `gorm:"index"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

func (Post) TableName() string { return "posts" }

func (p *Post) IsActive() bool { return p.Status == PostStatusActive }

func (p *Post) IsExpired(now time.Time) bool {
	return p.Status == PostStatusExpired || !p.ExpiresAt.After(now)
}

func (p *Post) HasLocation() bool { return p.Latitude != nil && p.Longitude != nil }
