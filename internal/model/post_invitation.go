package model

import "time"

// 邀请状态
const (
	InvitationPending  = "pending"
	InvitationAccepted = "accepted"
	InvitationDeclined = "declined"
	InvitationMigrated = "migrated"
)

// PostInvitation 动态邀请（转化为活动时迁移为活动邀请）
type PostInvitation struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	PostID    string    `gorm:"type:varchar(36);index:idx_invitation_post;not null"`
	InviterID string    `gorm:"type:varchar(36);not null"`
	InviteeID string    `gorm:"type:varchar(36);index:idx_invitation_invitee;not null"`
	Status    string    `gorm:"type:varchar(16);index;default:pending"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PostInvitation) TableName() string { return "post_invitations" }
