package model

import "time"

// 反应类型
const (
	ReactionImDown        = "im_down"
	ReactionInviteFriends = "invite_friends"
)

// PostReaction 动态反应（同一用户对同一动态同一类型唯一）
type PostReaction struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)"`
	PostID       string    `gorm:"type:varchar(36);index:idx_reaction_post;uniqueIndex:ux_reaction_post_user_type;not null"`
	UserID       string    `gorm:"type:varchar(36);uniqueIndex:ux_reaction_post_user_type;not null"`
	ReactionType string    `gorm:"type:varchar(32);uniqueIndex:ux_reaction_post_user_type;not null"`
	CreatedAt    time.Time
}

func (PostReaction) TableName() string { return "post_reactions" }

// ValidReactionTypes 支持的反应类型
func ValidReactionTypes() []string {
	return []string{ReactionImDown, ReactionInviteFriends}
}
