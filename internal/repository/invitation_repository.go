package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/flare/internal/model"
)

type InvitationRepository interface {
	Create(ctx context.Context, postID, inviterID, inviteeID string) (*model.PostInvitation, error)
	ListPending(ctx context.Context, postID string) ([]*model.PostInvitation, error)
	// MarkMigrated pending -> migrated，重复调用幂等
	MarkMigrated(ctx context.Context, id string) (bool, error)
}

type invitationRepository struct{ db *gorm.DB }

func NewInvitationRepository(db *gorm.DB) InvitationRepository {
	return &invitationRepository{db: db}
}

func (r *invitationRepository) Create(ctx context.Context, postID, inviterID, inviteeID string) (*model.PostInvitation, error) {
	inv := &model.PostInvitation{
		ID:        uuid.New().String(),
		PostID:    postID,
		InviterID: inviterID,
		InviteeID: inviteeID,
		Status:    model.InvitationPending,
	}
	if err := r.db.WithContext(ctx).Create(inv).Error; err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *invitationRepository) ListPending(ctx context.Context, postID string) ([]*model.PostInvitation, error) {
	var res []*model.PostInvitation
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND status = ?", postID, model.InvitationPending).
		Find(&res).Error
	return res, err
}

func (r *invitationRepository) MarkMigrated(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.PostInvitation{}).
		Where("id = ? AND status = ?", id, model.InvitationPending).
		Update("status", model.InvitationMigrated)
	return res.RowsAffected > 0, res.Error
}
