package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/flare/internal/model"
)

type ReactionRepository interface {
	Get(ctx context.Context, postID, userID, reactionType string) (*model.PostReaction, error)
	Create(ctx context.Context, postID, userID, reactionType string) (*model.PostReaction, error)
	Delete(ctx context.Context, id string) error
	CountByPost(ctx context.Context, postID string) (int64, error)
	// ListReactorIDs 返回对动态有过反应的去重用户ID
	ListReactorIDs(ctx context.Context, postID string) ([]string, error)
}

type reactionRepository struct{ db *gorm.DB }

func NewReactionRepository(db *gorm.DB) ReactionRepository { return &reactionRepository{db: db} }

func (r *reactionRepository) Get(ctx context.Context, postID, userID, reactionType string) (*model.PostReaction, error) {
	var pr model.PostReaction
	err := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ? AND reaction_type = ?", postID, userID, reactionType).
		First(&pr).Error
	if err != nil {
		return nil, err
	}
	return &pr, nil
}

func (r *reactionRepository) Create(ctx context.Context, postID, userID, reactionType string) (*model.PostReaction, error) {
	pr := &model.PostReaction{ID: uuid.New().String(), PostID: postID, UserID: userID, ReactionType: reactionType}
	if err := r.db.WithContext(ctx).Create(pr).Error; err != nil {
		return nil, err
	}
	return pr, nil
}

func (r *reactionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&model.PostReaction{}, "id = ?", id).Error
}

func (r *reactionRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).Model(&model.PostReaction{}).
		Where("post_id = ?", postID).
		Count(&cnt).Error
	return cnt, err
}

func (r *reactionRepository) ListReactorIDs(ctx context.Context, postID string) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Model(&model.PostReaction{}).
		Distinct("user_id").
		Where("post_id = ?", postID).
		Pluck("user_id", &ids).Error
	return ids, err
}
