package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/flare/internal/model"
)

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id string) (*model.Post, error)
	UpdateReactionCount(ctx context.Context, id string, count int) error
	// MarkSuggested 原子条件更新：仅当 active 且 conversion_suggested_at 为空时写入。
	// 返回是否由本次调用完成写入（并发/重试下只有一个赢家）。
	MarkSuggested(ctx context.Context, id string, at time.Time) (bool, error)
	// MarkTriggered 自动转化护栏，同上，针对 conversion_triggered_at。
	MarkTriggered(ctx context.Context, id string, at time.Time) (bool, error)
	// MarkConverted 状态 active -> converted，并记录目标活动。
	MarkConverted(ctx context.Context, id, activityID string) (bool, error)
	// ExpireDue 批量将到期的 active 动态置为 expired，返回条数。
	ExpireDue(ctx context.Context, now time.Time) (int64, error)
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id string) (*model.Post, error) {
	var p model.Post
	if err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *postRepository) UpdateReactionCount(ctx context.Context, id string, count int) error {
	return r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ?", id).
		Update("reaction_count", count).Error
}

func (r *postRepository) MarkSuggested(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ? AND status = ? AND conversion_suggested_at IS NULL", id, model.PostStatusActive).
		Update("conversion_suggested_at", at)
	return res.RowsAffected > 0, res.Error
}

func (r *postRepository) MarkTriggered(ctx context.Context, id string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ? AND status = ? AND conversion_triggered_at IS NULL", id, model.PostStatusActive).
		Update("conversion_triggered_at", at)
	return res.RowsAffected > 0, res.Error
}

func (r *postRepository) MarkConverted(ctx context.Context, id, activityID string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("id = ? AND status = ?", id, model.PostStatusActive).
		Updates(map[string]any{
			"status":                model.PostStatusConverted,
			"converted_activity_id": activityID,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *postRepository) ExpireDue(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&model.Post{}).
		Where("status = ? AND expires_at <= ?", model.PostStatusActive, now).
		Update("status", model.PostStatusExpired)
	return res.RowsAffected, res.Error
}
