package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/flare/internal/model"
)

type ConversionRepository interface {
	GetByPostID(ctx context.Context, postID string) (*model.PostConversion, error)
	UpdateInvitedCount(ctx context.Context, id string, count int) error
}

type conversionRepository struct{ db *gorm.DB }

func NewConversionRepository(db *gorm.DB) ConversionRepository {
	return &conversionRepository{db: db}
}

func (r *conversionRepository) GetByPostID(ctx context.Context, postID string) (*model.PostConversion, error) {
	var c model.PostConversion
	if err := r.db.WithContext(ctx).First(&c, "post_id = ?", postID).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *conversionRepository) UpdateInvitedCount(ctx context.Context, id string, count int) error {
	return r.db.WithContext(ctx).Model(&model.PostConversion{}).
		Where("id = ?", id).
		Update("invited_users_notified", count).Error
}
