package service

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/d60-Lab/flare/internal/event"
	"github.com/d60-Lab/flare/internal/model"
)

var ErrNotEligible = errors.New("post is not eligible for conversion")

// ConversionService 动态 -> 活动的转化（事务内建活动、转化记录并原子置换动态状态）
type ConversionService struct {
	db        *gorm.DB
	evaluator *Evaluator
	bus       *event.Bus
	now       func() time.Time
}

func NewConversionService(db *gorm.DB, evaluator *Evaluator, bus *event.Bus) *ConversionService {
	return &ConversionService{db: db, evaluator: evaluator, bus: bus, now: time.Now}
}

// ConvertInput 转化入参；空字段从动态预填
type ConvertInput struct {
	Title        string
	Description  string
	LocationName string
	Latitude     *float64
	Longitude    *float64
	StartTime    time.Time
	EndTime      time.Time
	MaxAttendees int
	Price        float64
	Tags         []string
	TriggerType  string // manual / auto，默认 manual
}

// ConvertToActivity 将达到软阈值的 active 动态转化为已发布活动。
// 状态置换是条件更新（active -> converted），并发转化只有一个赢家。
func (s *ConversionService) ConvertToActivity(ctx context.Context, postID string, in ConvertInput, host *model.User) (*model.Activity, error) {
	if in.StartTime.IsZero() || in.EndTime.IsZero() {
		return nil, errors.New("start_time and end_time are required")
	}
	trigger := in.TriggerType
	if trigger == "" {
		trigger = model.TriggerManual
	}

	var (
		post       model.Post
		activity   *model.Activity
		conversion *model.PostConversion
	)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		elig := s.evaluator.FromCount(post.ReactionCount)
		if !post.IsActive() || !elig.Eligible {
			return ErrNotEligible
		}

		activity = &model.Activity{
			ID:                   uuid.New().String(),
			UserID:               host.ID,
			Title:                firstNonEmpty(in.Title, post.Title),
			Description:          firstNonEmpty(in.Description, post.Description),
			LocationName:         firstNonEmpty(in.LocationName, post.LocationName),
			Latitude:             in.Latitude,
			Longitude:            in.Longitude,
			Tags:                 in.Tags,
			StartTime:            in.StartTime,
			EndTime:              in.EndTime,
			MaxAttendees:         in.MaxAttendees,
			Price:                in.Price,
			IsPaid:               in.Price > 0,
			Status:               model.ActivityStatusPublished,
			OriginatedFromPostID: &post.ID,
		}
		if activity.Latitude == nil {
			activity.Latitude = post.Latitude
			activity.Longitude = post.Longitude
		}
		if len(activity.Tags) == 0 {
			activity.Tags = post.Tags
		}
		if err := tx.Create(activity).Error; err != nil {
			return err
		}

		conversion = &model.PostConversion{
			ID:                    uuid.New().String(),
			PostID:                post.ID,
			ActivityID:            activity.ID,
			ConvertedBy:           host.ID,
			ReactionsAtConversion: post.ReactionCount,
			TriggerType:           trigger,
		}
		if err := tx.Create(conversion).Error; err != nil {
			return err
		}

		res := tx.Model(&model.Post{}).
			Where("id = ? AND status = ?", post.ID, model.PostStatusActive).
			Updates(map[string]any{
				"status":                model.PostStatusConverted,
				"converted_activity_id": activity.ID,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// 其他执行体抢先转化了，整体回滚
			return ErrNotEligible
		}
		post.Status = model.PostStatusConverted
		post.ConvertedActivityID = &activity.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.bus.Dispatch(ctx, event.ConvertedToEvent{Post: &post, Activity: activity, Conversion: conversion})
	return activity, nil
}

// ConversionPreview 转化预览（不产生任何写入）
type ConversionPreview struct {
	InterestedCount   int64 `json:"interested_users_count"`
	InvitedCount      int64 `json:"invited_users_count"`
	TotalPotential    int64 `json:"total_potential_attendees"`
	SuggestedCapacity int   `json:"suggested_capacity"`
}

func (s *ConversionService) PreviewConversion(ctx context.Context, postID string) (*ConversionPreview, error) {
	var post model.Post
	if err := s.db.WithContext(ctx).First(&post, "id = ?", postID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}

	var interested, invited int64
	if err := s.db.WithContext(ctx).Model(&model.PostReaction{}).
		Where("post_id = ? AND reaction_type = ?", postID, model.ReactionImDown).
		Count(&interested).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&model.PostInvitation{}).
		Where("post_id = ? AND status = ?", postID, model.InvitationPending).
		Count(&invited).Error; err != nil {
		return nil, err
	}

	capacity := int(math.Ceil(float64(interested) * 1.5))
	if capacity < 10 {
		capacity = 10
	}
	return &ConversionPreview{
		InterestedCount:   interested,
		InvitedCount:      invited,
		TotalPotential:    interested + invited,
		SuggestedCapacity: capacity,
	}, nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
