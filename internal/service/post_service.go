package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/flare/internal/event"
	"github.com/d60-Lab/flare/internal/model"
	"github.com/d60-Lab/flare/internal/queue"
	"github.com/d60-Lab/flare/internal/repository"
	"github.com/d60-Lab/flare/pkg/logger"
)

var (
	ErrInvalidReaction = errors.New("invalid reaction type")
	ErrOwnReaction     = errors.New("post owner cannot react to their own post")
	ErrPostNotActive   = errors.New("post is not active")
	ErrInvalidLocation = errors.New("invalid latitude/longitude values")
)

// PostService 动态的创建、反应、过期与显式转化提示
type PostService struct {
	db        *gorm.DB
	posts     repository.PostRepository
	evaluator *Evaluator
	bus       *event.Bus
	jobs      *queue.Queue
	ttl       time.Duration
	now       func() time.Time
}

func NewPostService(db *gorm.DB, posts repository.PostRepository, evaluator *Evaluator, bus *event.Bus, jobs *queue.Queue, ttlHours int) *PostService {
	if ttlHours < 1 {
		ttlHours = 48
	}
	return &PostService{
		db:        db,
		posts:     posts,
		evaluator: evaluator,
		bus:       bus,
		jobs:      jobs,
		ttl:       time.Duration(ttlHours) * time.Hour,
		now:       time.Now,
	}
}

// CreatePostInput 创建动态入参
type CreatePostInput struct {
	UserID       string
	Title        string
	Description  string
	LocationName string
	Latitude     *float64
	Longitude    *float64
	Tags         []string
	Mood         string
	TimeHint     string
	TTLHours     int
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*model.Post, error) {
	if in.UserID == "" {
		return nil, errors.New("user_id is required")
	}
	if in.Title == "" {
		return nil, errors.New("title is required")
	}
	// 经纬度必须成对且在合法区间
	if (in.Latitude == nil) != (in.Longitude == nil) {
		return nil, ErrInvalidLocation
	}
	if in.Latitude != nil {
		if *in.Latitude < -90 || *in.Latitude > 90 || *in.Longitude < -180 || *in.Longitude > 180 {
			return nil, ErrInvalidLocation
		}
	}

	ttl := s.ttl
	if in.TTLHours > 0 {
		ttl = time.Duration(in.TTLHours) * time.Hour
	}
	now := s.now()
	post := &model.Post{
		ID:           uuid.New().String(),
		UserID:       in.UserID,
		Title:        in.Title,
		Description:  in.Description,
		LocationName: in.LocationName,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Tags:         in.Tags,
		Mood:         in.Mood,
		TimeHint:     in.TimeHint,
		Status:       model.PostStatusActive,
		ExpiresAt:    now.Add(ttl),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*model.Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// ToggleReaction 加/取消反应（事务内维护冗余 reaction_count）。
// 新增反应时发 PostReacted 事件并入队一次转化检查。
func (s *PostService) ToggleReaction(ctx context.Context, postID, userID, reactionType string) (added bool, err error) {
	valid := false
	for _, t := range model.ValidReactionTypes() {
		if t == reactionType {
			valid = true
			break
		}
	}
	if !valid {
		return false, fmt.Errorf("%w: %s", ErrInvalidReaction, reactionType)
	}

	var (
		post     model.Post
		reaction *model.PostReaction
		count    int64
	)
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, "id = ?", postID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPostNotFound
			}
			return err
		}
		if post.UserID == userID {
			return ErrOwnReaction
		}
		if !post.IsActive() {
			return ErrPostNotActive
		}

		var existing model.PostReaction
		err := tx.Where("post_id = ? AND user_id = ? AND reaction_type = ?", postID, userID, reactionType).
			First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			added = false
		case errors.Is(err, gorm.ErrRecordNotFound):
			reaction = &model.PostReaction{
				ID:           uuid.New().String(),
				PostID:       postID,
				UserID:       userID,
				ReactionType: reactionType,
			}
			if err := tx.Create(reaction).Error; err != nil {
				return err
			}
			added = true
		default:
			return err
		}

		if err := tx.Model(&model.PostReaction{}).Where("post_id = ?", postID).Count(&count).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Post{}).Where("id = ?", postID).Update("reaction_count", int(count)).Error; err != nil {
			return err
		}
		post.ReactionCount = int(count)
		return nil
	})
	if err != nil {
		return false, err
	}

	if added {
		elig := s.evaluator.FromCount(post.ReactionCount)
		s.bus.Dispatch(ctx, event.PostReacted{Post: &post, Reaction: reaction, Eligibility: elig})
		if s.jobs != nil {
			if err := s.jobs.Enqueue(ctx, queue.JobConversionCheck, postID, nil); err != nil {
				// 入队失败不影响反应本身，下一次反应会再触发
				logger.Warn("enqueue conversion check failed", zap.String("post", postID), zap.Error(err))
			}
		}
	}
	return added, nil
}

// PromptConversion 显式提示路径：达到软阈值即发 ConversionPrompted（threshold: soft/strong）
func (s *PostService) PromptConversion(ctx context.Context, postID string) (model.Eligibility, error) {
	post, err := s.GetPost(ctx, postID)
	if err != nil {
		return model.Eligibility{}, err
	}
	if !post.IsActive() {
		return model.Eligibility{}, ErrPostNotActive
	}
	elig := s.evaluator.FromCount(post.ReactionCount)
	if !elig.Eligible {
		return elig, nil
	}
	threshold := "soft"
	if elig.AutoConvert {
		threshold = "strong"
	}
	s.bus.Dispatch(ctx, event.ConversionPrompted{Post: post, Threshold: threshold, ReactionCount: elig.ReactionCount})
	return elig, nil
}

// ExpireDuePosts 批量过期（由周期任务调用）
func (s *PostService) ExpireDuePosts(ctx context.Context) (int64, error) {
	n, err := s.posts.ExpireDue(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if n > 0 {
		logger.Info("expired posts", zap.Int64("count", n))
	}
	return n, nil
}
