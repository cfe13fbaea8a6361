package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/flare/internal/event"
	"github.com/d60-Lab/flare/internal/queue"
	"github.com/d60-Lab/flare/internal/repository"
	"github.com/d60-Lab/flare/pkg/logger"
)

// ConversionChecker 转化资格检查任务：由队列按动态ID投递触发。
// 两条路径都有原子护栏，至少一次投递/并发执行下事件只发一次。
type ConversionChecker struct {
	posts     repository.PostRepository
	evaluator *Evaluator
	bus       *event.Bus
	now       func() time.Time
}

func NewConversionChecker(posts repository.PostRepository, evaluator *Evaluator, bus *event.Bus) *ConversionChecker {
	return &ConversionChecker{posts: posts, evaluator: evaluator, bus: bus, now: time.Now}
}

// Run 对单条动态执行一次检查。
// 动态不存在或非 active 均为 no-op；仅存储错误返回给队列重试。
func (c *ConversionChecker) Run(ctx context.Context, postID string) error {
	post, err := c.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !post.IsActive() {
		return nil
	}

	elig := c.evaluator.FromCount(post.ReactionCount)

	// 硬阈值优先于建议
	if elig.AutoConvert {
		at := c.now()
		won, err := c.posts.MarkTriggered(ctx, post.ID, at)
		if err != nil {
			return err
		}
		if won {
			post.ConversionTriggeredAt = &at
			c.bus.Dispatch(ctx, event.AutoConverted{Post: post, Eligibility: elig})
		}
		return nil
	}

	if elig.Eligible && post.ConversionSuggestedAt == nil {
		at := c.now()
		won, err := c.posts.MarkSuggested(ctx, post.ID, at)
		if err != nil {
			return err
		}
		if won {
			post.ConversionSuggestedAt = &at
			c.bus.Dispatch(ctx, event.ConversionSuggested{Post: post, Eligibility: elig})
		}
	}
	return nil
}

// HandleJob 队列适配
func (c *ConversionChecker) HandleJob(ctx context.Context, job *queue.Job) error {
	if job.PostID == "" {
		logger.Warn("conversion check job without post_id", zap.String("job", job.ID))
		return nil
	}
	return c.Run(ctx, job.PostID)
}
