package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/d60-Lab/flare/internal/model"
	"github.com/d60-Lab/flare/internal/repository"
)

var ErrPostNotFound = errors.New("post not found")

// Evaluator 转化资格评估：纯读，比较反应数与软/硬阈值
type Evaluator struct {
	posts repository.PostRepository
	soft  int
	hard  int
}

func NewEvaluator(posts repository.PostRepository, soft, hard int) *Evaluator {
	if soft <= 0 {
		soft = 5
	}
	if hard <= soft {
		hard = soft * 2
	}
	return &Evaluator{posts: posts, soft: soft, hard: hard}
}

// Evaluate 按动态ID评估；动态不存在返回 ErrPostNotFound
func (e *Evaluator) Evaluate(ctx context.Context, postID string) (model.Eligibility, error) {
	post, err := e.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Eligibility{}, ErrPostNotFound
		}
		return model.Eligibility{}, err
	}
	return e.FromCount(post.ReactionCount), nil
}

// FromCount 调用方已持有最新反应数时直接评估，省一次读
func (e *Evaluator) FromCount(count int) model.Eligibility {
	return model.Eligibility{
		Eligible:      count >= e.soft,
		AutoConvert:   count >= e.hard,
		ReactionCount: count,
		SoftThreshold: e.soft,
		HardThreshold: e.hard,
	}
}
