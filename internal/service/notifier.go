package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/flare/internal/event"
	"github.com/d60-Lab/flare/internal/model"
	"github.com/d60-Lab/flare/internal/queue"
	"github.com/d60-Lab/flare/internal/repository"
	"github.com/d60-Lab/flare/pkg/logger"
)

// ConversionNotifier 转化相关事件的通知扇出：
// 站内通知始终落库；按作者偏好追加邮件任务（邮件失败由队列独立重试）。
type ConversionNotifier struct {
	users         repository.UserRepository
	notifications *NotificationService
	jobs          *queue.Queue
}

func NewConversionNotifier(users repository.UserRepository, notifications *NotificationService, jobs *queue.Queue) *ConversionNotifier {
	return &ConversionNotifier{users: users, notifications: notifications, jobs: jobs}
}

func (n *ConversionNotifier) Name() string { return "conversion_notifier" }

func (n *ConversionNotifier) Handle(ctx context.Context, evt event.Event) error {
	var (
		post      *model.Post
		threshold string
		count     int
	)
	switch e := evt.(type) {
	case event.ConversionPrompted:
		post, threshold, count = e.Post, e.Threshold, e.ReactionCount
	case event.ConversionSuggested:
		post, threshold, count = e.Post, "soft", e.Eligibility.ReactionCount
	case event.AutoConverted:
		post, threshold, count = e.Post, "strong", e.Eligibility.ReactionCount
	default:
		return nil
	}

	author, err := n.users.GetByID(ctx, post.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	delivery := model.DeliveryInApp
	if author.NotificationPreference == model.PrefEmailOnly {
		delivery = model.DeliveryEmail
	}
	title := "Your post is getting attention!"
	message := conversionMessage(threshold, count)
	notif := &model.Notification{
		UserID:  author.ID,
		Type:    evt.Kind().String(),
		Title:   title,
		Message: message,
		Data: map[string]any{
			"post_id":        post.ID,
			"post_title":     post.Title,
			"reaction_count": count,
			"threshold":      threshold,
		},
		DeliveryMethod: delivery,
	}
	if err := n.notifications.Create(ctx, notif); err != nil {
		return err
	}

	if author.WantsEmail() && n.jobs != nil {
		err := n.jobs.Enqueue(ctx, queue.JobMail, post.ID, map[string]string{
			"to":      author.Email,
			"subject": title,
			"body":    message,
		})
		if err != nil {
			// 邮件入队失败不回滚站内通知
			logger.Warn("enqueue mail failed", zap.String("user", author.ID), zap.Error(err))
		}
	}
	return nil
}

func conversionMessage(threshold string, count int) string {
	if threshold == "strong" {
		return fmt.Sprintf("%d+ people want to join! Turn this into an event now.", count)
	}
	return fmt.Sprintf("%d people are interested! Consider creating an event.", count)
}
