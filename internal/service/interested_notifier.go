package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/d60-Lab/flare/internal/event"
	"github.com/d60-Lab/flare/internal/model"
	"github.com/d60-Lab/flare/internal/repository"
	"github.com/d60-Lab/flare/pkg/logger"
)

// InterestedUsersNotifier 动态转化后通知所有反应过的用户（主办人除外）
type InterestedUsersNotifier struct {
	reactions     repository.ReactionRepository
	notifications *NotificationService
}

func NewInterestedUsersNotifier(reactions repository.ReactionRepository, notifications *NotificationService) *InterestedUsersNotifier {
	return &InterestedUsersNotifier{reactions: reactions, notifications: notifications}
}

func (n *InterestedUsersNotifier) Name() string { return "interested_users_notifier" }

func (n *InterestedUsersNotifier) Handle(ctx context.Context, evt event.Event) error {
	e, ok := evt.(event.ConvertedToEvent)
	if !ok {
		return nil
	}

	reactorIDs, err := n.reactions.ListReactorIDs(ctx, e.Post.ID)
	if err != nil {
		return err
	}

	for _, uid := range reactorIDs {
		if uid == e.Activity.UserID {
			continue
		}
		notif := &model.Notification{
			UserID:  uid,
			Type:    event.KindConvertedToEvent.String(),
			Title:   fmt.Sprintf("%s is happening!", e.Activity.Title),
			Message: fmt.Sprintf("%s became a real event. RSVP to lock in your spot.", e.Post.Title),
			Data: map[string]any{
				"post_id":     e.Post.ID,
				"activity_id": e.Activity.ID,
				"start_time":  e.Activity.StartTime,
			},
		}
		if err := n.notifications.Create(ctx, notif); err != nil {
			logger.Warn("notify interested user failed", zap.String("user", uid), zap.Error(err))
		}
	}
	return nil
}
