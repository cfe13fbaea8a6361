package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/flare/internal/event"
	"github.com/d60-Lab/flare/internal/model"
	"github.com/d60-Lab/flare/internal/repository"
	"github.com/d60-Lab/flare/pkg/logger"
)

// InvitationMigrator 动态转化后迁移未决邀请：逐条置为 migrated、
// 通知被邀请人，并为每条迁移发 InvitationMigrated 事件。
type InvitationMigrator struct {
	invitations   repository.InvitationRepository
	conversions   repository.ConversionRepository
	notifications *NotificationService
	bus           *event.Bus
}

func NewInvitationMigrator(invitations repository.InvitationRepository, conversions repository.ConversionRepository, notifications *NotificationService, bus *event.Bus) *InvitationMigrator {
	return &InvitationMigrator{invitations: invitations, conversions: conversions, notifications: notifications, bus: bus}
}

func (m *InvitationMigrator) Name() string { return "invitation_migrator" }

func (m *InvitationMigrator) Handle(ctx context.Context, evt event.Event) error {
	e, ok := evt.(event.ConvertedToEvent)
	if !ok {
		return nil
	}

	pending, err := m.invitations.ListPending(ctx, e.Post.ID)
	if err != nil {
		return err
	}

	migrated := 0
	for _, inv := range pending {
		won, err := m.invitations.MarkMigrated(ctx, inv.ID)
		if err != nil {
			logger.Warn("migrate invitation failed", zap.String("invitation", inv.ID), zap.Error(err))
			continue
		}
		if !won {
			continue
		}

		notif := &model.Notification{
			UserID:  inv.InviteeID,
			Type:    event.KindInvitationMigrated.String(),
			Title:   fmt.Sprintf("%s is now an event", e.Post.Title),
			Message: fmt.Sprintf("%s has been turned into an event. Your invitation carried over.", e.Post.Title),
			Data: map[string]any{
				"post_id":        e.Post.ID,
				"post_title":     e.Post.Title,
				"activity_id":    e.Activity.ID,
				"activity_title": e.Activity.Title,
				"start_time":     e.Activity.StartTime,
				"location":       e.Activity.LocationName,
				"price":          e.Activity.Price,
				"is_free":        e.Activity.IsFree(),
			},
		}
		if err := m.notifications.Create(ctx, notif); err != nil {
			logger.Warn("notify invitee failed", zap.String("invitee", inv.InviteeID), zap.Error(err))
		}

		m.bus.Dispatch(ctx, event.InvitationMigrated{Invitation: inv, Activity: e.Activity})
		migrated++
	}

	if migrated > 0 && e.Conversion != nil {
		if err := m.conversions.UpdateInvitedCount(ctx, e.Conversion.ID, migrated); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
	}
	return nil
}
