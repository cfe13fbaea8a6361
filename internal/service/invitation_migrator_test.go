package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/flare/internal/event"
	"github.com/d60-Lab/flare/internal/model"
	"github.com/d60-Lab/flare/internal/repository"
)

func seedConverted(t *testing.T, db *gorm.DB, hostID string) event.ConvertedToEvent {
	t.Helper()
	post := seedPost(t, db, hostID, model.PostStatusConverted, 6)
	activity := &model.Activity{
		ID:                   uuid.New().String(),
		UserID:               hostID,
		Title:                post.Title,
		StartTime:            time.Now().Add(24 * time.Hour),
		EndTime:              time.Now().Add(26 * time.Hour),
		Status:               model.ActivityStatusPublished,
		OriginatedFromPostID: &post.ID,
	}
	require.NoError(t, db.Create(activity).Error)
	conversion := &model.PostConversion{
		ID:          uuid.New().String(),
		PostID:      post.ID,
		ActivityID:  activity.ID,
		ConvertedBy: hostID,
		TriggerType: model.TriggerManual,
	}
	require.NoError(t, db.Create(conversion).Error)
	return event.ConvertedToEvent{Post: post, Activity: activity, Conversion: conversion}
}

func TestMigratorMovesPendingInvitations(t *testing.T) {
	db := setupDB(t)
	invitations := repository.NewInvitationRepository(db)
	conversions := repository.NewConversionRepository(db)
	notifSvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	bus, rec := newRecordedBus(event.KindInvitationMigrated)
	m := NewInvitationMigrator(invitations, conversions, notifSvc, bus)

	host := seedUser(t, db, model.PrefAll)
	evt := seedConverted(t, db, host.ID)
	ctx := context.Background()

	a := seedUser(t, db, model.PrefAll)
	b := seedUser(t, db, model.PrefAll)
	invA, err := invitations.Create(ctx, evt.Post.ID, host.ID, a.ID)
	require.NoError(t, err)
	_, err = invitations.Create(ctx, evt.Post.ID, host.ID, b.ID)
	require.NoError(t, err)

	// 已接受的邀请不迁移
	c := seedUser(t, db, model.PrefAll)
	invC, err := invitations.Create(ctx, evt.Post.ID, host.ID, c.ID)
	require.NoError(t, err)
	require.NoError(t, db.Model(&model.PostInvitation{}).Where("id = ?", invC.ID).
		Update("status", model.InvitationAccepted).Error)

	require.NoError(t, m.Handle(ctx, evt))

	var got model.PostInvitation
	require.NoError(t, db.First(&got, "id = ?", invA.ID).Error)
	assert.Equal(t, model.InvitationMigrated, got.Status)
	var gotC model.PostInvitation
	require.NoError(t, db.First(&gotC, "id = ?", invC.ID).Error)
	assert.Equal(t, model.InvitationAccepted, gotC.Status)

	// 每个被邀请人一条通知，携带活动上下文
	notifs := listNotifications(t, db, a.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, "post_invitation_migrated", notifs[0].Type)
	assert.Equal(t, evt.Activity.ID, notifs[0].Data["activity_id"])
	assert.Empty(t, listNotifications(t, db, c.ID))

	assert.Len(t, rec.byKind(event.KindInvitationMigrated), 2)

	var conv model.PostConversion
	require.NoError(t, db.First(&conv, "id = ?", evt.Conversion.ID).Error)
	assert.Equal(t, 2, conv.InvitedUsersNotified)

	// 重跑没有剩余 pending，不再产生任何动作
	require.NoError(t, m.Handle(ctx, evt))
	assert.Len(t, rec.byKind(event.KindInvitationMigrated), 2)
	assert.Len(t, listNotifications(t, db, a.ID), 1)
}

func TestInterestedUsersNotifier(t *testing.T) {
	db := setupDB(t)
	reactions := repository.NewReactionRepository(db)
	notifSvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	n := NewInterestedUsersNotifier(reactions, notifSvc)

	host := seedUser(t, db, model.PrefAll)
	evt := seedConverted(t, db, host.ID)
	ctx := context.Background()

	fan := seedUser(t, db, model.PrefAll)
	seedReaction(t, db, evt.Post.ID, fan.ID, model.ReactionImDown)
	// 主办人自己的反应不通知
	seedReaction(t, db, evt.Post.ID, host.ID, model.ReactionImDown)

	require.NoError(t, n.Handle(ctx, evt))

	notifs := listNotifications(t, db, fan.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, "post_converted_to_event", notifs[0].Type)
	assert.Equal(t, evt.Activity.ID, notifs[0].Data["activity_id"])
	assert.Empty(t, listNotifications(t, db, host.ID))
}
