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

func newConversionService(db *gorm.DB) (*ConversionService, *eventRecorder) {
	posts := repository.NewPostRepository(db)
	bus, rec := newRecordedBus(event.KindConvertedToEvent)
	return NewConversionService(db, NewEvaluator(posts, 5, 10), bus), rec
}

func seedReaction(t *testing.T, db *gorm.DB, postID, userID, typ string) {
	t.Helper()
	require.NoError(t, db.Create(&model.PostReaction{
		ID:           uuid.New().String(),
		PostID:       postID,
		UserID:       userID,
		ReactionType: typ,
	}).Error)
}

func TestConvertToActivity(t *testing.T) {
	db := setupDB(t)
	svc, rec := newConversionService(db)
	host := seedUser(t, db, model.PrefAll)
	post := seedPost(t, db, host.ID, model.PostStatusActive, 6)
	ctx := context.Background()

	start := time.Now().Add(24 * time.Hour)
	activity, err := svc.ConvertToActivity(ctx, post.ID, ConvertInput{
		StartTime: start,
		EndTime:   start.Add(2 * time.Hour),
	}, host)
	require.NoError(t, err)

	// 空字段从动态预填
	assert.Equal(t, post.Title, activity.Title)
	assert.Equal(t, model.ActivityStatusPublished, activity.Status)
	require.NotNil(t, activity.OriginatedFromPostID)
	assert.Equal(t, post.ID, *activity.OriginatedFromPostID)

	got := reloadPost(t, db, post.ID)
	assert.Equal(t, model.PostStatusConverted, got.Status)
	require.NotNil(t, got.ConvertedActivityID)
	assert.Equal(t, activity.ID, *got.ConvertedActivityID)

	var conv model.PostConversion
	require.NoError(t, db.First(&conv, "post_id = ?", post.ID).Error)
	assert.Equal(t, 6, conv.ReactionsAtConversion)
	assert.Equal(t, model.TriggerManual, conv.TriggerType)

	evts := rec.byKind(event.KindConvertedToEvent)
	require.Len(t, evts, 1)
	assert.Equal(t, activity.ID, evts[0].(event.ConvertedToEvent).Activity.ID)
}

func TestConvertRejectsIneligible(t *testing.T) {
	db := setupDB(t)
	svc, rec := newConversionService(db)
	host := seedUser(t, db, model.PrefAll)
	ctx := context.Background()
	start := time.Now().Add(time.Hour)
	in := ConvertInput{StartTime: start, EndTime: start.Add(time.Hour)}

	// 未达软阈值
	cold := seedPost(t, db, host.ID, model.PostStatusActive, 4)
	_, err := svc.ConvertToActivity(ctx, cold.ID, in, host)
	assert.ErrorIs(t, err, ErrNotEligible)

	// 非 active 状态
	expired := seedPost(t, db, host.ID, model.PostStatusExpired, 8)
	_, err = svc.ConvertToActivity(ctx, expired.ID, in, host)
	assert.ErrorIs(t, err, ErrNotEligible)

	_, err = svc.ConvertToActivity(ctx, "missing", in, host)
	assert.ErrorIs(t, err, ErrPostNotFound)

	assert.Empty(t, rec.events)
}

func TestConvertTwiceSecondLoses(t *testing.T) {
	db := setupDB(t)
	svc, rec := newConversionService(db)
	host := seedUser(t, db, model.PrefAll)
	post := seedPost(t, db, host.ID, model.PostStatusActive, 7)
	ctx := context.Background()
	start := time.Now().Add(time.Hour)
	in := ConvertInput{StartTime: start, EndTime: start.Add(time.Hour)}

	_, err := svc.ConvertToActivity(ctx, post.ID, in, host)
	require.NoError(t, err)

	_, err = svc.ConvertToActivity(ctx, post.ID, in, host)
	assert.ErrorIs(t, err, ErrNotEligible)

	// 只有一个赢家的转化事件和活动
	assert.Len(t, rec.byKind(event.KindConvertedToEvent), 1)
	var activities int64
	require.NoError(t, db.Model(&model.Activity{}).Count(&activities).Error)
	assert.Equal(t, int64(1), activities)
}

func TestPreviewConversionCapacity(t *testing.T) {
	db := setupDB(t)
	svc, _ := newConversionService(db)
	host := seedUser(t, db, model.PrefAll)
	post := seedPost(t, db, host.ID, model.PostStatusActive, 0)
	ctx := context.Background()

	// 少量兴趣：建议容量保底 10
	for i := 0; i < 3; i++ {
		u := seedUser(t, db, model.PrefAll)
		seedReaction(t, db, post.ID, u.ID, model.ReactionImDown)
	}
	invitations := repository.NewInvitationRepository(db)
	invitee := seedUser(t, db, model.PrefAll)
	_, err := invitations.Create(ctx, post.ID, host.ID, invitee.ID)
	require.NoError(t, err)

	preview, err := svc.PreviewConversion(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), preview.InterestedCount)
	assert.Equal(t, int64(1), preview.InvitedCount)
	assert.Equal(t, int64(4), preview.TotalPotential)
	assert.Equal(t, 10, preview.SuggestedCapacity)

	// 人多时按 1.5 倍向上取整
	for i := 0; i < 8; i++ {
		u := seedUser(t, db, model.PrefAll)
		seedReaction(t, db, post.ID, u.ID, model.ReactionImDown)
	}
	preview, err = svc.PreviewConversion(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(11), preview.InterestedCount)
	assert.Equal(t, 17, preview.SuggestedCapacity)

	_, err = svc.PreviewConversion(ctx, "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
}
