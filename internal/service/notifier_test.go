package service

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/flare/internal/event"
	"github.com/d60-Lab/flare/internal/model"
	"github.com/d60-Lab/flare/internal/queue"
	"github.com/d60-Lab/flare/internal/repository"
)

func newNotifier(t *testing.T, db *gorm.DB) (*ConversionNotifier, *queue.Queue) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	jobs := queue.New(rdb, "test:jobs")
	notifSvc := NewNotificationService(repository.NewNotificationRepository(db), nil)
	return NewConversionNotifier(repository.NewUserRepository(db), notifSvc, jobs), jobs
}

func listNotifications(t *testing.T, db *gorm.DB, userID string) []*model.Notification {
	t.Helper()
	var out []*model.Notification
	require.NoError(t, db.Where("user_id = ?", userID).Find(&out).Error)
	return out
}

func TestNotifierSuggestedCreatesInAppAndMail(t *testing.T) {
	db := setupDB(t)
	notifier, jobs := newNotifier(t, db)
	author := seedUser(t, db, model.PrefAll)
	post := seedPost(t, db, author.ID, model.PostStatusActive, 5)
	ctx := context.Background()

	evt := event.ConversionSuggested{
		Post:        post,
		Eligibility: model.Eligibility{Eligible: true, ReactionCount: 5, SoftThreshold: 5, HardThreshold: 10},
	}
	require.NoError(t, notifier.Handle(ctx, evt))

	notifs := listNotifications(t, db, author.ID)
	require.Len(t, notifs, 1)
	n := notifs[0]
	assert.Equal(t, "post_conversion_suggested", n.Type)
	assert.Equal(t, model.DeliveryInApp, n.DeliveryMethod)
	assert.Equal(t, post.ID, n.Data["post_id"])
	assert.Equal(t, "soft", n.Data["threshold"])

	// 偏好 all：追加一封邮件任务
	cnt, err := jobs.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cnt)
}

func TestNotifierNonEmailPreferencesSkipMail(t *testing.T) {
	for _, pref := range []string{model.PrefNone, model.PrefInAppOnly} {
		t.Run(pref, func(t *testing.T) {
			db := setupDB(t)
			notifier, jobs := newNotifier(t, db)
			author := seedUser(t, db, pref)
			post := seedPost(t, db, author.ID, model.PostStatusActive, 5)
			ctx := context.Background()

			evt := event.ConversionSuggested{
				Post:        post,
				Eligibility: model.Eligibility{Eligible: true, ReactionCount: 5},
			}
			require.NoError(t, notifier.Handle(ctx, evt))

			// 站内通知仍然落库，但不入队邮件
			require.Len(t, listNotifications(t, db, author.ID), 1)
			cnt, err := jobs.Len(ctx)
			require.NoError(t, err)
			assert.Zero(t, cnt)
		})
	}
}

func TestNotifierEmailOnlyDelivery(t *testing.T) {
	db := setupDB(t)
	notifier, jobs := newNotifier(t, db)
	author := seedUser(t, db, model.PrefEmailOnly)
	post := seedPost(t, db, author.ID, model.PostStatusActive, 11)
	ctx := context.Background()

	evt := event.AutoConverted{
		Post:        post,
		Eligibility: model.Eligibility{Eligible: true, AutoConvert: true, ReactionCount: 11},
	}
	require.NoError(t, notifier.Handle(ctx, evt))

	notifs := listNotifications(t, db, author.ID)
	require.Len(t, notifs, 1)
	assert.Equal(t, model.DeliveryEmail, notifs[0].DeliveryMethod)
	assert.Equal(t, "post_auto_converted", notifs[0].Type)
	assert.Equal(t, "strong", notifs[0].Data["threshold"])

	cnt, err := jobs.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cnt)
}

func TestNotifierIgnoresUnrelatedEvents(t *testing.T) {
	db := setupDB(t)
	notifier, _ := newNotifier(t, db)
	author := seedUser(t, db, model.PrefAll)
	post := seedPost(t, db, author.ID, model.PostStatusActive, 1)

	evt := event.PostReacted{Post: post}
	require.NoError(t, notifier.Handle(context.Background(), evt))
	assert.Empty(t, listNotifications(t, db, author.ID))
}

func TestNotifierMissingAuthorIsNoop(t *testing.T) {
	db := setupDB(t)
	notifier, _ := newNotifier(t, db)
	post := &model.Post{ID: "p1", UserID: "ghost", Title: "x"}

	evt := event.ConversionSuggested{Post: post, Eligibility: model.Eligibility{Eligible: true, ReactionCount: 5}}
	assert.NoError(t, notifier.Handle(context.Background(), evt))
}
