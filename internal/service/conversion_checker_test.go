package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/flare/internal/event"
	"github.com/d60-Lab/flare/internal/model"
	"github.com/d60-Lab/flare/internal/repository"
)

func newChecker(db *gorm.DB) (*ConversionChecker, *eventRecorder) {
	posts := repository.NewPostRepository(db)
	bus, rec := newRecordedBus(event.KindConversionSuggested, event.KindAutoConverted)
	return NewConversionChecker(posts, NewEvaluator(posts, 5, 10), bus), rec
}

func reloadPost(t *testing.T, db *gorm.DB, id string) *model.Post {
	t.Helper()
	var p model.Post
	require.NoError(t, db.First(&p, "id = ?", id).Error)
	return &p
}

func TestCheckerMissingPostIsNoop(t *testing.T) {
	db := setupDB(t)
	checker, rec := newChecker(db)

	require.NoError(t, checker.Run(context.Background(), "missing"))
	assert.Empty(t, rec.events)
}

func TestCheckerInactivePostIsNoop(t *testing.T) {
	db := setupDB(t)
	checker, rec := newChecker(db)
	user := seedUser(t, db, model.PrefAll)

	for _, status := range []string{model.PostStatusExpired, model.PostStatusConverted} {
		post := seedPost(t, db, user.ID, status, 20)
		require.NoError(t, checker.Run(context.Background(), post.ID))

		got := reloadPost(t, db, post.ID)
		assert.Nil(t, got.ConversionSuggestedAt)
		assert.Nil(t, got.ConversionTriggeredAt)
	}
	assert.Empty(t, rec.events)
}

func TestCheckerBelowSoftThresholdIsNoop(t *testing.T) {
	db := setupDB(t)
	checker, rec := newChecker(db)
	user := seedUser(t, db, model.PrefAll)
	post := seedPost(t, db, user.ID, model.PostStatusActive, 4)

	require.NoError(t, checker.Run(context.Background(), post.ID))

	assert.Empty(t, rec.events)
	got := reloadPost(t, db, post.ID)
	assert.Nil(t, got.ConversionSuggestedAt)
}

func TestCheckerSoftThresholdSuggestsOnce(t *testing.T) {
	db := setupDB(t)
	checker, rec := newChecker(db)
	user := seedUser(t, db, model.PrefAll)
	post := seedPost(t, db, user.ID, model.PostStatusActive, 5)

	require.NoError(t, checker.Run(context.Background(), post.ID))

	suggested := rec.byKind(event.KindConversionSuggested)
	require.Len(t, suggested, 1)
	evt := suggested[0].(event.ConversionSuggested)
	assert.True(t, evt.Eligibility.Eligible)
	assert.False(t, evt.Eligibility.AutoConvert)
	assert.Equal(t, 5, evt.Eligibility.ReactionCount)
	assert.Empty(t, rec.byKind(event.KindAutoConverted))

	got := reloadPost(t, db, post.ID)
	require.NotNil(t, got.ConversionSuggestedAt)

	// 反应数不变时再次运行不得重复发事件
	require.NoError(t, checker.Run(context.Background(), post.ID))
	assert.Len(t, rec.byKind(event.KindConversionSuggested), 1)
}

func TestCheckerHardThresholdAutoConverts(t *testing.T) {
	db := setupDB(t)
	checker, rec := newChecker(db)
	user := seedUser(t, db, model.PrefAll)
	post := seedPost(t, db, user.ID, model.PostStatusActive, 11)

	require.NoError(t, checker.Run(context.Background(), post.ID))

	auto := rec.byKind(event.KindAutoConverted)
	require.Len(t, auto, 1)
	evt := auto[0].(event.AutoConverted)
	assert.True(t, evt.Eligibility.Eligible)
	assert.True(t, evt.Eligibility.AutoConvert)
	assert.Equal(t, 11, evt.Eligibility.ReactionCount)

	// 硬阈值优先：同一轮不发建议事件，conversion_suggested_at 不动
	assert.Empty(t, rec.byKind(event.KindConversionSuggested))
	got := reloadPost(t, db, post.ID)
	assert.Nil(t, got.ConversionSuggestedAt)
	require.NotNil(t, got.ConversionTriggeredAt)
}

func TestCheckerAutoConvertGuardedOnRetry(t *testing.T) {
	db := setupDB(t)
	checker, rec := newChecker(db)
	user := seedUser(t, db, model.PrefAll)
	post := seedPost(t, db, user.ID, model.PostStatusActive, 12)

	// 至少一次投递：重复执行只允许一个赢家
	require.NoError(t, checker.Run(context.Background(), post.ID))
	require.NoError(t, checker.Run(context.Background(), post.ID))
	require.NoError(t, checker.Run(context.Background(), post.ID))

	assert.Len(t, rec.byKind(event.KindAutoConverted), 1)
}

func TestCheckerSuggestedAtNeverReset(t *testing.T) {
	db := setupDB(t)
	checker, _ := newChecker(db)
	user := seedUser(t, db, model.PrefAll)
	post := seedPost(t, db, user.ID, model.PostStatusActive, 6)

	require.NoError(t, checker.Run(context.Background(), post.ID))
	first := reloadPost(t, db, post.ID).ConversionSuggestedAt
	require.NotNil(t, first)

	require.NoError(t, checker.Run(context.Background(), post.ID))
	second := reloadPost(t, db, post.ID).ConversionSuggestedAt
	require.NotNil(t, second)
	assert.True(t, first.Equal(*second))
}
