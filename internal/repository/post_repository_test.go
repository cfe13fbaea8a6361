package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/flare/internal/model"
	"github.com/d60-Lab/flare/pkg/database"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newPost(t *testing.T, db *gorm.DB, status string) *model.Post {
	t.Helper()
	p := &model.Post{
		ID:        uuid.New().String(),
		UserID:    "u1",
		Title:     "t",
		Status:    status,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestMarkSuggestedSingleWinner(t *testing.T) {
	db := setupDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	post := newPost(t, db, model.PostStatusActive)

	won, err := repo.MarkSuggested(ctx, post.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, won)

	// 第二次是输家，时间戳不被覆盖
	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	first := *got.ConversionSuggestedAt

	won, err = repo.MarkSuggested(ctx, post.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, won)
	got, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, first.Equal(*got.ConversionSuggestedAt))
}

func TestMarkSuggestedRequiresActive(t *testing.T) {
	db := setupDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	for _, status := range []string{model.PostStatusExpired, model.PostStatusConverted} {
		post := newPost(t, db, status)
		won, err := repo.MarkSuggested(ctx, post.ID, time.Now())
		require.NoError(t, err)
		assert.False(t, won, "status=%s", status)
	}
}

func TestMarkTriggeredSingleWinner(t *testing.T) {
	db := setupDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	post := newPost(t, db, model.PostStatusActive)

	won, err := repo.MarkTriggered(ctx, post.ID, time.Now())
	require.NoError(t, err)
	assert.True(t, won)

	won, err = repo.MarkTriggered(ctx, post.ID, time.Now())
	require.NoError(t, err)
	assert.False(t, won)

	// 触发护栏不影响建议时间戳
	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Nil(t, got.ConversionSuggestedAt)
	assert.NotNil(t, got.ConversionTriggeredAt)
}

func TestMarkConverted(t *testing.T) {
	db := setupDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()
	post := newPost(t, db, model.PostStatusActive)

	won, err := repo.MarkConverted(ctx, post.ID, "act-1")
	require.NoError(t, err)
	assert.True(t, won)

	got, err := repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusConverted, got.Status)
	require.NotNil(t, got.ConvertedActivityID)
	assert.Equal(t, "act-1", *got.ConvertedActivityID)

	// converted 状态下再次置换失败
	won, err = repo.MarkConverted(ctx, post.ID, "act-2")
	require.NoError(t, err)
	assert.False(t, won)
	got, err = repo.GetByID(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "act-1", *got.ConvertedActivityID)
}

func TestExpireDue(t *testing.T) {
	db := setupDB(t)
	repo := NewPostRepository(db)
	ctx := context.Background()

	due := newPost(t, db, model.PostStatusActive)
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", due.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)
	fresh := newPost(t, db, model.PostStatusActive)
	converted := newPost(t, db, model.PostStatusConverted)
	require.NoError(t, db.Model(&model.Post{}).Where("id = ?", converted.ID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	n, err := repo.ExpireDue(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := repo.GetByID(ctx, due.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusExpired, got.Status)
	got, err = repo.GetByID(ctx, fresh.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusActive, got.Status)
	// 非 active 状态不被触碰
	got, err = repo.GetByID(ctx, converted.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PostStatusConverted, got.Status)
}
