package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/flare/internal/model"
	"github.com/d60-Lab/flare/internal/repository"
)

func TestEvaluatorThresholds(t *testing.T) {
	db := setupDB(t)
	posts := repository.NewPostRepository(db)
	e := NewEvaluator(posts, 5, 10)
	user := seedUser(t, db, model.PrefAll)

	cases := []struct {
		count       int
		eligible    bool
		autoConvert bool
	}{
		{0, false, false},
		{4, false, false},
		{5, true, false},
		{9, true, false},
		{10, true, true},
		{11, true, true},
	}
	for _, tc := range cases {
		post := seedPost(t, db, user.ID, model.PostStatusActive, tc.count)
		got, err := e.Evaluate(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Equal(t, tc.eligible, got.Eligible, "count=%d", tc.count)
		assert.Equal(t, tc.autoConvert, got.AutoConvert, "count=%d", tc.count)
		assert.Equal(t, tc.count, got.ReactionCount)
		assert.Equal(t, 5, got.SoftThreshold)
		assert.Equal(t, 10, got.HardThreshold)
	}
}

func TestEvaluatorPostNotFound(t *testing.T) {
	db := setupDB(t)
	e := NewEvaluator(repository.NewPostRepository(db), 5, 10)

	_, err := e.Evaluate(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestEvaluatorDefaultsOnBadThresholds(t *testing.T) {
	db := setupDB(t)
	// hard <= soft 时回落为 soft*2
	e := NewEvaluator(repository.NewPostRepository(db), 5, 3)
	got := e.FromCount(10)
	assert.True(t, got.AutoConvert)
	assert.Equal(t, 10, got.HardThreshold)
}
