package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/d60-Lab/flare/internal/event"
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

func seedUser(t *testing.T, db *gorm.DB, pref string) *model.User {
	t.Helper()
	u := &model.User{
		ID:                     uuid.New().String(),
		Username:               "u-" + uuid.New().String()[:8],
		Email:                  uuid.New().String()[:8] + "@example.com",
		Password:               "x",
		NotificationPreference: pref,
	}
	require.NoError(t, db.Create(u).Error)
	return u
}

func seedPost(t *testing.T, db *gorm.DB, userID, status string, reactions int) *model.Post {
	t.Helper()
	p := &model.Post{
		ID:            uuid.New().String(),
		UserID:        userID,
		Title:         "pickup basketball tonight",
		Status:        status,
		ReactionCount: reactions,
		ExpiresAt:     time.Now().Add(24 * time.Hour),
	}
	require.NoError(t, db.Create(p).Error)
	return p
}

// eventRecorder 记录收到的事件，供断言
type eventRecorder struct {
	events []event.Event
}

func (r *eventRecorder) Name() string { return "recorder" }

func (r *eventRecorder) Handle(_ context.Context, evt event.Event) error {
	r.events = append(r.events, evt)
	return nil
}

func (r *eventRecorder) byKind(k event.Kind) []event.Event {
	var out []event.Event
	for _, e := range r.events {
		if e.Kind() == k {
			out = append(out, e)
		}
	}
	return out
}

func newRecordedBus(kinds ...event.Kind) (*event.Bus, *eventRecorder) {
	bus := event.NewBus()
	rec := &eventRecorder{}
	for _, k := range kinds {
		bus.Register(k, rec)
	}
	return bus, rec
}
