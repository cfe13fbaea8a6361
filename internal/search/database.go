package search

import (
	"context"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/flare/config"
	"github.com/d60-Lab/flare/internal/model"
)

// 动态搜索的半径上限（公里）；活动不设上限
const postRadiusCapKm = 10

// databaseSearch 纯数据库实现：LIKE 匹配 + Go 侧半径过滤
type databaseSearch struct {
	db            *gorm.DB
	postLimit     int
	eventLimit    int
	defaultRadius int
}

func newDatabaseSearch(cfg config.SearchConfig, db *gorm.DB) *databaseSearch {
	s := &databaseSearch{db: db, postLimit: cfg.PostLimit, eventLimit: cfg.EventLimit, defaultRadius: cfg.DefaultRadiusKm}
	if s.postLimit <= 0 {
		s.postLimit = 50
	}
	if s.eventLimit <= 0 {
		s.eventLimit = 50
	}
	return s
}

func (s *databaseSearch) Search(ctx context.Context, query string, user *model.User, radiusKm *int, contentType string) ([]Result, error) {
	// 未显式给半径时用配置默认值（仅对有坐标的用户生效）
	if radiusKm == nil && s.defaultRadius > 0 && user.HasLocation() {
		radiusKm = &s.defaultRadius
	}

	var results []Result

	if contentType != ContentEvents {
		posts, err := s.searchPosts(ctx, query, user, radiusKm)
		if err != nil {
			return nil, err
		}
		results = append(results, posts...)
	}
	if contentType != ContentPosts {
		events, err := s.searchActivities(ctx, query, user, radiusKm)
		if err != nil {
			return nil, err
		}
		results = append(results, events...)
	}
	return results, nil
}

func (s *databaseSearch) searchPosts(ctx context.Context, query string, user *model.User, radiusKm *int) ([]Result, error) {
	pattern := "%" + query + "%"
	var posts []*model.Post
	err := s.db.WithContext(ctx).
		Where("status = ? AND expires_at > ?", model.PostStatusActive, time.Now()).
		Where("title LIKE ? OR description LIKE ? OR tags LIKE ?", pattern, pattern, pattern).
		Order("created_at DESC").
		Limit(s.postLimit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}

	if radiusKm != nil && user.HasLocation() {
		// 动态半径封顶 10km
		r := float64(min(*radiusKm, postRadiusCapKm))
		posts = filterByRadius(posts, *user.Latitude, *user.Longitude, r,
			func(p *model.Post) (*float64, *float64) { return p.Latitude, p.Longitude })
	}

	results := make([]Result, 0, len(posts))
	for _, p := range posts {
		results = append(results, Result{Type: ResultPost, Post: p})
	}
	return results, nil
}

func (s *databaseSearch) searchActivities(ctx context.Context, query string, user *model.User, radiusKm *int) ([]Result, error) {
	pattern := "%" + query + "%"
	var activities []*model.Activity
	err := s.db.WithContext(ctx).
		Where("status = ? AND start_time > ?", model.ActivityStatusPublished, time.Now()).
		Where("title LIKE ? OR description LIKE ? OR tags LIKE ?", pattern, pattern, pattern).
		Order("start_time DESC").
		Limit(s.eventLimit).
		Find(&activities).Error
	if err != nil {
		return nil, err
	}

	if radiusKm != nil && user.HasLocation() {
		activities = filterByRadius(activities, *user.Latitude, *user.Longitude, float64(*radiusKm),
			func(a *model.Activity) (*float64, *float64) { return a.Latitude, a.Longitude })
	}

	results := make([]Result, 0, len(activities))
	for _, a := range activities {
		results = append(results, Result{Type: ResultEvent, Event: a})
	}
	return results, nil
}

func filterByRadius[T any](items []T, lat, lng, radiusKm float64, coords func(T) (*float64, *float64)) []T {
	out := items[:0]
	for _, it := range items {
		la, lo := coords(it)
		if la == nil || lo == nil {
			continue
		}
		if haversineKm(lat, lng, *la, *lo) <= radiusKm {
			out = append(out, it)
		}
	}
	return out
}

// haversineKm 球面距离（公里）
func haversineKm(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadiusKm = 6371.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLng := (lng2 - lng1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusKm * math.Asin(math.Sqrt(a))
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
