package search

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/meilisearch/meilisearch-go"
	"gorm.io/gorm"

	"github.com/d60-Lab/flare/config"
	"github.com/d60-Lab/flare/internal/model"
)

// 索引名
const (
	indexPosts  = "posts"
	indexEvents = "events"
)

// meiliSearch Meilisearch 实现：索引只存文档ID等轻量字段，命中后回库取全量记录。
// 索引写入由外部同步任务维护，这里只读。
type meiliSearch struct {
	client        meilisearch.ServiceManager
	db            *gorm.DB
	postLimit     int
	eventLimit    int
	defaultRadius int
}

func newMeiliSearch(cfg config.SearchConfig, db *gorm.DB) *meiliSearch {
	s := &meiliSearch{
		client:        meilisearch.New(cfg.MeiliHost, meilisearch.WithAPIKey(cfg.MeiliKey)),
		db:            db,
		postLimit:     cfg.PostLimit,
		eventLimit:    cfg.EventLimit,
		defaultRadius: cfg.DefaultRadiusKm,
	}
	if s.postLimit <= 0 {
		s.postLimit = 50
	}
	if s.eventLimit <= 0 {
		s.eventLimit = 50
	}
	return s
}

func (s *meiliSearch) Search(ctx context.Context, query string, user *model.User, radiusKm *int, contentType string) ([]Result, error) {
	if radiusKm == nil && s.defaultRadius > 0 && user.HasLocation() {
		radiusKm = &s.defaultRadius
	}

	var results []Result

	if contentType != ContentEvents {
		ids, err := s.searchIndex(ctx, indexPosts, query, user, radiusKm, "status = active", s.postLimit, postRadiusCapKm)
		if err != nil {
			return nil, err
		}
		var posts []*model.Post
		if len(ids) > 0 {
			if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&posts).Error; err != nil {
				return nil, err
			}
		}
		for _, p := range orderByIDs(posts, ids, func(p *model.Post) string { return p.ID }) {
			results = append(results, Result{Type: ResultPost, Post: p})
		}
	}

	if contentType != ContentPosts {
		ids, err := s.searchIndex(ctx, indexEvents, query, user, radiusKm, "status = published", s.eventLimit, 0)
		if err != nil {
			return nil, err
		}
		var activities []*model.Activity
		if len(ids) > 0 {
			if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&activities).Error; err != nil {
				return nil, err
			}
		}
		for _, a := range orderByIDs(activities, ids, func(a *model.Activity) string { return a.ID }) {
			results = append(results, Result{Type: ResultEvent, Event: a})
		}
	}

	return results, nil
}

// searchIndex 查询单个索引，返回命中ID（保持 Meilisearch 排名顺序）
func (s *meiliSearch) searchIndex(ctx context.Context, index, query string, user *model.User, radiusKm *int, statusFilter string, limit, radiusCapKm int) ([]string, error) {
	filters := []string{statusFilter}
	if radiusKm != nil && user.HasLocation() {
		r := *radiusKm
		if radiusCapKm > 0 && r > radiusCapKm {
			r = radiusCapKm
		}
		// Meilisearch 半径单位为米
		filters = append(filters, fmt.Sprintf("_geoRadius(%f, %f, %d)", *user.Latitude, *user.Longitude, r*1000))
	}

	res, err := s.client.Index(index).SearchWithContext(ctx, query, &meilisearch.SearchRequest{
		Filter: filters,
		Limit:  int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("meilisearch %s: %w", index, err)
	}

	ids := make([]string, 0, len(res.Hits))
	for _, hit := range res.Hits {
		raw, err := json.Marshal(hit)
		if err != nil {
			continue
		}
		var doc struct {
			ID string `json:"id"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil || doc.ID == "" {
			continue
		}
		ids = append(ids, doc.ID)
	}
	return ids, nil
}

// orderByIDs 按命中顺序重排回库结果
func orderByIDs[T any](items []T, ids []string, idOf func(T) string) []T {
	byID := make(map[string]T, len(items))
	for _, it := range items {
		byID[idOf(it)] = it
	}
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out
}
