package search

import (
	"context"

	"gorm.io/gorm"

	"github.com/d60-Lab/flare/config"
	"github.com/d60-Lab/flare/internal/model"
)

// 内容类型过滤
const (
	ContentAll    = "all"
	ContentPosts  = "posts"
	ContentEvents = "events"
)

// 结果标签
const (
	ResultPost  = "post"
	ResultEvent = "event"
)

// Result 带类型标签的搜索结果
type Result struct {
	Type  string          `json:"type"` // post / event
	Post  *model.Post     `json:"post,omitempty"`
	Event *model.Activity `json:"event,omitempty"`
}

// Service 搜索能力抽象。排序/打分由实现决定，契约只约束结果形状。
type Service interface {
	// Search 自由文本搜索；radiusKm 非空时按 user 坐标做半径过滤
	Search(ctx context.Context, query string, user *model.User, radiusKm *int, contentType string) ([]Result, error)
}

// New 启动时按配置选定实现：meilisearch 或 database（未识别值回落 database）。
// 之后所有调用方只依赖 Service，不感知具体实现。
func New(cfg config.SearchConfig, db *gorm.DB) Service {
	switch cfg.Driver {
	case "meilisearch":
		return newMeiliSearch(cfg, db)
	default:
		return newDatabaseSearch(cfg, db)
	}
}
