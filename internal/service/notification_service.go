package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/d60-Lab/flare/internal/model"
	"github.com/d60-Lab/flare/internal/repository"
	"github.com/d60-Lab/flare/pkg/logger"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService 通知收件箱：列表、已读、未读数（redis 缓存）
type NotificationService struct {
	repo     repository.NotificationRepository
	cache    *redis.Client // 可为 nil（纯库模式）
	cacheTTL time.Duration
	now      func() time.Time
}

func NewNotificationService(repo repository.NotificationRepository, cache *redis.Client) *NotificationService {
	return &NotificationService{repo: repo, cache: cache, cacheTTL: 5 * time.Minute, now: time.Now}
}

// Create 落库并失效未读数缓存（扇出监听器经由此入口写通知）
func (s *NotificationService) Create(ctx context.Context, n *model.Notification) error {
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	if n.DeliveryMethod == "" {
		n.DeliveryMethod = model.DeliveryInApp
	}
	if n.DeliveryStatus == "" {
		n.DeliveryStatus = model.DeliveryStatusSent
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return err
	}
	s.invalidateUnread(ctx, n.UserID)
	return nil
}

func (s *NotificationService) List(ctx context.Context, userID string, page, pageSize int) ([]*model.Notification, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return s.repo.ListByUser(ctx, userID, (page-1)*pageSize, pageSize)
}

// MarkRead read_at 单向置位；已读或不属于该用户时返回 ErrNotificationNotFound
func (s *NotificationService) MarkRead(ctx context.Context, id, userID string) error {
	ok, err := s.repo.MarkRead(ctx, id, userID, s.now())
	if err != nil {
		return err
	}
	if !ok {
		// 已读的重复标记视为成功
		n, err := s.repo.GetByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotificationNotFound
			}
			return err
		}
		if n.UserID != userID {
			return ErrNotificationNotFound
		}
		return nil
	}
	s.invalidateUnread(ctx, userID)
	return nil
}

// UnreadCount 未读数，redis 短 TTL 缓存
func (s *NotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	key := unreadKey(userID)
	if s.cache != nil {
		if v, err := s.cache.Get(ctx, key).Result(); err == nil {
			if n, perr := strconv.ParseInt(v, 10, 64); perr == nil {
				return n, nil
			}
		}
	}
	n, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, err
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, key, n, s.cacheTTL).Err(); err != nil {
			logger.Warn("cache unread count failed", zap.String("user", userID), zap.Error(err))
		}
	}
	return n, nil
}

func (s *NotificationService) invalidateUnread(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, unreadKey(userID)).Err(); err != nil {
		logger.Warn("invalidate unread cache failed", zap.String("user", userID), zap.Error(err))
	}
}

func unreadKey(userID string) string {
	return fmt.Sprintf("notifications:unread:%s", userID)
}
