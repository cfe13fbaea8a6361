package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// 任务类型
const (
	JobConversionCheck = "conversion_check"
	JobMail            = "mail"
)

// Job 队列任务（JSON 编码入 redis list；至少一次投递，失败重入队）
type Job struct {
	ID         string            `json:"id"`
	Kind       string            `json:"kind"`
	PostID     string            `json:"post_id,omitempty"`
	Payload    map[string]string `json:"payload,omitempty"`
	Attempts   int               `json:"attempts"`
	EnqueuedAt time.Time         `json:"enqueued_at"`
}

// Queue redis list 队列（LPUSH 入队 / RPOP 出队）
type Queue struct {
	rdb  *redis.Client
	key  string
	dead string
}

func New(rdb *redis.Client, key string) *Queue {
	if key == "" {
		key = "flare:queue:jobs"
	}
	return &Queue{rdb: rdb, key: key, dead: key + ":dead"}
}

// Enqueue 入队一个新任务
func (q *Queue) Enqueue(ctx context.Context, kind, postID string, payload map[string]string) error {
	job := &Job{
		ID:         uuid.New().String(),
		Kind:       kind,
		PostID:     postID,
		Payload:    payload,
		EnqueuedAt: time.Now(),
	}
	return q.push(ctx, q.key, job)
}

// Requeue 失败任务重新入队（调用方已累加 Attempts）
func (q *Queue) Requeue(ctx context.Context, job *Job) error {
	return q.push(ctx, q.key, job)
}

// Bury 超出重试上限的任务转入死信队列
func (q *Queue) Bury(ctx context.Context, job *Job) error {
	return q.push(ctx, q.dead, job)
}

// Dequeue 取出一个任务；队列为空时返回 (nil, nil)
func (q *Queue) Dequeue(ctx context.Context) (*Job, error) {
	data, err := q.rdb.RPop(ctx, q.key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var job Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("decode job: %w", err)
	}
	return &job, nil
}

// Len 当前积压长度（采样值）
func (q *Queue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.key).Result()
}

func (q *Queue) push(ctx context.Context, key string, job *Job) error {
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("encode job: %w", err)
	}
	return q.rdb.LPush(ctx, key, data).Err()
}
