package queue

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/flare/pkg/logger"
)

// Handler 处理某一类任务；返回错误则按重试策略重新入队
type Handler func(ctx context.Context, job *Job) error

// Worker 轮询消费队列的本地 worker 池
type Worker struct {
	q            *Queue
	handlers     map[string]Handler
	workers      int
	pollInterval time.Duration
	maxAttempts  int
	metricsCh    chan time.Duration // enqueue->processed latency
}

func NewWorker(q *Queue, workers int, pollInterval time.Duration, maxAttempts int) *Worker {
	if workers <= 0 {
		workers = 4
	}
	if pollInterval <= 0 {
		pollInterval = 200 * time.Millisecond
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	return &Worker{
		q:            q,
		handlers:     make(map[string]Handler),
		workers:      workers,
		pollInterval: pollInterval,
		maxAttempts:  maxAttempts,
		metricsCh:    make(chan time.Duration, 65536),
	}
}

// Register 注册任务处理器（Start 之前调用）
func (w *Worker) Register(kind string, h Handler) {
	w.handlers[kind] = h
}

func (w *Worker) Metrics() <-chan time.Duration { return w.metricsCh }

// Start 启动若干 worker 轮询消费；返回停止函数。
func (w *Worker) Start() func(context.Context) error {
	stop := make(chan struct{})
	for i := 0; i < w.workers; i++ {
		go w.loop(stop)
	}
	return func(ctx context.Context) error { close(stop); return nil }
}

func (w *Worker) loop(stop <-chan struct{}) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// 每次 tick 连续消费直到队列排空
			for w.processOne(context.Background()) {
			}
		}
	}
}

// processOne 消费一个任务；返回是否还应继续取下一个
func (w *Worker) processOne(ctx context.Context) bool {
	job, err := w.q.Dequeue(ctx)
	if err != nil {
		logger.Warn("queue dequeue failed", zap.Error(err))
		return false
	}
	if job == nil {
		return false
	}

	h, ok := w.handlers[job.Kind]
	if !ok {
		logger.Warn("no handler for job kind, burying", zap.String("kind", job.Kind), zap.String("job", job.ID))
		_ = w.q.Bury(ctx, job)
		return true
	}

	hctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	err = h(hctx, job)
	cancel()
	if err != nil {
		job.Attempts++
		if job.Attempts >= w.maxAttempts {
			logger.Error("job failed permanently",
				zap.String("kind", job.Kind), zap.String("job", job.ID),
				zap.Int("attempts", job.Attempts), zap.Error(err))
			_ = w.q.Bury(ctx, job)
		} else {
			logger.Warn("job failed, requeueing",
				zap.String("kind", job.Kind), zap.String("job", job.ID),
				zap.Int("attempts", job.Attempts), zap.Error(err))
			_ = w.q.Requeue(ctx, job)
		}
		return true
	}

	if !job.EnqueuedAt.IsZero() {
		select {
		case w.metricsCh <- time.Since(job.EnqueuedAt):
		default:
		}
	}
	return true
}
