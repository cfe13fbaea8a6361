package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/d60-Lab/flare/config"
	"github.com/d60-Lab/flare/internal/queue"
	"github.com/d60-Lab/flare/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	rdb := database.InitRedis(cfg)

	JOBS := 5000
	if s := os.Getenv("JOBS"); s != "" {
		if v, e := strconv.Atoi(s); e == nil && v > 0 {
			JOBS = v
		}
	}
	WORKERS := cfg.Queue.Workers
	if s := os.Getenv("WORKERS"); s != "" {
		if v, e := strconv.Atoi(s); e == nil && v > 0 {
			WORKERS = v
		}
	}

	q := queue.New(rdb, "flare:queuebench")
	w := queue.NewWorker(q, WORKERS, 10*time.Millisecond, 3)
	w.Register(queue.JobConversionCheck, func(ctx context.Context, job *queue.Job) error { return nil })
	stop := w.Start()

	ctx := context.Background()
	start := time.Now()
	for i := 0; i < JOBS; i++ {
		if err := q.Enqueue(ctx, queue.JobConversionCheck, fmt.Sprintf("p%06d", i), nil); err != nil {
			panic(err)
		}
	}

	lats := make([]time.Duration, 0, JOBS)
	for len(lats) < JOBS {
		select {
		case d := <-w.Metrics():
			lats = append(lats, d)
		case <-time.After(30 * time.Second):
			fmt.Printf("timeout: processed %d/%d\n", len(lats), JOBS)
			_ = stop(ctx)
			return
		}
	}
	total := time.Since(start)
	_ = stop(ctx)

	pct := func(vs []time.Duration, p float64) time.Duration {
		xs := append([]time.Duration(nil), vs...)
		sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
		k := int(float64(len(xs)) * p)
		if k >= len(xs) {
			k = len(xs) - 1
		}
		return xs[k]
	}
	var sum time.Duration
	for _, d := range lats {
		sum += d
	}
	fmt.Printf("JOBS=%d WORKERS=%d total=%v throughput=%.0f/s\n", JOBS, WORKERS, total, float64(JOBS)/total.Seconds())
	fmt.Printf("enqueue->processed: avg=%v p95=%v p99=%v\n", sum/time.Duration(len(lats)), pct(lats, 0.95), pct(lats, 0.99))
}
