package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"

	"github.com/d60-Lab/flare/config"
	"github.com/d60-Lab/flare/internal/api"
	"github.com/d60-Lab/flare/internal/api/handler"
	"github.com/d60-Lab/flare/internal/event"
	"github.com/d60-Lab/flare/internal/queue"
	"github.com/d60-Lab/flare/internal/repository"
	"github.com/d60-Lab/flare/internal/search"
	"github.com/d60-Lab/flare/internal/service"
	"github.com/d60-Lab/flare/pkg/database"
	"github.com/d60-Lab/flare/pkg/logger"
	"github.com/d60-Lab/flare/pkg/trace"
)

// @title flare API
// @version 1.0
// @description 社交动态与活动转化服务
func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		panic(err)
	}
	defer logger.Sync()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN}); err != nil {
			logger.Warn("sentry init failed", zap.Error(err))
		}
		defer sentry.Flush(2 * time.Second)
	}

	ctx := context.Background()
	shutdownTrace, err := trace.Init(ctx, cfg, "flare")
	if err != nil {
		logger.Warn("trace init failed", zap.Error(err))
	} else {
		defer func() { _ = shutdownTrace(ctx) }()
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Error("init database failed", zap.Error(err))
		os.Exit(1)
	}
	rdb := database.InitRedis(cfg)

	// 仓储
	postRepo := repository.NewPostRepository(db)
	reactionRepo := repository.NewReactionRepository(db)
	userRepo := repository.NewUserRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	conversionRepo := repository.NewConversionRepository(db)

	// 队列与总线
	jobs := queue.New(rdb, "")
	bus := event.NewBus()

	// 服务
	evaluator := service.NewEvaluator(postRepo, cfg.Conversion.SoftThreshold, cfg.Conversion.HardThreshold)
	notifSvc := service.NewNotificationService(notifRepo, rdb)
	postSvc := service.NewPostService(db, postRepo, evaluator, bus, jobs, cfg.Post.DefaultTTLHours)
	conversionSvc := service.NewConversionService(db, evaluator, bus)
	authSvc := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL)
	checker := service.NewConversionChecker(postRepo, evaluator, bus)
	mailer := service.NewMailer(nil)
	searchSvc := search.New(cfg.Search, db)
	logger.Info("search driver selected", zap.String("driver", cfg.Search.Driver))

	// 监听器注册（仅在启动阶段，注册后总线只读）
	notifier := service.NewConversionNotifier(userRepo, notifSvc, jobs)
	bus.Register(event.KindConversionPrompted, notifier)
	bus.Register(event.KindConversionSuggested, notifier)
	bus.Register(event.KindAutoConverted, notifier)
	bus.Register(event.KindConvertedToEvent, service.NewInterestedUsersNotifier(reactionRepo, notifSvc))
	bus.Register(event.KindConvertedToEvent, service.NewInvitationMigrator(invitationRepo, conversionRepo, notifSvc, bus))

	// 队列 worker
	worker := queue.NewWorker(jobs, cfg.Queue.Workers, cfg.Queue.PollInterval, cfg.Queue.MaxAttempts)
	worker.Register(queue.JobConversionCheck, checker.HandleJob)
	worker.Register(queue.JobMail, mailer.HandleJob)
	stopWorker := worker.Start()

	// 周期过期任务
	stopExpiry := startExpiryLoop(postSvc)

	h := handler.New(authSvc, postSvc, conversionSvc, notifSvc, invitationRepo, userRepo, searchSvc)
	r := api.NewRouter(cfg, h, authSvc)

	srv := &http.Server{Addr: cfg.Server.Addr, Handler: r}
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	_ = stopWorker(shutdownCtx)
	stopExpiry()
}

// startExpiryLoop 每分钟过期一次到期动态；返回停止函数
func startExpiryLoop(posts *service.PostService) func() {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				if _, err := posts.ExpireDuePosts(context.Background()); err != nil {
					logger.Warn("expire posts failed", zap.Error(err))
				}
			}
		}
	}()
	return func() { close(stop) }
}
