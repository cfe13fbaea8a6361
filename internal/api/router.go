package api

import (
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/d60-Lab/flare/config"
	_ "github.com/d60-Lab/flare/docs"
	"github.com/d60-Lab/flare/internal/api/handler"
	"github.com/d60-Lab/flare/internal/api/middleware"
	"github.com/d60-Lab/flare/internal/service"
)

// NewRouter 装配路由与中间件
func NewRouter(cfg *config.Config, h *handler.Handler, auth *service.AuthService) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	r.Use(otelgin.Middleware("flare"))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(middleware.RateLimit(cfg.Server.RateLimit, cfg.Server.RateBurst))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	v1 := r.Group("/api/v1")
	{
		v1.POST("/auth/register", h.Register)
		v1.POST("/auth/login", h.Login)

		authed := v1.Group("", middleware.JWTAuth(auth))
		{
			authed.POST("/posts", h.CreatePost)
			authed.GET("/posts/:id", h.GetPost)
			authed.POST("/posts/:id/react", h.React)
			authed.POST("/posts/:id/invite", h.InvitePost)
			authed.POST("/posts/:id/conversion/prompt", h.PromptConversion)
			authed.GET("/posts/:id/conversion/preview", h.PreviewConversion)
			authed.POST("/posts/:id/convert", h.ConvertPost)

			authed.GET("/search", h.Search)

			authed.GET("/notifications", h.ListNotifications)
			authed.GET("/notifications/unread", h.UnreadCount)
			authed.POST("/notifications/:id/read", h.MarkNotificationRead)
			authed.PUT("/notifications/preference", h.UpdateNotificationPreference)
		}
	}
	return r
}
