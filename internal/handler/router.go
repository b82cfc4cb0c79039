package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/memberguard/block-registry/internal/metrics"
	"github.com/memberguard/block-registry/internal/middleware"
)

// Handlers groups every handler the router mounts.
type Handlers struct {
	Block        *BlockHandler
	Auth         *AuthHandler
	Notification *NotificationHandler
	Health       *HealthHandler
}

// RouterOptions configures NewRouter. A nil Auth leaves the API open.
type RouterOptions struct {
	Log     *zap.Logger
	Metrics *metrics.Metrics
	Auth    *middleware.APIKeyAuth
}

// NewRouter mounts the health, metrics and /api/v1 routes.
func NewRouter(h Handlers, opts RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(opts.Log, opts.Metrics))

	r.GET("/health/live", h.Health.LivenessProbe)
	r.GET("/health/ready", h.Health.ReadinessProbe)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	api := r.Group("/api/v1")
	if opts.Auth != nil {
		api.Use(opts.Auth.Handler())
	}
	api.Use(middleware.Actor())

	users := api.Group("/users/:id/block")
	users.GET("", h.Block.GetStatus)
	users.PUT("", h.Block.Block)
	users.DELETE("", h.Block.Unblock)

	api.GET("/blocked-users", h.Block.ListBlocked)
	api.DELETE("/blocked-users", h.Block.UnblockAll)

	api.POST("/auth/login-check", h.Auth.LoginCheck)
	api.POST("/auth/session-check", h.Auth.SessionCheck)

	api.POST("/notifications/check", h.Notification.Check)

	return r
}
