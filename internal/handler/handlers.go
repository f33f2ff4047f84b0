package handlers

import (
	"NeighborGuard/internal/lifecycle"
	"NeighborGuard/internal/store"
	"NeighborGuard/pkg/cache"
	"NeighborGuard/pkg/metrics"
	"NeighborGuard/pkg/middleware"
	"NeighborGuard/pkg/notification"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// QueueStats is the read-only view of the dispatch queue used by health.
type QueueStats interface {
	Len() int
}

// Deps 装配 Handlers 所需依赖
type Deps struct {
	Store       *store.Store
	Events      *lifecycle.Service
	Cache       cache.Cache
	Gateway     notification.Gateway
	Queue       QueueStats
	Metrics     *metrics.Metrics
	Registry    *prometheus.Registry
	Logger      *zap.Logger
	APIPrefix   string
	RateLimit   string
	DefaultLang string
}

type Handlers struct {
	store    *store.Store
	events   *lifecycle.Service
	cache    cache.Cache
	gateway  notification.Gateway
	queue    QueueStats
	metrics  *metrics.Metrics
	registry *prometheus.Registry
	logger   *zap.Logger

	apiPrefix   string
	rateLimit   string
	defaultLang string
}

func NewHandlers(d Deps) *Handlers {
	h := &Handlers{
		store:       d.Store,
		events:      d.Events,
		cache:       d.Cache,
		gateway:     d.Gateway,
		queue:       d.Queue,
		metrics:     d.Metrics,
		registry:    d.Registry,
		logger:      d.Logger,
		apiPrefix:   d.APIPrefix,
		rateLimit:   d.RateLimit,
		defaultLang: d.DefaultLang,
	}
	if h.logger == nil {
		h.logger = zap.NewNop()
	}
	if h.gateway == nil {
		h.gateway = notification.Disabled{}
	}
	if h.apiPrefix == "" {
		h.apiPrefix = "/api"
	}
	return h
}

func (h *Handlers) Register(engine *gin.Engine) {
	engine.Use(metrics.MonitorMiddleware(h.metrics))
	if h.registry != nil {
		engine.GET("/metrics", gin.WrapH(metrics.Handler(h.registry)))
	}

	r := engine.Group(h.apiPrefix)
	r.Use(middleware.LanguageMiddleware(h.defaultLang))
	if h.rateLimit != "" {
		rl := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			Rate:       h.rateLimit,
			Identifier: "user",
			SkipPaths:  []string{h.apiPrefix + "/system/"},
			AddHeaders: true,
		}, nil)
		if h.registry != nil {
			rl.WithObserver(middleware.NewPrometheusObserver(h.registry))
		}
		r.Use(rl.Middleware())
	}

	h.registerSystemRoutes(r)
	h.registerConfigRoutes(r)
	h.registerEventRoutes(r)
	h.registerDeviceRoutes(r)
}

func (h *Handlers) registerSystemRoutes(r *gin.RouterGroup) {
	system := r.Group("system")
	{
		system.GET("/health", h.HealthCheck)
	}
}

func (h *Handlers) registerConfigRoutes(r *gin.RouterGroup) {
	cfg := r.Group("config")
	{
		cfg.GET("/event-types", h.handleEventTypes)

		cfg.GET("/reactions", h.handleReactions)

		cfg.GET("/statuses", h.handleStatuses)

		cfg.GET("/severities", h.handleSeverities)
	}
}

func (h *Handlers) registerEventRoutes(r *gin.RouterGroup) {
	events := r.Group("events")
	events.Use(middleware.ActorMiddleware())
	idem := middleware.IdempotencyMiddleware(middleware.IdempotencyConfig{Store: h.cache, Logger: h.logger})
	{
		events.GET("/:circleId", h.handleListEvents)

		events.POST("/:circleId", idem, h.handleCreateEvent)

		events.GET("/:circleId/:eventId", h.handleGetEvent)

		events.PUT("/:circleId/:eventId", h.handleUpdateEvent)

		events.DELETE("/:circleId/:eventId", h.handleDeleteEvent)

		events.GET("/:circleId/:eventId/notes", h.handleListNotes)

		events.POST("/:circleId/:eventId/notes", idem, h.handleAddNote)

		events.PUT("/:circleId/:eventId/status", h.handleUpdateStatus)

		events.PUT("/:circleId/:eventId/police", h.handleUpdatePolice)
	}
}

func (h *Handlers) registerDeviceRoutes(r *gin.RouterGroup) {
	devices := r.Group("devices")
	devices.Use(middleware.ActorMiddleware())
	{
		devices.POST("/register", h.handleRegisterDevice)

		devices.POST("/unregister", h.handleUnregisterDevice)
	}
}
