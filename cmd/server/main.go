package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	handlers "NeighborGuard/internal/handler"
	"NeighborGuard/internal/lifecycle"
	"NeighborGuard/internal/listeners"
	"NeighborGuard/internal/maintenance"
	"NeighborGuard/internal/notify"
	"NeighborGuard/internal/store"
	"NeighborGuard/pkg/cache"
	"NeighborGuard/pkg/config"
	"NeighborGuard/pkg/i18n"
	"NeighborGuard/pkg/logger"
	"NeighborGuard/pkg/metrics"
	"NeighborGuard/pkg/middleware"
	"NeighborGuard/pkg/notification"
	"NeighborGuard/pkg/scheduler"
	"NeighborGuard/pkg/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	if err := config.Load(); err != nil {
		log.Fatalf("load config: %v", err)
	}
	cfg := config.GlobalConfig
	if err := logger.Init(cfg.Log, cfg.Mode); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	lg := logger.Lg
	defer logger.Sync()

	db, err := util.CreateDatabaseInstance(cfg.DBDriver, cfg.DSN, cfg.Mode)
	if err != nil {
		lg.Fatal("open database", zap.Error(err))
	}
	st := store.New(db)
	if err := st.AutoMigrate(); err != nil {
		lg.Fatal("migrate", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics(reg)

	texts, err := i18n.NewI18nSupport(cfg.DefaultLang)
	if err != nil {
		lg.Fatal("load translations", zap.Error(err))
	}

	c, err := cache.NewCache(cache.Config{
		Type:  cfg.CacheType,
		Local: cache.DefaultLocalConfig(),
		Redis: cache.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: "ng:",
		},
	})
	if err != nil {
		lg.Fatal("init cache", zap.String("type", cfg.CacheType), zap.Error(err))
	}
	defer c.Close()

	gw := notification.NewGateway(cfg.Push, lg)
	dispatcher := notify.NewDispatcher(st, gw,
		notify.WithSendTimeout(cfg.Push.SendTimeout),
		notify.WithFanout(cfg.Push.Fanout),
		notify.WithMetrics(m),
		notify.WithLogger(logger.Named("dispatch")))
	queue := notify.NewQueue(dispatcher, cfg.Dispatch.Workers, cfg.Dispatch.QueueSize,
		notify.WithQueueMetrics(m),
		notify.WithQueueLogger(logger.Named("queue")))

	notifier := listeners.NewEventNotifier(st, c, queue, notify.NewPayloadBuilder(texts, cfg.DefaultLang), logger.Named("notifier"))
	events := lifecycle.NewService(st, lifecycle.NewEngine(nil),
		lifecycle.WithObserver(notifier),
		lifecycle.WithTexts(texts),
		lifecycle.WithMetrics(m),
		lifecycle.WithLogger(logger.Named("lifecycle")))

	cr := scheduler.NewCron(time.UTC, lg)
	if _, err := cr.Add(cfg.TokenPurgeSchedule, &maintenance.TokenPurgeJob{
		Store:  st,
		After:  cfg.TokenPurgeAfter,
		Logger: logger.Named("maintenance"),
	}); err != nil {
		lg.Fatal("schedule token purge", zap.String("schedule", cfg.TokenPurgeSchedule), zap.Error(err))
	}
	cr.Start()

	gin.SetMode(cfg.Mode)
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.OperationLogMiddleware(logger.Named("http")))
	handlers.NewHandlers(handlers.Deps{
		Store:       st,
		Events:      events,
		Cache:       c,
		Gateway:     gw,
		Queue:       queue,
		Metrics:     m,
		Registry:    reg,
		Logger:      lg,
		APIPrefix:   cfg.APIPrefix,
		RateLimit:   cfg.RateLimit,
		DefaultLang: cfg.DefaultLang,
	}).Register(engine)

	srv := &http.Server{Addr: cfg.Addr, Handler: engine, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.String("addr", cfg.Addr), zap.Bool("push_enabled", gw.Enabled()))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", zap.Error(err))
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	cr.Stop()
	// events accepted before shutdown still get their pushes
	if err := queue.Close(ctx); err != nil {
		logger.Warn("dispatch queue not drained", zap.Error(err), zap.Int("pending", queue.Len()))
	}
}
