package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/helpdesk-dashboard/internal/auth"
	"github.com/iliyamo/helpdesk-dashboard/internal/config"
	"github.com/iliyamo/helpdesk-dashboard/internal/database"
	"github.com/iliyamo/helpdesk-dashboard/internal/handler"
	"github.com/iliyamo/helpdesk-dashboard/internal/middleware"
	"github.com/iliyamo/helpdesk-dashboard/internal/queue"
	"github.com/iliyamo/helpdesk-dashboard/internal/repository"
	"github.com/iliyamo/helpdesk-dashboard/internal/router"
	"github.com/iliyamo/helpdesk-dashboard/internal/view"
)

func main() {
	cfg := config.Load()
	log := newLogger(cfg)
	defer func() { _ = log.Sync() }()

	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("open database", zap.Error(err))
	}
	defer db.Close()

	// Redis is optional: without it pages are rendered on every request and
	// rate limits are not enforced.
	var rdb *redis.Client
	if c, err := config.NewRedisClient(config.LoadRedisConfig()); err != nil {
		log.Warn("redis unavailable, cache and rate limits disabled", zap.Error(err))
	} else {
		rdb = c
		defer rdb.Close()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var events queue.Publisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		pub := queue.NewAMQPPublisher(cfg.RabbitURL, log)
		defer pub.Close()
		events = pub
		startActivityConsumer(ctx, cfg, log)
	}

	renderer, err := view.New()
	if err != nil {
		log.Fatal("parse templates", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := middleware.NewMetrics(reg)

	tickets := repository.NewTicketRepo(db)
	customers := repository.NewCustomerRepo(db)
	cache := middleware.NewPageCache(config.LoadCacheConfig(), rdb, log)
	tokens := auth.NewTokenIssuer(cfg.JWTSecret, time.Duration(cfg.SessionTTLMin)*time.Minute)
	authn := auth.NewAuthenticator(tokens, &auth.CredentialsProvider{Users: repository.NewUserRepo(db)})

	e := echo.New()
	e.HideBanner = true
	e.Renderer = renderer
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Use(
		echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}),
		metrics.Middleware(),
		middleware.RequestLogger(log),
		echomw.Recover(),
		middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log),
	)

	router.RegisterRoutes(e, db, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	router.RegisterAuth(e, handler.NewAuthHandler(authn, !cfg.IsDev(), log), authn,
		middleware.NewTokenBucket(config.LoadLoginRateLimitConfig(), rdb, log))

	d := router.Dashboard{
		Sessions:  authn,
		PageCache: cache.Middleware(),
		Overview:  handler.NewDashboardHandler(repository.NewDashboardRepo(db), tickets),
		Tickets:   handler.NewTicketHandler(tickets, customers, cache, events, log),
		Customers: handler.NewCustomerHandler(customers, cache, events, log),
	}
	if cfg.DevToolsEnabled {
		seeder := repository.NewSeeder(db, auth.Hasher(cfg.BcryptCost))
		d.DevTools = handler.NewDevToolsHandler(seeder, tickets, cache, events, log)
		log.Warn("dev tools enabled: /dashboard/seed drops and reloads every table")
	}
	router.RegisterDashboard(e, d)

	go func() {
		addr := ":" + cfg.Port
		log.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

func newLogger(cfg config.Config) *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if cfg.IsDev() {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return log
}

// startActivityConsumer runs the activity log consumer until ctx ends.
func startActivityConsumer(ctx context.Context, cfg config.Config, log *zap.Logger) {
	f, err := queue.OpenActivityLog(cfg.ActivityLogPath)
	if err != nil {
		log.Error("open activity log, consumer not started", zap.Error(err))
		return
	}
	consumer := queue.NewActivityConsumer(cfg.RabbitURL, f, log)
	go func() {
		defer f.Close()
		if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("activity consumer stopped", zap.Error(err))
		}
	}()
}
