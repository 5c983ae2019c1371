package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/negocios-forms/core/internal/config"
	"github.com/negocios-forms/core/internal/database"
	"github.com/negocios-forms/core/internal/middleware"
	"github.com/negocios-forms/core/internal/modules/form"
	"github.com/negocios-forms/core/internal/modules/negocio"
	"github.com/negocios-forms/core/internal/modules/user"
	"github.com/negocios-forms/core/internal/pkg/events"
	"github.com/negocios-forms/core/internal/pkg/metrics"
	pkgredis "github.com/negocios-forms/core/internal/pkg/redis"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Forms    form.Repository
	Negocios negocio.Repository
	Users    user.Repository
	// Events defaults to a no-op publisher.
	Events events.Publisher
	// Redis enables rate limiting and idempotent POSTs when set.
	Redis *redis.Client
	// Ping reports store health for /ping. Nil means always healthy.
	Ping func(ctx context.Context) error
}

// App holds all application dependencies.
type App struct {
	cfg     *config.AppConfig
	router  *gin.Engine
	logger  *zap.Logger
	events  events.Publisher
	closers []func(ctx context.Context) error
}

// New initializes the application: MongoDB → indexes → Redis → Kafka → routes.
// Redis and Kafka are optional; failing to reach them is logged, not fatal.
func New(logger *zap.Logger, cfg *config.AppConfig) (*App, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if err := applyRuntimeSettings(cfg); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ConnectTimeoutDuration()*2)
	defer cancel()

	store, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := database.EnsureIndexes(ctx, store.DB, logger); err != nil {
		_ = store.Close(context.Background())
		return nil, fmt.Errorf("indexes: %w", err)
	}

	negocios := negocio.NewRepository(store.DB)
	deps := Deps{
		Forms:    form.NewRepository(store.DB),
		Negocios: negocios,
		Users:    user.NewRepository(store.DB),
		Ping:     store.Ping,
	}
	closers := []func(context.Context) error{store.Close}

	if cfg.Redis.Enable {
		rc, err := pkgredis.Connect(ctx, cfg.Redis.URLValue())
		if err != nil {
			logger.Warn("redis unavailable, rate limit and idempotence disabled", zap.Error(err))
		} else {
			deps.Redis = rc.Raw()
			closers = append(closers, func(context.Context) error { return rc.Close() })
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		producer, err := events.NewProducer(cfg.Kafka.Brokers, logger, cfg.Kafka.Topic)
		if err != nil {
			logger.Warn("kafka unavailable, domain events disabled", zap.Error(err))
		} else {
			deps.Events = producer
		}
	}

	if cfg.IsDev() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	a := NewWithDeps(logger, cfg, deps)
	a.closers = append(a.closers, closers...)
	return a, nil
}

// NewWithDeps builds the router on top of already constructed repositories.
func NewWithDeps(logger *zap.Logger, cfg *config.AppConfig, deps Deps) *App {
	if deps.Events == nil {
		deps.Events = events.Noop{}
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(logger))
	router.Use(metrics.Middleware())
	router.Use(cors.New(corsConfig(cfg)))
	router.Use(middleware.Timeout(cfg.RequestTimeoutDuration()))
	if deps.Redis != nil {
		router.Use(middleware.RateLimit(deps.Redis, cfg.RateLimit))
		router.Use(middleware.Idempotence(deps.Redis))
	}

	a := &App{cfg: cfg, router: router, logger: logger, events: deps.Events}
	a.registerRoutes(deps)
	return a
}

// Addr returns the listen address.
func (a *App) Addr() string { return fmt.Sprintf(":%d", a.cfg.Port) }

// Router returns the HTTP handler.
func (a *App) Router() http.Handler { return a.router }

// Shutdown flushes pending events and closes the store and cache clients.
func (a *App) Shutdown(ctx context.Context) {
	a.events.Close()
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.logger.Warn("shutdown", zap.Error(err))
		}
	}
}

var processStart = time.Now()
