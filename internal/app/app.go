package app

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	_ "github.com/promptcraft/server/cmd/server/docs" // swagger docs
	"github.com/promptcraft/server/internal/module/ai"
	"github.com/promptcraft/server/internal/module/attempt"
	"github.com/promptcraft/server/internal/module/billing"
	"github.com/promptcraft/server/internal/module/generation"
	"github.com/promptcraft/server/internal/module/hint"
	"github.com/promptcraft/server/internal/module/level"
	"github.com/promptcraft/server/internal/module/quota"
	"github.com/promptcraft/server/internal/module/scoring"
	"github.com/promptcraft/server/internal/module/stats"
	"github.com/promptcraft/server/internal/shared/cache"
	"github.com/promptcraft/server/internal/shared/config"
	"github.com/promptcraft/server/internal/shared/database"
	"github.com/promptcraft/server/internal/shared/logger"
	"github.com/promptcraft/server/internal/shared/storage"
	"github.com/promptcraft/server/internal/utils/metrics"
	"github.com/promptcraft/server/internal/utils/middleware"
	"github.com/redis/go-redis/v9"
	swaggerfiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App wires every module together and owns the process lifecycle.
type App struct {
	config  *config.Config
	db      *gorm.DB
	redis   *redis.Client
	router  *gin.Engine
	logger  *zap.Logger
	metrics *metrics.Metrics

	quotaHandler      *quota.Handler
	levelHandler      *level.Handler
	hintHandler       *hint.Handler
	attemptHandler    *attempt.Handler
	statsHandler      *stats.Handler
	generationHandler *generation.Handler
	billingHandler    *billing.Handler

	aggregator *stats.Aggregator

	cancelBackground context.CancelFunc
}

// New creates a fully wired application.
func New(cfg *config.Config) (*App, error) {
	zapLog, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	app := &App{
		config:  cfg,
		logger:  zapLog,
		metrics: metrics.New("promptcraft"),
	}

	db, err := database.New(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	app.db = db

	if err := app.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	if cfg.Redis.Address != "" {
		redisClient, err := cache.New(&cfg.Redis)
		if err != nil {
			zapLog.Warn("redis connection failed, leaderboard cache disabled", zap.Error(err))
		} else {
			app.redis = redisClient
		}
	}

	if err := app.initModules(); err != nil {
		return nil, fmt.Errorf("init modules: %w", err)
	}

	app.router = app.setupRouter()
	app.startBackground()

	return app, nil
}

func (a *App) migrate() error {
	return a.db.AutoMigrate(
		&quota.AppLimits{},
		&quota.UsagePlan{},
		&level.Level{},
		&attempt.LevelAttempt{},
		&stats.UserStatistics{},
		&stats.Achievement{},
		&stats.UserAchievement{},
	)
}

func (a *App) initModules() error {
	cfg := a.config
	appID := cfg.Server.AppID

	// Quota meter
	quotaRepo := quota.NewRepository(a.db)
	quotaService := quota.NewService(quotaRepo, a.metrics, a.logger)
	a.quotaHandler = quota.NewHandler(quotaService)

	// AI provider behind a circuit breaker
	var provider ai.Provider = ai.NewOpenAIClient(&cfg.AI)
	provider = ai.NewBreakerProvider(provider, &ai.BreakerConfig{
		FailureThreshold: cfg.AI.FailureThreshold,
		Timeout:          cfg.AI.CircuitTimeout,
	}, a.metrics, a.logger)

	// Level catalog
	levelRepo := level.NewRepository(a.db)
	levelService := level.NewService(levelRepo, a.logger)
	a.levelHandler = level.NewHandler(levelService)

	// Hint sessions
	hintService := hint.NewService(hint.NewSessionCounter(), levelService, a.logger)
	a.hintHandler = hint.NewHandler(hintService)

	// Scoring
	scoringService := scoring.NewService(provider, a.metrics, a.logger)

	// Statistics and ranking
	statsRepo := stats.NewRepository(a.db)
	statsService := stats.NewService(statsRepo, a.logger)

	attemptRepo := attempt.NewRepository(a.db)

	leaderboard := stats.NewLeaderboardCache(a.redis, statsRepo)
	a.aggregator = stats.NewAggregator(statsRepo, attemptRepo, leaderboard, a.metrics, a.logger)
	a.statsHandler = stats.NewHandler(statsService, leaderboard, a.aggregator)

	// Attempt recording
	attemptService := attempt.NewService(
		attemptRepo,
		levelService,
		quotaService,
		scoringService,
		hintService,
		statsService,
		appID,
		cfg.Storage.TrustedDomains,
		a.logger,
	)
	a.attemptHandler = attempt.NewHandler(attemptService)

	// Metered generation
	store, err := storage.NewS3Store(&cfg.Storage)
	if err != nil {
		return fmt.Errorf("init object storage: %w", err)
	}
	generationService := generation.NewService(quotaService, provider, store, appID, a.logger)
	a.generationHandler = generation.NewHandler(generationService)

	// Billing
	billingService := billing.NewService(&cfg.Stripe, quotaService, appID, a.logger)
	a.billingHandler = billing.NewHandler(billingService, a.logger)

	return nil
}

// setupRouter creates and configures the Gin router.
func (a *App) setupRouter() *gin.Engine {
	if a.config.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	r.Use(middleware.Recovery(a.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(a.logger))
	r.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	r.Use(a.metrics.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerfiles.Handler))

	verifier := middleware.NewJWTVerifier(a.config.Auth.JWTSecret, a.config.Auth.Issuer)

	v1 := r.Group("/api/v1")

	// Webhooks authenticate by signature, not by JWT.
	a.billingHandler.RegisterWebhookRoutes(v1.Group("/webhooks"))

	authed := v1.Group("")
	authed.Use(middleware.Auth(verifier))
	{
		a.quotaHandler.RegisterRoutes(authed)
		a.levelHandler.RegisterRoutes(authed)
		a.hintHandler.RegisterRoutes(authed)
		a.attemptHandler.RegisterRoutes(authed)
		a.statsHandler.RegisterRoutes(authed)
		a.generationHandler.RegisterRoutes(authed)
		a.billingHandler.RegisterRoutes(authed)
	}

	admin := v1.Group("/admin")
	admin.Use(middleware.Auth(verifier))
	{
		a.statsHandler.RegisterAdminRoutes(admin)
	}

	return r
}

// startBackground launches the daily ranking rebuild loop.
func (a *App) startBackground() {
	ctx, cancel := context.WithCancel(context.Background())
	a.cancelBackground = cancel

	go a.aggregator.RunDaily(ctx, a.config.Ranking.RebuildInterval)
}

// Router returns the configured router.
func (a *App) Router() *gin.Engine {
	return a.router
}

// Stop releases application resources.
func (a *App) Stop() {
	if a.cancelBackground != nil {
		a.cancelBackground()
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.logger.Warn("failed to close redis", zap.Error(err))
		}
	}
	if err := database.Close(a.db); err != nil {
		a.logger.Warn("failed to close database", zap.Error(err))
	}
	_ = a.logger.Sync()
}
