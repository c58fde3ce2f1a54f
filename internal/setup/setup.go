package setup

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/askstack/askstack/internal/database"
	"github.com/askstack/askstack/internal/redis"
	"github.com/askstack/askstack/internal/search"
	"github.com/askstack/askstack/internal/setup/config"
	"github.com/askstack/askstack/internal/viewcount"
)

// App bundles all core dependencies needed by the application.
type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	DBLogger     *zap.Logger
	DB           database.Client
	RedisManager *redis.Manager
	ViewCounter  *viewcount.Counter
	IndexQueue   *search.Queue
}

// InitializeApp bootstraps all application dependencies in order:
// configuration, logging, Redis, then the database with its service
// layer. When autoMigrate is set, pending migrations run before the
// connection is handed out.
func InitializeApp(ctx context.Context, autoMigrate bool) (*App, error) {
	cfg, _, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(&cfg.Debug)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	dbLogger := logger.Named("database")

	redisManager := redis.NewManager(&cfg.Redis, logger)

	viewClient, err := redisManager.GetClient(redis.ViewCountDBIndex)
	if err != nil {
		return nil, err
	}

	queueClient, err := redisManager.GetClient(redis.SearchQueueDBIndex)
	if err != nil {
		return nil, err
	}

	counter := viewcount.New(viewClient, logger)
	indexQueue := search.NewQueue(queueClient, logger)

	db, err := database.NewConnection(ctx, cfg, counter, indexQueue, dbLogger, autoMigrate)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		DBLogger:     dbLogger,
		DB:           db,
		RedisManager: redisManager,
		ViewCounter:  counter,
		IndexQueue:   indexQueue,
	}, nil
}

// Cleanup releases connections in reverse initialization order.
func (a *App) Cleanup(_ context.Context) {
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}

	a.RedisManager.Close()

	_ = a.Logger.Sync()
}

// newLogger builds the application logger from the debug settings.
// Unknown levels fall back to info.
func newLogger(debug *config.Debug) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(debug.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	logConfig := zap.NewProductionConfig()
	logConfig.Level = zap.NewAtomicLevelAt(level)
	logConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return logConfig.Build()
}
