// Package container provides dependency injection using Uber FX.
package container

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/handsapp/backend/internal/application/chat"
	"github.com/handsapp/backend/internal/application/conversation"
	"github.com/handsapp/backend/internal/application/profile"
	"github.com/handsapp/backend/internal/application/recipe"
	"github.com/handsapp/backend/internal/infrastructure/ai"
	"github.com/handsapp/backend/internal/infrastructure/config"
	"github.com/handsapp/backend/internal/infrastructure/http/apiserver"
	"github.com/handsapp/backend/internal/infrastructure/monitoring"
	gormRepo "github.com/handsapp/backend/internal/infrastructure/persistence/gorm"
	"github.com/handsapp/backend/internal/infrastructure/persistence/memory"
	"github.com/handsapp/backend/internal/infrastructure/persistence/migrations"
	"github.com/handsapp/backend/internal/infrastructure/persistence/postgres"
	redisRepo "github.com/handsapp/backend/internal/infrastructure/persistence/redis"
	"github.com/handsapp/backend/internal/infrastructure/persistence/sqlite"
	"github.com/handsapp/backend/internal/infrastructure/security"
	"github.com/handsapp/backend/internal/infrastructure/storage"
	"github.com/handsapp/backend/internal/ports/inbound"
	"github.com/handsapp/backend/internal/ports/outbound"
	"github.com/handsapp/backend/pkg/healthcheck"
	"github.com/handsapp/backend/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
)

// Module wires the production stack: Postgres with pgvector, Redis, the
// configured AI provider and S3 object storage.
var Module = fx.Options(
	ConfigModule,
	LoggerModule,
	fx.Provide(
		newPostgresGorm,
		newPgxPool,
		newRedisClient,
		newRedisCache,
		newAIProvider,
		newStorageService,
		postgres.NewVectorSearchRepository,
	),
	RepositoryModule,
	ServiceModule,
	ObservabilityModule,
	HTTPModule,
	fx.Invoke(runMigrations),
	fx.Invoke(forceTracing),
	fx.Invoke(registerLifecycle),
)

// DemoModule wires an all-local stack: in-memory SQLite, in-process cache,
// the deterministic mock provider and no object storage. It exists so the
// whole request loop can run on a laptop with zero external services.
var DemoModule = fx.Options(
	ConfigModule,
	LoggerModule,
	fx.Provide(
		newSQLiteGorm,
		newMemoryCache,
		newMockProvider,
		newNoStorage,
		memory.NewVectorSearchRepository,
	),
	RepositoryModule,
	ServiceModule,
	ObservabilityModule,
	HTTPModule,
	fx.Invoke(forceTracing),
	fx.Invoke(registerLifecycle),
)

// ConfigModule provides configuration.
var ConfigModule = fx.Provide(
	func() (*config.Config, error) {
		return config.Load("")
	},
)

// LoggerModule provides logging.
var LoggerModule = fx.Provide(
	func(cfg *config.Config) (*zap.Logger, error) {
		return logger.New(logger.Config{
			Level:       cfg.App.LogLevel,
			Format:      cfg.App.LogFormat,
			Development: cfg.App.Debug,
		})
	},
)

// RepositoryModule provides the GORM-backed repositories.
var RepositoryModule = fx.Provide(
	gormRepo.NewRecipeRepository,
	gormRepo.NewConversationRepository,
	gormRepo.NewProfileRepository,
)

// ServiceModule provides the application services.
var ServiceModule = fx.Provide(
	func(
		provider outbound.AIProvider,
		vectors outbound.VectorSearchRepository,
		cache outbound.CacheRepository,
		cfg *config.Config,
		metrics outbound.MetricsRecorder,
		log *zap.Logger,
	) inbound.RecommendService {
		return chat.NewRecommendService(provider, vectors, cache, cfg.AI.CacheTTL, metrics, log)
	},
	conversation.NewConversationService,
	recipe.NewRecipeService,
	func(provider outbound.AIProvider, repo outbound.ProfileRepository, log *zap.Logger) inbound.ProfileService {
		return profile.NewProfileService(provider, repo, log)
	},
	security.NewAuthService,
)

// ObservabilityModule provides metrics, tracing and health checks.
var ObservabilityModule = fx.Provide(
	monitoring.NewMetricsCollector,
	func(m *monitoring.MetricsCollector) outbound.MetricsRecorder { return m },
	func(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger) (*monitoring.TracingProvider, error) {
		tracing, err := monitoring.NewTracingProvider(context.Background(), cfg, log)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: tracing.Shutdown,
		})
		return tracing, nil
	},
	func(cfg *config.Config, log *zap.Logger) *healthcheck.HealthCheck {
		return healthcheck.New(cfg.App.Version, log)
	},
)

// HTTPModule provides the API server.
var HTTPModule = fx.Provide(
	apiserver.NewServer,
)

func newPostgresGorm(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	return postgres.Connect(cfg, log)
}

func newPgxPool(lc fx.Lifecycle, cfg *config.Config, health *healthcheck.HealthCheck) (*pgxpool.Pool, error) {
	pool, err := postgres.ConnectPool(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	health.Register("database", healthcheck.NewDatabaseChecker(pool))
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			pool.Close()
			return nil
		},
	})
	return pool, nil
}

func newRedisClient(lc fx.Lifecycle, cfg *config.Config, log *zap.Logger, health *healthcheck.HealthCheck) (*goredis.Client, error) {
	client, err := redisRepo.NewClient(context.Background(), cfg.Redis, log)
	if err != nil {
		return nil, err
	}
	health.Register("redis", healthcheck.NewRedisChecker(client))
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func newRedisCache(cfg *config.Config, client *goredis.Client, log *zap.Logger) outbound.CacheRepository {
	if !cfg.AI.EnableCache {
		log.Info("Embedding cache disabled")
		return nil
	}
	return redisRepo.NewCacheRepository(client, log)
}

func newAIProvider(cfg *config.Config, log *zap.Logger, metrics *monitoring.MetricsCollector) (outbound.AIProvider, error) {
	provider, err := ai.NewProvider(context.Background(), cfg.AI, log)
	if err != nil {
		return nil, err
	}
	return monitoring.InstrumentProvider(provider, cfg.AI.Provider, metrics), nil
}

func newStorageService(cfg *config.Config, log *zap.Logger) (outbound.StorageService, error) {
	if cfg.AWS.S3Bucket == "" {
		log.Info("No S3 bucket configured, image keys will not be presigned")
		return nil, nil
	}
	return storage.NewS3Storage(cfg.AWS, log)
}

func newSQLiteGorm(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	dbPath := ":memory:"
	if cfg.Database.Database != "" {
		dbPath = cfg.Database.Database + ".db"
	}

	logLevel := gormLogger.Silent
	if cfg.App.Debug {
		logLevel = gormLogger.Info
	}

	db, err := sqlite.SetupDatabase(dbPath, logLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to setup SQLite database: %w", err)
	}

	if err := sqlite.SeedDatabase(db); err != nil {
		log.Warn("Failed to seed database", zap.Error(err))
	}

	log.Info("Connected to SQLite database",
		zap.String("path", dbPath),
		zap.Bool("in_memory", dbPath == ":memory:"),
	)
	return db, nil
}

func newMemoryCache(cfg *config.Config, log *zap.Logger) outbound.CacheRepository {
	if !cfg.AI.EnableCache {
		log.Info("Embedding cache disabled")
		return nil
	}
	log.Info("Using in-memory cache")
	return memory.NewCacheRepository()
}

func newMockProvider(cfg *config.Config, log *zap.Logger, metrics *monitoring.MetricsCollector) (outbound.AIProvider, error) {
	cfgCopy := cfg.AI
	cfgCopy.Provider = "mock"
	provider, err := ai.NewProvider(context.Background(), cfgCopy, log)
	if err != nil {
		return nil, err
	}
	return monitoring.InstrumentProvider(provider, "mock", metrics), nil
}

func newNoStorage() outbound.StorageService {
	return nil
}

// forceTracing makes fx construct the tracing provider even though no other
// component depends on it.
func forceTracing(_ *monitoring.TracingProvider) {}

func runMigrations(cfg *config.Config, db *gorm.DB, log *zap.Logger) error {
	if !cfg.Database.AutoMigrate {
		log.Info("Auto-migration disabled, skipping")
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB for migrations: %w", err)
	}

	migrator, err := migrations.New(sqlDB, log)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer migrator.Close()

	return migrator.Up()
}

func registerLifecycle(
	lc fx.Lifecycle,
	cfg *config.Config,
	log *zap.Logger,
	db *gorm.DB,
	server *apiserver.Server,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("Starting application",
				zap.String("name", cfg.App.Name),
				zap.String("version", cfg.App.Version),
				zap.String("environment", cfg.App.Environment),
			)

			go func() {
				if err := server.Start(); err != nil {
					log.Error("HTTP server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if cfg.Server.ShutdownTimeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, cfg.Server.ShutdownTimeout)
				defer cancel()
			}

			if err := server.Shutdown(ctx); err != nil {
				log.Error("Failed to shutdown HTTP server", zap.Error(err))
			}

			sqlDB, err := db.DB()
			if err == nil {
				if err := sqlDB.Close(); err != nil {
					log.Error("Failed to close database connection", zap.Error(err))
				}
			}

			_ = log.Sync()
			return nil
		},
	})
}
