package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	appControllers "github.com/yigit/schoolportal/internal/app/controllers"
	appMigrations "github.com/yigit/schoolportal/internal/app/migrations"
	appRepos "github.com/yigit/schoolportal/internal/app/repositories"
	appRoutes "github.com/yigit/schoolportal/internal/app/routes"
	appServices "github.com/yigit/schoolportal/internal/app/services"
	"github.com/yigit/schoolportal/internal/app/workers"
	"github.com/yigit/schoolportal/internal/config"
	"github.com/yigit/schoolportal/internal/db"
	appMiddleware "github.com/yigit/schoolportal/internal/middleware"
	pkgAuth "github.com/yigit/schoolportal/internal/pkg/auth"
	"github.com/yigit/schoolportal/internal/pkg/filestorage"
	"github.com/yigit/schoolportal/internal/pkg/logger"
	"github.com/yigit/schoolportal/internal/pkg/queue"
	"github.com/yigit/schoolportal/internal/pkg/transcription"
	"github.com/yigit/schoolportal/internal/seed"
)

// DefaultConfigPath is where the processes look for their YAML config.
const DefaultConfigPath = "configs/config.yaml"

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos                    *appRepos.Repositories
	Queue                    queue.Queue
	FileStorage              *filestorage.LocalStorage
	JWTService               *pkgAuth.JWTService
	PasswordPolicy           *pkgAuth.PasswordPolicy
	AuthService              appServices.AuthService
	AccountService           appServices.AccountService
	LectureSummaryService    appServices.LectureSummaryService
	EnrichmentService        appServices.EnrichmentService
	AuthController           *appControllers.AuthController
	LectureSummaryController *appControllers.LectureSummaryController
	AuthMiddleware           *appMiddleware.AuthMiddleware
	LoginLimiter             appMiddleware.Limiter
	Logger                   zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: prettyLog,
	})

	lgr := log.Logger
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// ConnectDatabase opens the connection pool without touching the schema.
func ConnectDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")
	return database, nil
}

// RunMigrations applies every pending file in the configured migrations directory.
func RunMigrations(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) error {
	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); err != nil {
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Str("path", migrationsDir).Msg("Running database migrations...")
	applied, err := appMigrations.NewMigrator(database.Pool).MigrateFromDirectory(ctx, migrationsDir)
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		return fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", applied).Msg("Database migrations successfully applied.")
	return nil
}

// SeedDefaultData creates the default accounts inside one transaction.
func SeedDefaultData(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (seed.Counts, error) {
	var counts seed.Counts
	policy := pkgAuth.NewPasswordPolicy(cfg.Security.BcryptCost)
	err := database.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		counts, err = seed.CreateDefaultData(ctx, appRepos.NewRepositories(tx), policy, lgr)
		return err
	})
	return counts, err
}

// SetupDatabase connects, migrates and, when enabled, seeds the database.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	database, err := ConnectDatabase(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}

	if err := RunMigrations(ctx, cfg, database, lgr); err != nil {
		database.Close()
		return nil, err
	}

	if cfg.Seed.Enabled {
		if _, err := SeedDefaultData(ctx, cfg, database, lgr); err != nil {
			// Seeding is a convenience; the API is usable without it.
			lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
		}
	}

	return database, nil
}

// SetupRedis connects to Redis when the queue backend needs it; otherwise it returns nil.
func SetupRedis(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*redis.Client, error) {
	if cfg.Queue.Backend != "redis" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established.")
	return client, nil
}

// NewQueue picks the enrichment queue backend. rdb may be nil for the memory backend.
func NewQueue(cfg *config.Config, rdb *redis.Client) (queue.Queue, error) {
	switch cfg.Queue.Backend {
	case "redis":
		if rdb == nil {
			return nil, fmt.Errorf("redis queue backend requires a redis client")
		}
		return queue.NewRedisQueue(rdb, cfg.Queue.Key), nil
	default:
		return queue.NewInMemory(cfg.Queue.BufferSize), nil
	}
}

// BuildDependencies initializes application services, controllers and middleware over repos.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, rdb *redis.Client, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr, Repos: repos}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.UploadDir, cfg.Server.PublicBaseURL+cfg.Storage.URLPrefix)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.Queue, err = NewQueue(cfg, rdb)
	if err != nil {
		return nil, err
	}

	deps.JWTService, err = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize jwt service: %w", err)
	}
	deps.PasswordPolicy = pkgAuth.NewPasswordPolicy(cfg.Security.BcryptCost)

	resolver := appServices.NewIdentityResolver(repos.StudentRepository, repos.TeacherRepository, repos.ParentRepository)
	deps.AuthService = appServices.NewAuthService(resolver, deps.PasswordPolicy, deps.JWTService, logger.WithComponent("auth"))
	deps.AccountService = appServices.NewAccountService(repos, deps.PasswordPolicy, logger.WithComponent("accounts"))
	deps.LectureSummaryService = appServices.NewLectureSummaryService(
		repos.LectureSummaryRepository,
		deps.FileStorage,
		deps.Queue,
		logger.WithComponent("lectures"),
	)

	transcriber := transcription.NewProcessTranscriber(transcription.Config{
		Command: cfg.Transcription.Command,
		Args:    cfg.Transcription.Args,
		Timeout: cfg.TranscriptionTimeout(),
	}, logger.WithComponent("transcription"))
	deps.EnrichmentService = appServices.NewEnrichmentService(
		repos.LectureSummaryRepository,
		deps.FileStorage,
		transcriber,
		logger.WithComponent("enrichment"),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)
	if cfg.RateLimit.LoginPerMinute > 0 {
		if rdb != nil {
			deps.LoginLimiter = appMiddleware.NewRedisWindow(rdb, "schoolportal:ratelimit:login", cfg.RateLimit.LoginPerMinute)
		} else {
			deps.LoginLimiter = appMiddleware.NewTokenBucket(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginPerMinute)
		}
	}

	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.LectureSummaryController = appControllers.NewLectureSummaryController(deps.LectureSummaryService, lgr)

	return deps, nil
}

// NewEnrichmentWorker builds the background consumer of the transcription queue.
func NewEnrichmentWorker(cfg *config.Config, deps *Dependencies) *workers.EnrichmentWorker {
	return workers.NewEnrichmentWorker(
		deps.Queue,
		deps.EnrichmentService,
		cfg.Worker.Concurrency,
		logger.WithComponent("worker"),
	)
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, checks map[string]appControllers.HealthCheck) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		deps.Logger.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		deps.Logger.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	// ClientIP keys the login limiter, so forwarded headers count only from configured proxies.
	if err := router.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		deps.Logger.Error().Err(err).Strs("trusted_proxies", cfg.Server.TrustedProxies).Msg("Invalid trusted proxies, ignoring forwarded headers")
		_ = router.SetTrustedProxies(nil)
	}
	router.Use(
		appMiddleware.Recovery(),
		appMiddleware.RequestLogger(logger.WithComponent("http")),
		appMiddleware.CORS(cfg.CORS.AllowedOrigins),
	)

	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.LectureSummaryController,
		deps.AuthMiddleware,
		deps.LoginLimiter,
	)

	// Recordings are public by URL, as the portal front-end links them directly.
	router.Static(cfg.Storage.URLPrefix, deps.FileStorage.BasePath())

	router.GET("/healthz", appControllers.NewHealthController(checks).Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
