package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/learnhub/internal/app/auth"
	appControllers "github.com/yigit/learnhub/internal/app/controllers"
	appMigrations "github.com/yigit/learnhub/internal/app/migrations"
	appRepos "github.com/yigit/learnhub/internal/app/repositories"
	appRoutes "github.com/yigit/learnhub/internal/app/routes"
	appServices "github.com/yigit/learnhub/internal/app/services"
	appValidators "github.com/yigit/learnhub/internal/app/validators"
	"github.com/yigit/learnhub/internal/config"
	"github.com/yigit/learnhub/internal/db"
	appMiddleware "github.com/yigit/learnhub/internal/middleware"
	pkgAuth "github.com/yigit/learnhub/internal/pkg/auth"
	"github.com/yigit/learnhub/internal/pkg/events"
	"github.com/yigit/learnhub/internal/pkg/logger"
	"github.com/yigit/learnhub/internal/pkg/metrics"
	"github.com/yigit/learnhub/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos            *appRepos.Repositories
	JWTService       *pkgAuth.JWTService
	PasswordHasher   *pkgAuth.PasswordHasher
	Denylist         pkgAuth.Denylist
	Redis            *redis.Client
	Events           *events.Publisher
	Policy           *appAuth.Policy
	Rules            *appValidators.Rules
	AuthService      *appServices.AuthService
	CourseService    *appServices.CourseService
	AuthController   *appControllers.AuthController
	CourseController *appControllers.CourseController
	AuthMiddleware   *appMiddleware.AuthMiddleware
	Logger           zerolog.Logger
}

// Close releases the connections owned by the dependencies. The database is
// owned by the caller.
func (d *Dependencies) Close() error {
	var errs []error
	if err := d.Events.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close events publisher: %w", err))
	}
	if d.Redis != nil {
		if err := d.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	lgr := logger.Configure(logger.Config{
		Level:  logLevel,
		Pretty: strings.ToLower(cfg.Logging.Format) == "text",
	})

	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection and runs migrations.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.Database, error) {
	lgr.Info().Str("driver", cfg.Database.Driver).Msg("Establishing database connection...")
	database, err := db.Open(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database, lgr).Migrate(ctx); err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		_ = database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	return database, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.Database, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(database)

	hasher, err := pkgAuth.NewPasswordHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return nil, err
	}
	deps.PasswordHasher = hasher

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: cfg.AccessTokenTTL(),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	if err := setupDenylist(ctx, cfg, deps); err != nil {
		return nil, err
	}

	deps.Events, err = events.NewFromConfig(cfg.Events, componentLogger(lgr, "events"))
	if err != nil {
		_ = deps.Close()
		return nil, err
	}

	if err := seed.CreateDefaultAdmin(ctx, cfg.Seed, deps.Repos.UserRepository, hasher, lgr); err != nil {
		// Startup continues; the admin can still be created through the API.
		lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
	}

	deps.Policy = appAuth.NewPolicy()
	deps.Rules = appValidators.NewRules(deps.Repos.UserRepository.EmailExists)

	deps.AuthService = appServices.NewAuthService(
		deps.Repos.UserRepository,
		deps.JWTService,
		hasher,
		deps.Denylist,
		deps.Events,
		componentLogger(lgr, "auth"),
	)
	deps.CourseService = appServices.NewCourseService(
		deps.Repos.CourseRepository,
		deps.Repos.EnrollmentRepository,
		deps.Events,
		componentLogger(lgr, "courses"),
	)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Denylist, deps.Policy)
	deps.AuthController = appControllers.NewAuthController(deps.AuthService, lgr)
	deps.CourseController = appControllers.NewCourseController(deps.CourseService, lgr)

	return deps, nil
}

func setupDenylist(ctx context.Context, cfg *config.Config, deps *Dependencies) error {
	switch cfg.Auth.RevocationStore {
	case config.RevocationStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return fmt.Errorf("failed to connect to redis: %w", err)
		}

		deps.Redis = client
		deps.Denylist = pkgAuth.NewRedisDenylist(client)
		deps.Logger.Info().Str("addr", cfg.Redis.Addr).Msg("Token revocation backed by redis")
	default:
		deps.Denylist = deps.Repos.TokenRepository

		purged, err := deps.Repos.TokenRepository.PurgeExpired(ctx)
		if err != nil {
			deps.Logger.Warn().Err(err).Msg("Failed to purge expired revoked tokens")
		} else if purged > 0 {
			deps.Logger.Info().Int64("purged", purged).Msg("Purged expired revoked tokens")
		}
	}
	return nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	switch strings.ToLower(cfg.Server.Mode) {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}
	lgr.Info().Str("mode", gin.Mode()).Msg("Gin mode configured")

	router := gin.New()
	router.Use(
		appMiddleware.RequestID(),
		appMiddleware.Recovery(lgr),
		appMiddleware.SecurityHeaders(),
		appMiddleware.RequestLogger(componentLogger(lgr, "http")),
	)
	if cfg.Metrics.Enabled {
		router.Use(appMiddleware.Metrics())
		router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	appRoutes.SetupSwagger(router)
	appRoutes.SetupRouter(router,
		deps.AuthController,
		deps.CourseController,
		deps.AuthMiddleware,
		deps.Rules,
	)

	return router
}

func componentLogger(lgr zerolog.Logger, name string) zerolog.Logger {
	return lgr.With().Str("component", name).Logger()
}
