package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	appControllers "github.com/bobasi/bursary/internal/app/controllers"
	appMigrations "github.com/bobasi/bursary/internal/app/migrations"
	appRepos "github.com/bobasi/bursary/internal/app/repositories"
	appRoutes "github.com/bobasi/bursary/internal/app/routes"
	appServices "github.com/bobasi/bursary/internal/app/services"
	"github.com/bobasi/bursary/internal/config"
	"github.com/bobasi/bursary/internal/db"
	appMiddleware "github.com/bobasi/bursary/internal/middleware"
	pkgAuth "github.com/bobasi/bursary/internal/pkg/auth"
	"github.com/bobasi/bursary/internal/pkg/filestorage"
	"github.com/bobasi/bursary/internal/pkg/helpers"
	"github.com/bobasi/bursary/internal/pkg/logger"
	"github.com/bobasi/bursary/internal/seed"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	Tx             appRepos.TxManager
	JWTService     *pkgAuth.JWTService
	FileStorage    *filestorage.LocalStorage
	Services       *appServices.Services
	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	TrackLimiter   *appMiddleware.RateLimiter
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.ParseLevel(cfg.Logging.Level)
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  prettyLog,
		Service: "bobasi-bursary",
	})

	lgr := logger.Logger()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and
// creates the default staff accounts.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	migrationsDir := cfg.Database.MigrationsDir
	if _, err := os.Stat(migrationsDir); os.IsNotExist(err) {
		database.Close()
		lgr.Error().Str("path", migrationsDir).Msg("Migrations directory not found")
		return nil, fmt.Errorf("migrations directory not found at %s: %w", migrationsDir, err)
	}

	lgr.Info().Msg("Running database migrations...")
	if err := appMigrations.NewMigrator(database, lgr).MigrateFromDirectory(ctx, migrationsDir); err != nil {
		database.Close()
		lgr.Error().Err(err).Msg("Database migration error")
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Msg("Database migrations successfully applied.")

	if _, err := seed.CreateDefaultData(ctx, appRepos.NewRepositories(database.Pool), cfg.Bursary.DefaultStaffPassword, lgr); err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// BuildDependencies initializes services, middleware and controllers over the
// given repositories and transaction manager.
func BuildDependencies(cfg *config.Config, repos *appRepos.Repositories, tx appRepos.TxManager, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Repos: repos, Tx: tx, Logger: lgr}

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Storage.Path, cfg.Storage.BaseURL, cfg.Storage.MaxUploadBytes)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:      cfg.JWT.Secret,
		AccessTokenExp: helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, 8*time.Hour),
		TokenIssuer:    cfg.JWT.Issuer,
	})

	settings, err := appServices.NewBursarySettings(cfg)
	if err != nil {
		return nil, err
	}

	deps.Services = appServices.NewServices(appServices.Dependencies{
		Repos:    repos,
		Tx:       tx,
		JWT:      deps.JWTService,
		Storage:  deps.FileStorage,
		Settings: settings,
		Clock:    time.Now,
		Logger:   lgr,
	})

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.Services.Auth)
	deps.TrackLimiter = appMiddleware.NewRateLimiter(cfg.RateLimit.TrackRPS, cfg.RateLimit.TrackBurst)

	deps.Controllers = appRoutes.Controllers{
		Auth:          appControllers.NewAuthController(deps.Services.Auth, lgr),
		Applications:  appControllers.NewApplicationController(deps.Services.Applications, lgr),
		Reviews:       appControllers.NewReviewController(deps.Services.Reviews, lgr),
		Disbursements: appControllers.NewDisbursementController(deps.Services.Disbursements, lgr),
		Notifications: appControllers.NewNotificationController(deps.Services.Notifications),
		Documents:     appControllers.NewDocumentController(deps.Services.Documents, lgr),
		Admin:         appControllers.NewAdminController(deps.Services.Auth, deps.Services.Stats, lgr),
		Students:      appControllers.NewStudentController(deps.Services.Students, lgr),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) *gin.Engine {
	if strings.ToLower(cfg.Server.Mode) == "production" {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	router := gin.New()
	router.Use(
		appMiddleware.RequestLogger(lgr),
		appMiddleware.Recovery(),
		appMiddleware.Metrics(),
	)
	router.MaxMultipartMemory = cfg.Storage.MaxUploadBytes

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware, deps.TrackLimiter)

	if cfg.Storage.Path != "" {
		router.Static("/uploads", cfg.Storage.Path)
	}

	return router
}
