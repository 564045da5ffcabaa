package bootstrap

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appControllers "github.com/skillpivot/api/internal/app/controllers"
	appMigrations "github.com/skillpivot/api/internal/app/migrations"
	appRepos "github.com/skillpivot/api/internal/app/repositories"
	appRoutes "github.com/skillpivot/api/internal/app/routes"
	appServices "github.com/skillpivot/api/internal/app/services"
	"github.com/skillpivot/api/internal/config"
	"github.com/skillpivot/api/internal/db"
	appMiddleware "github.com/skillpivot/api/internal/middleware"
	pkgAuth "github.com/skillpivot/api/internal/pkg/auth"
	"github.com/skillpivot/api/internal/pkg/email"
	"github.com/skillpivot/api/internal/pkg/filestorage"
	"github.com/skillpivot/api/internal/pkg/google"
	"github.com/skillpivot/api/internal/pkg/helpers"
	"github.com/skillpivot/api/internal/pkg/logger"
	"github.com/skillpivot/api/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos          *appRepos.Repositories
	JWTService     *pkgAuth.JWTService
	FileStorage    filestorage.BlobStore
	AuthMiddleware *appMiddleware.AuthMiddleware
	Controllers    appRoutes.Controllers
	Logger         zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger(configPath string) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Str("path", configPath).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	lgr := logger.Configure(logger.ConfigFromStrings(cfg.Logging.Level, cfg.Logging.Format))
	lgr.Info().Str("logLevel", cfg.Logging.Level).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// RunMigrations applies (up) or rolls back one step of (down) the schema.
func RunMigrations(cfg *config.Config, up bool, lgr zerolog.Logger) error {
	migrator, err := appMigrations.NewMigrator(cfg.GetPostgresConnectionString())
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize migrator")
		return err
	}
	defer func() {
		if err := migrator.Close(); err != nil {
			lgr.Warn().Err(err).Msg("Failed to close migrator")
		}
	}()

	if up {
		lgr.Info().Msg("Running database migrations...")
		return migrator.Up()
	}
	lgr.Info().Msg("Rolling back the last database migration...")
	return migrator.Down()
}

// SetupDatabase establishes the database connection, runs migrations when
// auto_migrate is set and seeds the admin account.
func SetupDatabase(cfg *config.Config, lgr zerolog.Logger) (*pgxpool.Pool, error) {
	if cfg.Database.AutoMigrate {
		if err := RunMigrations(cfg, true, lgr); err != nil {
			lgr.Error().Err(err).Msg("Database migration error")
			return nil, fmt.Errorf("database migrations failed: %w", err)
		}
	}

	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	dbPool := database.Pool
	lgr.Info().Msg("Database connection successfully established.")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err = seed.CreateDefaultAdmin(ctx, appRepos.NewUserRepository(dbPool), seed.AdminAccount{
		Email:     cfg.Admin.Email,
		Password:  cfg.Admin.Password,
		FirstName: cfg.Admin.FirstName,
		LastName:  cfg.Admin.LastName,
	}, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to create default admin, proceeding anyway...")
	}

	return dbPool, nil
}

// SetupRedis connects to the refresh token store.
func SetupRedis(cfg *config.Config, lgr zerolog.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		lgr.Error().Err(err).Str("addr", cfg.Redis.Addr).Msg("Failed to connect to redis")
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	lgr.Info().Str("addr", cfg.Redis.Addr).Msg("Redis connection established.")
	return client, nil
}

// SetupFileStorage builds the configured blob store backend.
func SetupFileStorage(cfg *config.Config, lgr zerolog.Logger) (filestorage.BlobStore, error) {
	if strings.ToLower(cfg.Storage.Backend) != "minio" {
		local, err := filestorage.NewLocalStorage(cfg.Server.StoragePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		lgr.Info().Str("path", local.BasePath()).Msg("Using local file storage")
		return local, nil
	}

	store, err := filestorage.NewMinioStorage(filestorage.MinioConfig{
		Endpoint:      cfg.Storage.Minio.Endpoint,
		AccessKey:     cfg.Storage.Minio.AccessKey,
		SecretKey:     cfg.Storage.Minio.SecretKey,
		Bucket:        cfg.Storage.Minio.Bucket,
		UseSSL:        cfg.Storage.Minio.UseSSL,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize minio storage: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureBucket(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure minio bucket: %w", err)
	}
	lgr.Info().Str("bucket", cfg.Storage.Minio.Bucket).Msg("Using minio file storage")
	return store, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(cfg *config.Config, dbPool *pgxpool.Pool, redisClient *redis.Client, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}

	deps.Repos = appRepos.NewRepositories(dbPool, redisClient)

	var err error
	deps.FileStorage, err = SetupFileStorage(cfg, lgr)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, err
	}

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.ParseDuration(cfg.JWT.AccessTokenExpiration, time.Hour),
		RefreshTokenExp: helpers.ParseDuration(cfg.JWT.RefreshTokenExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})
	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService)

	mailer := email.NewSMTPMailer(email.SMTPConfig{
		Host:      cfg.SMTP.Host,
		Port:      cfg.SMTP.Port,
		Username:  cfg.SMTP.Username,
		Password:  cfg.SMTP.Password,
		FromName:  cfg.SMTP.FromName,
		FromEmail: cfg.SMTP.FromEmail,
		UseTLS:    cfg.SMTP.UseTLS,
	}, logger.WithComponent("mailer"))

	repos := deps.Repos
	authService := appServices.NewAuthService(
		repos.UserRepository,
		repos.CompanyRepository,
		repos.TokenRepository,
		deps.JWTService,
		mailer,
		google.NewUserinfoVerifier(cfg.Google.Endpoint),
		appServices.AuthConfig{
			OTPTTL:             cfg.OTP.TTL,
			OTPDigits:          cfg.OTP.Digits,
			RequireVerifiedOTP: cfg.Auth.RequireVerifiedOTP,
		},
		logger.WithComponent("auth"),
	)
	userService := appServices.NewUserService(repos.UserRepository, repos.TokenRepository, deps.FileStorage, lgr)
	companyService := appServices.NewCompanyService(repos.CompanyRepository, deps.FileStorage, lgr)
	jobPostService := appServices.NewJobPostService(repos.JobPostRepository, lgr)
	applicationService := appServices.NewJobApplicationService(
		repos.JobApplicationRepository,
		repos.JobPostRepository,
		repos.StudentRepository,
		cfg.Applications.AllowDuplicate,
		lgr,
	)
	studentService := appServices.NewStudentService(repos.StudentRepository, repos.UserRepository, deps.FileStorage, lgr)
	adminService := appServices.NewAdminService(
		repos.UserRepository,
		repos.CompanyRepository,
		repos.JobPostRepository,
		repos.StudentRepository,
		logger.WithComponent("admin"),
	)

	deps.Controllers = appRoutes.Controllers{
		Auth:           appControllers.NewAuthController(authService, lgr),
		User:           appControllers.NewUserController(userService, lgr),
		Company:        appControllers.NewCompanyController(companyService, lgr),
		JobPost:        appControllers.NewJobPostController(jobPostService, lgr),
		JobApplication: appControllers.NewJobApplicationController(applicationService, lgr),
		Student:        appControllers.NewStudentController(studentService, lgr),
		Admin:          appControllers.NewAdminController(adminService, lgr),
		Health: appControllers.NewHealthController(map[string]appControllers.HealthCheck{
			"database": dbPool.Ping,
			"redis": func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			},
		}),
	}

	return deps, nil
}

// SetupRouter configures the Gin engine with middleware and routes.
func SetupRouter(cfg *config.Config, deps *Dependencies, lgr zerolog.Logger) (*gin.Engine, error) {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
		lgr.Info().Msg("Setting Gin mode to release")
	} else {
		gin.SetMode(gin.DebugMode)
		lgr.Info().Msg("Setting Gin mode to debug")
	}

	if err := appMiddleware.RegisterValidation(); err != nil {
		return nil, fmt.Errorf("failed to configure validation: %w", err)
	}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		appMiddleware.RequestLogger(logger.WithComponent("http")),
		appMiddleware.CORS(cfg.AllowedOriginList()),
	)

	if local, ok := deps.FileStorage.(*filestorage.LocalStorage); ok {
		router.Static(filestorage.PublicPrefix, local.BasePath())
		lgr.Info().Str("path", local.BasePath()).Msg("Static file serving configured for uploads directory")
	}

	appRoutes.SetupRouter(router, deps.Controllers, deps.AuthMiddleware)
	return router, nil
}
