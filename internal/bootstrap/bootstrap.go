package bootstrap

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	appAuth "github.com/yigit/admission/internal/app/auth"
	appControllers "github.com/yigit/admission/internal/app/controllers"
	"github.com/yigit/admission/internal/app/lifecycle"
	appMigrations "github.com/yigit/admission/internal/app/migrations"
	"github.com/yigit/admission/internal/app/notifications"
	appRepos "github.com/yigit/admission/internal/app/repositories"
	appRoutes "github.com/yigit/admission/internal/app/routes"
	appServices "github.com/yigit/admission/internal/app/services"
	"github.com/yigit/admission/internal/config"
	"github.com/yigit/admission/internal/db"
	"github.com/yigit/admission/internal/jobs"
	appMiddleware "github.com/yigit/admission/internal/middleware"
	pkgAuth "github.com/yigit/admission/internal/pkg/auth"
	"github.com/yigit/admission/internal/pkg/email"
	"github.com/yigit/admission/internal/pkg/filestorage"
	"github.com/yigit/admission/internal/pkg/guard"
	"github.com/yigit/admission/internal/pkg/helpers"
	"github.com/yigit/admission/internal/pkg/logger"
	"github.com/yigit/admission/internal/seed"
)

// Dependencies holds all the application dependencies
type Dependencies struct {
	Repos        *appRepos.Repositories
	JWTService   *pkgAuth.JWTService
	Hasher       *pkgAuth.PasswordHasher
	AuthzService *appAuth.AuthorizationService
	FileStorage  *filestorage.LocalStorage
	Guard        *guard.Guard
	Lifecycle    *lifecycle.Manager
	Notifier     *notifications.Dispatcher

	AuthService     *appServices.AuthService
	StudentService  appServices.StudentService
	DocumentService appServices.DocumentService
	AdminService    appServices.AdminService
	CourseService   appServices.CourseService

	Controllers    appRoutes.Controllers
	AuthMiddleware *appMiddleware.AuthMiddleware
	RateLimiter    *appMiddleware.IPRateLimiter
	Scheduler      *jobs.Scheduler
	// RedisClient is nil unless the guard store is redis
	RedisClient *redis.Client

	Logger zerolog.Logger
}

// LoadConfigAndSetupLogger loads configuration and initializes the logger.
func LoadConfigAndSetupLogger() (*config.Config, zerolog.Logger, error) {
	configPath := filepath.Join("configs", "config.yaml")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to load configuration")
		return nil, zerolog.Logger{}, err
	}

	logLevel := logger.LogLevel(strings.ToLower(cfg.Logging.Level))
	prettyLog := strings.ToLower(cfg.Logging.Format) == "text"

	logger.Configure(logger.Config{
		Level:   logLevel,
		Pretty:  prettyLog,
		Service: "admission-api",
	})

	lgr := logger.Get()
	lgr.Info().Str("logLevel", string(logLevel)).Str("logFormat", cfg.Logging.Format).Msg("Logger configured")
	return cfg, lgr, nil
}

// SetupDatabase establishes the database connection, runs migrations and seeds default data.
func SetupDatabase(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (*db.PostgresDB, error) {
	lgr.Info().Msg("Establishing database connection...")
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to connect to database")
		return nil, err
	}
	lgr.Info().Msg("Database connection successfully established.")

	lgr.Info().Str("path", cfg.Database.MigrationsPath).Msg("Running database migrations...")
	sqlDB := database.SQLDB()
	applied, err := appMigrations.NewMigrator(sqlDB, lgr).MigrateFromDirectory(ctx, cfg.Database.MigrationsPath)
	_ = sqlDB.Close()
	if err != nil {
		lgr.Error().Err(err).Msg("Database migration error")
		database.Close()
		return nil, fmt.Errorf("database migrations failed: %w", err)
	}
	lgr.Info().Int("applied", applied).Msg("Database migrations successfully applied.")

	err = seed.CreateDefaultData(ctx,
		appRepos.NewUserRepository(database.Pool),
		appRepos.NewCourseRepository(database.Pool),
		pkgAuth.NewPasswordHasher(pkgAuth.BcryptCost),
		seed.AdminAccount{
			Username: cfg.Admin.Username,
			Email:    cfg.Admin.Email,
			Password: cfg.Admin.Password,
		},
		lgr,
	)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to create default data, proceeding anyway...")
	}

	return database, nil
}

// newGuardStore returns the configured failure store and, for redis, its client
func newGuardStore(ctx context.Context, cfg *config.Config, lgr zerolog.Logger) (guard.Store, *guard.MemoryStore, *redis.Client, error) {
	if cfg.Security.GuardStore != config.GuardStoreRedis {
		mem := guard.NewMemoryStore(time.Now)
		return mem, mem, nil, nil
	}

	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	lgr.Info().Str("addr", opts.Addr).Msg("Login guard uses redis")
	return guard.NewRedisStore(client, cfg.Redis.KeyPrefix), nil, client, nil
}

// BuildDependencies initializes application repositories, services, and controllers.
func BuildDependencies(ctx context.Context, cfg *config.Config, database *db.PostgresDB, lgr zerolog.Logger) (*Dependencies, error) {
	deps := &Dependencies{Logger: lgr}
	deps.Repos = appRepos.NewRepositories(database.Pool)

	var err error
	deps.FileStorage, err = filestorage.NewLocalStorage(cfg.Server.StoragePath, cfg.Server.MaxUploadBytes)
	if err != nil {
		lgr.Error().Err(err).Msg("Failed to initialize file storage")
		return nil, fmt.Errorf("failed to initialize file storage: %w", err)
	}

	store, memStore, redisClient, err := newGuardStore(ctx, cfg, lgr)
	if err != nil {
		return nil, err
	}
	deps.RedisClient = redisClient
	deps.Guard = guard.New(store, guard.Policy{
		MaxAttempts: cfg.Security.MaxLoginAttempts,
		Window:      helpers.DurationOr(cfg.Security.LoginWindow, guard.DefaultPolicy.Window),
		Lockout:     helpers.DurationOr(cfg.Security.LockoutDuration, guard.DefaultPolicy.Lockout),
	}, lgr)

	if !cfg.SMTPConfigured() {
		lgr.Warn().Msg("SMTP is not configured, notifications will only be logged")
	}
	sender := email.NewSMTPSender(email.SMTPConfig{
		Host:          cfg.SMTP.Host,
		Port:          cfg.SMTP.Port,
		Username:      cfg.SMTP.Username,
		Password:      cfg.SMTP.Password,
		FromName:      cfg.SMTP.FromName,
		FromEmail:     cfg.SMTP.FromEmail,
		SkipTLSVerify: cfg.SMTP.SkipTLSVerify,
	}, lgr)
	deps.Notifier = notifications.NewDispatcher(sender, deps.Repos.NotificationRepository, notifications.Config{
		AppName:   cfg.SMTP.FromName,
		PortalURL: cfg.Server.PortalURL,
	}, lgr)

	deps.Lifecycle = lifecycle.NewManager(deps.Repos.StudentRepository, deps.Repos.DocumentRepository, deps.Notifier, lgr)
	deps.AuthzService = appAuth.NewAuthorizationService(deps.Repos.StudentRepository, deps.Repos.DocumentRepository)

	deps.JWTService = pkgAuth.NewJWTService(pkgAuth.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenExp:  helpers.DurationOr(cfg.JWT.AccessTokenExpiration, 30*time.Minute),
		RefreshTokenExp: helpers.DurationOr(cfg.JWT.RefreshTokenExpiration, 24*time.Hour),
		RememberMeExp:   helpers.DurationOr(cfg.JWT.RememberMeExpiration, 720*time.Hour),
		TokenIssuer:     cfg.JWT.Issuer,
	})
	deps.Hasher = pkgAuth.NewPasswordHasher(pkgAuth.BcryptCost)

	deps.AuthService = appServices.NewAuthService(appServices.AuthDependencies{
		Users:    deps.Repos.UserRepository,
		Students: deps.Repos.StudentRepository,
		Courses:  deps.Repos.CourseRepository,
		Tokens:   deps.Repos.TokenRepository,
		Activity: deps.Repos.ActivityRepository,
		JWT:      deps.JWTService,
		Hasher:   deps.Hasher,
		Guard:    deps.Guard,
		Notifier: deps.Notifier,
	}, lgr)
	deps.StudentService = appServices.NewStudentService(
		deps.Repos.StudentRepository,
		deps.Repos.DocumentRepository,
		deps.Repos.CourseRepository,
		lgr,
	)
	deps.DocumentService = appServices.NewDocumentService(
		deps.Repos.DocumentRepository,
		deps.Repos.StudentRepository,
		deps.FileStorage,
		deps.Lifecycle,
		deps.AuthzService,
		deps.Notifier,
		lgr,
	)
	deps.AdminService = appServices.NewAdminService(appServices.AdminRepositories{
		Users:     deps.Repos.UserRepository,
		Students:  deps.Repos.StudentRepository,
		Documents: deps.Repos.DocumentRepository,
		Courses:   deps.Repos.CourseRepository,
		Tokens:    deps.Repos.TokenRepository,
		Activity:  deps.Repos.ActivityRepository,
	}, deps.FileStorage, deps.Lifecycle, deps.Notifier, lgr)
	deps.CourseService = appServices.NewCourseService(deps.Repos.CourseRepository, lgr)

	deps.AuthMiddleware = appMiddleware.NewAuthMiddleware(deps.JWTService, deps.Repos.UserRepository)
	deps.RateLimiter = appMiddleware.NewIPRateLimiter(cfg.Security.RateLimitRPS, cfg.Security.RateLimitBurst, 10*time.Minute)

	deps.Controllers = appRoutes.Controllers{
		Auth:     appControllers.NewAuthController(deps.AuthService, lgr),
		Student:  appControllers.NewStudentController(deps.StudentService, lgr),
		Document: appControllers.NewDocumentController(deps.DocumentService, lgr),
		Admin:    appControllers.NewAdminController(deps.AdminService, lgr),
		Course:   appControllers.NewCourseController(deps.CourseService, lgr),
	}

	deps.Scheduler, err = buildScheduler(cfg, deps, memStore, lgr)
	if err != nil {
		deps.Close()
		return nil, err
	}

	return deps, nil
}

// buildScheduler registers the maintenance jobs. memStore is nil when redis expires guard keys itself.
func buildScheduler(cfg *config.Config, deps *Dependencies, memStore *guard.MemoryStore, lgr zerolog.Logger) (*jobs.Scheduler, error) {
	scheduler := jobs.NewScheduler(lgr, time.Minute)

	list := []jobs.Job{
		jobs.LimiterCleanup(cfg.Security.SweepSchedule, deps.RateLimiter),
		jobs.TokenCleanup(cfg.Security.TokenCleanupSchedule, deps.Repos.TokenRepository),
	}
	if memStore != nil {
		list = append(list, jobs.GuardSweep(cfg.Security.SweepSchedule, memStore))
	}

	for _, job := range list {
		if err := scheduler.Add(job); err != nil {
			return nil, err
		}
	}
	return scheduler, nil
}

// Close releases the resources owned by the dependencies
func (d *Dependencies) Close() {
	if d.RedisClient != nil {
		if err := d.RedisClient.Close(); err != nil {
			d.Logger.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
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

	if err := appMiddleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	router := gin.New()
	router.Use(gin.Recovery(), appMiddleware.RequestLogger(lgr), appMiddleware.Metrics())
	// multipart parts above this size spill to temp files
	router.MaxMultipartMemory = cfg.Server.MaxUploadBytes

	appRoutes.SetupRouter(router,
		deps.Controllers,
		deps.AuthMiddleware,
		deps.RateLimiter,
		deps.Repos.ActivityRepository,
		lgr,
	)

	return router, nil
}
