package di

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/brightclass/backoffice/internal/app"
	"github.com/brightclass/backoffice/internal/config"
	"github.com/brightclass/backoffice/internal/database"
	"github.com/brightclass/backoffice/internal/health"
	"github.com/brightclass/backoffice/internal/http/handler"
	"github.com/brightclass/backoffice/internal/http/middleware"
	"github.com/brightclass/backoffice/internal/http/router"
	"github.com/brightclass/backoffice/internal/observability"
	"github.com/brightclass/backoffice/internal/repository"
	"github.com/brightclass/backoffice/internal/security"
	"github.com/brightclass/backoffice/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewUserRepository,
	repository.NewMfaSettingsRepository,
	repository.NewMfaLoginNonceRepository,
	repository.NewSchoolRepository,
	repository.NewFinancialReportRepository,
)

var SecuritySet = wire.NewSet(
	security.NewTokenCodec,
	security.NewPasswordHasher,
	provideTOTP,
)

var ServiceSet = wire.NewSet(
	service.NewSystemClock,
	wire.Bind(new(service.Clock), new(*service.SystemClock)),
	service.NewDevNotifier,
	wire.Bind(new(service.Notifier), new(*service.DevNotifier)),
	provideLockoutPolicy,
	provideMfaService,
	service.NewAuthService,
	service.NewSessionVerifier,
	service.NewPermissionEvaluator,
)

var HTTPSet = wire.NewSet(
	handler.NewAuthHandler,
	handler.NewUserHandler,
	handler.NewSchoolHandler,
	handler.NewReportHandler,
	provideGlobalRateLimiter,
	provideAuthRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(app.New)

type GlobalRateLimiterFunc func(http.Handler) http.Handler
type AuthRateLimiterFunc func(http.Handler) http.Handler

type MigrationRunner struct {
	cfg *config.Config
	db  *gorm.DB
}

func NewMigrationRunner(cfg *config.Config, db *gorm.DB) *MigrationRunner {
	return &MigrationRunner{cfg: cfg, db: db}
}

func (m *MigrationRunner) Run() error {
	if err := database.Migrate(m.db); err != nil {
		return err
	}
	report, err := database.Seed(m.db, security.NewPasswordHasher(), m.cfg.BootstrapAdminUsername)
	if err != nil {
		return err
	}
	if report.CreatedAdmin {
		fmt.Printf("bootstrap admin %q created, one-time password: %s\n", report.AdminUsername, report.AdminPassword)
	}
	fmt.Println("migration complete")
	return nil
}

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	return observability.InitLogger(cfg, runtime.LoggerProvider)
}

func provideOpenDB(cfg *config.Config) (*gorm.DB, error) {
	return database.Open(cfg)
}

func provideRuntimeDB(cfg *config.Config, logger *slog.Logger) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	report, err := database.Seed(db, security.NewPasswordHasher(), cfg.BootstrapAdminUsername)
	if err != nil {
		return nil, err
	}
	if report.CreatedAdmin {
		// The one-time password appears in logs exactly once, on first boot.
		logger.Info("bootstrap admin created",
			"username", report.AdminUsername,
			"one_time_password", report.AdminPassword)
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config) redis.UniversalClient {
	if !cfg.RateLimitRedisEnabled {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func provideTOTP(cfg *config.Config) *security.TOTP {
	return security.NewTOTP(cfg.OTPIssuer)
}

func provideLockoutPolicy(
	users repository.UserRepository,
	notifier service.Notifier,
	logger *slog.Logger,
	cfg *config.Config,
) *service.LockoutPolicy {
	return service.NewLockoutPolicy(users, notifier, logger, cfg.LockoutThreshold, cfg.LockoutDuration, cfg.LoginNotifyThreshold)
}

func provideMfaService(
	settings repository.MfaSettingsRepository,
	nonces repository.MfaLoginNonceRepository,
	users repository.UserRepository,
	totp *security.TOTP,
	notifier service.Notifier,
	clock service.Clock,
	logger *slog.Logger,
	cfg *config.Config,
) *service.MfaService {
	return service.NewMfaService(settings, nonces, users, totp, notifier, clock, logger, cfg.OTPNonceTTL)
}

func provideGlobalRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) GlobalRateLimiterFunc {
	if cfg.RateLimitRedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RateLimitRedisPrefix+":api")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.APIRateLimitPerMin,
			time.Minute,
			middleware.FailOpen,
			"api",
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.APIRateLimitPerMin, time.Minute).Middleware()
}

func provideAuthRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) AuthRateLimiterFunc {
	if cfg.RateLimitRedisEnabled && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RateLimitRedisPrefix+":auth")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.AuthRateLimitPerMin,
			time.Minute,
			middleware.FailClosed,
			"auth",
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.AuthRateLimitPerMin, time.Minute).Middleware()
}

func provideRouterDependencies(
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	schoolHandler *handler.SchoolHandler,
	reportHandler *handler.ReportHandler,
	verifier *service.SessionVerifier,
	users repository.UserRepository,
	permissions *service.PermissionEvaluator,
	clock service.Clock,
	globalRateLimiter GlobalRateLimiterFunc,
	authRateLimiter AuthRateLimiterFunc,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:       authHandler,
		UserHandler:       userHandler,
		SchoolHandler:     schoolHandler,
		ReportHandler:     reportHandler,
		SessionVerifier:   verifier,
		Users:             users,
		Permissions:       permissions,
		Clock:             clock,
		CORSOrigins:       cfg.CORSAllowedOrigins,
		AuthRateLimitRPM:  cfg.AuthRateLimitPerMin,
		APIRateLimitRPM:   cfg.APIRateLimitPerMin,
		GlobalRateLimiter: globalRateLimiter,
		AuthRateLimiter:   authRateLimiter,
		Readiness:         readiness,
		EnableOTelHTTP:    cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient) *health.ProbeRunner {
	checkers := make([]health.Checker, 0, 2)
	if c := health.NewDBChecker(db); c != nil {
		checkers = append(checkers, c)
	}
	if cfg.RateLimitRedisEnabled {
		if c := health.NewRedisChecker(redisClient); c != nil {
			checkers = append(checkers, c)
		}
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, cfg.ServerStartGracePeriod, checkers...)
}
