package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"jobboard/internal/app"
	"jobboard/internal/config"
	"jobboard/internal/database"
	"jobboard/internal/domain/application"
	"jobboard/internal/domain/auth"
	"jobboard/internal/domain/company"
	"jobboard/internal/domain/job"
	"jobboard/internal/domain/user"
	apphttp "jobboard/internal/http"
	"jobboard/internal/http/handlers"
	"jobboard/internal/http/metrics"
	httpmw "jobboard/internal/http/middleware"
	"jobboard/internal/http/response"
	"jobboard/internal/observability"
	"jobboard/internal/ratelimit"
	"jobboard/internal/repository/memory"
	"jobboard/internal/repository/postgres"
	"jobboard/internal/security"
	"jobboard/internal/upload"
)

type repositories struct {
	users        user.Repository
	jobs         job.Repository
	applications application.Repository
	companies    company.Repository
	refresh      auth.RefreshTokenRepository
	resets       auth.ResetTokenRepository
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := observability.NewLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	response.HideInternalErrors(cfg.IsProduction())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		db    *sql.DB
		repos repositories
	)
	if cfg.DatabaseURL != "" {
		db, err = database.NewPostgres(ctx, database.PostgresConfig{
			DSN:             cfg.DatabaseURL,
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxIdle:     cfg.DBConnMaxIdle,
			ConnMaxLifetime: cfg.DBConnMaxLife,
		}, logger)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		repos = repositories{
			users:        postgres.NewUserRepository(db),
			jobs:         postgres.NewJobRepository(db),
			applications: postgres.NewApplicationRepository(db),
			companies:    postgres.NewCompanyRepository(db),
			refresh:      postgres.NewRefreshTokenRepository(db),
			resets:       postgres.NewResetTokenRepository(db),
		}
	} else {
		logger.Warn("DATABASE_URL is empty, using in-memory storage")
		store := memory.NewStore()
		repos = repositories{
			users:        memory.NewUserRepository(store),
			jobs:         memory.NewJobRepository(store),
			applications: memory.NewApplicationRepository(store),
			companies:    memory.NewCompanyRepository(store),
			refresh:      memory.NewRefreshTokenRepository(store),
			resets:       memory.NewResetTokenRepository(store),
		}
	}

	redisClient := connectRedis(ctx, cfg.RedisURL, logger)
	if redisClient != nil {
		defer func() {
			if err := redisClient.Close(); err != nil {
				logger.Error("redis close failed", slog.String("error", err.Error()))
			}
		}()
	}
	var (
		limiter  ratelimit.Limiter
		attempts ratelimit.AttemptCounter
	)
	if redisClient != nil {
		limiter = ratelimit.NewRedisLimiter(redisClient, "jobboard:rl")
		attempts = ratelimit.NewRedisAttemptCounter(redisClient, cfg.LoginMaxAttempts, cfg.LoginWindow, "jobboard")
	} else {
		limiter = ratelimit.NewMemoryLimiter()
		attempts = ratelimit.NewMemoryAttemptCounter(cfg.LoginMaxAttempts, cfg.LoginWindow)
	}

	jwtProvider := security.NewJWTProvider(cfg.JWTSecret)
	storage := upload.NewDiskStorage(cfg.UploadDir)
	limits := upload.Limits{MaxFileSize: cfg.UploadMaxFileSize, MaxFiles: cfg.UploadMaxFiles}
	intake := upload.NewIntake(storage, limits, logger)
	collector := metrics.NewCollector()

	authService := app.NewAuthService(repos.users, repos.refresh, repos.resets, jwtProvider, attempts, app.NewLogNotifier(logger), logger, app.AuthConfig{
		AccessTokenTTL:  cfg.AccessTokenTTL,
		RefreshTokenTTL: cfg.RefreshTokenTTL,
		ResetTokenTTL:   cfg.ResetTokenTTL,
	})
	userService := app.NewUserService(repos.users, repos.jobs, logger)
	jobService := app.NewJobService(repos.jobs, repos.companies, repos.users, logger)
	companyService := app.NewCompanyService(repos.companies)
	applicationService := app.NewApplicationService(repos.applications, repos.jobs, repos.users, logger)

	var pinger handlers.Pinger
	if db != nil {
		pinger = db
	}

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		AuthHandler:        handlers.NewAuthHandler(authService),
		UserHandler:        handlers.NewUserHandler(userService),
		JobHandler:         handlers.NewJobHandler(jobService),
		CompanyHandler:     handlers.NewCompanyHandler(companyService),
		ApplicationHandler: handlers.NewApplicationHandler(applicationService, intake, collector),
		UploadHandler:      handlers.NewUploadHandler(storage),
		SystemHandler:      handlers.NewSystemHandler(collector, pinger),
		AuthMiddleware:     httpmw.NewAuthMiddleware(jwtProvider, repos.users),
		Limiter:            limiter,
		Metrics:            collector,
		Logger:             logger,
		RequestTimeout:     cfg.RequestTimeout,
		CORSOrigins:        cfg.CORSOrigins,
		UploadBodyLimit:    int64(limits.MaxFiles)*limits.MaxFileSize + 1<<20,
	})
	server := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("API started", slog.String("addr", server.Addr), slog.String("env", cfg.Env))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// connectRedis returns nil when no URL is configured or the server does not
// answer; callers fall back to in-process counters.
func connectRedis(ctx context.Context, url string, logger *slog.Logger) *redis.Client {
	if url == "" {
		return nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		logger.Error("redis url parse failed", slog.String("error", err.Error()))
		return nil
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("redis ping failed", slog.String("error", err.Error()))
		_ = client.Close()
		return nil
	}
	logger.Info("redis connected")
	return client
}
