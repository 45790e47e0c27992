// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	authadapters "workzone_backend/internal/feature/auth/adapters"
	authhandler "workzone_backend/internal/feature/auth/transport/handler"
	authusecase "workzone_backend/internal/feature/auth/usecase"
	jobsadapters "workzone_backend/internal/feature/jobs/adapters"
	jobshandler "workzone_backend/internal/feature/jobs/transport/handler"
	jobsusecase "workzone_backend/internal/feature/jobs/usecase"
	"workzone_backend/internal/platform/cache"
	"workzone_backend/internal/platform/config"
	"workzone_backend/internal/platform/google"
	healthhandler "workzone_backend/internal/platform/http/handler"
	jwtmw "workzone_backend/internal/platform/jwt"
	infraredis "workzone_backend/internal/platform/redis"
	"workzone_backend/internal/shared/ratelimiter"
)

// App holds the wired components the router needs.
type App struct {
	Auth   *authusecase.AuthUsecase
	AuthH  *authhandler.AuthHandler
	JobsH  *jobshandler.JobHandler
	Health *healthhandler.HealthHandler
}

// NewRedis connects to Redis when it is configured. It returns nil when Redis is
// not configured or unreachable, and the app then runs without a shared cache.
func NewRedis(ctx context.Context, cfg config.Config) *redis.Client {
	addr := cfg.RedisAddr()
	if addr == "" {
		slog.Info("REDIS_HOST is not set. Running without cache.")
		return nil
	}
	rdb, err := infraredis.NewRedisClient(ctx, addr, cfg.RedisPassword)
	if err != nil {
		slog.Warn("Redis unavailable. Running without cache.", "error", err)
		return nil
	}
	return rdb
}

// NewLoginLimiter returns a Redis-backed limiter shared by all instances,
// or a per-process one when Redis is unavailable.
func NewLoginLimiter(rdb *redis.Client, cfg config.Config) ratelimiter.Limiter {
	if rdb != nil {
		return ratelimiter.NewRedisLimiter(rdb, cfg.LoginMaxAttempts, cfg.LoginWindow, "ratelimit")
	}
	return ratelimiter.NewMemoryLimiter(cfg.LoginMaxAttempts, cfg.LoginWindow)
}

// NewFederatedVerifier returns nil when GOOGLE_CLIENT_ID is not set.
// The interface is returned as an untyped nil so the usecase sees "not configured".
func NewFederatedVerifier(cfg config.Config) (authusecase.FederatedVerifier, error) {
	if cfg.GoogleClientID == "" {
		return nil, nil
	}
	v, err := google.NewVerifier(cfg.GoogleClientID)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// NewJobRepository wraps the GORM repository with the Redis cache when available.
func NewJobRepository(db *gorm.DB, rdb *redis.Client, cfg config.Config) jobsusecase.JobRepository {
	repo := jobsadapters.NewJobGorm(db, cfg.StoreTimeout)
	if rdb == nil {
		return repo
	}
	return cache.NewCachingJobRepository(rdb, cfg.JobCacheTTL, repo, "jobs")
}

// NewApp wires repositories, usecases and handlers. rdb may be nil.
func NewApp(cfg config.Config, db *gorm.DB, rdb *redis.Client) (*App, error) {
	federated, err := NewFederatedVerifier(cfg)
	if err != nil {
		return nil, err
	}

	store := authusecase.NewCredentialStore(authadapters.NewIdentityGorm(db, cfg.StoreTimeout))
	tokens := jwtmw.NewGenerator(cfg.JWTSecret, cfg.JWTTTL, cfg.JWTIssuer)
	authUC := authusecase.NewAuthUsecase(store, tokens, federated, NewLoginLimiter(rdb, cfg))
	jobsUC := jobsusecase.NewJobsUsecase(NewJobRepository(db, rdb, cfg))

	exposeDetail := !cfg.IsProduction()
	return &App{
		Auth:   authUC,
		AuthH:  authhandler.NewAuthHandler(authUC, exposeDetail),
		JobsH:  jobshandler.NewJobHandler(jobsUC, exposeDetail),
		Health: healthhandler.NewHealthHandler(healthChecks(db, rdb)),
	}, nil
}

func healthChecks(db *gorm.DB, rdb *redis.Client) map[string]healthhandler.Check {
	checks := map[string]healthhandler.Check{
		"database": func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}
	}
	return checks
}

// Models lists the GORM models that db.Migrate auto-migrates on SQLite.
func Models() []any {
	return []any{&authadapters.IdentityModel{}, &jobsadapters.JobModel{}}
}
