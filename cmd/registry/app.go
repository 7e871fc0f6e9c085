package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/campus-hub/course-registry/config"
	"github.com/campus-hub/course-registry/internal/application/auth"
	"github.com/campus-hub/course-registry/internal/application/directory"
	"github.com/campus-hub/course-registry/internal/domain/discipline"
	"github.com/campus-hub/course-registry/internal/domain/shared"
	"github.com/campus-hub/course-registry/internal/domain/user"
	"github.com/campus-hub/course-registry/internal/infrastructure/persistence/memory"
	"github.com/campus-hub/course-registry/internal/infrastructure/persistence/mongo"
	"github.com/campus-hub/course-registry/internal/infrastructure/persistence/postgres"
	"github.com/campus-hub/course-registry/internal/infrastructure/persistence/redis"
	httpserver "github.com/campus-hub/course-registry/internal/interface/http"
	"github.com/campus-hub/course-registry/internal/interface/http/handlers"
	"github.com/campus-hub/course-registry/pkg/circuitbreaker"
	"github.com/campus-hub/course-registry/pkg/logger"
	"github.com/campus-hub/course-registry/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// APPLICATION WIRING
// ══════════════════════════════════════════════════════════════════════════════

// app holds everything a command needs once storage is reachable.
type app struct {
	cfg *config.Config
	log *logger.Logger

	disciplines discipline.Repository
	users       user.Repository
	revocations auth.RevocationStore
	limiter     httpserver.RateLimiter
	health      *handlers.CompositeHealthChecker

	pg      *postgres.Connection
	closers []func(context.Context) error
}

func newLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Output = os.Stderr
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	opts.Format = cfg.Observability.LogFormat
	return logger.New(opts).With(
		logger.String("app", cfg.App.Name),
		logger.String("env", string(cfg.App.Environment)),
	)
}

// newApp connects the configured storage and, unless disabled, Redis.
func newApp(ctx context.Context, cfg *config.Config, log *logger.Logger) (*app, error) {
	a := &app{
		cfg:    cfg,
		log:    log,
		health: handlers.NewCompositeHealthChecker(cfg.App.Version),
	}

	if err := a.openStorage(ctx); err != nil {
		a.close(ctx)
		return nil, err
	}
	a.openRedis(ctx)

	return a, nil
}

func (a *app) startupRetrier(target string) *retry.Retrier {
	return retry.StartupRetrier(func(attempt int, err error, delay time.Duration) {
		a.log.Warn("storage not reachable, retrying",
			logger.String("target", target),
			logger.Int("attempt", attempt),
			logger.Duration("delay", delay),
			logger.Err(err),
		)
	})
}

func (a *app) openStorage(ctx context.Context) error {
	switch a.cfg.Storage.Driver {
	case config.DriverPostgres:
		pgCfg := postgres.DefaultConfig(a.cfg.Database.URL)
		pgCfg.MaxConns = a.cfg.Database.MaxConns
		pgCfg.MinConns = a.cfg.Database.MinConns
		pgCfg.MaxConnLifetime = a.cfg.Database.ConnMaxLifetime
		pgCfg.MaxConnIdleTime = a.cfg.Database.ConnMaxIdleTime

		a.log.Info("connecting to PostgreSQL...")
		var conn *postgres.Connection
		err := a.startupRetrier("postgres").Do(ctx, func(ctx context.Context) error {
			var err error
			conn, err = postgres.NewConnection(ctx, pgCfg)
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		a.pg = conn
		a.closers = append(a.closers, func(context.Context) error {
			conn.Close()
			return nil
		})

		a.disciplines = postgres.NewDisciplineRepository(conn)
		a.users = postgres.NewUserRepository(conn)
		a.health.AddCheck("postgres", handlers.NewPingCheck(conn))

	case config.DriverMongo:
		a.log.Info("connecting to MongoDB...")
		var conn *mongo.Connection
		err := a.startupRetrier("mongo").Do(ctx, func(ctx context.Context) error {
			var err error
			conn, err = mongo.NewConnection(ctx, mongo.Config{
				URI:            a.cfg.Mongo.URI,
				Database:       a.cfg.Mongo.Database,
				ConnectTimeout: a.cfg.Mongo.ConnectTimeout,
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("failed to connect to mongo: %w", err)
		}
		a.closers = append(a.closers, conn.Close)

		a.disciplines = mongo.NewDisciplineRepository(conn)
		a.users = mongo.NewUserRepository(conn)
		a.health.AddCheck("mongo", handlers.NewPingCheck(conn))

	case config.DriverMemory:
		a.log.Warn("using in-memory storage, data is lost on exit")
		repo := memory.NewDisciplineRepository()
		a.disciplines = repo
		a.users = memory.NewUserRepository()
		a.health.AddCheck("memory", handlers.NewPingCheck(repo))

	default:
		return fmt.Errorf("unknown storage driver %q", a.cfg.Storage.Driver)
	}

	a.log.Info("storage ready", logger.String("driver", string(a.cfg.Storage.Driver)))
	return nil
}

// openRedis wires the shared token store and rate limiter. Without Redis the
// process keeps both in memory.
func (a *app) openRedis(ctx context.Context) {
	if a.cfg.Redis.Disabled {
		a.revocations = memory.NewRevocationStore()
		return
	}

	rcfg := redis.DefaultConfig()
	rcfg.Addr = a.cfg.Redis.Addr
	rcfg.Password = a.cfg.Redis.Password
	rcfg.DB = a.cfg.Redis.DB
	rcfg.KeyPrefix = a.cfg.Redis.KeyPrefix
	rcfg.PoolSize = a.cfg.Redis.PoolSize
	rcfg.MinIdleConns = a.cfg.Redis.MinIdleConns
	rcfg.DialTimeout = a.cfg.Redis.DialTimeout
	rcfg.ReadTimeout = a.cfg.Redis.ReadTimeout
	rcfg.WriteTimeout = a.cfg.Redis.WriteTimeout

	a.log.Info("connecting to Redis...")
	cache, err := redis.NewCache(ctx, rcfg)
	if err != nil {
		a.log.Warn("failed to connect to Redis, using in-process token store", logger.Err(err))
		a.revocations = memory.NewRevocationStore()
		return
	}
	a.closers = append(a.closers, func(context.Context) error { return cache.Close() })
	cache.UseBreaker(circuitbreaker.RedisBreaker(func(name string, from, to circuitbreaker.State) {
		a.log.Warn("circuit breaker state changed",
			logger.String("breaker", name),
			logger.String("from", from.String()),
			logger.String("to", to.String()),
		)
	}))

	a.revocations = redis.NewTokenStore(cache)
	if a.cfg.HTTP.RateLimitPerMinute > 0 {
		a.limiter = redis.NewRateLimiter(cache, a.cfg.HTTP.RateLimitPerMinute, time.Minute)
	}
	a.health.AddCheck("redis", handlers.NewPingCheck(cache))
	a.log.Info("Redis connection established")
}

func (a *app) gate() (*auth.Gate, error) {
	return auth.NewGate(a.users, a.revocations, auth.Config{
		Secret:     a.cfg.Auth.JWTSecret,
		Issuer:     a.cfg.Auth.Issuer,
		TokenTTL:   a.cfg.Auth.TokenTTL,
		BcryptCost: a.cfg.Auth.BcryptCost,
	}, auth.WithLogger(a.log))
}

func (a *app) directory() *directory.Directory {
	return directory.New(a.disciplines, directory.WithLogger(a.log))
}

// ensureAdmin registers the configured admin account unless its email is
// already taken.
func (a *app) ensureAdmin(ctx context.Context, gate *auth.Gate) error {
	if a.cfg.Auth.AdminEmail == "" {
		return nil
	}

	_, err := gate.Register(ctx, user.RegisterInput{
		Name:         "Administrator",
		Email:        a.cfg.Auth.AdminEmail,
		Password:     a.cfg.Auth.AdminPassword,
		Role:         user.RoleAdmin,
		CPF:          "admin",
		Registration: "admin",
		Course:       "administration",
		Active:       true,
	})
	switch {
	case err == nil:
		a.log.Info("admin account created", logger.Email(a.cfg.Auth.AdminEmail))
		return nil
	case shared.IsConflict(err):
		return nil
	default:
		return fmt.Errorf("failed to create admin account: %w", err)
	}
}

// close releases connections in reverse order of opening.
func (a *app) close(ctx context.Context) {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		a.log.Error("failed to close connections", logger.Err(err))
	}
}
