// Package app assembles the store, cache, recommender and service from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nainai/backend/internal/cache"
	"nainai/backend/internal/config"
	"nainai/backend/internal/domain"
	"nainai/backend/internal/recommendation"
	"nainai/backend/internal/service"
	"nainai/backend/internal/store"
	"nainai/backend/internal/store/memory"
	pgstore "nainai/backend/internal/store/postgres"
	"nainai/backend/internal/store/sqlite"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

const connectTimeout = 10 * time.Second

type App struct {
	Config  *config.Config
	Repo    store.Repository
	Service *service.Service

	storeKind string
	closers   []func() error
}

// Open connects the backends named by cfg. A configured postgres that cannot be
// reached is an error; an unreachable redis falls back to no caching.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	log := zap.L().Named("app")

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	a := &App{Config: cfg}
	switch {
	case cfg.DatabaseURL != "":
		pg, err := pgstore.New(connectCtx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("postgres unavailable and DATABASE_URL is set: %w", err)
		}
		a.OnClose(pg.Close)
		if err := pg.Migrate(connectCtx); err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		a.Repo, a.storeKind = pg, StorePostgres
	case cfg.SQLitePath != "":
		db, err := sqlite.New(connectCtx, cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite %s: %w", cfg.SQLitePath, err)
		}
		a.OnClose(db.Close)
		a.Repo, a.storeKind = db, StoreSQLite
	default:
		a.Repo, a.storeKind = memory.NewSeeded(), StoreMemory
	}
	log.Info("repository ready", zap.String("store", a.storeKind))

	var answers cache.Cache[domain.RecommendationResponse]
	if cfg.RedisAddr != "" {
		client, err := cache.Connect(connectCtx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn("redis unavailable, recommendations are not cached", zap.Error(err))
		} else {
			answers = cache.NewRedis[domain.RecommendationResponse](client, recommendation.CacheKeyPrefix, cfg.RecommendationTTL())
			a.OnClose(client.Close)
			log.Info("recommendation cache ready", zap.String("addr", cfg.RedisAddr))
		}
	}

	recommender := recommendation.NewEngine(answers)
	a.Service = service.New(a.Repo, recommender, service.WithLocation(loc))
	return a, nil
}

// FromRepository wraps an existing repository with an uncached service.
func FromRepository(repo store.Repository, opts ...service.Option) *App {
	return &App{
		Config:    &config.Config{},
		Repo:      repo,
		Service:   service.New(repo, nil, opts...),
		storeKind: StoreMemory,
	}
}

// OnClose registers fn to run on Close. Closers run in reverse order.
func (a *App) OnClose(fn func() error) {
	a.closers = append(a.closers, fn)
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) StoreKind() string {
	return a.storeKind
}
