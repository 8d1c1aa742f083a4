package main

import (
	"context"
	"fmt"
	"log/slog"

	"agedist/internal/platform/config"
	"agedist/internal/platform/database"
	"agedist/internal/platform/health"
	"agedist/internal/platform/redis"
	"agedist/internal/visits"
	"agedist/internal/visits/store"
)

// visitBackend is a visit store plus everything that must be closed with it.
type visitBackend struct {
	store   visits.Store
	health  health.CheckFunc
	redis   *redis.Client
	closers []func() error
}

func (b *visitBackend) Close() {
	for _, c := range b.closers {
		_ = c()
	}
}

// openVisitStore builds the visit store selected by cfg.Visits.Backend.
func openVisitStore(ctx context.Context, cfg config.Server, log *slog.Logger) (*visitBackend, error) {
	switch cfg.Visits.Backend {
	case config.BackendRedis:
		client, err := redis.New(cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		if client == nil {
			return nil, fmt.Errorf("visits backend %q requires REDIS_URL", cfg.Visits.Backend)
		}
		st := store.NewRedisStore(client.Client)
		return &visitBackend{
			store:   st,
			health:  client.Health,
			redis:   client,
			closers: []func() error{client.Close},
		}, nil

	case config.BackendPostgres:
		pool, err := database.New(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if pool == nil {
			return nil, fmt.Errorf("visits backend %q requires DATABASE_URL", cfg.Visits.Backend)
		}
		return sqlBackend(ctx, pool, store.NewPostgresStore(pool.DB()))

	case config.BackendSQLite:
		pool, err := database.OpenSQLite(cfg.SQLite)
		if err != nil {
			return nil, err
		}
		return sqlBackend(ctx, pool, store.NewSQLiteStore(pool.DB()))

	default:
		log.Info("visit counter kept in memory; it resets on restart")
		st := store.NewInMemoryStore()
		return &visitBackend{store: st, health: st.Health}, nil
	}
}

func sqlBackend(ctx context.Context, pool *database.Pool, st *store.SQLStore) (*visitBackend, error) {
	if err := st.Migrate(ctx); err != nil {
		_ = pool.Close()
		return nil, err
	}
	return &visitBackend{
		store:   st,
		health:  pool.Health,
		closers: []func() error{pool.Close},
	}, nil
}
