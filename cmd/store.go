package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/baseline"
	"github.com/mwaterman104/habitta-home-insight-platform-sub003/internal/store"
)

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.SQLitePath
		if path == "" {
			path = "habitta.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

func initBaseline() (*baseline.Table, error) {
	if cfg.Baseline.OverridePath == "" {
		return baseline.Default(), nil
	}
	return baseline.Load(cfg.Baseline.OverridePath)
}
