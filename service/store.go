package service

import (
	"context"
	"fmt"
	"os"

	"inkwell/app/docstore"
	"inkwell/app/docstore/badgerstore"
	"inkwell/app/docstore/memstore"
	"inkwell/app/docstore/pgstore"
	"inkwell/app/docstore/sqlitestore"
	"inkwell/config"
)

// openBackend opens the backend selected by cfg.Driver.
func openBackend(ctx context.Context, cfg config.StoreConfig) (docstore.Backend, error) {
	switch cfg.Driver {
	case config.DriverBadger:
		if err := os.MkdirAll(cfg.Path, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		return badgerstore.Open(cfg.Path)
	case config.DriverSQLite:
		return sqlitestore.Open(cfg.Path)
	case config.DriverPostgres:
		return pgstore.Open(ctx, cfg.DSN, pgstore.Options{MaxConns: cfg.MaxConns})
	case config.DriverMemory:
		return memstore.New(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// openStore opens the configured document store.
func openStore(ctx context.Context, cfg config.StoreConfig) (*docstore.DB, error) {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return docstore.New(backend), nil
}

// storeExists reports whether a file-backed store is already on disk.
// Server-backed and in-memory stores always exist.
func storeExists(cfg config.StoreConfig) bool {
	switch cfg.Driver {
	case config.DriverBadger, config.DriverSQLite:
		_, err := os.Stat(cfg.Path)
		return err == nil
	default:
		return true
	}
}
