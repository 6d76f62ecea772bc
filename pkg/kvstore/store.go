// Package kvstore provides the persistent string key-value store the gateway
// registry and ranking engine mirror their state into.
package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/DeBrosOfficial/smart-gateway/pkg/config"
	"go.uber.org/zap"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("kvstore: store closed")

// Store is a string key-value store. Get reports a missing key with ok=false
// and a nil error.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Backend names accepted by Open.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendRqlite = "rqlite"
	BackendOlric  = "olric"
	BackendBadger = "badger"
)

// Open creates the store selected by cfg.Backend.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		store Store
		err   error
	)
	switch cfg.Backend {
	case "", BackendMemory:
		store = NewMemoryStore()
	case BackendSQLite:
		store, err = NewSQLiteStore(ctx, cfg.Path, logger)
	case BackendRqlite:
		store, err = NewRqliteStore(ctx, cfg.RqliteDSN, logger)
	case BackendOlric:
		store, err = NewOlricStore(OlricConfig{Servers: cfg.OlricAddrs, DMap: cfg.OlricDMap}, logger)
	case BackendBadger:
		store, err = NewBadgerStore(BadgerConfig{Dir: cfg.Path}, logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.Backend, err)
	}

	logger.Info("Persistent store opened", zap.String("backend", cfg.Backend))
	return store, nil
}
