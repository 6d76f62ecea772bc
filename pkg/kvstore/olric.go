package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	olriclib "github.com/olric-data/olric"
	"go.uber.org/zap"
)

// OlricConfig holds configuration for the Olric-backed store.
type OlricConfig struct {
	// Servers is a list of Olric server addresses.
	// If empty, defaults to ["localhost:3320"]
	Servers []string

	// DMap is the distributed map holding the keys.
	// If empty, defaults to "smart-gateway"
	DMap string

	// Timeout bounds each operation.
	// If zero, defaults to 10 seconds
	Timeout time.Duration
}

// OlricStore keeps values in an Olric DMap so several service replicas share
// one user gateway list and picked gateway.
type OlricStore struct {
	client  olriclib.Client
	dm      olriclib.DMap
	timeout time.Duration
	logger  *zap.Logger
}

// NewOlricStore connects to an Olric cluster.
func NewOlricStore(cfg OlricConfig, logger *zap.Logger) (*OlricStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	servers := cfg.Servers
	if len(servers) == 0 {
		servers = []string{"localhost:3320"}
	}
	dmap := cfg.DMap
	if dmap == "" {
		dmap = "smart-gateway"
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	client, err := olriclib.NewClusterClient(servers)
	if err != nil {
		return nil, fmt.Errorf("failed to create Olric cluster client: %w", err)
	}

	dm, err := client.NewDMap(dmap)
	if err != nil {
		_ = client.Close(context.Background())
		return nil, fmt.Errorf("failed to create DMap %s: %w", dmap, err)
	}

	logger.Debug("Olric store ready", zap.Strings("servers", servers), zap.String("dmap", dmap))
	return &OlricStore{client: client, dm: dm, timeout: timeout, logger: logger}, nil
}

func (o *OlricStore) Get(ctx context.Context, key string) (string, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	gr, err := o.dm.Get(ctx, key)
	if err != nil {
		if errors.Is(err, olriclib.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("olric get %s: %w", key, err)
	}

	val, err := gr.String()
	if err != nil {
		return "", false, fmt.Errorf("olric value decode for %s: %w", key, err)
	}
	return val, true, nil
}

func (o *OlricStore) Set(ctx context.Context, key, value string) error {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if err := o.dm.Put(ctx, key, value); err != nil {
		return fmt.Errorf("olric put %s: %w", key, err)
	}
	return nil
}

// Close closes the Olric client connection.
func (o *OlricStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()
	return o.client.Close(ctx)
}
