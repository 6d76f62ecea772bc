// Package client assembles the registry, ranking engine and fetcher into the
// single object an embedding application owns.
package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/DeBrosOfficial/smart-gateway/pkg/config"
	"github.com/DeBrosOfficial/smart-gateway/pkg/decoder"
	"github.com/DeBrosOfficial/smart-gateway/pkg/fetcher"
	"github.com/DeBrosOfficial/smart-gateway/pkg/kvstore"
	"github.com/DeBrosOfficial/smart-gateway/pkg/logging"
	"github.com/DeBrosOfficial/smart-gateway/pkg/metrics"
	"github.com/DeBrosOfficial/smart-gateway/pkg/prober"
	"github.com/DeBrosOfficial/smart-gateway/pkg/ranking"
	"github.com/DeBrosOfficial/smart-gateway/pkg/registry"
	"github.com/DeBrosOfficial/smart-gateway/pkg/transport"
	"go.uber.org/zap"
)

// Client implements the SmartGateway interface
type Client struct {
	config *config.Config
	logger *zap.Logger

	// Components
	settings *config.LiveSettings
	store    kvstore.Store
	registry *registry.Registry
	engine   *ranking.Engine
	fetcher  *fetcher.Fetcher
	metrics  *metrics.Metrics

	rankMode  ranking.Mode
	ownsStore bool

	// State
	closed    bool
	startTime time.Time
	mu        sync.RWMutex
}

var _ SmartGateway = (*Client)(nil)

// NewClient creates a new gateway picker client
func NewClient(ctx context.Context, cfg *ClientConfig) (*Client, error) {
	if err := ValidateClientConfig(cfg); err != nil {
		return nil, err
	}
	fileCfg := cfg.Config
	if fileCfg == nil {
		fileCfg = config.DefaultConfig()
	}

	mode, err := ranking.ParseMode(fileCfg.Ranking.Mode)
	if err != nil {
		return nil, NewClientError("init", "invalid ranking mode", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger, err = newClientLogger(fileCfg.Logging, cfg.QuietMode)
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	m, err := metrics.New(cfg.Registerer)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	store := cfg.Store
	ownsStore := false
	if store == nil {
		store, err = kvstore.Open(ctx, fileCfg.Storage, componentLogger(logger, logging.ComponentStore))
		if err != nil {
			return nil, NewClientError("init", "failed to open store", err)
		}
		ownsStore = true
	}

	t := cfg.Transport
	if t == nil {
		t = transport.NewHTTPTransport(transport.Config{UserAgent: fileCfg.Fetch.UserAgent}, logger)
	}

	settings := fileCfg.LiveSettings()
	reg := registry.New(registry.Config{
		Defaults:        fileCfg.Gateways.Defaults,
		MaxUserGateways: fileCfg.Gateways.MaxUserGateways,
		StoragePrefix:   fileCfg.Gateways.StoragePrefix,
	}, store, settings, m, componentLogger(logger, logging.ComponentRegistry))

	engine := ranking.New(ranking.Config{
		CID:           fileCfg.Ranking.CID,
		RetryDelay:    fileCfg.Ranking.RetryDelay,
		StoragePrefix: fileCfg.Gateways.StoragePrefix,
	}, reg, prober.New(t, m, componentLogger(logger, logging.ComponentProber)), store, settings, m,
		componentLogger(logger, logging.ComponentRanker))

	f, err := fetcher.New(fetcher.Config{CacheSize: fileCfg.Fetch.CacheSize}, engine, reg, t, nil, m,
		componentLogger(logger, logging.ComponentFetcher))
	if err != nil {
		if ownsStore {
			_ = store.Close()
		}
		return nil, NewClientError("init", "failed to create fetcher", err)
	}

	c := &Client{
		config:    fileCfg,
		logger:    logger,
		settings:  settings,
		store:     store,
		registry:  reg,
		engine:    engine,
		fetcher:   f,
		metrics:   m,
		rankMode:  mode,
		ownsStore: ownsStore,
		startTime: time.Now(),
	}

	c.Reload(ctx)
	logger.Info("Smart gateway client initialized",
		zap.Strings("defaults", reg.DefaultGateways()),
		zap.String("storage", fileCfg.Storage.Backend),
		zap.Bool("persist", settings.Settings().PersistStorage))

	return c, nil
}

func componentLogger(logger *zap.Logger, component logging.Component) *zap.Logger {
	return logger.With(zap.String("component", string(component)))
}

// Configure merges patch into the live settings.
func (c *Client) Configure(patch config.SettingsPatch) config.Settings {
	s := c.settings.Configure(patch)
	c.logger.Debug("Settings updated",
		zap.Bool("stop_on_first_success", s.StopOnFirstSuccess),
		zap.Bool("persist_storage", s.PersistStorage),
		zap.Duration("timeout", s.Timeout))
	return s
}

// Settings returns a snapshot of the live settings.
func (c *Client) Settings() config.Settings {
	return c.settings.Settings()
}

func (c *Client) SetDefaultGateways(urls []string) {
	c.registry.SetDefaultGateways(urls)
}

func (c *Client) DefaultGateways() []string {
	return c.registry.DefaultGateways()
}

// SetUserGateways adds gateways to the persisted user list. It fails with a
// capacity error, leaving the list untouched, when the cap would be exceeded.
func (c *Client) SetUserGateways(ctx context.Context, urls []string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	return c.registry.SetUserGateways(ctx, urls)
}

func (c *Client) RemoveUserGateways(ctx context.Context, urls []string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	return c.registry.RemoveUserGateways(ctx, urls)
}

func (c *Client) UserGateways(ctx context.Context) []string {
	return c.registry.UserGateways(ctx)
}

func (c *Client) AllGateways() []string {
	return c.registry.AllGateways()
}

// DefaultRankOptions returns rank options seeded from the ranking section.
func (c *Client) DefaultRankOptions() ranking.Options {
	return ranking.Options{
		CID:        c.config.Ranking.CID,
		RetryCount: c.config.Ranking.RetryCount,
		RetryDelay: c.config.Ranking.RetryDelay,
		Mode:       c.rankMode,
	}
}

// CheckGateways runs a ranking round.
func (c *Client) CheckGateways(ctx context.Context, opts ranking.Options) (ranking.RankedList, error) {
	if err := c.checkOpen(); err != nil {
		return nil, err
	}
	return c.engine.Rank(ctx, opts)
}

func (c *Client) SortedGateways() ranking.RankedList {
	return c.engine.Sorted()
}

// Results returns the raw snapshot of the latest round, unreachable gateways included.
func (c *Client) Results() []ranking.ProbeResult {
	return c.engine.Results()
}

func (c *Client) PickedGateway(ctx context.Context) string {
	return c.engine.Picked(ctx)
}

func (c *Client) SetPickedGateway(ctx context.Context, url string) error {
	if err := c.checkOpen(); err != nil {
		return err
	}
	return c.engine.SetPicked(ctx, url)
}

func (c *Client) FetchWithFallback(ctx context.Context, cid string, format decoder.Format) (any, bool) {
	if c.checkOpen() != nil {
		return nil, false
	}
	return c.fetcher.FetchWithFallback(ctx, cid, format)
}

func (c *Client) FetchFromPicked(ctx context.Context, cid string, format decoder.Format) (any, bool) {
	if c.checkOpen() != nil {
		return nil, false
	}
	return c.fetcher.FetchFromPicked(ctx, cid, format)
}

// Reload refreshes the user list and picked gateway from the store.
func (c *Client) Reload(ctx context.Context) {
	c.registry.Reload(ctx)
	c.engine.ReloadPicked(ctx)
}

// Health reports the store and ranking state.
func (c *Client) Health(ctx context.Context) *HealthStatus {
	start := time.Now()
	status := &HealthStatus{
		Status: "healthy",
		Checks: make(map[string]string),
	}

	if err := c.checkOpen(); err != nil {
		status.Status = "unhealthy"
		status.Checks["client"] = err.Error()
	} else if _, _, err := c.store.Get(ctx, c.engine.PickedKey()); err != nil {
		status.Status = "degraded"
		status.Checks["store"] = err.Error()
	} else {
		status.Checks["store"] = "ok"
	}

	status.Checks["gateways"] = fmt.Sprintf("%d known", len(c.registry.AllGateways()))
	if sorted := c.engine.Sorted(); len(sorted) > 0 {
		status.Checks["ranking"] = fmt.Sprintf("%d available", len(sorted))
	} else {
		status.Checks["ranking"] = "no ranked gateways"
	}
	if picked := c.engine.Picked(ctx); picked != "" {
		status.Checks["picked"] = picked
	}
	status.Checks["uptime"] = time.Since(c.startTime).Round(time.Second).String()

	status.LastUpdated = time.Now()
	status.ResponseTime = time.Since(start)
	return status
}

// Close releases the store if the client opened it. Further mutating calls fail with ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true

	if c.ownsStore {
		if err := c.store.Close(); err != nil {
			return NewClientError("close", "failed to close store", err)
		}
	}
	c.logger.Info("Smart gateway client closed")
	return nil
}

func (c *Client) checkOpen() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return ErrClosed
	}
	return nil
}
