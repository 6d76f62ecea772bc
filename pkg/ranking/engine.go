// Package ranking probes candidate gateways and orders them by latency.
package ranking

import (
	"context"
	stderrors "errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DeBrosOfficial/smart-gateway/pkg/config"
	"github.com/DeBrosOfficial/smart-gateway/pkg/errors"
	"github.com/DeBrosOfficial/smart-gateway/pkg/gatewayurl"
	"github.com/DeBrosOfficial/smart-gateway/pkg/kvstore"
	"github.com/DeBrosOfficial/smart-gateway/pkg/metrics"
	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/ipfs/go-cid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Prober measures one gateway.
type Prober interface {
	Measure(ctx context.Context, gateway, cid string, timeout time.Duration) (time.Duration, bool)
}

// GatewaySource supplies the candidate gateways.
type GatewaySource interface {
	Reload(ctx context.Context)
	AllGateways() []string
	NewlyAdded() []string
}

// SettingsSource supplies the current runtime settings.
type SettingsSource interface {
	Settings() config.Settings
}

// Config holds the defaults applied to Options fields left zero.
type Config struct {
	// CID probed when Options.CID is empty.
	// If empty, defaults to config.DefaultCID
	CID string

	// RetryDelay between attempts when Options.RetryDelay is zero.
	// If zero, defaults to 1 second
	RetryDelay time.Duration

	// StoragePrefix namespaces the picked gateway key.
	// If empty, defaults to "ipfs-smart-gateway:"
	StoragePrefix string
}

var errNoneAvailable = stderrors.New("no gateway available")

// Engine runs ranking rounds and keeps the latest ranked list, raw snapshot
// and picked gateway. Getters are safe to call while a round is running;
// overlapping Rank calls each overwrite the latest state when they finish.
type Engine struct {
	mu           sync.RWMutex
	results      []ProbeResult
	sorted       RankedList
	picked       string
	pickedLoaded bool

	gateways  GatewaySource
	prober    Prober
	store     kvstore.Store
	settings  SettingsSource
	cfg       Config
	pickedKey string
	metrics   *metrics.Metrics
	logger    *zap.Logger

	newRoundID func() string
	now        func() time.Time
}

// New creates an Engine. store may be nil to disable persistence of the
// picked gateway.
func New(cfg Config, gateways GatewaySource, p Prober, store kvstore.Store, settings SettingsSource, m *metrics.Metrics, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CID == "" {
		cfg.CID = config.DefaultCID
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.StoragePrefix == "" {
		cfg.StoragePrefix = config.DefaultStoragePrefix
	}

	return &Engine{
		gateways:   gateways,
		prober:     p,
		store:      store,
		settings:   settings,
		cfg:        cfg,
		pickedKey:  cfg.StoragePrefix + "picked",
		metrics:    m,
		logger:     logger,
		newRoundID: uuid.NewString,
		now:        time.Now,
	}
}

// PickedKey returns the store key holding the picked gateway.
func (e *Engine) PickedKey() string {
	return e.pickedKey
}

func (e *Engine) currentSettings() config.Settings {
	if e.settings == nil {
		return config.DefaultSettings()
	}
	return e.settings.Settings()
}

func (e *Engine) persist() bool {
	return e.store != nil && e.currentSettings().PersistStorage
}

// Rank probes the candidates and returns the available ones ordered by
// latency. When every probe of an attempt fails, the attempt is repeated
// up to RetryCount more times, RetryDelay apart. Total failure yields an
// empty list and a nil error; the picked gateway is then left unchanged.
//
// An invalid CID or negative RetryCount returns a *errors.ValidationError.
// If ctx is cancelled the latest raw snapshot is kept and ctx.Err() returned.
func (e *Engine) Rank(ctx context.Context, opts Options) (RankedList, error) {
	probeCID := opts.CID
	if probeCID == "" {
		probeCID = e.cfg.CID
	}
	if err := ValidateCID(probeCID); err != nil {
		return nil, err
	}
	if opts.RetryCount < 0 {
		return nil, errors.NewValidationError("retry_count", "must be >= 0", opts.RetryCount)
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = e.cfg.RetryDelay
	}

	e.gateways.Reload(ctx)
	e.ReloadPicked(ctx)

	obs := newSerialObserver(opts.Observer)
	obs.start()

	candidates := e.gateways.AllGateways()
	if opts.OnlyNew {
		if newly := e.gateways.NewlyAdded(); len(newly) > 0 {
			candidates = newly
		}
	}

	round := e.newRoundID()
	log := e.logger.With(zap.String("round", round))

	if len(candidates) == 0 {
		log.Info("No gateways to rank")
		e.mu.Lock()
		e.results = []ProbeResult{}
		e.sorted = RankedList{}
		e.mu.Unlock()
		e.metrics.ObserveRound("empty", 0)
		return RankedList{}, nil
	}

	settings := e.currentSettings()
	log.Debug("Ranking round started",
		zap.Int("candidates", len(candidates)),
		zap.String("mode", opts.Mode.String()),
		zap.Int("retry_count", opts.RetryCount))

	var last []ProbeResult
	attempt := 0
	operation := func() ([]ProbeResult, error) {
		attempt++
		last = e.runAttempt(ctx, candidates, probeCID, round, opts.Mode, settings, obs)
		for _, r := range last {
			if r.Available() {
				return last, nil
			}
		}
		return last, errNoneAvailable
	}

	_, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(delay)),
		backoff.WithMaxTries(uint(opts.RetryCount+1)),
		// Attempt count alone bounds the loop, however long the delay.
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(func(err error, d time.Duration) {
			e.metrics.ObserveRetry()
			log.Debug("All gateways unreachable, retrying",
				zap.Int("next_attempt", attempt+1),
				zap.Duration("delay", d))
			obs.retry(attempt+1, d)
		}),
	)

	if err != nil && ctx.Err() != nil {
		e.mu.Lock()
		e.results = append([]ProbeResult(nil), last...)
		e.mu.Unlock()
		e.metrics.ObserveRound("cancelled", 0)
		log.Info("Ranking round cancelled", zap.Int("attempts", attempt))
		return nil, ctx.Err()
	}

	snapshot := last
	if opts.OnlyNew {
		snapshot = mergeResults(e.Results(), last)
	}
	ranked := rankResults(snapshot)

	e.mu.Lock()
	e.results = snapshot
	e.sorted = ranked
	e.mu.Unlock()

	if len(ranked) > 0 {
		if err := e.SetPicked(ctx, ranked[0].URL); err != nil {
			log.Warn("Failed to persist picked gateway", zap.Error(err))
		}
		e.metrics.ObserveRound("ranked", len(ranked))
	} else {
		e.metrics.ObserveRound("empty", 0)
	}

	log.Info("Ranking round finished",
		zap.Int("attempts", attempt),
		zap.Int("available", len(ranked)),
		zap.Int("probed", len(last)))

	return append(RankedList(nil), ranked...), nil
}

func (e *Engine) runAttempt(ctx context.Context, candidates []string, probeCID, round string, mode Mode, settings config.Settings, obs *serialObserver) []ProbeResult {
	probe := func(url string) ProbeResult {
		elapsed, ok := e.prober.Measure(ctx, url, probeCID, settings.Timeout)
		r := ProbeResult{
			URL:       url,
			Status:    StatusUnreachable,
			Round:     round,
			CheckedAt: e.now(),
		}
		if ok {
			r.Status = StatusAvailable
			r.Time = elapsed
		}
		return r
	}

	if mode == Sequential {
		results := make([]ProbeResult, 0, len(candidates))
		for _, url := range candidates {
			if ctx.Err() != nil {
				break
			}
			r := probe(url)
			results = append(results, r)
			obs.report(r)
			if settings.StopOnFirstSuccess && r.Available() {
				break
			}
		}
		return results
	}

	results := make([]ProbeResult, len(candidates))
	var g errgroup.Group
	for i, url := range candidates {
		g.Go(func() error {
			r := probe(url)
			results[i] = r
			obs.report(r)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// rankResults keeps the available results and stable-sorts them by Time,
// so ties keep candidate order.
func rankResults(results []ProbeResult) RankedList {
	ranked := make(RankedList, 0, len(results))
	for _, r := range results {
		if r.Available() {
			ranked = append(ranked, r)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Time < ranked[j].Time
	})
	return ranked
}

// mergeResults replaces entries of prev that were probed again and appends
// the rest of next in order.
func mergeResults(prev, next []ProbeResult) []ProbeResult {
	index := make(map[string]int, len(prev))
	merged := append([]ProbeResult(nil), prev...)
	for i, r := range merged {
		index[r.URL] = i
	}
	for _, r := range next {
		if i, ok := index[r.URL]; ok {
			merged[i] = r
			continue
		}
		index[r.URL] = len(merged)
		merged = append(merged, r)
	}
	return merged
}

// Sorted returns a copy of the latest ranked list.
func (e *Engine) Sorted() RankedList {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append(RankedList(nil), e.sorted...)
}

// Results returns a copy of the latest raw snapshot, unreachable entries included.
func (e *Engine) Results() []ProbeResult {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]ProbeResult(nil), e.results...)
}

// Picked returns the picked gateway, or "" if none. The persisted value is
// loaded on first use.
func (e *Engine) Picked(ctx context.Context) string {
	e.mu.RLock()
	loaded, picked := e.pickedLoaded, e.picked
	e.mu.RUnlock()
	if loaded {
		return picked
	}

	e.ReloadPicked(ctx)
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.picked
}

// ReloadPicked replaces the in-memory picked gateway with the stored one,
// if persistence is enabled and a non-empty value is stored.
func (e *Engine) ReloadPicked(ctx context.Context) {
	var stored string
	if e.persist() {
		raw, ok, err := e.store.Get(ctx, e.pickedKey)
		if err != nil {
			e.metrics.ObserveStorageFailure("read")
			e.logger.Warn("Failed to read picked gateway", zap.String("key", e.pickedKey), zap.Error(err))
		} else if ok {
			stored = gatewayurl.Normalize(raw)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if stored != "" {
		e.picked = stored
	}
	e.pickedLoaded = true
}

// SetPicked overrides the picked gateway and persists it when enabled.
func (e *Engine) SetPicked(ctx context.Context, url string) error {
	picked := gatewayurl.Normalize(url)
	if picked == "" {
		return errors.NewValidationError("url", "picked gateway must not be empty", url)
	}

	e.mu.Lock()
	changed := e.picked != picked
	e.picked = picked
	e.pickedLoaded = true
	e.mu.Unlock()

	if changed {
		e.metrics.ObservePickedChange()
		e.logger.Info("Picked gateway changed", zap.String("gateway", picked))
	}

	if e.persist() {
		if err := e.store.Set(ctx, e.pickedKey, picked); err != nil {
			e.metrics.ObserveStorageFailure("write")
			return errors.Wrap(err, "failed to persist picked gateway")
		}
	}
	return nil
}

// ValidateCID checks that the first path segment of s is a valid CID, so
// "cid/sub/path" forms are accepted.
func ValidateCID(s string) error {
	root := strings.TrimPrefix(s, "/")
	if i := strings.Index(root, "/"); i >= 0 {
		root = root[:i]
	}
	if root == "" {
		return errors.NewValidationError("cid", "must not be empty", s)
	}
	if _, err := cid.Decode(root); err != nil {
		return errors.NewValidationError("cid", "invalid CID: "+err.Error(), s)
	}
	return nil
}
