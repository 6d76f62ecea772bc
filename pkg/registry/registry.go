// Package registry holds the default and user-added gateway lists.
//
// Defaults are configured by the host and never written to the store. User
// gateways are capped and, when persistence is enabled, mirrored into the
// persistent store as a JSON array.
package registry

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/DeBrosOfficial/smart-gateway/pkg/config"
	"github.com/DeBrosOfficial/smart-gateway/pkg/errors"
	"github.com/DeBrosOfficial/smart-gateway/pkg/gatewayurl"
	"github.com/DeBrosOfficial/smart-gateway/pkg/kvstore"
	"github.com/DeBrosOfficial/smart-gateway/pkg/metrics"
	"go.uber.org/zap"
)

// SettingsSource supplies the current runtime settings.
type SettingsSource interface {
	Settings() config.Settings
}

// Config holds configuration for the registry.
type Config struct {
	// Defaults is the initial default gateway list. It is normalized.
	Defaults []string

	// MaxUserGateways caps the user list.
	// If zero or negative, defaults to 15
	MaxUserGateways int

	// StoragePrefix namespaces the store key.
	// If empty, defaults to "ipfs-smart-gateway:"
	StoragePrefix string
}

// Registry is safe for concurrent use.
type Registry struct {
	// writeMu serializes read-merge-write cycles on the user list so
	// concurrent updates do not overwrite each other.
	writeMu sync.Mutex

	mu         sync.RWMutex
	defaults   []string
	user       []string
	newlyAdded []string

	store    kvstore.Store
	settings SettingsSource
	limit    int
	userKey  string
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

// New creates a registry. store may be nil, in which case the registry
// behaves as if persistence were disabled.
func New(cfg Config, store kvstore.Store, settings SettingsSource, m *metrics.Metrics, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := cfg.MaxUserGateways
	if limit <= 0 {
		limit = config.DefaultMaxUserGateways
	}
	prefix := cfg.StoragePrefix
	if prefix == "" {
		prefix = config.DefaultStoragePrefix
	}

	return &Registry{
		defaults: gatewayurl.NormalizeAll(cfg.Defaults),
		store:    store,
		settings: settings,
		limit:    limit,
		userKey:  prefix + "user-gateways",
		metrics:  m,
		logger:   logger,
	}
}

// UserKey returns the store key holding the user list.
func (r *Registry) UserKey() string {
	return r.userKey
}

// MaxUserGateways returns the user list cap.
func (r *Registry) MaxUserGateways() int {
	return r.limit
}

func (r *Registry) persist() bool {
	if r.store == nil {
		return false
	}
	if r.settings == nil {
		return true
	}
	return r.settings.Settings().PersistStorage
}

// SetDefaultGateways replaces the default list with the normalized,
// non-empty subset of urls in input order.
func (r *Registry) SetDefaultGateways(urls []string) {
	defaults := gatewayurl.NormalizeAll(urls)

	r.mu.Lock()
	r.defaults = defaults
	r.mu.Unlock()

	r.logger.Debug("Default gateways set", zap.Strings("gateways", defaults))
}

// DefaultGateways returns a copy of the default list.
func (r *Registry) DefaultGateways() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.defaults...)
}

// SetUserGateways adds urls to the user list. Entries that are defaults or
// already present are skipped. When the merged list would exceed the cap a
// *errors.CapacityExceededError is returned and nothing changes. A store read
// failure aborts the update so the persisted list is never rewritten from a
// partial view.
func (r *Registry) SetUserGateways(ctx context.Context, urls []string) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	existing, err := r.current(ctx)
	if err != nil {
		return err
	}
	defaults := r.DefaultGateways()

	merged := append([]string(nil), existing...)
	var added []string
	for _, g := range gatewayurl.NormalizeAll(urls) {
		if gatewayurl.Contains(defaults, g) || gatewayurl.Contains(merged, g) {
			continue
		}
		merged = append(merged, g)
		added = append(added, g)
	}

	if len(merged) > r.limit {
		r.logger.Warn("User gateway cap exceeded",
			zap.Int("limit", r.limit),
			zap.Int("requested", len(merged)))
		return errors.NewCapacityExceededError(r.limit, len(merged))
	}

	if r.persist() {
		if err := r.write(ctx, merged); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.user = merged
	r.newlyAdded = added
	r.mu.Unlock()

	r.logger.Info("User gateways updated", zap.Int("count", len(merged)), zap.Strings("added", added))
	return nil
}

// RemoveUserGateways removes the given gateways from the user list and
// rewrites the store.
func (r *Registry) RemoveUserGateways(ctx context.Context, urls []string) error {
	r.writeMu.Lock()
	defer r.writeMu.Unlock()

	existing, err := r.current(ctx)
	if err != nil {
		return err
	}
	drop := gatewayurl.NormalizeAll(urls)

	kept := make([]string, 0, len(existing))
	for _, g := range existing {
		if !gatewayurl.Contains(drop, g) {
			kept = append(kept, g)
		}
	}

	if r.persist() {
		if err := r.write(ctx, kept); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.user = kept
	var newly []string
	for _, g := range r.newlyAdded {
		if !gatewayurl.Contains(drop, g) {
			newly = append(newly, g)
		}
	}
	r.newlyAdded = newly
	return nil
}

// current returns the user list the write paths merge against.
func (r *Registry) current(ctx context.Context) ([]string, error) {
	if !r.persist() {
		r.mu.RLock()
		defer r.mu.RUnlock()
		return append([]string(nil), r.user...), nil
	}
	user, err := r.load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read user gateways")
	}
	return user, nil
}

// UserGateways returns the user list. With persistence enabled it is read
// from the store; a missing, unreadable or malformed value yields an empty
// list.
func (r *Registry) UserGateways(ctx context.Context) []string {
	if !r.persist() {
		r.mu.RLock()
		defer r.mu.RUnlock()
		return append([]string(nil), r.user...)
	}
	return r.read(ctx)
}

// AllGateways returns defaults then user gateways, duplicates collapsed.
// It reads the in-memory user list; call Reload first to pick up changes
// made through the store by other processes.
func (r *Registry) AllGateways() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := make([]string, 0, len(r.defaults)+len(r.user))
	all = append(all, r.defaults...)
	for _, g := range r.user {
		if !gatewayurl.Contains(all, g) {
			all = append(all, g)
		}
	}
	return all
}

// NewlyAdded returns the gateways added by the latest SetUserGateways call.
func (r *Registry) NewlyAdded() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.newlyAdded...)
}

// Reload refreshes the in-memory user list from the store. It is a no-op
// when persistence is disabled.
func (r *Registry) Reload(ctx context.Context) {
	if !r.persist() {
		return
	}
	user := r.read(ctx)

	r.mu.Lock()
	r.user = user
	r.mu.Unlock()
}

// read is the lenient form of load: every failure yields an empty list.
func (r *Registry) read(ctx context.Context) []string {
	user, err := r.load(ctx)
	if err != nil {
		return []string{}
	}
	return user
}

// load returns the stored user list. Missing and malformed values count as
// empty; only a failing store returns an error.
func (r *Registry) load(ctx context.Context) ([]string, error) {
	raw, ok, err := r.store.Get(ctx, r.userKey)
	if err != nil {
		r.metrics.ObserveStorageFailure("read")
		r.logger.Warn("Failed to read user gateways", zap.String("key", r.userKey), zap.Error(err))
		return nil, err
	}
	if !ok || raw == "" {
		return []string{}, nil
	}

	var stored []string
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		corrupt := errors.NewStorageCorruptError(r.userKey, err)
		r.metrics.ObserveStorageFailure("corrupt")
		r.logger.Warn("Ignoring stored user gateways", zap.Error(corrupt))
		return []string{}, nil
	}
	return gatewayurl.NormalizeAll(stored), nil
}

func (r *Registry) write(ctx context.Context, user []string) error {
	if user == nil {
		user = []string{}
	}
	data, err := json.Marshal(user)
	if err != nil {
		return errors.NewInternalError("failed to encode user gateways", err).WithOperation("persist")
	}
	if err := r.store.Set(ctx, r.userKey, string(data)); err != nil {
		r.metrics.ObserveStorageFailure("write")
		return errors.Wrap(err, "failed to persist user gateways")
	}
	return nil
}
