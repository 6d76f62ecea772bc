package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultCID is the content identifier probed when a ranking round does not name one.
const DefaultCID = "bafybeibwzifw52ttrkqlikfzext5akxu7lz4xiwjgwzmqcpdzmp3n5vnbe"

// DefaultStoragePrefix namespaces every key the picker writes to the persistent store.
const DefaultStoragePrefix = "ipfs-smart-gateway:"

// DefaultMaxUserGateways caps the persisted user gateway list.
const DefaultMaxUserGateways = 15

// Config represents the full configuration of the gateway picker and its hosts.
type Config struct {
	Settings SettingsConfig `yaml:"settings"`
	Gateways GatewaysConfig `yaml:"gateways"`
	Ranking  RankingConfig  `yaml:"ranking"`
	Fetch    FetchConfig    `yaml:"fetch"`
	Storage  StorageConfig  `yaml:"storage"`
	Logging  LoggingConfig  `yaml:"logging"`
	HTTP     HTTPConfig     `yaml:"http"`
}

// SettingsConfig is the file form of the runtime Settings.
type SettingsConfig struct {
	StopOnFirstSuccess bool          `yaml:"stop_on_first_success"`
	PersistStorage     bool          `yaml:"persist_storage"`
	Timeout            time.Duration `yaml:"timeout"`
}

// GatewaysConfig holds the default gateway set and user list limits.
type GatewaysConfig struct {
	Defaults        []string `yaml:"defaults"`
	MaxUserGateways int      `yaml:"max_user_gateways"`
	StoragePrefix   string   `yaml:"storage_prefix"`
}

// RankingConfig holds defaults for ranking rounds.
type RankingConfig struct {
	CID        string        `yaml:"cid"`
	RetryCount int           `yaml:"retry_count"`
	RetryDelay time.Duration `yaml:"retry_delay"`
	Mode       string        `yaml:"mode"` // concurrent, sequential
}

// FetchConfig controls content retrieval.
type FetchConfig struct {
	CacheSize int    `yaml:"cache_size"` // 0 disables the content cache
	UserAgent string `yaml:"user_agent"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Settings: SettingsConfig{
			StopOnFirstSuccess: false,
			PersistStorage:     true,
			Timeout:            3 * time.Second,
		},
		Gateways: GatewaysConfig{
			Defaults: []string{
				"https://ipfs.io",
				"https://cloudflare-ipfs.com",
				"https://gateway.pinata.cloud",
			},
			MaxUserGateways: DefaultMaxUserGateways,
			StoragePrefix:   DefaultStoragePrefix,
		},
		Ranking: RankingConfig{
			CID:        DefaultCID,
			RetryCount: 0,
			RetryDelay: time.Second,
			Mode:       "concurrent",
		},
		Fetch: FetchConfig{
			CacheSize: 0,
			UserAgent: "smart-gateway/1.0",
		},
		Storage: StorageConfig{
			Backend:    "memory",
			OlricDMap:  "smart-gateway",
			RqliteDSN:  "http://localhost:5001",
			OlricAddrs: []string{"localhost:3320"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		HTTP: HTTPConfig{
			ListenAddr:    ":6080",
			EnableMetrics: true,
		},
	}
}

// Load reads a YAML config file on top of DefaultConfig. Unknown keys are
// rejected; an empty file yields the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := DefaultConfig()
	if err := decodeStrict(f, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeStrict(r io.Reader, out *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LiveSettings returns the mutable runtime settings seeded from the file values.
func (c *Config) LiveSettings() *LiveSettings {
	return NewLiveSettings(Settings{
		StopOnFirstSuccess: c.Settings.StopOnFirstSuccess,
		PersistStorage:     c.Settings.PersistStorage,
		Timeout:            c.Settings.Timeout,
	})
}
