package main

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/DeBrosOfficial/smart-gateway/pkg/config"
)

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); strings.TrimSpace(v) != "" {
		return v
	}
	return def
}

func getEnvBoolDefault(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}

// loadConfig builds the service configuration.
// Priority: flags > env > config file > defaults.
func loadConfig(args []string) (*config.Config, error) {
	fset := flag.NewFlagSet("smartgw-gateway", flag.ContinueOnError)
	path := fset.String("config", getEnvDefault("SMARTGW_CONFIG", ""), "Path to YAML config (default ~/.smartgw/gateway.yaml if present)")
	addr := fset.String("addr", os.Getenv("SMARTGW_ADDR"), "HTTP listen address (e.g., :6080)")
	backend := fset.String("storage", os.Getenv("SMARTGW_STORAGE"), "Storage backend: memory, sqlite, rqlite, olric, badger")
	storagePath := fset.String("storage-path", os.Getenv("SMARTGW_STORAGE_PATH"), "Data path for sqlite/badger")
	dsn := fset.String("rqlite-dsn", os.Getenv("SMARTGW_RQLITE_DSN"), "rqlite DSN")
	olric := fset.String("olric-servers", os.Getenv("SMARTGW_OLRIC_SERVERS"), "Comma-separated Olric servers")
	logLevel := fset.String("log-level", os.Getenv("SMARTGW_LOG_LEVEL"), "Log level: debug, info, warn, error")
	metrics := fset.Bool("metrics", getEnvBoolDefault("SMARTGW_METRICS", true), "Expose /metrics")
	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	cfg, err := loadConfigFile(*path)
	if err != nil {
		return nil, err
	}

	if *addr != "" {
		cfg.HTTP.ListenAddr = *addr
	}
	if *backend != "" {
		cfg.Storage.Backend = *backend
	}
	if *storagePath != "" {
		cfg.Storage.Path = *storagePath
	}
	if *dsn != "" {
		cfg.Storage.RqliteDSN = *dsn
	}
	if servers := splitList(*olric); len(servers) > 0 {
		cfg.Storage.OlricAddrs = servers
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	cfg.HTTP.EnableMetrics = cfg.HTTP.EnableMetrics && *metrics

	if errs := cfg.Validate(); len(errs) > 0 {
		var b strings.Builder
		for _, e := range errs {
			fmt.Fprintf(&b, "\n  - %v", e)
		}
		return nil, fmt.Errorf("invalid configuration:%s", b.String())
	}
	return cfg, nil
}

// loadConfigFile reads path, or the default location when path is empty.
// A missing default file yields DefaultConfig.
func loadConfigFile(path string) (*config.Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := config.DefaultPath("gateway.yaml")
		if err != nil {
			return config.DefaultConfig(), nil
		}
		path = p
	}

	cfg, err := config.Load(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return config.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to load config %s: %w", path, err)
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}
