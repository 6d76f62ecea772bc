package config

// HTTPConfig configures the HTTP service host.
type HTTPConfig struct {
	ListenAddr    string `yaml:"listen_addr"` // e.g. ":6080"
	EnableMetrics bool   `yaml:"enable_metrics"`
}
