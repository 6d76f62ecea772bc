package client

import (
	"github.com/DeBrosOfficial/smart-gateway/pkg/config"
	"github.com/DeBrosOfficial/smart-gateway/pkg/kvstore"
	"github.com/DeBrosOfficial/smart-gateway/pkg/transport"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// ClientConfig represents configuration for a gateway picker client
type ClientConfig struct {
	// Config is the file configuration. If nil, config.DefaultConfig() is used.
	Config *config.Config

	// Store overrides the backend selected by Config.Storage. The client
	// does not close a store it did not open.
	Store kvstore.Store

	// Transport overrides the net/http transport.
	Transport transport.Transport

	// Registerer receives the client's Prometheus collectors. Nil leaves them
	// unregistered.
	Registerer prometheus.Registerer

	// Logger overrides the logger built from Config.Logging.
	Logger *zap.Logger

	QuietMode bool // Suppress debug/info logs
}

// DefaultClientConfig returns a default client configuration
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Config: config.DefaultConfig(),
	}
}

// ValidateClientConfig validates a client configuration
func ValidateClientConfig(cfg *ClientConfig) error {
	if cfg == nil {
		return NewClientError("validate", "config cannot be nil", ErrInvalidConfig)
	}
	if cfg.Config == nil {
		return nil
	}
	if errs := cfg.Config.Validate(); len(errs) > 0 {
		return NewClientError("validate", errs[0].Error(), ErrInvalidConfig)
	}
	return nil
}
