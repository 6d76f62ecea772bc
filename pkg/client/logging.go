package client

import (
	"github.com/DeBrosOfficial/smart-gateway/pkg/config"
	"github.com/DeBrosOfficial/smart-gateway/pkg/logging"
	"go.uber.org/zap"
)

// newClientLogger builds the logger from the logging section. Quiet mode
// raises the level to warn.
func newClientLogger(cfg config.LoggingConfig, quiet bool) (*zap.Logger, error) {
	opts := cfg.Options()
	if quiet {
		opts.Level = "warn"
	}
	l, err := logging.NewFromOptions(opts)
	if err != nil {
		return nil, err
	}
	return l.Logger, nil
}
