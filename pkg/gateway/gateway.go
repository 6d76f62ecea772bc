// Package gateway serves the gateway picker over HTTP.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/DeBrosOfficial/smart-gateway/pkg/client"
	"github.com/DeBrosOfficial/smart-gateway/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type Gateway struct {
	logger    *logging.ColoredLogger
	cfg       *Config
	client    client.SmartGateway
	gatherer  prometheus.Gatherer
	startedAt time.Time
	server    *http.Server
	listener  net.Listener
}

// New creates a Gateway over c. gatherer backs /metrics and may be nil
// when metrics are disabled.
func New(logger *logging.ColoredLogger, cfg *Config, c client.SmartGateway, gatherer prometheus.Gatherer) *Gateway {
	if logger == nil {
		logger = logging.NewNop()
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 60 * time.Second
	}
	if cfg.WSBuffer == 0 {
		cfg.WSBuffer = 64
	}

	return &Gateway{
		logger:    logger,
		cfg:       cfg,
		client:    c,
		gatherer:  gatherer,
		startedAt: time.Now(),
	}
}

// Start binds cfg.ListenAddr and serves in the background. A bind failure
// is returned to the caller.
func (g *Gateway) Start() error {
	ln, err := net.Listen("tcp", g.cfg.ListenAddr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", g.cfg.ListenAddr, err)
	}
	g.listener = ln
	g.server = &http.Server{
		Handler:           g.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.ComponentError(logging.ComponentGateway, "HTTP server failed", zap.Error(err))
		}
	}()

	g.logger.ComponentInfo(logging.ComponentGateway, "HTTP server started",
		zap.String("listen_addr", ln.Addr().String()),
		zap.Bool("metrics", g.cfg.EnableMetrics))
	return nil
}

// Addr returns the bound address, or nil before Start.
func (g *Gateway) Addr() net.Addr {
	if g.listener == nil {
		return nil
	}
	return g.listener.Addr()
}

// Shutdown stops the HTTP server and closes the client.
func (g *Gateway) Shutdown(ctx context.Context) error {
	var err error
	if g.server != nil {
		if serr := g.server.Shutdown(ctx); serr != nil {
			g.logger.ComponentWarn(logging.ComponentGateway, "error during server shutdown", zap.Error(serr))
			err = serr
		}
	}
	if cerr := g.client.Close(); cerr != nil {
		g.logger.ComponentWarn(logging.ComponentGateway, "error during client close", zap.Error(cerr))
		if err == nil {
			err = cerr
		}
	}
	return err
}
