package main

import (
	"context"
	"fmt"
	"os"

	"github.com/DeBrosOfficial/smart-gateway/pkg/client"
	"github.com/DeBrosOfficial/smart-gateway/pkg/config"
	"github.com/DeBrosOfficial/smart-gateway/pkg/gateway"
	"github.com/DeBrosOfficial/smart-gateway/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
)

func newLogger(cfg *config.Config) (*logging.ColoredLogger, error) {
	return logging.NewFromOptions(cfg.Logging.Options())
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func newClient(cfg *config.Config, logger *logging.ColoredLogger, reg *prometheus.Registry) (client.SmartGateway, error) {
	logger.ComponentInfo(logging.ComponentGeneral, "Creating smart gateway client...",
		zap.String("storage", cfg.Storage.Backend),
		zap.Int("default_gateways", len(cfg.Gateways.Defaults)))

	c, err := client.NewClient(context.Background(), &client.ClientConfig{
		Config:     cfg,
		Registerer: reg,
		Logger:     logger.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return c, nil
}

func newGateway(lc fx.Lifecycle, cfg *config.Config, logger *logging.ColoredLogger, c client.SmartGateway, reg *prometheus.Registry) *gateway.Gateway {
	g := gateway.New(logger, &gateway.Config{
		ListenAddr:    cfg.HTTP.ListenAddr,
		EnableMetrics: cfg.HTTP.EnableMetrics,
	}, c, reg)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return g.Start()
		},
		OnStop: func(ctx context.Context) error {
			logger.ComponentInfo(logging.ComponentGeneral, "Shutting down gateway HTTP server...")
			return g.Shutdown(ctx)
		},
	})
	return g
}

// rankOnStart runs one ranking round in the background so the first
// fetches already have an order to follow.
func rankOnStart(lc fx.Lifecycle, c client.SmartGateway, logger *logging.ColoredLogger) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				ranked, err := c.CheckGateways(ctx, c.DefaultRankOptions())
				if err != nil {
					logger.ComponentWarn(logging.ComponentRanker, "initial ranking failed", zap.Error(err))
					return
				}
				logger.ComponentInfo(logging.ComponentRanker, "Initial ranking finished",
					zap.Int("available", len(ranked)),
					zap.String("picked", c.PickedGateway(ctx)))
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	app := fx.New(
		fx.Supply(cfg),
		fx.Provide(
			newLogger,
			newRegistry,
			newClient,
			newGateway,
		),
		fx.Invoke(func(*gateway.Gateway) {}),
		fx.Invoke(rankOnStart),
		fx.WithLogger(func(logger *logging.ColoredLogger) fxevent.Logger {
			l := &fxevent.ZapLogger{Logger: logger.Logger}
			l.UseLogLevel(zap.DebugLevel)
			return l
		}),
	)

	// Run blocks until SIGINT/SIGTERM, then runs the stop hooks.
	app.Run()
}
