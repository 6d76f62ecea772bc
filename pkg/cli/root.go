// Package cli implements the smartgw command line tool.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/DeBrosOfficial/smart-gateway/pkg/client"
	"github.com/DeBrosOfficial/smart-gateway/pkg/config"
	"github.com/DeBrosOfficial/smart-gateway/pkg/logging"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Options holds the global flags shared by every command.
type Options struct {
	ConfigPath  string
	Storage     string
	StoragePath string
	Format      string // table or json
	Timeout     time.Duration
	Verbose     bool

	StopOnFirstSuccess bool
	NoPersist          bool
	ProbeTimeout       time.Duration

	// NewClient overrides client construction. Used by tests.
	NewClient func(ctx context.Context, cfg *client.ClientConfig) (client.SmartGateway, error)
}

// NewRootCommand builds the smartgw command tree.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(version, &Options{})
}

func newRootCommand(version string, opts *Options) *cobra.Command {
	root := &cobra.Command{
		Use:           "smartgw",
		Short:         "Pick the fastest IPFS gateway and fetch content through it",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "Path to YAML config (default ~/.smartgw/cli.yaml if present)")
	pf.StringVar(&opts.Storage, "storage", "", "Storage backend override: memory, sqlite, rqlite, olric, badger")
	pf.StringVar(&opts.StoragePath, "storage-path", "", "Data path for sqlite/badger")
	pf.StringVarP(&opts.Format, "format", "f", "table", "Output format: table or json")
	pf.DurationVar(&opts.Timeout, "timeout", 2*time.Minute, "Overall command timeout")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "Show info logs")
	pf.BoolVar(&opts.StopOnFirstSuccess, "stop-on-first-success", false, "Stop sequential probing at the first available gateway")
	pf.BoolVar(&opts.NoPersist, "no-persist", false, "Do not write gateway lists or the picked gateway to storage")
	pf.DurationVar(&opts.ProbeTimeout, "probe-timeout", 0, "Per-request gateway timeout (default from config)")

	root.AddCommand(
		newRankCommand(opts),
		newFetchCommand(opts),
		newGatewaysCommand(opts),
		newPickedCommand(opts),
		newSettingsCommand(opts),
	)
	return root
}

// Execute runs the command tree against args.
func Execute(ctx context.Context, version string, args []string) error {
	root := NewRootCommand(version)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// loadConfig reads the CLI config file and applies flag overrides.
func (o *Options) loadConfig() (*config.Config, error) {
	path := o.ConfigPath
	explicit := path != ""
	if !explicit {
		p, err := config.DefaultPath("cli.yaml")
		if err == nil {
			path = p
		}
	}

	cfg := config.DefaultConfig()
	if path != "" {
		loaded, err := config.Load(path)
		switch {
		case err == nil:
			cfg = loaded
		case !explicit && errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to load config %s: %w", path, err)
		}
	}

	if o.Storage != "" {
		cfg.Storage.Backend = o.Storage
	}
	if o.StoragePath != "" {
		cfg.Storage.Path = o.StoragePath
	}
	return cfg, nil
}

// withClient opens a client for the duration of fn.
func (o *Options) withClient(cmd *cobra.Command, fn func(ctx context.Context, c client.SmartGateway) error) error {
	cfg, err := o.loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), o.Timeout)
	defer cancel()

	logOpts := cfg.Logging.Options()
	if !o.Verbose {
		logOpts.Level = "warn"
	}
	logger, err := logging.NewFromOptions(logOpts)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()
	logger.ComponentDebug(logging.ComponentCLI, "Running command",
		zap.String("command", cmd.CommandPath()),
		zap.String("storage", cfg.Storage.Backend))

	ccfg := client.DefaultClientConfig()
	ccfg.Config = cfg
	ccfg.Logger = logger.Logger

	newClient := o.NewClient
	if newClient == nil {
		newClient = func(ctx context.Context, cfg *client.ClientConfig) (client.SmartGateway, error) {
			return client.NewClient(ctx, cfg)
		}
	}
	c, err := newClient(ctx, ccfg)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer c.Close()

	if patch, ok := o.settingsPatch(cmd); ok {
		c.Configure(patch)
	}
	return fn(ctx, c)
}

// settingsPatch collects the settings flags the user set explicitly.
func (o *Options) settingsPatch(cmd *cobra.Command) (config.SettingsPatch, bool) {
	var patch config.SettingsPatch
	flags := cmd.Flags()
	changed := false
	if flags.Changed("stop-on-first-success") {
		v := o.StopOnFirstSuccess
		patch.StopOnFirstSuccess = &v
		changed = true
	}
	if flags.Changed("no-persist") {
		v := !o.NoPersist
		patch.PersistStorage = &v
		changed = true
	}
	if flags.Changed("probe-timeout") && o.ProbeTimeout > 0 {
		v := o.ProbeTimeout
		patch.Timeout = &v
		changed = true
	}
	return patch, changed
}
