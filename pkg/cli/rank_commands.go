package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/DeBrosOfficial/smart-gateway/pkg/client"
	"github.com/DeBrosOfficial/smart-gateway/pkg/ranking"
	"github.com/spf13/cobra"
)

type rankFlags struct {
	cid        string
	retries    int
	retryDelay time.Duration
	mode       string
	onlyNew    bool
	progress   bool
}

func newRankCommand(opts *Options) *cobra.Command {
	f := &rankFlags{}
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Probe every gateway and rank the available ones by latency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c client.SmartGateway) error {
				return runRank(ctx, cmd, opts, f, c)
			})
		},
	}
	cmd.Flags().StringVar(&f.cid, "cid", "", "CID used for probing (default from config)")
	cmd.Flags().IntVar(&f.retries, "retries", -1, "Extra attempts when no gateway answers (default from config)")
	cmd.Flags().DurationVar(&f.retryDelay, "retry-delay", 0, "Wait between attempts (default from config)")
	cmd.Flags().StringVar(&f.mode, "mode", "", "Probing mode: concurrent or sequential")
	cmd.Flags().BoolVar(&f.onlyNew, "only-new", false, "Probe only the most recently added user gateways")
	cmd.Flags().BoolVar(&f.progress, "progress", false, "Print probe results as they arrive")
	return cmd
}

func (f *rankFlags) options(base ranking.Options) (ranking.Options, error) {
	opts := base
	if f.cid != "" {
		opts.CID = f.cid
	}
	if f.retries >= 0 {
		opts.RetryCount = f.retries
	}
	if f.retryDelay > 0 {
		opts.RetryDelay = f.retryDelay
	}
	if f.mode != "" {
		m, err := ranking.ParseMode(f.mode)
		if err != nil {
			return opts, err
		}
		opts.Mode = m
	}
	opts.OnlyNew = f.onlyNew
	return opts, nil
}

func runRank(ctx context.Context, cmd *cobra.Command, opts *Options, f *rankFlags, c client.SmartGateway) error {
	rankOpts, err := f.options(c.DefaultRankOptions())
	if err != nil {
		return err
	}

	errOut := cmd.ErrOrStderr()
	if f.progress {
		rankOpts.Observer = ranking.ObserverFuncs{
			Start: func() { fmt.Fprintln(errOut, "Probing gateways...") },
			Success: func(r ranking.ProbeResult) {
				fmt.Fprintf(errOut, "  ok    %s (%s)\n", r.URL, formatLatency(r))
			},
			Fail: func(r ranking.ProbeResult) {
				fmt.Fprintf(errOut, "  fail  %s\n", r.URL)
			},
			Retry: func(attempt int, delay time.Duration) {
				fmt.Fprintf(errOut, "No gateway answered, attempt %d in %s\n", attempt, delay)
			},
		}
	}

	list, err := c.CheckGateways(ctx, rankOpts)
	if err != nil {
		return fmt.Errorf("ranking failed: %w", err)
	}

	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		return printJSON(out, map[string]any{
			"gateways": nonNilList(list),
			"picked":   c.PickedGateway(ctx),
		})
	}
	if err := printResults(out, list); err != nil {
		return err
	}
	if picked := c.PickedGateway(ctx); picked != "" {
		fmt.Fprintf(out, "\nPicked: %s\n", picked)
	}
	return nil
}

func nonNilList(l ranking.RankedList) ranking.RankedList {
	if l == nil {
		return ranking.RankedList{}
	}
	return l
}
