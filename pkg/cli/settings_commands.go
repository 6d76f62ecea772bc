package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/DeBrosOfficial/smart-gateway/pkg/client"
	"github.com/spf13/cobra"
)

func newSettingsCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Show the effective runtime settings",
		Long: `Show the settings used for probing and fetching.

Settings come from the config file and can be overridden per invocation with
--stop-on-first-success, --no-persist and --probe-timeout.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(_ context.Context, c client.SmartGateway) error {
				s := c.Settings()
				out := cmd.OutOrStdout()
				if opts.Format == "json" {
					return printJSON(out, map[string]any{
						"stop_on_first_success": s.StopOnFirstSuccess,
						"persist_storage":       s.PersistStorage,
						"timeout_ms":            s.Timeout.Milliseconds(),
					})
				}
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintf(tw, "stop_on_first_success\t%t\n", s.StopOnFirstSuccess)
				fmt.Fprintf(tw, "persist_storage\t%t\n", s.PersistStorage)
				fmt.Fprintf(tw, "timeout\t%s\n", s.Timeout)
				return tw.Flush()
			})
		},
	}
}
