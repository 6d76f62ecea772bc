package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/DeBrosOfficial/smart-gateway/pkg/client"
	"github.com/DeBrosOfficial/smart-gateway/pkg/decoder"
	"github.com/spf13/cobra"
)

func newFetchCommand(opts *Options) *cobra.Command {
	var (
		as     string
		picked bool
		output string
	)
	cmd := &cobra.Command{
		Use:   "fetch <cid>[/path]",
		Short: "Fetch content, falling back through ranked gateways",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c client.SmartGateway) error {
				format := decoder.ParseFormat(as)
				if output != "" {
					format = decoder.FormatBlob
				}

				var (
					v  any
					ok bool
				)
				if picked {
					v, ok = c.FetchFromPicked(ctx, args[0], format)
				} else {
					v, ok = c.FetchWithFallback(ctx, args[0], format)
				}
				if !ok {
					return fmt.Errorf("content %s could not be fetched from any gateway", args[0])
				}
				return writeContent(cmd, opts, output, v)
			})
		},
	}
	cmd.Flags().StringVar(&as, "as", "text", "Decode as: text, json or blob")
	cmd.Flags().BoolVar(&picked, "picked", false, "Only try the picked gateway")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write raw content to this file")
	return cmd
}

func writeContent(cmd *cobra.Command, opts *Options, output string, v any) error {
	out := cmd.OutOrStdout()
	switch val := v.(type) {
	case decoder.Blob:
		if output != "" {
			if err := os.WriteFile(output, val.Data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(out, "Wrote %d bytes (%s) to %s\n", len(val.Data), val.ContentType, output)
			return nil
		}
		_, err := out.Write(val.Data)
		return err
	case string:
		if opts.Format == "json" {
			return printJSON(out, val)
		}
		_, err := fmt.Fprintln(out, val)
		return err
	default:
		return printJSON(out, val)
	}
}
