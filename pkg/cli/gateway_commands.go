package cli

import (
	"context"
	"fmt"

	"github.com/DeBrosOfficial/smart-gateway/pkg/client"
	"github.com/spf13/cobra"
)

func newGatewaysCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gateways",
		Short: "Manage default and user gateways",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List default, user and combined gateways",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c client.SmartGateway) error {
				defaults := c.DefaultGateways()
				user := c.UserGateways(ctx)
				all := c.AllGateways()
				out := cmd.OutOrStdout()
				if opts.Format == "json" {
					return printJSON(out, map[string][]string{
						"defaults": nonNil(defaults),
						"user":     nonNil(user),
						"all":      nonNil(all),
					})
				}
				printList(out, "Default gateways", defaults)
				printList(out, "User gateways", user)
				return nil
			})
		},
	}

	add := &cobra.Command{
		Use:   "add <url>...",
		Short: "Add user gateways",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c client.SmartGateway) error {
				if err := c.SetUserGateways(ctx, args); err != nil {
					return err
				}
				printList(cmd.OutOrStdout(), "User gateways", c.UserGateways(ctx))
				return nil
			})
		},
	}

	remove := &cobra.Command{
		Use:     "remove <url>...",
		Aliases: []string{"rm"},
		Short:   "Remove user gateways",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c client.SmartGateway) error {
				if err := c.RemoveUserGateways(ctx, args); err != nil {
					return err
				}
				printList(cmd.OutOrStdout(), "User gateways", c.UserGateways(ctx))
				return nil
			})
		},
	}

	defaults := &cobra.Command{
		Use:   "defaults",
		Short: "Show the built-in default gateways",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(_ context.Context, c client.SmartGateway) error {
				if opts.Format == "json" {
					return printJSON(cmd.OutOrStdout(), nonNil(c.DefaultGateways()))
				}
				printList(cmd.OutOrStdout(), "Default gateways", c.DefaultGateways())
				return nil
			})
		},
	}

	cmd.AddCommand(list, add, remove, defaults)
	return cmd
}

func newPickedCommand(opts *Options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "picked",
		Short: "Show the picked gateway",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c client.SmartGateway) error {
				picked := c.PickedGateway(ctx)
				if opts.Format == "json" {
					return printJSON(cmd.OutOrStdout(), map[string]string{"picked": picked})
				}
				if picked == "" {
					fmt.Fprintln(cmd.OutOrStdout(), "No gateway picked yet. Run 'smartgw rank' first.")
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), picked)
				return nil
			})
		},
	}

	set := &cobra.Command{
		Use:   "set <url>",
		Short: "Pick a gateway by hand",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withClient(cmd, func(ctx context.Context, c client.SmartGateway) error {
				if err := c.SetPickedGateway(ctx, args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Picked: %s\n", c.PickedGateway(ctx))
				return nil
			})
		},
	}

	cmd.AddCommand(set)
	return cmd
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
