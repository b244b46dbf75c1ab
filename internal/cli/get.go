package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

func newGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a garden",
		Args:  cobra.ExactArgs(1),
		RunE: a.withService(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			g, err := a.svc.GetGarden(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printGarden(cmd.OutOrStdout(), g)
		}),
	}
}

func newListCmd(a *app) *cobra.Command {
	var mine bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every garden",
		Args:  cobra.NoArgs,
		RunE: a.withService(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			gs, err := a.svc.ListGardens(ctx)
			if err != nil {
				return err
			}
			if mine {
				owned := gs[:0]
				for _, g := range gs {
					if g.Owner.Equal(a.caller) {
						owned = append(owned, g)
					}
				}
				gs = owned
			}
			return a.printGardens(cmd.OutOrStdout(), gs)
		}),
	}
	cmd.Flags().BoolVar(&mine, "mine", false, "only gardens owned by the caller")
	return cmd
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a garden you own",
		Args:  cobra.ExactArgs(1),
		RunE: a.withService(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			g, err := a.svc.DeleteGarden(ctx, args[0])
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), g)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", gardenTitle(g))
			return err
		}),
	}
}

func newImageCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "image <id> <image>",
		Short: "Replace the image of a garden you own",
		Long:  `Image replaces a garden's image reference. Pass "" to clear it.`,
		Args:  cobra.ExactArgs(2),
		RunE: a.withService(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			g, err := a.svc.UpdateImage(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return a.printGarden(cmd.OutOrStdout(), g)
		}),
	}
}
