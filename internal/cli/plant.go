package cli

import (
	"context"

	"github.com/spf13/cobra"
)

func newPlantCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plant",
		Short: "Manage the plants in a garden",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add <id> <plant>",
		Short: "Add a plant to a garden you own",
		Args:  cobra.ExactArgs(2),
		RunE: a.withService(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			g, err := a.svc.AddPlant(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return a.printPlants(cmd.OutOrStdout(), g.Plants)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id> <plant>",
		Short: "Remove a plant from a garden you own",
		Args:  cobra.ExactArgs(2),
		RunE: a.withService(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			g, err := a.svc.RemovePlant(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			return a.printPlants(cmd.OutOrStdout(), g.Plants)
		}),
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list <id>",
		Short: "List the plants in a garden",
		Args:  cobra.ExactArgs(1),
		RunE: a.withService(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			plants, err := a.svc.ListPlants(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printPlants(cmd.OutOrStdout(), plants)
		}),
	})

	return cmd
}
