package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/gardens/pkg/types"
)

// payloadFlags are the content fields shared by create and update.
type payloadFlags struct {
	name        string
	location    string
	image       string
	plants      []string
	clearPlants bool
}

func (f *payloadFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.name, "name", "", "garden name")
	fs.StringVar(&f.location, "location", "", "where the garden is")
	fs.StringVar(&f.image, "image", "", "image reference for the garden")
	fs.StringArrayVar(&f.plants, "plant", nil, "plant growing in the garden (repeatable)")
}

func (f *payloadFlags) payload() types.GardenPayload {
	return types.GardenPayload{
		Name:     f.name,
		Location: f.location,
		Image:    f.image,
		Plants:   f.plants,
	}
}

func newCreateCmd(a *app) *cobra.Command {
	var f payloadFlags

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a garden owned by the caller",
		Example: `  garden create --name "Rose Bed" --location "Back yard" --image rose.png --plant rose --plant lavender
  garden create --as alice --name Herbs --location Kitchen --image herbs.jpg`,
		Args: cobra.NoArgs,
		RunE: a.withService(func(ctx context.Context, cmd *cobra.Command, _ []string) error {
			g, err := a.svc.CreateGarden(ctx, f.payload())
			if err != nil {
				return err
			}
			return a.printGarden(cmd.OutOrStdout(), g)
		}),
	}
	f.register(cmd.Flags())
	return cmd
}

func newUpdateCmd(a *app) *cobra.Command {
	var f payloadFlags

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Replace the content of a garden you own",
		Long: `Update replaces a garden's name, location, image and plants.

Fields whose flags are not given keep their current values. Passing any
--plant replaces the whole plant list; --clear-plants empties it.

Keeping a field reads the garden first, so two processes updating the same
garden with partial flags can each overwrite the other's change. Giving
--name, --location, --image and --plant or --clear-plants replaces the
garden in a single write.`,
		Args: cobra.ExactArgs(1),
		RunE: a.withService(func(ctx context.Context, cmd *cobra.Command, args []string) error {
			p, err := a.updatePayload(ctx, cmd.Flags(), args[0], &f)
			if err != nil {
				return err
			}

			g, err := a.svc.UpdateGarden(ctx, args[0], p)
			if err != nil {
				return err
			}
			return a.printGarden(cmd.OutOrStdout(), g)
		}),
	}
	f.register(cmd.Flags())
	cmd.Flags().BoolVar(&f.clearPlants, "clear-plants", false, "remove every plant")
	cmd.MarkFlagsMutuallyExclusive("plant", "clear-plants")
	return cmd
}

// updatePayload merges the changed flags over the stored garden. The stored
// garden is read only when some field is left unchanged.
func (a *app) updatePayload(ctx context.Context, flags *pflag.FlagSet, id string, f *payloadFlags) (types.GardenPayload, error) {
	p := f.payload()
	plantsSet := f.clearPlants || flags.Changed("plant")
	if f.clearPlants {
		p.Plants = nil
	}
	if flags.Changed("name") && flags.Changed("location") && flags.Changed("image") && plantsSet {
		return p, nil
	}

	current, err := a.svc.GetGarden(ctx, id)
	if err != nil {
		return types.GardenPayload{}, err
	}
	if !flags.Changed("name") {
		p.Name = current.Name
	}
	if !flags.Changed("location") {
		p.Location = current.Location
	}
	if !flags.Changed("image") {
		p.Image = current.Image
	}
	if !plantsSet {
		p.Plants = current.Plants
	}
	return p, nil
}
