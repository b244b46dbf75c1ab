package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/gardens/pkg/gardens"
)

const modulePath = "github.com/mesh-intelligence/gardens"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print the garden version",
		Annotations: map[string]string{annotationNoSetup: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "garden v%s\nmodule: %s\n", gardens.Version, modulePath)
			return nil
		},
	}
}
