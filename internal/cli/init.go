package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/gardens/internal/backend"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize garden storage",
		Long:  "Create configuration and data directories, then initialize the storage backend.",
		Args:  cobra.NoArgs,
		RunE:  a.runInit,
	}
}

func (a *app) runInit(cmd *cobra.Command, _ []string) error {
	cfg, err := storeConfig(a.v, a.flags.dataDir)
	if err != nil {
		return err
	}

	// Persist data_dir only when it was given explicitly.
	dataDir := ""
	if a.flags.dataDir != "" {
		dataDir = cfg.DataDir
	}
	wrote, err := writeConfigIfMissing(a.configDir, dataDir)
	if err != nil {
		return &sysError{err: fmt.Errorf("write config: %w", err)}
	}

	store, err := backend.Open(cmd.Context(), cfg, a.log)
	if err != nil {
		return &sysError{err: fmt.Errorf("initialize storage: %w", err)}
	}
	if err := store.Close(); err != nil {
		return &sysError{err: fmt.Errorf("finalize storage: %w", err)}
	}

	out := cmd.OutOrStdout()
	if wrote {
		fmt.Fprintf(out, "Wrote %s\n", filepath.Join(a.configDir, configFileExt))
	}
	fmt.Fprintf(out, "Gardens initialized (%s backend, data in %s)\n", cfg.Backend, cfg.DataDir)
	return nil
}
