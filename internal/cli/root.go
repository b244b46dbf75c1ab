// Package cli implements the garden command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/gardens/pkg/gardens"
	"github.com/mesh-intelligence/gardens/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// annotationNoSetup marks commands that run without config or logger.
const annotationNoSetup = "gardens/no-setup"

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	dataDir   string
	as        string
	jsonMode  bool
}

// app is the state shared by one invocation of the root command.
type app struct {
	flags     rootFlags
	configDir string
	v         *viper.Viper
	log       *zap.Logger

	reg      *prometheus.Registry
	registry *gardens.Registry
	svc      types.GardenService
	caller   types.Identity
}

// NewRootCmd creates the top-level "garden" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	a := &app{log: zap.NewNop()}

	root := &cobra.Command{
		Use:   "garden",
		Short: "A registry of gardens and the plants growing in them",
		Long: "Garden keeps a registry of gardens: where they are, who owns them,\n" +
			"what grows in them and what they look like.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: platform config dir)")
	root.PersistentFlags().StringVar(&a.flags.dataDir, "data-dir", "", "data directory (default: .gardens-db)")
	root.PersistentFlags().StringVar(&a.flags.as, "as", "", "act as this identity")
	root.PersistentFlags().BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newCreateCmd(a))
	root.AddCommand(newGetCmd(a))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newUpdateCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newPlantCmd(a))
	root.AddCommand(newImageCmd(a))
	root.AddCommand(newStatsCmd(a))

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
	os.Exit(exitSuccess)
}

// setup loads configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[annotationNoSetup] == "true" {
		return nil
	}

	configDir, v, err := loadConfig(a.flags.configDir)
	if err != nil {
		return err
	}
	a.configDir = configDir
	a.v = v

	log, err := newLogger(v, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.log = log
	return nil
}

// withService opens the configured backend around fn and closes it after,
// joining any close error into the result.
func (a *app) withService(fn func(ctx context.Context, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		if err := a.open(ctx); err != nil {
			return err
		}
		defer func() {
			err = multierr.Append(err, a.close())
		}()

		// Reads work without an identity; mutations then fail as unauthorized.
		caller, err := resolveIdentity(a.flags.as, a.v.GetString(cfgKeyIdentity))
		if err != nil {
			a.log.Debug("no caller identity", zap.Error(err))
		}
		a.caller = caller

		return fn(types.WithCaller(ctx, caller), cmd, args)
	}
}

// open attaches the backend and wraps the registry with metrics and logging.
func (a *app) open(ctx context.Context) error {
	cfg, err := storeConfig(a.v, a.flags.dataDir)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	r, err := gardens.Open(ctx, cfg, gardens.Options{
		Logger:     a.log,
		Registerer: reg,
	})
	if err != nil {
		return &sysError{err: err}
	}

	a.reg = reg
	a.registry = r
	a.svc = r
	return nil
}

func (a *app) close() error {
	if a.registry == nil {
		return nil
	}
	err := a.registry.Close()
	a.registry = nil
	if err != nil {
		return &sysError{err: err}
	}
	return nil
}

// sysError marks failures of the environment rather than of the request.
type sysError struct {
	err error
}

func (e *sysError) Error() string { return e.err.Error() }
func (e *sysError) Unwrap() error { return e.err }

// exitCode maps an error to the process exit status: storage and
// environment failures exit 2, everything else 1.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *sysError
	if errors.As(err, &se) {
		return exitSysError
	}
	var te *types.Error
	if errors.As(err, &te) && types.IsStorage(te) {
		return exitSysError
	}
	return exitUserError
}
