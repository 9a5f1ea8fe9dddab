package app

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hoist/internal/resolve"
	"github.com/blackwell-systems/hoist/internal/task"
)

var runFlagPackage string

var runCmd = &cobra.Command{
	Use:   "run <task> [args...]",
	Short: "Run a task declared by the active package",
	Long: `Run a task from the package's manifest scripts.

Tasks run in a built-in POSIX shell with the package directory as working
directory, so they behave the same on any host. Arguments after the task
name become the script's positional parameters; use -- to pass flags
through.

By default the task comes from the active package; --package selects any
installed instance instead.

Examples:
  hoist run start
  hoist run migrate -- --dry-run
  hoist run healthcheck --package api-server@2.3.0`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runFlagPackage, "package", "current", "Package to run the task in (target syntax)")

	RootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	rec, err := resolve.Resolve(store, runFlagPackage)
	if err != nil {
		return err
	}

	exec := task.NewExecutor(store.Dir(), cfg.Env)
	err = exec.Run(cmd.Context(), rec, args[0], args[1:])
	if status, ok := task.ExitStatus(err); ok {
		// Propagate the script's exit code verbatim.
		os.Exit(status)
	}
	return err
}
