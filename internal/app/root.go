package app

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	flagDir    string
	flagConfig string
	flagQuiet  bool

	logger = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: false,
	})

	// RootCmd is the root command for hoist
	RootCmd = &cobra.Command{
		Use:   "hoist",
		Short: "Host-local deployment of versioned package bundles",
		Long: `hoist installs versioned package bundles into a packages directory,
keeps every installed instance side by side, and switches the active one
atomically through a "current" symlink.

Each install is transactional: the bundle is staged, verified, its
dependencies synced, and only then published. Lifecycle hook scripts
shipped inside the bundle run at each transition and pre-hooks can veto it.

Examples:
  # Install a bundle and make it current
  hoist install ./api-server-2.4.0.tar.gz

  # Install a remote bundle without activating it
  hoist install https://releases.example.com/api-server-2.5.0.tgz --no-use

  # List installed packages
  hoist list

  # Switch the active instance
  hoist use api-server@2.4.0

  # Roll back to whatever was current before (see history)
  hoist history

  # Remove everything except the active instance
  hoist clean`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	// Global flags
	RootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "packages directory (default: ~/.hoist/packages or packages_dir from config)")
	RootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (default: ~/.config/hoist/config.toml)")
	RootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress informational log output")

	RootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if flagQuiet {
			logger.SetLevel(log.ErrorLevel)
		} else if os.Getenv("HOIST_DEBUG") != "" {
			logger.SetLevel(log.DebugLevel)
		}
	}

	// Enable cobra's built-in suggestion feature for unknown subcommands
	RootCmd.SuggestionsMinimumDistance = 2
}

// Execute runs the root command
func Execute() error {
	return RootCmd.Execute()
}
