package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hoist/internal/engine"
	"github.com/blackwell-systems/hoist/internal/npm"
	"github.com/blackwell-systems/hoist/internal/source"
)

var (
	installFlagForce     bool
	installFlagNoUse     bool
	installFlagSync      string
	installFlagSkipHooks []string
	installFlagToken     string
)

var installCmd = &cobra.Command{
	Use:   "install <source>",
	Short: "Install a package bundle",
	Long: `Install a package bundle into the packages directory.

The source may be a local directory, a local archive (.tar, .tar.gz, .tgz,
.tar.bz2, .tbz2), or an http(s) URL to such an archive. The bundle must
contain a package.json with name and version.

The install is transactional: the bundle is staged next to the packages
directory, verified, its dependencies synced, and only then published under
a unique directory name. A failed install leaves the packages directory
untouched. Unless --no-use is given, the new instance becomes current.

Sync modes (--sync):
  install    run npm install
  ci         run npm ci (requires package-lock.json)
  preferCi   run npm ci when a lock file is present, else npm install

Examples:
  # Install from a local archive and activate
  hoist install ./api-server-2.4.0.tar.gz

  # Install a second instance of an already-installed version
  hoist install ./api-server-2.4.0.tar.gz --force

  # Install from a release server without activating
  hoist install https://releases.example.com/api-server-2.5.0.tgz --no-use

  # Skip the bundle's install hooks
  hoist install ./bundle --skip-hooks preinstall,postinstall`,
	Args: cobra.ExactArgs(1),
	RunE: runInstall,
}

func init() {
	installCmd.Flags().BoolVar(&installFlagForce, "force", false, "Install even when the same name and version is already present")
	installCmd.Flags().BoolVar(&installFlagNoUse, "no-use", false, "Do not switch the current pointer to the new instance")
	installCmd.Flags().StringVar(&installFlagSync, "sync", "", "Dependency sync mode: install, ci, preferCi (default from config)")
	installCmd.Flags().StringSliceVar(&installFlagSkipHooks, "skip-hooks", nil, "Hook names to skip (preinstall, postinstall, preuse, postuse)")
	installCmd.Flags().StringVar(&installFlagToken, "token", "", "Bearer token for authenticated http(s) sources")

	RootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	eng, cfg, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	syncMode := cfg.SyncMode
	if installFlagSync != "" {
		syncMode = installFlagSync
	}
	mode, err := npm.ParseMode(syncMode)
	if err != nil {
		return err
	}

	result, err := eng.Install(cmd.Context(), engine.InstallOptions{
		Source: source.Spec{
			Specifier: args[0],
			Token:     installFlagToken,
		},
		Force:         installFlagForce,
		NoUse:         installFlagNoUse,
		SyncMode:      mode,
		DisabledHooks: mergeDisabledHooks(cfg, installFlagSkipHooks),
	})
	if result != nil {
		printWarnings(result.Warnings)
	}
	if err != nil {
		if result != nil && result.Record != nil {
			// The install committed; only activation failed.
			fmt.Printf("Installed %s as %s (not activated)\n",
				result.Record.Spec(), result.Record.DirectoryName)
		}
		return err
	}

	fmt.Printf("✓ Installed %s as %s\n", result.Record.Spec(), result.Record.DirectoryName)
	if result.Activated {
		fmt.Printf("✓ Current is now %s\n", result.Record.Spec())
	}
	return nil
}
