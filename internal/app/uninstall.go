package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hoist/internal/engine"
)

var uninstallFlagSkipHooks []string

var uninstallCmd = &cobra.Command{
	Use:     "uninstall <target>",
	Aliases: []string{"remove", "rm"},
	Short:   "Remove an installed package",
	Long: `Remove an installed package instance: its contents, record, and hooks.

The active instance cannot be uninstalled; switch to another package with
'hoist use' first. The preuninstall hook can veto the removal; a failing
postuninstall hook is reported but the removal stands.

Examples:
  hoist uninstall api-server@2.3.0
  hoist rm api-server@2.3.0-20250420T091500`,
	Args: cobra.ExactArgs(1),
	RunE: runUninstall,
}

func init() {
	uninstallCmd.Flags().StringSliceVar(&uninstallFlagSkipHooks, "skip-hooks", nil, "Hook names to skip (preuninstall, postuninstall)")

	RootCmd.AddCommand(uninstallCmd)
}

func runUninstall(cmd *cobra.Command, args []string) error {
	eng, cfg, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	result, err := eng.Uninstall(args[0], engine.UninstallOptions{
		DisabledHooks: mergeDisabledHooks(cfg, uninstallFlagSkipHooks),
	})
	if result != nil {
		printWarnings(result.Warnings)
	}
	if err != nil {
		return err
	}

	fmt.Printf("✓ Uninstalled %s (%s)\n", result.Record.Spec(), result.Record.DirectoryName)
	return nil
}
