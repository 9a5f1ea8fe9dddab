package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hoist/internal/engine"
)

var useFlagSkipHooks []string

var useCmd = &cobra.Command{
	Use:   "use <target>",
	Short: "Switch the active package",
	Long: `Atomically switch the current pointer to an installed package.

The preuse hook of the target runs before the pointer moves and can veto
the switch, leaving the previous instance active. The switch itself is a
symlink rename: a process resolving the pointer sees either the old or the
new target, never a missing one.

Examples:
  hoist use api-server@2.4.0
  hoist use api-server            # current instance of that name, else highest version
  hoist use api-server@2.4.0-20250611T120000`,
	Args: cobra.ExactArgs(1),
	RunE: runUse,
}

func init() {
	useCmd.Flags().StringSliceVar(&useFlagSkipHooks, "skip-hooks", nil, "Hook names to skip (preuse, postuse)")

	RootCmd.AddCommand(useCmd)
}

func runUse(cmd *cobra.Command, args []string) error {
	eng, cfg, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	result, err := eng.Use(args[0], engine.UseOptions{
		DisabledHooks: mergeDisabledHooks(cfg, useFlagSkipHooks),
	})
	if result != nil {
		printWarnings(result.Warnings)
	}
	if err != nil {
		return err
	}

	fmt.Printf("✓ Current is now %s (%s)\n", result.Record.Spec(), result.Record.DirectoryName)
	return nil
}
