package app

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hoist/internal/engine"
	"github.com/blackwell-systems/hoist/internal/output"
	"github.com/blackwell-systems/hoist/internal/pkgdir"
)

var (
	cleanFlagYes       bool
	cleanFlagDryRun    bool
	cleanFlagSkipHooks []string
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove all packages except the active one",
	Long: `Remove every installed package instance except the one the current
pointer references.

Each removal runs the package's uninstall hooks; a failure on one package
is reported but does not stop the remaining removals.

Examples:
  # Preview what would be removed
  hoist clean --dry-run

  # Remove without prompting
  hoist clean --yes`,
	Args: cobra.NoArgs,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().BoolVarP(&cleanFlagYes, "yes", "y", false, "Skip the confirmation prompt")
	cleanCmd.Flags().BoolVar(&cleanFlagDryRun, "dry-run", false, "Show what would be removed without removing")
	cleanCmd.Flags().StringSliceVar(&cleanFlagSkipHooks, "skip-hooks", nil, "Hook names to skip (preuninstall, postuninstall)")

	RootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	eng, cfg, err := openEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	store := eng.Store()
	records, err := store.List()
	if err != nil {
		return err
	}
	currentDir, err := store.CurrentDirectoryName()
	if err != nil {
		return err
	}

	var candidates []*pkgdir.Record
	for _, rec := range records {
		if rec.DirectoryName != currentDir {
			candidates = append(candidates, rec)
		}
	}

	if len(candidates) == 0 {
		fmt.Println("Nothing to clean.")
		return nil
	}

	fmt.Printf("Packages to remove (%d):\n", len(candidates))
	for _, rec := range candidates {
		fmt.Printf("  %s (%s)\n", rec.Spec(), rec.DirectoryName)
	}

	if cleanFlagDryRun {
		fmt.Println("\nDry-run mode: no packages will be removed.")
		return nil
	}

	if !cleanFlagYes && !confirmClean(len(candidates)) {
		fmt.Println("Clean cancelled.")
		return nil
	}

	progress := output.NewProgress(len(candidates), "Removing packages")
	result, err := eng.Clean(engine.CleanOptions{
		DisabledHooks: mergeDisabledHooks(cfg, cleanFlagSkipHooks),
		OnItem: func(rec *pkgdir.Record) {
			progress.Increment()
		},
	})
	if err != nil {
		return err
	}
	progress.Finish()
	printWarnings(result.Warnings)

	fmt.Printf("\n✓ Removed %d packages\n", len(result.Removed))

	if len(result.Failures) > 0 {
		fmt.Printf("\n⚠  %d failures:\n", len(result.Failures))
		for _, f := range result.Failures {
			fmt.Printf("  - %s: %v\n", f.Record.DirectoryName, f.Err)
		}
		return fmt.Errorf("%d packages could not be removed", len(result.Failures))
	}
	return nil
}

// confirmClean prompts the user to confirm the sweep.
func confirmClean(count int) bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Printf("\nRemove %d packages? [y/N]: ", count)

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
