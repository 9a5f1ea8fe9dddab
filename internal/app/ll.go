package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hoist/internal/output"
)

var llCmd = &cobra.Command{
	Use:   "ll",
	Short: "List installed packages with directories and sizes",
	Long: `Long listing of installed package instances: directory name, on-disk
size, install time and declared engine compatibility.

Sizes are computed by walking each instance directory, so this is slower
than 'hoist list' for large packages.`,
	Args: cobra.NoArgs,
	RunE: runLl,
}

func init() {
	RootCmd.AddCommand(llCmd)
}

func runLl(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	records, err := store.List()
	if err != nil {
		return err
	}
	currentDir, err := store.CurrentDirectoryName()
	if err != nil {
		return err
	}

	sizes := make(map[string]int64, len(records))
	for _, rec := range records {
		size, err := dirSize(rec.Path)
		if err != nil {
			logger.Warn("failed to size package directory", "directory", rec.DirectoryName, "error", err)
			continue
		}
		sizes[rec.DirectoryName] = size
	}

	fmt.Print(output.RenderPackageTableLong(records, currentDir, sizes))
	return nil
}
