package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hoist/internal/output"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List installed packages",
	Long: `List all installed package instances in install order.

The active instance is marked with an asterisk. Use 'hoist ll' for the
long listing with directory names and on-disk sizes.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	RootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
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

	fmt.Print(output.RenderPackageTable(records, currentDir))
	return nil
}
