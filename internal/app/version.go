package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hoist/internal/engine"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the hoist version",
	Long: `Print the engine version. Packages declare compatibility against this
version through engines.hoist in their manifest.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("hoist %s\n", engine.Version)
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
