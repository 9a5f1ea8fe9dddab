package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var currentCmd = &cobra.Command{
	Use:     "current",
	Aliases: []string{"cur"},
	Short:   "Show the active package",
	Long: `Print the package the current pointer references.

Exits with an error when no package is active, so scripts can probe for an
active instance with the exit status alone.`,
	Args: cobra.NoArgs,
	RunE: runCurrent,
}

func init() {
	RootCmd.AddCommand(currentCmd)
}

func runCurrent(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	rec, err := store.Current()
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("no package is currently active")
	}

	fmt.Printf("%s (%s)\n", rec.Spec(), rec.DirectoryName)
	return nil
}
