package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hoist/internal/history"
	"github.com/blackwell-systems/hoist/internal/output"
)

var historyFlagLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent deployment events",
	Long: `Show the deployment event log for this packages directory, newest
first: installs, switches, uninstalls and cleans, with their outcomes.

The log is advisory. It is recorded best-effort and plays no part in
resolving what is installed or current.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyFlagLimit, "limit", "n", 20, "Maximum number of events to show")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	hist, err := history.Open(store.HistoryDBPath())
	if err != nil {
		return fmt.Errorf("failed to open history log: %w", err)
	}
	defer hist.Close()

	events, err := hist.Recent(historyFlagLimit)
	if err != nil {
		return err
	}

	fmt.Print(output.RenderHistoryTable(events))
	return nil
}
