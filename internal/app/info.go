package app

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/hoist/internal/resolve"
)

var infoCmd = &cobra.Command{
	Use:   "info <target>",
	Short: "Show details for one installed package",
	Long: `Show the full record for one installed package instance.

The target follows the usual resolution rules: "current", an exact
directory name, name@version, a bare name, or a unique directory-name
prefix.

Examples:
  hoist info current
  hoist info api-server@2.4.0
  hoist info api-server@2.4.0-20250611`,
	Args: cobra.ExactArgs(1),
	RunE: runInfo,
}

func init() {
	RootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	rec, err := resolve.Resolve(store, args[0])
	if err != nil {
		return err
	}

	currentDir, err := store.CurrentDirectoryName()
	if err != nil {
		return err
	}

	fmt.Printf("Name:          %s\n", rec.Name)
	fmt.Printf("Version:       %s\n", rec.Version)
	fmt.Printf("Directory:     %s\n", rec.DirectoryName)
	fmt.Printf("Path:          %s\n", rec.Path)
	fmt.Printf("Installed:     %s\n", rec.InstalledAt.Local().Format("2006-01-02 15:04:05"))
	if rec.UsedAt != nil {
		fmt.Printf("Last used:     %s\n", rec.UsedAt.Local().Format("2006-01-02 15:04:05"))
	} else {
		fmt.Printf("Last used:     never\n")
	}
	if rec.Compatibility != "" {
		fmt.Printf("Compatibility: %s\n", rec.Compatibility)
	}
	fmt.Printf("Current:       %v\n", rec.DirectoryName == currentDir)

	if len(rec.Scripts) > 0 {
		names := make([]string, 0, len(rec.Scripts))
		for name := range rec.Scripts {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Printf("Tasks:         %s\n", strings.Join(names, ", "))
	}
	if len(rec.Env) > 0 {
		keys := make([]string, 0, len(rec.Env))
		for k := range rec.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Println("Env:")
		for _, k := range keys {
			fmt.Printf("  %s=%s\n", k, rec.Env[k])
		}
	}
	return nil
}
