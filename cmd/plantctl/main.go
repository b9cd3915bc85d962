package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pthm-cable/plantcare/config"
)

var version = "0.1.0-dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "plantctl",
		Short: "Plant-care simulation toolkit",
		Long: `plantctl evaluates watering and lighting policies against the
plant-care simulation and keeps a ledger of past comparisons.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Path to config.yaml (empty = use defaults)")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (error, warn, info, debug, trace)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newConfigCmd(),
		newCompareCmd(),
		newHistoryCmd(),
	)
	return rootCmd
}

// loadConfig loads the file named by --config merged over defaults.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}
