package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "argus",
	Short: "Argus - portfolio snapshot data quality engine",
	Long: `Argus validates daily portfolio position and trade exports.

A single run loads one CSV snapshot, evaluates every detector
(completeness, price spikes, calculation errors, trade/market
consistency, reconciliation, FX consistency, weights, static data)
and prints the findings ranked by severity.

Usage:
  go run ./cmd/argus [command]

Examples:
  go run ./cmd/argus check positions.csv
  go run ./cmd/argus check positions.csv --min-severity High --save
  go run ./cmd/argus schedule`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
