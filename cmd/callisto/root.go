package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "callisto",
	Short: "Callisto - drug-resistance rule interpreter",
	Long: `Callisto evaluates genetic variant calls against drug-resistance
rule corpora and reports per-drug resistance calls.

It provides:
  - A compiler and evaluator for the resistance condition language
  - YAML rule corpora with hot reload
  - Evidence recording for reproducible interpretations
  - Prometheus metrics for evaluation activity`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
