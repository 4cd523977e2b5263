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
	Short: "Callisto - AI-assisted host security auditor",
	Long: `Callisto audits the local host's hardware, OS, network, and security
configuration and produces a scored report.

Findings are scored either by an AI provider (Anthropic or OpenAI,
behind a rate limiter with a circuit breaker) or by a deterministic
fallback when no provider is configured or reachable. Audits always
complete; AI is assistance, never a dependency.`,
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
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "callisto.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
