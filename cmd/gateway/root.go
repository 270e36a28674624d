package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"npcgate/gateway/pkg/cli"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "gateway",
	Short: "NPC dialog gateway for a local AI worker",
	Long: `The gateway authenticates game clients (HMAC, API key or open mode),
rate limits them per principal and route, and forwards emotion and dialog
tasks to a single AI worker attached over a websocket.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (empty: defaults and environment only)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
}
