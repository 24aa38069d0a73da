// Package main is the entry point for the rpcpoll CLI.
//
// rpcpoll can be used either as a library (SDK) or as a standalone binary
// with YAML configuration. This CLI provides the standalone binary approach.
//
// Usage:
//
//	rpcpoll watch -c config.yaml                 # Run the configured polls
//	rpcpoll call -e URL eth_blockNumber          # One-shot JSON-RPC call
//	rpcpoll validate -c config.yaml              # Validate configuration
//	rpcpoll version                              # Show version info
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the base command when called without subcommands.
// It just displays help - actual functionality is in subcommands.
var rootCmd = &cobra.Command{
	Use:   "rpcpoll",
	Short: "A recurring JSON-RPC poller",
	Long: `rpcpoll repeatedly invokes JSON-RPC methods on a timer and reports
each successful response.

Quick start:
  1. Create a config file (rpcpoll.yaml)
  2. Run: rpcpoll watch -c rpcpoll.yaml

Example config:
  endpoint: https://rpc.example.com
  poll_interval: 10s
  polls:
    - name: head block
      method: eth_blockNumber
    - name: peers
      method: net_peerCount
      interval: 30s`,
	// No Run/RunE means this just shows help when called without subcommands
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this rpcpoll binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("rpcpoll %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	// Register subcommands with root
	rootCmd.AddCommand(versionCmd)
}
