package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/rpcpoll/config"
)

// validateCmd validates a config file without running any polls.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a config file",
	Long: `Validate an rpcpoll configuration file without issuing any requests.

This command parses the YAML, expands environment variables, and validates
all fields. It's useful for CI/CD pipelines or pre-deployment checks.

Exit codes:
  0 - Config is valid
  1 - Config is invalid (error details printed to stderr)

Example:
  rpcpoll validate -c config.yaml
  rpcpoll validate --config /etc/rpcpoll/config.yaml`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("config", "c", "", "path to config file (required)")
	_ = validateCmd.MarkFlagRequired("config")
}

func runValidate(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	limited := 0
	for _, p := range cfg.Polls {
		if p.Limit > 0 {
			limited++
		}
	}

	fmt.Printf("Config is valid!\n")
	fmt.Printf("  Endpoint:      %s\n", cfg.Endpoint)
	fmt.Printf("  Poll interval: %s\n", cfg.PollInterval.Duration())
	fmt.Printf("  Polls:         %d (%d with a limit)\n", len(cfg.Polls), limited)
	if cfg.StatusPort != 0 {
		fmt.Printf("  Status port:   %d\n", cfg.StatusPort)
	}

	return nil
}
