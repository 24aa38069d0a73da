package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jpalmerr/rpcpoll"
)

// callCmd issues a single JSON-RPC request and prints the raw result.
var callCmd = &cobra.Command{
	Use:   "call METHOD [PARAMS]",
	Short: "Issue a one-shot JSON-RPC call",
	Long: `Issue a single JSON-RPC request against an endpoint and print the
raw JSON result to stdout.

PARAMS, when given, must be a JSON value (typically an array).

Example:
  rpcpoll call -e https://rpc.example.com eth_blockNumber
  rpcpoll call -e https://rpc.example.com eth_getBlockByNumber '["latest", false]'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)

	callCmd.Flags().StringP("endpoint", "e", "", "JSON-RPC endpoint URL (required)")
	callCmd.Flags().DurationP("timeout", "t", 30*time.Second, "request timeout")
	_ = callCmd.MarkFlagRequired("endpoint")
}

func runCall(cmd *cobra.Command, args []string) error {
	endpoint, _ := cmd.Flags().GetString("endpoint")
	timeout, _ := cmd.Flags().GetDuration("timeout")

	method := args[0]
	var params json.RawMessage
	if len(args) == 2 {
		if !json.Valid([]byte(args[1])) {
			return fmt.Errorf("params must be valid JSON: %q", args[1])
		}
		params = json.RawMessage(args[1])
	}

	client, err := rpcpoll.NewClient(endpoint, rpcpoll.WithRequestTimeout(timeout))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	result, err := client.Request(cmd.Context(), method, params)
	if err != nil {
		return fmt.Errorf("call failed: %w", err)
	}

	fmt.Println(string(result))
	return nil
}
