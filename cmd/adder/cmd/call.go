package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/skim-satellite/adder/internal/adder"
	"github.com/skim-satellite/adder/internal/client"
	"github.com/skim-satellite/adder/internal/server"
)

var callCmd = &cobra.Command{
	Use:   "call <a> <b>",
	Short: "Ask a running adder server for a sum",
	Long: `Ask a running adder server for a sum.

Examples:
  adder call 2 3                                  # uses the configured server address
  adder call 2 3 --binary                         # use the binary frame encoding
  adder call -7 3                                 # negative operands need no --
  adder call 2 3 --url ws://10.0.0.5:7432/add     # explicit endpoint`,
	Args: cobra.ExactArgs(2),
	RunE: runCall,
}

var (
	callURL     string
	callBinary  bool
	callJSON    bool
	callTimeout time.Duration
)

func init() {
	callCmd.Flags().StringVar(&callURL, "url", "", "websocket endpoint (default from config)")
	callCmd.Flags().BoolVar(&callBinary, "binary", false, "use binary frames")
	callCmd.Flags().BoolVar(&callJSON, "json", false, "output as JSON")
	callCmd.Flags().DurationVar(&callTimeout, "timeout", 10*time.Second, "request timeout")

	rootCmd.AddCommand(callCmd)
}

func runCall(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	a, err := adder.ParseOperand(args[0])
	if err != nil {
		return fmt.Errorf("first operand: %w", err)
	}
	b, err := adder.ParseOperand(args[1])
	if err != nil {
		return fmt.Errorf("second operand: %w", err)
	}

	url := callURL
	if url == "" {
		url = "ws://" + cfg.Server.GetAddr() + server.AddPath
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), callTimeout)
	defer cancel()

	c, err := client.Dial(ctx, url)
	if err != nil {
		return err
	}
	defer c.Close()

	var res adder.Result
	if callBinary {
		res, err = c.AddBinary(ctx, a, b)
	} else {
		res, err = c.Add(ctx, a, b)
	}
	if err != nil {
		return fmt.Errorf("failed to add: %w", err)
	}

	return printResult(cmd.OutOrStdout(), res, cfg.Output, callJSON)
}
