package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skim-satellite/adder/internal/config"
	"github.com/skim-satellite/adder/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve additions over a websocket",
	Long: `Serve additions over a websocket at /add until interrupted.

Text frames carry JSON:
  -> {"type":"add","id":"1","a":2,"b":3}
  <- {"type":"result","id":"1","sum":5,"overflow":false}

Binary frames carry a and b as 8 big-endian bytes; the reply is the sum as
4 big-endian bytes followed by a flags byte (bit 0 set when the sum wrapped).

Examples:
  adder serve                       # listen on the configured address
  adder serve --addr :9000          # listen on all interfaces, port 9000`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	serverCfg := cfg.Server
	if serveAddr != "" {
		override := config.ServerConfig{}
		if serverCfg != nil {
			override = *serverCfg
		}
		override.Addr = &serveAddr
		if err := override.Validate(); err != nil {
			return fmt.Errorf("invalid --addr: %w", err)
		}
		serverCfg = &override
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.New(serverCfg, cmd.ErrOrStderr()).ListenAndServe(ctx)
}
