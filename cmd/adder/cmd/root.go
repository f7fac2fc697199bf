package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skim-satellite/adder/internal/config"
)

// Version is set at build time with -ldflags "-X .../cmd.Version=v1.2.3".
var Version = "dev"

var configPath string

var rootCmd = &cobra.Command{
	Use:   "adder",
	Short: "Add two 32-bit signed integers",
	Long: `adder adds two 32-bit signed integers with two's-complement wraparound.

Sums outside the int32 range wrap: 2147483647 + 1 = -2147483648.

The same addition is available from the command line, an interactive
terminal UI, a websocket server and a directory watcher for batch files.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath, "path to config file")
}

// Execute runs the root command with the given arguments.
func Execute(args []string) error {
	rootCmd.SetArgs(hoistOperands(args))
	return rootCmd.Execute()
}

func loadConfig() (config.Config, error) {
	return config.LoadOrDefault(configPath)
}
