package cmd

import (
	"github.com/spf13/cobra"

	"github.com/skim-satellite/adder/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Add interactively in the terminal",
	Long:  `Add interactively in the terminal. The sum updates as you type.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return tui.Run()
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
