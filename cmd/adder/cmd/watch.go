package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/skim-satellite/adder/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Evaluate batch files as they change",
	Long: `Watch a directory for batch files and write their sums.

Each batch file holds one pair of operands per line, separated by spaces or a
comma. Blank lines and lines starting with # are skipped. For every
<name>.add the watcher writes <name>.sum with one sum (or error) per pair.

Examples:
  adder watch ./inbox`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	w := watch.New(args[0], watch.Options{
		Suffix:   cfg.Watch.GetPattern(),
		Debounce: cfg.Watch.GetDebounce(),
		Log:      cmd.ErrOrStderr(),
	})
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s for *%s files\n", args[0], cfg.Watch.GetPattern())

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			reportEvent(cmd, ev)
		}
	}
}

func reportEvent(cmd *cobra.Command, ev watch.Event) {
	out := cmd.OutOrStdout()
	switch {
	case ev.Type == watch.Removed:
		fmt.Fprintf(out, "%s %s\n", ev.Type, ev.Name)
	case ev.Err != nil:
		fmt.Fprintf(cmd.ErrOrStderr(), "watch: %s: %v\n", ev.Name, ev.Err)
	default:
		failed := 0
		for _, r := range ev.Results {
			if r.Err != nil {
				failed++
			}
		}
		fmt.Fprintf(out, "%s %s -> %s (%d pairs, %d errors)\n", ev.Type, ev.Name, ev.ResultPath, len(ev.Results), failed)
	}
}
