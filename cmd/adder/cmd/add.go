package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/skim-satellite/adder/internal/adder"
	"github.com/skim-satellite/adder/internal/config"
	"github.com/skim-satellite/adder/internal/styles"
)

// ErrWrapped is returned by --check when the sum left the int32 range.
var ErrWrapped = errors.New("sum wrapped around the int32 range")

var addCmd = &cobra.Command{
	Use:   "add <a> <b>",
	Short: "Print the sum of two integers",
	Long: `Print the sum of two 32-bit signed integers.

Negative operands may appear anywhere; flags can come before or after them.

Examples:
  adder add 2 3                    # 5
  adder add 2147483647 1           # -2147483648
  adder add -5 3                   # -2
  adder add 5 -3 --json            # {"a":5,"b":-3,"sum":2,"overflow":false}
  adder add 2147483647 1 --check   # prints the sum, then fails`,
	Args: cobra.ExactArgs(2),
	RunE: runAdd,
}

var (
	addJSON  bool
	addCheck bool
)

func init() {
	addCmd.Flags().BoolVar(&addJSON, "json", false, "output as JSON")
	addCmd.Flags().BoolVar(&addCheck, "check", false, "fail when the sum wraps")

	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	res, err := adder.ParsePair(args[0], args[1])
	if err != nil {
		return err
	}

	if err := printResult(cmd.OutOrStdout(), res, cfg.Output, addJSON); err != nil {
		return err
	}

	if addCheck && res.Overflow {
		return fmt.Errorf("%w: %d + %d", ErrWrapped, res.A, res.B)
	}
	return nil
}

// printResult writes res in the configured format. forceJSON overrides it.
func printResult(w io.Writer, res adder.Result, out *config.OutputConfig, forceJSON bool) error {
	if forceJSON || out.GetFormat() == config.FormatJSON {
		enc := json.NewEncoder(w)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		return nil
	}

	if !out.IsBoxed() {
		fmt.Fprintf(w, "%d\n", res.Sum)
		return nil
	}

	lines := []string{
		fmt.Sprintf("%s %d", styles.RenderLabel("a:"), res.A),
		fmt.Sprintf("%s %d", styles.RenderLabel("b:"), res.B),
		styles.RenderSum(fmt.Sprintf("= %d", res.Sum)),
	}
	if res.Overflow {
		lines = append(lines, styles.RenderWarning("wrapped around int32"))
	}
	fmt.Fprintln(w, styles.RenderBox(lines, 0))
	return nil
}
