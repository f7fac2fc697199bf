package cmd

import (
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// negativeOperand matches arguments pflag would otherwise read as a cluster
// of shorthand flags.
var negativeOperand = regexp.MustCompile(`^-[0-9]+$`)

// takesOperands reports whether c reads integer operands.
func takesOperands(c *cobra.Command) bool {
	return c == addCmd || c == callCmd
}

// hoistOperands rewrites args for add and call so negative operands reach
// the command as positional arguments. Operands are moved behind a "--"
// while flags keep their place, so "add 5 -3 --json" parses as expected.
// Other commands get args unchanged.
func hoistOperands(args []string) []string {
	i := 0
	for i < len(args) {
		a := args[i]
		if a == "--" {
			return args
		}
		if !strings.HasPrefix(a, "-") {
			break
		}
		i += flagWidth(args[i:], rootCmd.PersistentFlags())
	}
	if i >= len(args) {
		return args
	}

	sub, _, err := rootCmd.Find(args[i : i+1])
	if err != nil || !takesOperands(sub) {
		return args
	}

	out := append([]string{}, args[:i+1]...)
	var operands []string
	rest := args[i+1:]
	for j := 0; j < len(rest); {
		a := rest[j]
		if a == "--" {
			operands = append(operands, rest[j+1:]...)
			break
		}
		if a == "-" || !strings.HasPrefix(a, "-") || negativeOperand.MatchString(a) {
			operands = append(operands, a)
			j++
			continue
		}
		n := flagWidth(rest[j:], sub.Flags(), rootCmd.PersistentFlags())
		out = append(out, rest[j:j+n]...)
		j += n
	}

	if len(operands) == 0 {
		return out
	}
	out = append(out, "--")
	return append(out, operands...)
}

// flagWidth returns how many arguments the flag at args[0] consumes: two
// for a known non-boolean flag given without "=value", otherwise one.
func flagWidth(args []string, sets ...*pflag.FlagSet) int {
	a := args[0]
	if strings.Contains(a, "=") || len(args) < 2 {
		return 1
	}

	var f *pflag.Flag
	for _, fs := range sets {
		if name, ok := strings.CutPrefix(a, "--"); ok {
			f = fs.Lookup(name)
		} else if len(a) == 2 {
			f = fs.ShorthandLookup(a[1:])
		}
		if f != nil {
			break
		}
	}
	if f == nil || f.Value.Type() == "bool" {
		return 1
	}
	return 2
}
