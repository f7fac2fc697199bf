package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/skim-satellite/adder/internal/adder"
	"github.com/skim-satellite/adder/internal/config"
	"github.com/skim-satellite/adder/internal/server"
	"github.com/skim-satellite/adder/internal/testutil"
)

// resetFlags puts every flag back to its default so package-level flag
// variables do not leak between test runs.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if f.Changed {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		}
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// executeCommand runs the root command with a config path inside a temp dir.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	t.Cleanup(func() { resetFlags(rootCmd) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})

	hasConfig := false
	for _, a := range args {
		if strings.HasPrefix(a, "--config") {
			hasConfig = true
		}
	}
	if !hasConfig {
		args = append([]string{"--config", filepath.Join(t.TempDir(), "adder.json")}, args...)
	}

	err := Execute(args)
	return out.String(), err
}

func TestAddCommand(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want string
	}{
		{"basic", []string{"add", "2", "3"}, "5\n"},
		{"overflow wraps", []string{"add", "2147483647", "1"}, "-2147483648\n"},
		{"underflow wraps", []string{"add", "--", "-2147483648", "-1"}, "2147483647\n"},
		{"negative after dashes", []string{"add", "--", "-5", "3"}, "-2\n"},
		{"negative first", []string{"add", "-5", "3"}, "-2\n"},
		{"negative second", []string{"add", "5", "-3"}, "2\n"},
		{"both negative", []string{"add", "-2147483648", "-1"}, "2147483647\n"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := executeCommand(t, tc.args...)
			require.NoError(t, err)
			require.Equal(t, tc.want, out)
		})
	}
}

func TestHoistOperands(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want []string
	}{
		{"no negatives", []string{"add", "2", "3"}, []string{"add", "--", "2", "3"}},
		{"negative second", []string{"add", "5", "-3"}, []string{"add", "--", "5", "-3"}},
		{"flags stay", []string{"add", "-5", "--json", "3"}, []string{"add", "--json", "--", "-5", "3"}},
		{"root flag first", []string{"--config", "c.json", "add", "-1", "-2"}, []string{"--config", "c.json", "add", "--", "-1", "-2"}},
		{"valued flag", []string{"call", "--url", "ws://x/add", "-1", "2"}, []string{"call", "--url", "ws://x/add", "--", "-1", "2"}},
		{"valued flag with equals", []string{"call", "-1", "--timeout=1s", "2"}, []string{"call", "--timeout=1s", "--", "-1", "2"}},
		{"existing dashes", []string{"add", "--check", "--", "-5", "3"}, []string{"add", "--check", "--", "-5", "3"}},
		{"other command", []string{"watch", "-1"}, []string{"watch", "-1"}},
		{"no operands", []string{"add", "--json"}, []string{"add", "--json"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, hoistOperands(tc.args))
		})
	}
}

func TestAddCommandNegativeWithFlags(t *testing.T) {
	r := require.New(t)
	out, err := executeCommand(t, "add", "5", "-3", "--json")
	r.NoError(err)
	r.JSONEq(`{"a":5,"b":-3,"sum":2,"overflow":false}`, out)

	out, err = executeCommand(t, "add", "--check", "-2147483648", "-1")
	r.True(errors.Is(err, ErrWrapped), "got %v", err)
	r.Equal("2147483647\n", out)
}

func TestAddCommandJSON(t *testing.T) {
	r := require.New(t)
	out, err := executeCommand(t, "add", "2147483647", "1", "--json")
	r.NoError(err)

	var res adder.Result
	r.NoError(json.Unmarshal([]byte(out), &res))
	r.Equal(adder.Result{A: 2147483647, B: 1, Sum: -2147483648, Overflow: true}, res)
}

func TestAddCommandCheck(t *testing.T) {
	r := require.New(t)

	out, err := executeCommand(t, "add", "2147483647", "1", "--check")
	r.True(errors.Is(err, ErrWrapped), "got %v", err)
	r.Equal("-2147483648\n", out, "sum is printed even when the check fails")

	_, err = executeCommand(t, "add", "1", "1", "--check")
	r.NoError(err)
}

func TestAddCommandInvalidOperand(t *testing.T) {
	cases := []struct {
		name string
		args []string
		want error
	}{
		{"not a number", []string{"add", "two", "3"}, adder.ErrInvalidOperand},
		{"out of range", []string{"add", "1", "2147483648"}, adder.ErrOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := executeCommand(t, tc.args...)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := executeCommand(t, "add", "1"); err == nil {
		t.Fatal("expected error for missing operand")
	}
}

func TestAddCommandUsesConfig(t *testing.T) {
	r := require.New(t)
	path := filepath.Join(t.TempDir(), "adder.json")
	boxed := true
	cfg := config.Default()
	cfg.Output = &config.OutputConfig{Boxed: &boxed}
	r.NoError(config.Save(path, cfg))

	out, err := executeCommand(t, "add", "2", "3", "--config", path)
	r.NoError(err)
	plain := ansi.Strip(out)
	r.Contains(plain, "= 5")
	r.Contains(plain, "╭")

	format := config.FormatJSON
	cfg.Output = &config.OutputConfig{Format: &format}
	r.NoError(config.Save(path, cfg))

	out, err = executeCommand(t, "add", "2", "3", "--config", path)
	r.NoError(err)
	r.JSONEq(`{"a":2,"b":3,"sum":5,"overflow":false}`, out)
}

func TestConfigInitAndShow(t *testing.T) {
	r := require.New(t)
	path := filepath.Join(t.TempDir(), "adder.json")

	out, err := executeCommand(t, "config", "init", "--config", path)
	r.NoError(err)
	r.Contains(out, path)
	_, err = os.Stat(path)
	r.NoError(err)

	_, err = executeCommand(t, "config", "init", "--config", path)
	r.Error(err, "init must refuse to overwrite without --force")

	_, err = executeCommand(t, "config", "init", "--force", "--config", path)
	r.NoError(err)

	out, err = executeCommand(t, "config", "show", "--config", path)
	r.NoError(err)
	var eff effectiveConfig
	r.NoError(json.Unmarshal([]byte(out), &eff))
	r.Equal(config.FormatText, eff.Format)
	r.Equal(config.DefaultServerAddr, eff.Addr)
	r.Equal(config.DefaultPattern, eff.Pattern)
}

func TestInvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adder.json")
	if err := os.WriteFile(path, []byte(`{"version": 9}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := executeCommand(t, "add", "1", "2", "--config", path); err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := executeCommand(t, "version")
	require.NoError(t, err)
	require.Equal(t, "adder "+Version+"\n", out)
}

func TestCallCommand(t *testing.T) {
	ts := httptest.NewServer(server.New(nil, io.Discard).Handler())
	defer ts.Close()
	url := testutil.WebSocketURL(ts.URL, server.AddPath)

	cases := []struct {
		name string
		args []string
		want string
	}{
		{"json frames", []string{"call", "2", "3", "--url", url}, "5\n"},
		{"binary frames", []string{"call", "2147483647", "1", "--binary", "--url", url}, "-2147483648\n"},
		{"negative operands", []string{"call", "-7", "3", "--url", url}, "-4\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := executeCommand(t, tc.args...)
			require.NoError(t, err)
			require.Equal(t, tc.want, out)
		})
	}

	out, err := executeCommand(t, "call", "1", "1", "--json", "--url", url)
	require.NoError(t, err)
	require.JSONEq(t, `{"a":1,"b":1,"sum":2,"overflow":false}`, out)
}

func TestCallCommandNoServer(t *testing.T) {
	_, err := executeCommand(t, "call", "1", "1", "--url", "ws://127.0.0.1:1/add", "--timeout", "1s")
	if err == nil {
		t.Fatal("expected error when no server is listening")
	}
}
