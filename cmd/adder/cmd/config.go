package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skim-satellite/adder/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the adder config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Long: `Write a default config file to the --config path (default .adder.json).

Examples:
  adder config init           # create .adder.json
  adder config init --force   # overwrite an existing file`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

var configInitForce bool

func init() {
	configInitCmd.Flags().BoolVar(&configInitForce, "force", false, "overwrite an existing config file")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configPath); err == nil && !configInitForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", configPath)
	}

	if err := config.Save(configPath, config.Default()); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", configPath)
	return nil
}

// effectiveConfig spells out every setting, defaults included.
type effectiveConfig struct {
	Format      string `json:"format"`
	Boxed       bool   `json:"boxed"`
	Addr        string `json:"addr"`
	ReadTimeout string `json:"read_timeout"`
	Debounce    string `json:"debounce"`
	Pattern     string `json:"pattern"`
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	eff := effectiveConfig{
		Format:      cfg.Output.GetFormat(),
		Boxed:       cfg.Output.IsBoxed(),
		Addr:        cfg.Server.GetAddr(),
		ReadTimeout: cfg.Server.GetReadTimeout().String(),
		Debounce:    cfg.Watch.GetDebounce().String(),
		Pattern:     cfg.Watch.GetPattern(),
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(eff); err != nil {
		return fmt.Errorf("failed to encode json: %w", err)
	}
	return nil
}
