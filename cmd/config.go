package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"invite-media/infrastructure/config"

	"github.com/spf13/cobra"
)

// DefaultOutput is the default output writer for config commands
var DefaultOutput OutputWriter = os.Stdout

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show and change configuration settings",
	Long: `Show and change the settings stored in the configuration file.

Secrets are masked when listed.

Examples:
  invite-media config list
  invite-media config get service.endpoint
  invite-media config set upload.batch_size 5`,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
}

func configPath() string {
	if cfgFile == "" {
		return config.DefaultPath
	}
	return cfgFile
}

// --- LIST command ---

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all settings",
	Args:  cobra.NoArgs,
	RunE:  runConfigList,
}

func runConfigList(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("config file not found. Run 'invite-media setup' first")
	}
	return RunConfigListWithDependencies(cfg, configPath(), DefaultOutput)
}

// RunConfigListWithDependencies prints every setting in a table (for testing)
func RunConfigListWithDependencies(cfg *config.Config, path string, out OutputWriter) error {
	mgr := config.NewConfigManager(cfg, path)

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tVALUE")
	for _, s := range mgr.List() {
		fmt.Fprintf(w, "%s\t%s\n", s.Key, display(s))
	}
	return w.Flush()
}

// --- GET command ---

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print one setting",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigGet,
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		return fmt.Errorf("config file not found. Run 'invite-media setup' first")
	}
	return RunConfigGetWithDependencies(cfg, configPath(), args[0], DefaultOutput)
}

// RunConfigGetWithDependencies prints a single setting (for testing)
func RunConfigGetWithDependencies(cfg *config.Config, path, key string, out OutputWriter) error {
	s, err := config.NewConfigManager(cfg, path).Get(key)
	if err != nil {
		return fmt.Errorf("%w (valid keys: %v)", err, config.Keys())
	}
	fmt.Fprintln(out, display(s))
	return nil
}

// --- SET command ---

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Change one setting and save the file",
	Args:  cobra.ExactArgs(2),
	RunE:  runConfigSet,
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if cfg == nil {
		cfg = &config.Config{}
		cfg.ApplyDefaults()
	}
	return RunConfigSetWithDependencies(cfg, configPath(), args[0], args[1], DefaultOutput)
}

// RunConfigSetWithDependencies updates and saves a setting (for testing)
func RunConfigSetWithDependencies(cfg *config.Config, path, key, value string, out OutputWriter) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	mgr := config.NewConfigManager(cfg, path)
	if err := mgr.Set(key, value); err != nil {
		return err
	}

	s, err := mgr.Get(key)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Set %s = %s\n", s.Key, display(s))
	return nil
}

func display(s config.Setting) string {
	if s.Value == "" {
		return "(not set)"
	}
	if s.Secret {
		return s.Masked()
	}
	return s.Value
}
