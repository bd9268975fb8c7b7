package cmd

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"invite-media/infrastructure/config"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"
)

// Prompter interface for interactive prompts (allows mocking in tests)
type Prompter interface {
	Input(message string, defaultValue string) (string, error)
	Password(message string) (string, error)
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements Prompter using the survey library
type SurveyPrompter struct{}

func (p *SurveyPrompter) Input(message string, defaultValue string) (string, error) {
	result := ""
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Password(message string) (string, error) {
	result := ""
	if err := survey.AskOne(&survey.Password{Message: message}, &result); err != nil {
		return "", err
	}
	return result, nil
}

func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	result := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

// DefaultPrompter is the prompter used in production
var DefaultPrompter Prompter = &SurveyPrompter{}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create configuration file interactively",
	Long: `Prompts for configuration values and creates config.yaml.

This command asks for the media service endpoint, its api key and the
upload settings used by the upload command.`,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath
	}
	return RunSetupWithPrompter(DefaultPrompter, path, os.Stdout)
}

// RunSetupWithPrompter runs the setup with a given prompter (for testing)
func RunSetupWithPrompter(prompter Prompter, configPath string, out OutputWriter) error {
	// Check if config already exists
	if _, err := os.Stat(configPath); err == nil {
		overwrite, err := prompter.Confirm("config.yaml already exists. Overwrite?", false)
		if err != nil {
			return fmt.Errorf("prompt cancelled")
		}
		if !overwrite {
			fmt.Fprintln(out, "Setup cancelled.")
			return nil
		}
	}

	fmt.Fprintln(out, "Welcome to invite-media setup!")
	fmt.Fprintln(out)

	cfg := &config.Config{}

	if err := promptService(prompter, cfg); err != nil {
		return err
	}

	if err := promptUpload(prompter, cfg); err != nil {
		return err
	}

	// Ensure config directory exists
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := config.Save(cfg, configPath); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Configuration saved to %s\n", configPath)
	return nil
}

func promptService(prompter Prompter, cfg *config.Config) error {
	endpoint, err := prompter.Input("Media service URL?", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	endpoint = strings.TrimRight(strings.TrimSpace(endpoint), "/")
	if endpoint == "" {
		return fmt.Errorf("service URL is required")
	}
	if u, err := url.Parse(endpoint); err != nil || u.Host == "" {
		return fmt.Errorf("service URL must be an http(s) URL")
	}
	cfg.Service.Endpoint = endpoint

	apiKey, err := prompter.Password("API key?")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if apiKey == "" {
		return fmt.Errorf("api key is required")
	}
	cfg.Service.APIKey = apiKey

	sendBearer, err := prompter.Confirm("Also send the key as a bearer token?", true)
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	if sendBearer {
		cfg.Service.BearerToken = apiKey
	}
	return nil
}

func promptUpload(prompter Prompter, cfg *config.Config) error {
	folder, err := prompter.Input("Upload folder ID? (leave empty to use the service's folder)", "")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	cfg.Upload.FolderID = strings.TrimSpace(folder)

	batch, err := prompter.Input("How many files should upload at once?", "3")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	n, err := strconv.Atoi(strings.TrimSpace(batch))
	if err != nil || n < 1 {
		return fmt.Errorf("batch size must be a positive number")
	}
	cfg.Upload.BatchSize = n

	timeout, err := prompter.Input("Per-file upload timeout?", "5m")
	if err != nil {
		return fmt.Errorf("prompt cancelled")
	}
	d, err := time.ParseDuration(strings.TrimSpace(timeout))
	if err != nil || d <= 0 {
		return fmt.Errorf("timeout must be a duration such as 5m")
	}
	cfg.Upload.Timeout = d

	return nil
}
