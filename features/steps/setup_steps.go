//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"invite-media/cmd"
	"invite-media/infrastructure/config"

	"github.com/cucumber/godog"
)

type setupContext struct {
	tempDir         string
	configPath      string
	originalContent string
	output          *bytes.Buffer
	err             error
}

var SharedSetupContext = &setupContext{}

// MockPrompter implements cmd.Prompter for testing
type MockPrompter struct {
	inputResponses    []string
	passwordResponses []string
	confirmResponses  []bool
	inputIndex        int
	passwordIndex     int
	confirmIndex      int
}

func NewMockPrompter(inputs, passwords []string, confirms []bool) *MockPrompter {
	return &MockPrompter{
		inputResponses:    inputs,
		passwordResponses: passwords,
		confirmResponses:  confirms,
	}
}

func (m *MockPrompter) Input(message string, defaultValue string) (string, error) {
	if m.inputIndex >= len(m.inputResponses) {
		return defaultValue, nil
	}
	response := m.inputResponses[m.inputIndex]
	m.inputIndex++
	if response == "" {
		return defaultValue, nil
	}
	return response, nil
}

func (m *MockPrompter) Password(message string) (string, error) {
	if m.passwordIndex >= len(m.passwordResponses) {
		return "", fmt.Errorf("no more password responses available for message: %s", message)
	}
	response := m.passwordResponses[m.passwordIndex]
	m.passwordIndex++
	return response, nil
}

func (m *MockPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	if m.confirmIndex >= len(m.confirmResponses) {
		return defaultValue, nil
	}
	response := m.confirmResponses[m.confirmIndex]
	m.confirmIndex++
	return response, nil
}

func InitializeSetupScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedSetupContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		// Create temp directory for each scenario
		tempDir, err := os.MkdirTemp("", "setup-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config", "config.yaml")
		testCtx.originalContent = ""
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^no config file exists for setup$`, testCtx.noConfigFileExistsForSetup)
	ctx.Step(`^a config file already exists for setup$`, testCtx.aConfigFileAlreadyExistsForSetup)
	ctx.Step(`^I run the setup command with inputs:$`, testCtx.iRunTheSetupCommandWithInputs)
	ctx.Step(`^I run the setup command with confirmation "([^"]*)"$`, testCtx.iRunTheSetupCommandWithConfirmation)
	ctx.Step(`^a config file should exist$`, testCtx.aConfigFileShouldExist)
	ctx.Step(`^the config should have endpoint "([^"]*)"$`, testCtx.theConfigShouldHaveEndpoint)
	ctx.Step(`^the config should have folder_id "([^"]*)"$`, testCtx.theConfigShouldHaveFolderID)
	ctx.Step(`^the config should have batch_size (\d+)$`, testCtx.theConfigShouldHaveBatchSize)
	ctx.Step(`^the config should have timeout "([^"]*)"$`, testCtx.theConfigShouldHaveTimeout)
	ctx.Step(`^the config should have a bearer token$`, testCtx.theConfigShouldHaveABearerToken)
	ctx.Step(`^the setup should be cancelled$`, testCtx.theSetupShouldBeCancelled)
	ctx.Step(`^the existing config should be unchanged$`, testCtx.theExistingConfigShouldBeUnchanged)
}

func (s *setupContext) noConfigFileExistsForSetup() error {
	return os.MkdirAll(filepath.Dir(s.configPath), 0755)
}

func (s *setupContext) aConfigFileAlreadyExistsForSetup() error {
	if err := os.MkdirAll(filepath.Dir(s.configPath), 0755); err != nil {
		return err
	}

	content := `service:
  endpoint: "https://original.example.com"
  api_key: "original-key"
upload:
  batch_size: 2
  timeout: 1m0s
`
	s.originalContent = content
	return os.WriteFile(s.configPath, []byte(content), 0600)
}

// parseInputTable sorts answers by prompt: "api key" rows are passwords,
// "bearer" rows are confirmations, everything else is plain input
func parseInputTable(table *godog.Table) ([]string, []string, []bool) {
	var inputs, passwords []string
	var confirms []bool

	for i, row := range table.Rows {
		if i == 0 {
			continue // Skip header row
		}
		prompt := strings.ToLower(row.Cells[0].Value)
		value := row.Cells[1].Value

		switch {
		case strings.Contains(prompt, "api key"):
			passwords = append(passwords, value)
		case strings.Contains(prompt, "bearer"):
			confirms = append(confirms, strings.ToLower(value) == "y")
		default:
			inputs = append(inputs, value)
		}
	}

	return inputs, passwords, confirms
}

func (s *setupContext) iRunTheSetupCommandWithInputs(table *godog.Table) error {
	inputs, passwords, confirms := parseInputTable(table)
	prompter := NewMockPrompter(inputs, passwords, confirms)

	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath, s.output)
	if s.err != nil {
		return fmt.Errorf("setup command failed: %w", s.err)
	}
	return nil
}

func (s *setupContext) iRunTheSetupCommandWithConfirmation(confirmation string) error {
	confirm := strings.ToLower(confirmation) == "y"
	prompter := NewMockPrompter(nil, nil, []bool{confirm})

	s.err = cmd.RunSetupWithPrompter(prompter, s.configPath, s.output)
	return nil
}

func (s *setupContext) load() (*config.Config, error) {
	cfg, err := config.Load(s.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

func (s *setupContext) aConfigFileShouldExist() error {
	if _, err := os.Stat(s.configPath); os.IsNotExist(err) {
		return fmt.Errorf("config file does not exist at %s", s.configPath)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveEndpoint(expected string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Service.Endpoint != expected {
		return fmt.Errorf("expected endpoint %q, got %q", expected, cfg.Service.Endpoint)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveFolderID(expected string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Upload.FolderID != expected {
		return fmt.Errorf("expected folder_id %q, got %q", expected, cfg.Upload.FolderID)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveBatchSize(expected int) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Upload.BatchSize != expected {
		return fmt.Errorf("expected batch_size %d, got %d", expected, cfg.Upload.BatchSize)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveTimeout(expected string) error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	want, err := time.ParseDuration(expected)
	if err != nil {
		return err
	}
	if cfg.Upload.Timeout != want {
		return fmt.Errorf("expected timeout %s, got %s", want, cfg.Upload.Timeout)
	}
	return nil
}

func (s *setupContext) theConfigShouldHaveABearerToken() error {
	cfg, err := s.load()
	if err != nil {
		return err
	}
	if cfg.Service.BearerToken == "" {
		return fmt.Errorf("expected a bearer token to be saved")
	}
	return nil
}

func (s *setupContext) theSetupShouldBeCancelled() error {
	if s.err != nil {
		return fmt.Errorf("expected a clean cancellation, got %w", s.err)
	}
	if !strings.Contains(s.output.String(), "Setup cancelled.") {
		return fmt.Errorf("expected setup to be cancelled, output was:\n%s", s.output.String())
	}
	return nil
}

func (s *setupContext) theExistingConfigShouldBeUnchanged() error {
	content, err := os.ReadFile(s.configPath)
	if err != nil {
		return fmt.Errorf("failed to read config: %w", err)
	}
	if string(content) != s.originalContent {
		return fmt.Errorf("config content was changed")
	}
	return nil
}
