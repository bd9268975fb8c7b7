//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"invite-media/cmd"
	"invite-media/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	tempDir    string
	configPath string
	cfg        *config.Config
	output     *bytes.Buffer
	err        error
}

// SharedConfigContext is reset before each scenario via Before hook
var SharedConfigContext = &configContext{}

func InitializeConfigScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config.yaml")
		testCtx.cfg = nil
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

	ctx.Step(`^a config file exists with endpoint "([^"]*)" and api key "([^"]*)"$`, testCtx.aConfigFileExistsWith)
	ctx.Step(`^I run config list$`, testCtx.iRunConfigList)
	ctx.Step(`^I run config get "([^"]*)"$`, testCtx.iRunConfigGet)
	ctx.Step(`^I run config set "([^"]*)" to "([^"]*)"$`, testCtx.iRunConfigSet)
	ctx.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
	ctx.Step(`^the output should not contain "([^"]*)"$`, testCtx.theOutputShouldNotContain)
	ctx.Step(`^the saved config should have batch_size (\d+)$`, testCtx.theSavedConfigShouldHaveBatchSize)
	ctx.Step(`^the command should fail with "([^"]*)"$`, testCtx.theCommandShouldFailWith)
}

func (c *configContext) aConfigFileExistsWith(endpoint, apiKey string) error {
	c.cfg = &config.Config{Service: config.ServiceConfig{Endpoint: endpoint, APIKey: apiKey}}
	c.cfg.ApplyDefaults()
	if err := config.Save(c.cfg, c.configPath); err != nil {
		return err
	}

	loaded, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("unexpected error loading config: %w", err)
	}
	c.cfg = loaded
	return nil
}

func (c *configContext) iRunConfigList() error {
	c.err = cmd.RunConfigListWithDependencies(c.cfg, c.configPath, c.output)
	return nil
}

func (c *configContext) iRunConfigGet(key string) error {
	c.err = cmd.RunConfigGetWithDependencies(c.cfg, c.configPath, key, c.output)
	return nil
}

func (c *configContext) iRunConfigSet(key, value string) error {
	c.err = cmd.RunConfigSetWithDependencies(c.cfg, c.configPath, key, value, c.output)
	return nil
}

func (c *configContext) theOutputShouldContain(expected string) error {
	if c.err != nil {
		return fmt.Errorf("command failed: %w", c.err)
	}
	if !strings.Contains(c.output.String(), expected) {
		return fmt.Errorf("expected output to contain %q, got:\n%s", expected, c.output.String())
	}
	return nil
}

func (c *configContext) theOutputShouldNotContain(unexpected string) error {
	if strings.Contains(c.output.String(), unexpected) {
		return fmt.Errorf("expected output not to contain %q, got:\n%s", unexpected, c.output.String())
	}
	return nil
}

func (c *configContext) theSavedConfigShouldHaveBatchSize(expected int) error {
	if c.err != nil {
		return fmt.Errorf("command failed: %w", c.err)
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Upload.BatchSize != expected {
		return fmt.Errorf("expected batch_size %d, got %d", expected, cfg.Upload.BatchSize)
	}
	return nil
}

func (c *configContext) theCommandShouldFailWith(expected string) error {
	if c.err == nil {
		return fmt.Errorf("expected an error but got none")
	}
	if !strings.Contains(c.err.Error(), expected) {
		return fmt.Errorf("expected error containing %q, got %v", expected, c.err)
	}
	return nil
}
