//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"video-translator/domain/speech"
	"video-translator/infrastructure/config"

	"github.com/cucumber/godog"
)

type configContext struct {
	tempDir    string
	configPath string
	cfg        *config.Config
	loadErr    error
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
		*testCtx = configContext{tempDir: tempDir, configPath: filepath.Join(tempDir, "config.yaml")}
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	ctx.Step(`^a configuration file containing:$`, testCtx.aConfigurationFileContaining)
	ctx.Step(`^no configuration file exists$`, testCtx.noConfigurationFileExists)
	ctx.Step(`^I load the configuration$`, testCtx.iLoadTheConfiguration)
	ctx.Step(`^I attempt to load the configuration$`, testCtx.iAttemptToLoadTheConfiguration)
	ctx.Step(`^the transcription model should be "([^"]*)"$`, testCtx.theTranscriptionModelShouldBe)
	ctx.Step(`^the translation model should be "([^"]*)"$`, testCtx.theTranslationModelShouldBe)
	ctx.Step(`^the worker count should be (\d+)$`, testCtx.theWorkerCountShouldBe)
	ctx.Step(`^the results folder ID should be "([^"]*)"$`, testCtx.theResultsFolderIDShouldBe)
	ctx.Step(`^the configuration should be valid$`, testCtx.theConfigurationShouldBeValid)
	ctx.Step(`^the configuration should be rejected$`, testCtx.theConfigurationShouldBeRejected)
	ctx.Step(`^I should receive an error about the configuration file$`, testCtx.iShouldReceiveAnErrorAboutTheConfigurationFile)
}

func (c *configContext) aConfigurationFileContaining(doc *godog.DocString) error {
	return os.WriteFile(c.configPath, []byte(doc.Content), 0644)
}

func (c *configContext) noConfigurationFileExists() error {
	if _, err := os.Stat(c.configPath); err == nil {
		return fmt.Errorf("unexpected config file at %s", c.configPath)
	}
	return nil
}

func (c *configContext) iLoadTheConfiguration() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("unexpected error loading config: %w", err)
	}
	c.cfg = cfg
	return nil
}

func (c *configContext) iAttemptToLoadTheConfiguration() error {
	c.cfg, c.loadErr = config.Load(c.configPath)
	return nil
}

func (c *configContext) loaded() error {
	if c.cfg == nil {
		return fmt.Errorf("config was not loaded")
	}
	return nil
}

func (c *configContext) theTranscriptionModelShouldBe(expected string) error {
	if err := c.loaded(); err != nil {
		return err
	}
	if c.cfg.Models.Transcription != expected {
		return fmt.Errorf("expected transcription model %q, got %q", expected, c.cfg.Models.Transcription)
	}
	return nil
}

func (c *configContext) theTranslationModelShouldBe(expected string) error {
	if err := c.loaded(); err != nil {
		return err
	}
	if c.cfg.Models.Translation != expected {
		return fmt.Errorf("expected translation model %q, got %q", expected, c.cfg.Models.Translation)
	}
	return nil
}

func (c *configContext) theWorkerCountShouldBe(expected string) error {
	if err := c.loaded(); err != nil {
		return err
	}
	n, _ := strconv.Atoi(expected)
	if c.cfg.Performance.Workers != n {
		return fmt.Errorf("expected %d workers, got %d", n, c.cfg.Performance.Workers)
	}
	return nil
}

func (c *configContext) theResultsFolderIDShouldBe(expected string) error {
	if err := c.loaded(); err != nil {
		return err
	}
	if c.cfg.Google.ResultsFolderID != expected {
		return fmt.Errorf("expected results folder ID %q, got %q", expected, c.cfg.Google.ResultsFolderID)
	}
	return nil
}

func (c *configContext) theConfigurationShouldBeValid() error {
	if err := c.loaded(); err != nil {
		return err
	}
	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("expected valid config: %w", err)
	}
	if _, err := c.cfg.BatchConfiguration(); err != nil {
		return fmt.Errorf("expected usable batch configuration: %w", err)
	}
	return nil
}

func (c *configContext) theConfigurationShouldBeRejected() error {
	if err := c.loaded(); err != nil {
		return err
	}
	err := c.cfg.Validate()
	if err == nil {
		_, err = c.cfg.BatchConfiguration()
	}
	if !errors.Is(err, speech.ErrConfiguration) {
		return fmt.Errorf("expected a configuration error, got %v", err)
	}
	return nil
}

func (c *configContext) iShouldReceiveAnErrorAboutTheConfigurationFile() error {
	if c.loadErr == nil {
		return fmt.Errorf("expected an error but got none")
	}
	return nil
}
