//go:build integration

package steps

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"video-translator/cmd"
	"video-translator/infrastructure/config"

	"github.com/cucumber/godog"
)

type configCrudContext struct {
	tempDir    string
	configPath string
	config     *config.Config
	output     *bytes.Buffer
	err        error
}

var SharedConfigCrudContext = &configCrudContext{}

func InitializeConfigCrudScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedConfigCrudContext

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		tempDir, err := os.MkdirTemp("", "config-crud-test-*")
		if err != nil {
			return c, err
		}
		testCtx.tempDir = tempDir
		testCtx.configPath = filepath.Join(tempDir, "config.yaml")
		testCtx.output = &bytes.Buffer{}
		testCtx.err = nil
		testCtx.config = nil
		return c, nil
	})

	ctx.After(func(c context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		if testCtx.tempDir != "" {
			os.RemoveAll(testCtx.tempDir)
		}
		return c, nil
	})

	// Background
	ctx.Step(`^a config file exists with initial data$`, testCtx.aConfigFileExistsWithInitialData)

	// Setting steps
	ctx.Step(`^I run config set "([^"]*)" to "([^"]*)"$`, testCtx.iRunConfigSet)
	ctx.Step(`^the config setting "([^"]*)" should be "([^"]*)"$`, testCtx.theConfigSettingShouldBe)

	// Recipient steps
	ctx.Step(`^I run config add recipient with key "([^"]*)" name "([^"]*)" and email "([^"]*)"$`, testCtx.iRunConfigAddRecipient)
	ctx.Step(`^recipient "([^"]*)" exists with name "([^"]*)" and email "([^"]*)"$`, testCtx.recipientExistsWithNameAndEmail)
	ctx.Step(`^I run config list recipients$`, testCtx.iRunConfigListRecipients)
	ctx.Step(`^I run config remove recipient "([^"]*)"$`, testCtx.iRunConfigRemoveRecipient)
	ctx.Step(`^I run config update recipient "([^"]*)" with email "([^"]*)"$`, testCtx.iRunConfigUpdateRecipientEmail)
	ctx.Step(`^I run config update recipient "([^"]*)" with name "([^"]*)" and email "([^"]*)"$`, testCtx.iRunConfigUpdateRecipientNameAndEmail)
	ctx.Step(`^I run config default "([^"]*)"$`, testCtx.iRunConfigDefault)
	ctx.Step(`^the config should contain recipient "([^"]*)" with name "([^"]*)" and email "([^"]*)"$`, testCtx.theConfigShouldContainRecipient)
	ctx.Step(`^the config should not contain recipient "([^"]*)"$`, testCtx.theConfigShouldNotContainRecipient)
	ctx.Step(`^recipient "([^"]*)" should be a default recipient$`, testCtx.recipientShouldBeADefaultRecipient)

	// CC steps
	ctx.Step(`^I run config add cc with name "([^"]*)" and email "([^"]*)"$`, testCtx.iRunConfigAddCC)
	ctx.Step(`^cc exists with name "([^"]*)" and email "([^"]*)"$`, testCtx.ccExistsWithNameAndEmail)
	ctx.Step(`^I run config list ccs$`, testCtx.iRunConfigListCCs)
	ctx.Step(`^I run config remove cc "([^"]*)"$`, testCtx.iRunConfigRemoveCC)
	ctx.Step(`^I run config update cc "([^"]*)" with email "([^"]*)"$`, testCtx.iRunConfigUpdateCCEmail)
	ctx.Step(`^the config should contain cc with name "([^"]*)" and email "([^"]*)"$`, testCtx.theConfigShouldContainCC)
	ctx.Step(`^the config should not contain cc with name "([^"]*)"$`, testCtx.theConfigShouldNotContainCC)

	// Common assertions
	ctx.Step(`^the command should succeed$`, testCtx.theCommandShouldSucceed)
	ctx.Step(`^the command should fail with "([^"]*)"$`, testCtx.theCommandShouldFailWith)
	ctx.Step(`^the output should contain "([^"]*)"$`, testCtx.theOutputShouldContain)
}

func (c *configCrudContext) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.config = cfg
	return nil
}

func (c *configCrudContext) saveConfig() error {
	return config.Save(c.config, c.configPath)
}

// --- Background ---

func (c *configCrudContext) aConfigFileExistsWithInitialData() error {
	c.config = config.Default()
	c.config.Google.ResultsFolderID = "folder-id"
	c.config.Email = config.EmailConfig{
		FromName:    "Batch Bot",
		FromAddress: "bot@example.com",
		DefaultCC:   []config.RecipientConfig{},
		Recipients:  make(map[string]config.RecipientConfig),
	}
	return c.saveConfig()
}

// --- Setting steps ---

func (c *configCrudContext) iRunConfigSet(key, value string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.output.Reset()
	c.err = cmd.RunConfigSetWithDependencies(c.config, c.configPath, key, value, c.output)
	return nil
}

func (c *configCrudContext) theConfigSettingShouldBe(key, expected string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.output.Reset()
	if err := cmd.RunConfigShowWithDependencies(c.config, c.configPath, c.output); err != nil {
		return err
	}
	leaf := key[strings.LastIndex(key, ".")+1:]
	for _, line := range strings.Split(c.output.String(), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, leaf+":") {
			continue
		}
		got := strings.Trim(strings.TrimSpace(strings.TrimPrefix(line, leaf+":")), `"`)
		if got == expected {
			return nil
		}
	}
	return fmt.Errorf("expected %s to be %q in:\n%s", key, expected, c.output.String())
}

// --- Recipient steps ---

func (c *configCrudContext) iRunConfigAddRecipient(key, name, email string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.output.Reset()
	c.err = cmd.RunConfigAddWithDependencies(c.config, c.configPath, "recipient", key, name, email, c.output)
	return nil
}

func (c *configCrudContext) recipientExistsWithNameAndEmail(key, name, email string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	if c.config.Email.Recipients == nil {
		c.config.Email.Recipients = make(map[string]config.RecipientConfig)
	}
	c.config.Email.Recipients[strings.ToLower(key)] = config.RecipientConfig{Name: name, Address: email}
	return c.saveConfig()
}

func (c *configCrudContext) iRunConfigListRecipients() error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.output.Reset()
	c.err = cmd.RunConfigListWithDependencies(c.config, c.configPath, "recipients", c.output)
	return nil
}

func (c *configCrudContext) iRunConfigRemoveRecipient(key string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.output.Reset()
	c.err = cmd.RunConfigRemoveWithDependencies(c.config, c.configPath, "recipient", key, c.output)
	return nil
}

func (c *configCrudContext) iRunConfigUpdateRecipientEmail(key, email string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.output.Reset()
	c.err = cmd.RunConfigUpdateWithDependencies(c.config, c.configPath, "recipient", key, "", email, c.output)
	return nil
}

func (c *configCrudContext) iRunConfigUpdateRecipientNameAndEmail(key, name, email string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.output.Reset()
	c.err = cmd.RunConfigUpdateWithDependencies(c.config, c.configPath, "recipient", key, name, email, c.output)
	return nil
}

func (c *configCrudContext) theConfigShouldContainRecipient(key, name, email string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	key = strings.ToLower(key)
	r, exists := c.config.Email.Recipients[key]
	if !exists {
		return fmt.Errorf("recipient %q not found in config", key)
	}
	if r.Name != name {
		return fmt.Errorf("expected recipient %q to have name %q, got %q", key, name, r.Name)
	}
	if r.Address != email {
		return fmt.Errorf("expected recipient %q to have email %q, got %q", key, email, r.Address)
	}
	return nil
}

func (c *configCrudContext) theConfigShouldNotContainRecipient(key string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	key = strings.ToLower(key)
	if _, exists := c.config.Email.Recipients[key]; exists {
		return fmt.Errorf("recipient %q should not exist in config", key)
	}
	return nil
}

func (c *configCrudContext) iRunConfigDefault(key string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.output.Reset()
	c.err = cmd.RunConfigDefaultWithDependencies(c.config, c.configPath, key, true, c.output)
	return nil
}

func (c *configCrudContext) recipientShouldBeADefaultRecipient(key string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	for _, k := range c.config.Email.DefaultRecipients {
		if strings.EqualFold(k, key) {
			return nil
		}
	}
	return fmt.Errorf("recipient %q is not in default_recipients %v", key, c.config.Email.DefaultRecipients)
}

// --- CC steps ---

func (c *configCrudContext) iRunConfigAddCC(name, email string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.output.Reset()
	c.err = cmd.RunConfigAddWithDependencies(c.config, c.configPath, "cc", "", name, email, c.output)
	return nil
}

func (c *configCrudContext) ccExistsWithNameAndEmail(name, email string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.config.Email.DefaultCC = append(c.config.Email.DefaultCC, config.RecipientConfig{
		Name:    name,
		Address: email,
	})
	return c.saveConfig()
}

func (c *configCrudContext) iRunConfigListCCs() error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.output.Reset()
	c.err = cmd.RunConfigListWithDependencies(c.config, c.configPath, "ccs", c.output)
	return nil
}

func (c *configCrudContext) iRunConfigRemoveCC(key string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.output.Reset()
	c.err = cmd.RunConfigRemoveWithDependencies(c.config, c.configPath, "cc", key, c.output)
	return nil
}

func (c *configCrudContext) iRunConfigUpdateCCEmail(key, email string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	c.output.Reset()
	c.err = cmd.RunConfigUpdateWithDependencies(c.config, c.configPath, "cc", key, "", email, c.output)
	return nil
}

func (c *configCrudContext) theConfigShouldContainCC(name, email string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	for _, cc := range c.config.Email.DefaultCC {
		if cc.Name == name && cc.Address == email {
			return nil
		}
	}
	return fmt.Errorf("cc with name %q and email %q not found in config", name, email)
}

func (c *configCrudContext) theConfigShouldNotContainCC(name string) error {
	if err := c.loadConfig(); err != nil {
		return err
	}
	for _, cc := range c.config.Email.DefaultCC {
		if cc.Name == name {
			return fmt.Errorf("cc with name %q should not exist in config", name)
		}
	}
	return nil
}

// --- Common assertions ---

func (c *configCrudContext) theCommandShouldSucceed() error {
	if c.err != nil {
		return fmt.Errorf("expected command to succeed but got error: %v\nOutput: %s", c.err, c.output.String())
	}
	return nil
}

func (c *configCrudContext) theCommandShouldFailWith(expectedError string) error {
	if c.err == nil {
		return fmt.Errorf("expected command to fail with %q but it succeeded\nOutput: %s", expectedError, c.output.String())
	}
	errStr := strings.ToLower(c.err.Error())
	expected := strings.ToLower(expectedError)
	if !strings.Contains(errStr, expected) {
		return fmt.Errorf("expected error to contain %q but got %q", expectedError, c.err.Error())
	}
	return nil
}

func (c *configCrudContext) theOutputShouldContain(expected string) error {
	output := c.output.String()
	if !strings.Contains(output, expected) {
		return fmt.Errorf("expected output to contain %q but got:\n%s", expected, output)
	}
	return nil
}
