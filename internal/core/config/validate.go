package config

import (
	"fmt"
	"net/url"
	"os"

	"github.com/hay-kot/criterio"

	"github.com/colonyops/remindbot/internal/core/conversation"
	"github.com/colonyops/remindbot/internal/core/reminder"
	"github.com/colonyops/remindbot/pkg/tmpl"
)

// ValidateDeep performs comprehensive validation of the configuration including
// template rendering, the proxy URL and file accessibility. The configPath argument
// specifies the config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		criterio.Run("telegram.proxy", c.Telegram.Proxy, validProxyURL),
		c.validateTemplates(),
	)
}

// validateFileAccess checks the config file and data directory.
func (c *Config) validateFileAccess(configPath string) error {
	return criterio.ValidateStruct(
		validateConfigFile(configPath),
		criterio.Run("data_dir", c.DataDir, isDirectoryOrNotExist),
	)
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

// isDirectoryOrNotExist validates that a path is a directory or doesn't exist.
func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

// validProxyURL accepts an empty value or an absolute http, https or socks5 URL.
func validProxyURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "socks5":
	default:
		return fmt.Errorf("unsupported scheme %q (use http, https or socks5)", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}

// validateTemplates parses each message template and renders it against
// sample data so unknown fields surface before the bot starts.
func (c *Config) validateTemplates() error {
	var errs criterio.FieldErrorsBuilder

	sample := reminder.Task{ID: 1, Owner: "1001", Description: "Buy milk", Time: "07:30"}

	checks := []struct {
		field string
		src   string
		data  any
	}{
		{"messages.reminder", c.Messages.Reminder, reminder.MessageDataFor(sample)},
		{"messages.list_item", c.Messages.ListItem, conversation.ListItemData{
			Index:       1,
			ID:          sample.ID,
			Description: sample.Description,
			Time:        sample.Time,
		}},
	}

	for _, check := range checks {
		if _, err := tmpl.Render(check.src, check.data); err != nil {
			errs = errs.Append(check.field, fmt.Errorf("template error: %w", err))
		}
	}

	return errs.ToError()
}
