// Package config handles configuration loading and validation for remindbot.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/colonyops/remindbot/internal/core/conversation"
	"github.com/colonyops/remindbot/internal/core/reminder"
	"github.com/colonyops/remindbot/internal/core/styles"
)

// Config holds the application configuration. The bot token is never read
// from the file; it comes from the environment or a flag.
type Config struct {
	Telegram     TelegramConfig     `yaml:"telegram"`
	Sweep        SweepConfig        `yaml:"sweep"`
	Conversation ConversationConfig `yaml:"conversation"`
	Messages     MessagesConfig     `yaml:"messages"`
	Console      ConsoleConfig      `yaml:"console"`
	Database     DatabaseConfig     `yaml:"database"`
	DataDir      string             `yaml:"-"` // set by caller, not from config file
}

// TelegramConfig holds Bot API transport settings.
type TelegramConfig struct {
	// Proxy is an optional http, https or socks5 URL for Bot API traffic.
	Proxy string `yaml:"proxy"`
	// PollTimeout is the long polling timeout in seconds.
	PollTimeout int `yaml:"poll_timeout"`
}

// SweepConfig holds reminder sweeper settings.
type SweepConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// ConversationConfig holds dialog settings.
type ConversationConfig struct {
	// SessionTTL resets dialogs idle for longer than this. Zero disables expiry.
	SessionTTL time.Duration `yaml:"session_ttl"`
}

// MessagesConfig holds user-facing message templates.
type MessagesConfig struct {
	Reminder string `yaml:"reminder"`
	ListItem string `yaml:"list_item"`
}

// ConsoleConfig holds terminal output settings.
type ConsoleConfig struct {
	Theme string `yaml:"theme"`
}

// DatabaseConfig holds SQLite connection pool settings.
type DatabaseConfig struct {
	MaxOpenConns int `yaml:"max_open_conns"`
	MaxIdleConns int `yaml:"max_idle_conns"`
	BusyTimeout  int `yaml:"busy_timeout"` // milliseconds
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Telegram: TelegramConfig{
			PollTimeout: 60,
		},
		Sweep: SweepConfig{
			Interval: 60 * time.Second,
		},
		Messages: MessagesConfig{
			Reminder: reminder.DefaultMessageTemplate,
			ListItem: conversation.DefaultListItemTemplate,
		},
		Console: ConsoleConfig{
			Theme: styles.DefaultTheme,
		},
		Database: DatabaseConfig{
			MaxOpenConns: 4,
			MaxIdleConns: 2,
			BusyTimeout:  5000,
		},
	}
}

// Load reads configuration from the given path and sets the data directory.
// If configPath is empty or doesn't exist, returns defaults with the provided dataDir.
func Load(configPath, dataDir string) (*Config, error) {
	cfg := DefaultConfig()

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	cfg.DataDir = dataDir
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for any unset configuration options.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Telegram.PollTimeout == 0 {
		c.Telegram.PollTimeout = defaults.Telegram.PollTimeout
	}
	if c.Sweep.Interval == 0 {
		c.Sweep.Interval = defaults.Sweep.Interval
	}
	if c.Messages.Reminder == "" {
		c.Messages.Reminder = defaults.Messages.Reminder
	}
	if c.Messages.ListItem == "" {
		c.Messages.ListItem = defaults.Messages.ListItem
	}
	if c.Console.Theme == "" {
		c.Console.Theme = defaults.Console.Theme
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = defaults.Database.MaxOpenConns
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = defaults.Database.MaxIdleConns
	}
	if c.Database.BusyTimeout == 0 {
		c.Database.BusyTimeout = defaults.Database.BusyTimeout
	}
}

// Validate checks that the configuration is structurally valid.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data directory cannot be empty")
	}

	if c.Telegram.PollTimeout < 0 {
		return fmt.Errorf("telegram.poll_timeout cannot be negative")
	}

	if c.Sweep.Interval < time.Second {
		return fmt.Errorf("sweep.interval must be at least 1s, got %s", c.Sweep.Interval)
	}

	if c.Conversation.SessionTTL < 0 {
		return fmt.Errorf("conversation.session_ttl cannot be negative")
	}

	if _, ok := styles.GetPalette(c.Console.Theme); !ok {
		return fmt.Errorf("console.theme %q is not one of %s", c.Console.Theme, strings.Join(styles.ThemeNames(), ", "))
	}

	if c.Database.MaxOpenConns < 1 {
		return fmt.Errorf("database.max_open_conns must be at least 1")
	}

	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}

	if c.Database.BusyTimeout < 0 {
		return fmt.Errorf("database.busy_timeout cannot be negative")
	}

	return nil
}
