// Package config provides YAML-based configuration loading for the helpdesk.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level helpdesk configuration, loaded from helpdesk.yaml.
type Config struct {
	Chat      ChatConfig      `yaml:"chat"`
	Database  DatabaseConfig  `yaml:"database"`
	Retention RetentionConfig `yaml:"retention"`
	Storage   StorageConfig   `yaml:"storage"`
	Dashboard DashboardConfig `yaml:"dashboard"`
}

// ChatConfig selects the chat platform and holds its credentials.
type ChatConfig struct {
	Platform    string        `yaml:"platform"` // "discord" or "slack"
	MainAdminID string        `yaml:"main_admin_id"`
	Discord     DiscordConfig `yaml:"discord"`
	Slack       SlackConfig   `yaml:"slack"`
}

// DiscordConfig holds Discord bot credentials and channel routing.
type DiscordConfig struct {
	BotToken     string `yaml:"bot_token"`
	AdminChannel string `yaml:"admin_channel"`
}

// SlackConfig holds Slack Socket Mode credentials and channel routing.
type SlackConfig struct {
	AppToken     string `yaml:"app_token"`
	BotToken     string `yaml:"bot_token"`
	AdminChannel string `yaml:"admin_channel"`
}

// DatabaseConfig selects the persistence backend. SQLite is the default;
// MySQL is used when backend is "mysql".
type DatabaseConfig struct {
	Backend string `yaml:"backend"` // "sqlite" or "mysql"
	Path    string `yaml:"path"`    // sqlite file path
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
	Name    string `yaml:"name"`
	User    string `yaml:"user"`
}

// RetentionConfig controls the cleanup sweeper.
type RetentionConfig struct {
	WindowDays int    `yaml:"window_days"` // days after closure before purge
	SweepCron  string `yaml:"sweep_cron"`  // 5-field cron expression
}

// StorageConfig locates the attachment tree on disk.
type StorageConfig struct {
	Root string `yaml:"root"`
}

// DashboardConfig holds the reporting server settings.
type DashboardConfig struct {
	Port int `yaml:"port"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Chat.Platform == "" {
		c.Chat.Platform = "discord"
	}
	if c.Database.Backend == "" {
		c.Database.Backend = "sqlite"
	}
	if c.Database.Path == "" {
		c.Database.Path = "helpdesk.db"
	}
	if c.Database.Host == "" {
		c.Database.Host = "127.0.0.1"
	}
	if c.Database.Port == 0 {
		c.Database.Port = 3306
	}
	if c.Database.Name == "" {
		c.Database.Name = "helpdesk"
	}
	if c.Database.User == "" {
		c.Database.User = "root"
	}
	if c.Retention.WindowDays == 0 {
		c.Retention.WindowDays = 7
	}
	if c.Retention.SweepCron == "" {
		c.Retention.SweepCron = "0 3 * * *"
	}
	if c.Storage.Root == "" {
		c.Storage.Root = "attachments"
	}
	if c.Dashboard.Port == 0 {
		c.Dashboard.Port = 8080
	}
}

// validate checks that all required fields are present and consistent.
func (c *Config) validate() error {
	var errs []string
	switch c.Chat.Platform {
	case "discord":
		if c.Chat.Discord.BotToken == "" {
			errs = append(errs, "chat.discord.bot_token is required")
		}
		if c.Chat.Discord.AdminChannel == "" {
			errs = append(errs, "chat.discord.admin_channel is required")
		}
	case "slack":
		if c.Chat.Slack.AppToken == "" {
			errs = append(errs, "chat.slack.app_token is required")
		}
		if c.Chat.Slack.BotToken == "" {
			errs = append(errs, "chat.slack.bot_token is required")
		}
		if c.Chat.Slack.AdminChannel == "" {
			errs = append(errs, "chat.slack.admin_channel is required")
		}
	default:
		errs = append(errs, fmt.Sprintf("chat.platform %q is not supported (discord, slack)", c.Chat.Platform))
	}
	if c.Chat.MainAdminID == "" {
		errs = append(errs, "chat.main_admin_id is required")
	}
	switch c.Database.Backend {
	case "sqlite", "mysql":
	default:
		errs = append(errs, fmt.Sprintf("database.backend %q is not supported (sqlite, mysql)", c.Database.Backend))
	}
	if c.Retention.WindowDays < 0 {
		errs = append(errs, "retention.window_days must not be negative")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// AdminChannel returns the admin channel ID for the active platform.
func (c *Config) AdminChannel() string {
	if c.Chat.Platform == "slack" {
		return c.Chat.Slack.AdminChannel
	}
	return c.Chat.Discord.AdminChannel
}
