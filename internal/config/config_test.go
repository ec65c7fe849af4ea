package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fullYAML = `
chat:
  platform: slack
  main_admin_id: "U0MAIN"
  slack:
    app_token: xapp-1-test
    bot_token: xoxb-test
    admin_channel: C0ADMIN

database:
  backend: mysql
  host: 10.0.0.5
  port: 3307
  name: helpdesk_prod
  user: support

retention:
  window_days: 14
  sweep_cron: "30 4 * * *"

storage:
  root: /var/lib/helpdesk/attachments

dashboard:
  port: 9090
`

const minimalYAML = `
chat:
  main_admin_id: "100200300"
  discord:
    bot_token: token-abc
    admin_channel: "987654"
`

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Chat.Platform != "slack" {
		t.Errorf("Chat.Platform = %q, want %q", cfg.Chat.Platform, "slack")
	}
	if cfg.Chat.MainAdminID != "U0MAIN" {
		t.Errorf("Chat.MainAdminID = %q, want %q", cfg.Chat.MainAdminID, "U0MAIN")
	}
	if cfg.Chat.Slack.AppToken != "xapp-1-test" {
		t.Errorf("Chat.Slack.AppToken = %q, want %q", cfg.Chat.Slack.AppToken, "xapp-1-test")
	}
	if cfg.Chat.Slack.AdminChannel != "C0ADMIN" {
		t.Errorf("Chat.Slack.AdminChannel = %q, want %q", cfg.Chat.Slack.AdminChannel, "C0ADMIN")
	}
	if cfg.Database.Backend != "mysql" {
		t.Errorf("Database.Backend = %q, want %q", cfg.Database.Backend, "mysql")
	}
	if cfg.Database.Host != "10.0.0.5" {
		t.Errorf("Database.Host = %q, want %q", cfg.Database.Host, "10.0.0.5")
	}
	if cfg.Database.Port != 3307 {
		t.Errorf("Database.Port = %d, want %d", cfg.Database.Port, 3307)
	}
	if cfg.Database.Name != "helpdesk_prod" {
		t.Errorf("Database.Name = %q, want %q", cfg.Database.Name, "helpdesk_prod")
	}
	if cfg.Database.User != "support" {
		t.Errorf("Database.User = %q, want %q", cfg.Database.User, "support")
	}
	if cfg.Retention.WindowDays != 14 {
		t.Errorf("Retention.WindowDays = %d, want 14", cfg.Retention.WindowDays)
	}
	if cfg.Retention.SweepCron != "30 4 * * *" {
		t.Errorf("Retention.SweepCron = %q, want %q", cfg.Retention.SweepCron, "30 4 * * *")
	}
	if cfg.Storage.Root != "/var/lib/helpdesk/attachments" {
		t.Errorf("Storage.Root = %q, want %q", cfg.Storage.Root, "/var/lib/helpdesk/attachments")
	}
	if cfg.Dashboard.Port != 9090 {
		t.Errorf("Dashboard.Port = %d, want 9090", cfg.Dashboard.Port)
	}
}

func TestParse_MinimalConfig_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Chat.Platform != "discord" {
		t.Errorf("Chat.Platform = %q, want %q (default)", cfg.Chat.Platform, "discord")
	}
	if cfg.Database.Backend != "sqlite" {
		t.Errorf("Database.Backend = %q, want %q (default)", cfg.Database.Backend, "sqlite")
	}
	if cfg.Database.Path != "helpdesk.db" {
		t.Errorf("Database.Path = %q, want %q (default)", cfg.Database.Path, "helpdesk.db")
	}
	if cfg.Database.Host != "127.0.0.1" {
		t.Errorf("Database.Host = %q, want %q (default)", cfg.Database.Host, "127.0.0.1")
	}
	if cfg.Database.Port != 3306 {
		t.Errorf("Database.Port = %d, want 3306 (default)", cfg.Database.Port)
	}
	if cfg.Retention.WindowDays != 7 {
		t.Errorf("Retention.WindowDays = %d, want 7 (default)", cfg.Retention.WindowDays)
	}
	if cfg.Retention.SweepCron != "0 3 * * *" {
		t.Errorf("Retention.SweepCron = %q, want %q (default)", cfg.Retention.SweepCron, "0 3 * * *")
	}
	if cfg.Storage.Root != "attachments" {
		t.Errorf("Storage.Root = %q, want %q (default)", cfg.Storage.Root, "attachments")
	}
	if cfg.Dashboard.Port != 8080 {
		t.Errorf("Dashboard.Port = %d, want 8080 (default)", cfg.Dashboard.Port)
	}
}

func TestParse_MissingDiscordToken(t *testing.T) {
	_, err := Parse([]byte(`
chat:
  platform: discord
  main_admin_id: "1"
  discord:
    admin_channel: "42"
`))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "chat.discord.bot_token is required") {
		t.Errorf("error = %v, want bot_token complaint", err)
	}
}

func TestParse_MissingSlackCredentials(t *testing.T) {
	_, err := Parse([]byte(`
chat:
  platform: slack
  main_admin_id: "1"
`))
	if err == nil {
		t.Fatal("expected validation error")
	}
	for _, want := range []string{"chat.slack.app_token", "chat.slack.bot_token", "chat.slack.admin_channel"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error = %v, want to mention %s", err, want)
		}
	}
}

func TestParse_MissingMainAdmin(t *testing.T) {
	_, err := Parse([]byte(`
chat:
  discord:
    bot_token: t
    admin_channel: c
`))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "chat.main_admin_id is required") {
		t.Errorf("error = %v, want main_admin_id complaint", err)
	}
}

func TestParse_UnsupportedPlatform(t *testing.T) {
	_, err := Parse([]byte(`
chat:
  platform: irc
  main_admin_id: "1"
`))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), `chat.platform "irc" is not supported`) {
		t.Errorf("error = %v, want unsupported platform complaint", err)
	}
}

func TestParse_UnsupportedBackend(t *testing.T) {
	_, err := Parse([]byte(`
chat:
  main_admin_id: "1"
  discord:
    bot_token: t
    admin_channel: c
database:
  backend: postgres
`))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), `database.backend "postgres" is not supported`) {
		t.Errorf("error = %v, want unsupported backend complaint", err)
	}
}

func TestParse_NegativeRetentionWindow(t *testing.T) {
	_, err := Parse([]byte(`
chat:
  main_admin_id: "1"
  discord:
    bot_token: t
    admin_channel: c
retention:
  window_days: -3
`))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "retention.window_days must not be negative") {
		t.Errorf("error = %v, want window_days complaint", err)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("chat: [not a mapping"))
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "config: parse") {
		t.Errorf("error = %v, want parse error", err)
	}
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "helpdesk.yaml")
	if err := os.WriteFile(path, []byte(minimalYAML), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Chat.Discord.BotToken != "token-abc" {
		t.Errorf("Chat.Discord.BotToken = %q, want %q", cfg.Chat.Discord.BotToken, "token-abc")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestAdminChannel_PerPlatform(t *testing.T) {
	discord, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := discord.AdminChannel(); got != "987654" {
		t.Errorf("AdminChannel() = %q, want %q", got, "987654")
	}

	slack, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := slack.AdminChannel(); got != "C0ADMIN" {
		t.Errorf("AdminChannel() = %q, want %q", got, "C0ADMIN")
	}
}
