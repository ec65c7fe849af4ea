package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opsline/helpdesk/internal/attachment"
	"github.com/opsline/helpdesk/internal/config"
	"github.com/opsline/helpdesk/internal/db"
	"github.com/opsline/helpdesk/internal/gateway"
	discordadapter "github.com/opsline/helpdesk/internal/gateway/discord"
	slackadapter "github.com/opsline/helpdesk/internal/gateway/slack"
)

func newBotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Manage the helpdesk chat bot",
	}

	cmd.AddCommand(newBotStartCmd())
	return cmd
}

func newBotStartCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the helpdesk bot daemon",
		Long:  "Connects to the configured chat platform, answers ticket commands, stores attachments, and runs the retention sweeper.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBotStart(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to helpdesk config file")
	return cmd
}

func runBotStart(cmd *cobra.Command, configPath string) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	// Migrate and seed on every start so a fresh install works without a
	// separate init step.
	if err := db.Init(gormDB, cfg.Chat.MainAdminID); err != nil {
		return err
	}

	adapter, err := createAdapter(cfg)
	if err != nil {
		return err
	}

	store, err := attachment.NewStore(attachment.StoreOpts{
		DB:   gormDB,
		Root: cfg.Storage.Root,
	})
	if err != nil {
		return err
	}

	daemon, err := gateway.NewDaemon(gateway.DaemonOpts{
		DB:      gormDB,
		Config:  cfg,
		Adapter: adapter,
		Photos:  store,
		Files:   store,
		Out:     cmd.OutOrStdout(),
	})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle OS signals for graceful shutdown.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	return daemon.Run(ctx)
}

// createAdapter builds a platform adapter from the config.
func createAdapter(cfg *config.Config) (gateway.Adapter, error) {
	switch cfg.Chat.Platform {
	case "discord":
		return discordadapter.New(discordadapter.AdapterOpts{
			BotToken:  cfg.Chat.Discord.BotToken,
			ChannelID: cfg.Chat.Discord.AdminChannel,
		})
	case "slack":
		return slackadapter.New(slackadapter.AdapterOpts{
			AppToken:  cfg.Chat.Slack.AppToken,
			BotToken:  cfg.Chat.Slack.BotToken,
			ChannelID: cfg.Chat.Slack.AdminChannel,
		})
	default:
		return nil, fmt.Errorf("bot: unsupported platform %q", cfg.Chat.Platform)
	}
}
