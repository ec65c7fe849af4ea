package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/opsline/helpdesk/internal/dashboard"
)

func newDashboardCmd() *cobra.Command {
	var (
		configPath string
		port       int
	)

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Start the read-only web dashboard",
		Long:  "Launches a local web dashboard for browsing tickets, category stats, and retention history.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, configPath, port)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to helpdesk config file")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "port to listen on (defaults to dashboard.port from config)")
	return cmd
}

func runDashboard(cmd *cobra.Command, configPath string, port int) error {
	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	if port <= 0 {
		port = cfg.Dashboard.Port
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		fmt.Fprintf(cmd.OutOrStdout(), "\nReceived %s, shutting down...\n", sig)
		cancel()
	}()

	return dashboard.Start(ctx, dashboard.StartOpts{
		DB:   gormDB,
		Port: port,
		Out:  cmd.OutOrStdout(),
	})
}
