package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/opsline/helpdesk/internal/attachment"
	"github.com/opsline/helpdesk/internal/retention"
)

func newCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Retention cleanup commands",
		Long:  "Purges conversation content and attachment files from tickets closed longer than the retention window.",
	}

	cmd.AddCommand(newCleanupRunCmd())
	cmd.AddCommand(newCleanupStatusCmd())
	return cmd
}

func newCleanupRunCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one retention sweep now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanupRun(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to helpdesk config file")
	return cmd
}

func runCleanupRun(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
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

	sweeper, err := retention.NewSweeper(retention.SweeperOpts{
		DB:     gormDB,
		Files:  store,
		Window: time.Duration(cfg.Retention.WindowDays) * 24 * time.Hour,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Sweeping tickets closed more than %d days ago...\n", cfg.Retention.WindowDays)
	result, err := sweeper.Sweep(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Scanned %d, cleaned %d, removed %d files, %d failed\n",
		result.Scanned, result.Cleaned, result.FilesRemoved, result.Failed)
	if result.Failed > 0 {
		return fmt.Errorf("cleanup: %d tickets failed; they stay scheduled for the next sweep", result.Failed)
	}
	return nil
}

func newCleanupStatusCmd() *cobra.Command {
	var (
		configPath string
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show recent retention cleanup runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCleanupStatus(cmd, configPath, limit)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to helpdesk config file")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "max jobs to show")
	return cmd
}

func runCleanupStatus(cmd *cobra.Command, configPath string, limit int) error {
	out := cmd.OutOrStdout()

	_, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}

	jobs, err := retention.History(gormDB, limit)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		fmt.Fprintln(out, "No cleanup runs recorded.")
		return nil
	}

	fmt.Fprintf(out, "%-8s %-10s %-20s %-20s %s\n", "TICKET", "STATUS", "SCHEDULED", "EXECUTED", "FILES")
	for _, j := range jobs {
		executed := "-"
		if j.ExecutedAt != nil {
			executed = j.ExecutedAt.Format(time.DateTime)
		}
		fmt.Fprintf(out, "%-8d %-10s %-20s %-20s %d\n",
			j.TicketID, j.Status, j.ScheduledAt.Format(time.DateTime), executed, j.FilesCleaned)
	}
	return nil
}
