package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/opsline/helpdesk/internal/config"
	"github.com/opsline/helpdesk/internal/db"
)

const defaultConfigPath = "helpdesk.yaml"

func newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database management commands",
	}

	cmd.AddCommand(newDBInitCmd())
	cmd.AddCommand(newDBResetCmd())
	return cmd
}

func newDBInitCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the helpdesk database",
		Long:  "Migrates all tables and seeds the default categories and the main admin roster row.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBInit(cmd, configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to helpdesk config file")
	return cmd
}

func runDBInit(cmd *cobra.Command, configPath string) error {
	out := cmd.OutOrStdout()

	cfg, gormDB, err := connectFromConfig(configPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Connected to %s database %q\n", cfg.Database.Backend, databaseName(cfg))

	if err := db.Init(gormDB, cfg.Chat.MainAdminID); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))
	fmt.Fprintf(out, "Seeded %d categories:", len(db.DefaultCategories))
	for _, c := range db.DefaultCategories {
		fmt.Fprintf(out, " %q", c.Name)
	}
	fmt.Fprintln(out)
	fmt.Fprintf(out, "Main admin seeded with ID %s\n", cfg.Chat.MainAdminID)

	fmt.Fprintln(out, "\nHelpdesk database initialized successfully.")
	return nil
}

func newDBResetCmd() *cobra.Command {
	var (
		configPath string
		yes        bool
	)

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop and re-initialize the helpdesk database",
		Long: `Deletes the SQLite database file and re-initializes it (migrate + seed).

Only the sqlite backend supports reset; drop a MySQL database with your
server's own tooling and run "hd db init" afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDBReset(cmd, configPath, yes)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to helpdesk config file")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip confirmation prompt")
	return cmd
}

func runDBReset(cmd *cobra.Command, configPath string, skipConfirm bool) error {
	out := cmd.OutOrStdout()

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.Database.Backend != "sqlite" {
		return fmt.Errorf("db reset supports only the sqlite backend, not %q", cfg.Database.Backend)
	}

	if !skipConfirm && !confirmReset(cmd, cfg.Database.Path) {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	if err := os.Remove(cfg.Database.Path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", cfg.Database.Path, err)
	}
	fmt.Fprintf(out, "Removed database file %s\n", cfg.Database.Path)

	gormDB, err := db.Open(cfg.Database)
	if err != nil {
		return err
	}
	if err := db.Init(gormDB, cfg.Chat.MainAdminID); err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d tables\n", len(db.AllModels()))

	fmt.Fprintln(out, "\nHelpdesk database reset successfully.")
	return nil
}

func confirmReset(cmd *cobra.Command, target string) bool {
	out := cmd.OutOrStdout()
	in := cmd.InOrStdin()

	fmt.Fprintf(out, "WARNING: This will permanently delete all data in %q.\n", target)
	fmt.Fprintln(out, "This action cannot be undone.")
	fmt.Fprintln(out)
	fmt.Fprint(out, "Type \"yes\" to confirm: ")

	scanner := bufio.NewScanner(in)
	if scanner.Scan() {
		return strings.TrimSpace(scanner.Text()) == "yes"
	}
	return false
}

// connectFromConfig loads config and returns a GORM DB connection.
func connectFromConfig(configPath string) (*config.Config, *gorm.DB, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	gormDB, err := db.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}
	return cfg, gormDB, nil
}

func databaseName(cfg *config.Config) string {
	if cfg.Database.Backend == "sqlite" {
		return cfg.Database.Path
	}
	return cfg.Database.Name
}
