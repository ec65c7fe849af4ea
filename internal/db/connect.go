// Package db opens and migrates the helpdesk persistence store.
package db

import (
	"fmt"

	"github.com/opsline/helpdesk/internal/config"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DSN builds a MySQL DSN from connection settings.
func DSN(user, host string, port int, database string) string {
	return fmt.Sprintf("%s@tcp(%s:%d)/%s?parseTime=true", user, host, port, database)
}

// Open connects to the backend selected by cfg. The rest of the system
// only ever sees the resulting *gorm.DB; row shapes are identical across
// backends.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	switch cfg.Backend {
	case "mysql":
		return ConnectMySQL(cfg.User, cfg.Host, cfg.Port, cfg.Name)
	case "sqlite":
		return ConnectSQLite(cfg.Path)
	default:
		return nil, fmt.Errorf("db: unsupported backend %q", cfg.Backend)
	}
}

// ConnectMySQL opens a GORM connection to a MySQL server.
func ConnectMySQL(user, host string, port int, database string) (*gorm.DB, error) {
	dsn := DSN(user, host, port, database)
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("db: connect to %s:%d/%s: %w", host, port, database, err)
	}
	return db, nil
}

// ConnectSQLite opens a GORM connection to a SQLite database file.
// Use ":memory:" for an ephemeral store.
func ConnectSQLite(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("db: open sqlite %s: %w", path, err)
	}
	return db, nil
}
