package db

import (
	"strings"
	"testing"

	"github.com/opsline/helpdesk/internal/config"
	"github.com/opsline/helpdesk/internal/models"
)

func TestDSN(t *testing.T) {
	tests := []struct {
		name     string
		user     string
		host     string
		port     int
		database string
		want     string
	}{
		{
			name:     "default local",
			user:     "root",
			host:     "127.0.0.1",
			port:     3306,
			database: "helpdesk",
			want:     "root@tcp(127.0.0.1:3306)/helpdesk?parseTime=true",
		},
		{
			name:     "custom host and port",
			user:     "support",
			host:     "10.0.0.5",
			port:     3307,
			database: "helpdesk_prod",
			want:     "support@tcp(10.0.0.5:3307)/helpdesk_prod?parseTime=true",
		},
		{
			name:     "production host",
			user:     "root",
			host:     "mysql.vpc.internal",
			port:     3306,
			database: "helpdesk",
			want:     "root@tcp(mysql.vpc.internal:3306)/helpdesk?parseTime=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DSN(tt.user, tt.host, tt.port, tt.database)
			if got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDSN_ParseTimeFlag(t *testing.T) {
	dsn := DSN("root", "localhost", 3306, "test")
	if !strings.Contains(dsn, "parseTime=true") {
		t.Errorf("DSN missing parseTime=true: %s", dsn)
	}
}

func TestOpen_UnsupportedBackend(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Backend: "postgres"})
	if err == nil {
		t.Fatal("expected error for unsupported backend")
	}
	if !strings.Contains(err.Error(), `unsupported backend "postgres"`) {
		t.Errorf("error = %v, want unsupported backend", err)
	}
}

func TestOpen_SQLiteInMemory(t *testing.T) {
	db, err := Open(config.DatabaseConfig{Backend: "sqlite", Path: ":memory:"})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if db == nil {
		t.Fatal("expected non-nil db")
	}
}

func TestInit_MigratesAndSeeds(t *testing.T) {
	db, err := ConnectSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := Init(db, "100200300"); err != nil {
		t.Fatalf("init: %v", err)
	}

	// All tables exist and are queryable.
	for _, m := range AllModels() {
		if err := db.Model(m).Limit(1).Find(&map[string]interface{}{}).Error; err != nil {
			t.Errorf("table for %T not usable: %v", m, err)
		}
	}

	var categories []models.Category
	if err := db.Order("name").Find(&categories).Error; err != nil {
		t.Fatalf("load categories: %v", err)
	}
	if len(categories) != 3 {
		t.Fatalf("len(categories) = %d, want 3", len(categories))
	}
	if categories[0].Name != "Bug Report" {
		t.Errorf("categories[0].Name = %q, want %q", categories[0].Name, "Bug Report")
	}

	var admin models.Admin
	if err := db.First(&admin, "user_id = ?", "100200300").Error; err != nil {
		t.Fatalf("load main admin: %v", err)
	}
	if admin.Role != models.RoleMainAdmin {
		t.Errorf("admin.Role = %q, want %q", admin.Role, models.RoleMainAdmin)
	}
}

func TestInit_Idempotent(t *testing.T) {
	db, err := ConnectSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	if err := Init(db, "42"); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if err := Init(db, "42"); err != nil {
		t.Fatalf("second init: %v", err)
	}

	var count int64
	db.Model(&models.Category{}).Count(&count)
	if count != 3 {
		t.Errorf("category count after reseed = %d, want 3", count)
	}
	db.Model(&models.Admin{}).Count(&count)
	if count != 1 {
		t.Errorf("admin count after reseed = %d, want 1", count)
	}
}

func TestSeedCategories_PreservesEdits(t *testing.T) {
	db, err := ConnectSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := SeedCategories(db); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Admin edits a default category description.
	db.Model(&models.Category{}).Where("name = ?", "Bug Report").
		Update("description", "edited")

	if err := SeedCategories(db); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	var cat models.Category
	db.First(&cat, "name = ?", "Bug Report")
	if cat.Description != "edited" {
		t.Errorf("Description = %q, want %q (reseed must not clobber edits)", cat.Description, "edited")
	}
}

func TestSeedMainAdmin_EmptyID(t *testing.T) {
	db, err := ConnectSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := SeedMainAdmin(db, ""); err == nil {
		t.Fatal("expected error for empty main admin id")
	}
}

func TestSeedMainAdmin_ReassertsRole(t *testing.T) {
	db, err := ConnectSQLite(":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if err := SeedMainAdmin(db, "7"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	// Simulate an accidental demotion, then reseed.
	db.Model(&models.Admin{}).Where("user_id = ?", "7").Update("role", models.RoleAdmin)
	if err := SeedMainAdmin(db, "7"); err != nil {
		t.Fatalf("reseed: %v", err)
	}

	var admin models.Admin
	db.First(&admin, "user_id = ?", "7")
	if admin.Role != models.RoleMainAdmin {
		t.Errorf("Role = %q, want %q after reseed", admin.Role, models.RoleMainAdmin)
	}
}
