package main

import (
	"strings"
	"testing"
	"time"

	"github.com/opsline/helpdesk/internal/config"
	"github.com/opsline/helpdesk/internal/db"
	"github.com/opsline/helpdesk/internal/models"
	"github.com/opsline/helpdesk/internal/retention"
	"gorm.io/gorm"
)

// seedExpiredTicket writes a ticket closed 30 days ago, with one message,
// directly to the database.
func seedExpiredTicket(t *testing.T, gormDB *gorm.DB) uint {
	t.Helper()
	closedAt := time.Now().Add(-30 * 24 * time.Hour)
	tk := models.Ticket{
		UserID:      "100",
		UserName:    "alice",
		Category:    "Bug Report",
		Subject:     "Old issue",
		Description: "long resolved",
		Status:      models.TicketClosed,
		ClosedAt:    &closedAt,
	}
	if err := gormDB.Create(&tk).Error; err != nil {
		t.Fatalf("seed ticket: %v", err)
	}
	msg := models.TicketMessage{TicketID: tk.ID, UserID: "100", UserName: "alice", Body: "details", Kind: models.MessageText}
	if err := gormDB.Create(&msg).Error; err != nil {
		t.Fatalf("seed message: %v", err)
	}
	return tk.ID
}

func openConfiguredDB(t *testing.T, configPath string) *gorm.DB {
	t.Helper()
	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	gormDB, err := db.Open(cfg.Database)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	return gormDB
}

func TestCleanupRun_PurgesExpiredTicket(t *testing.T) {
	configPath := writeTestConfig(t)
	if out, err := runCmd(t, "db", "init", "--config", configPath); err != nil {
		t.Fatalf("db init failed: %v\n%s", err, out)
	}
	gormDB := openConfiguredDB(t, configPath)
	id := seedExpiredTicket(t, gormDB)

	out, err := runCmd(t, "cleanup", "run", "--config", configPath)
	if err != nil {
		t.Fatalf("cleanup run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "cleaned 1") {
		t.Errorf("output = %s, want one cleaned ticket", out)
	}

	var tk models.Ticket
	if err := gormDB.First(&tk, id).Error; err != nil {
		t.Fatalf("ticket row gone: %v", err)
	}
	if tk.Description != retention.Redacted || tk.UserName != retention.Redacted {
		t.Errorf("ticket not anonymized: %+v", tk)
	}
	var msgs int64
	gormDB.Model(&models.TicketMessage{}).Where("ticket_id = ?", id).Count(&msgs)
	if msgs != 0 {
		t.Errorf("messages remaining = %d, want 0", msgs)
	}
}

func TestCleanupRun_NothingToDo(t *testing.T) {
	configPath := writeTestConfig(t)
	if out, err := runCmd(t, "db", "init", "--config", configPath); err != nil {
		t.Fatalf("db init failed: %v\n%s", err, out)
	}

	out, err := runCmd(t, "cleanup", "run", "--config", configPath)
	if err != nil {
		t.Fatalf("cleanup run failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Scanned 0") {
		t.Errorf("output = %s, want zero scanned", out)
	}
}

func TestCleanupStatus(t *testing.T) {
	configPath := writeTestConfig(t)
	if out, err := runCmd(t, "db", "init", "--config", configPath); err != nil {
		t.Fatalf("db init failed: %v\n%s", err, out)
	}
	gormDB := openConfiguredDB(t, configPath)
	seedExpiredTicket(t, gormDB)

	if out, err := runCmd(t, "cleanup", "run", "--config", configPath); err != nil {
		t.Fatalf("cleanup run failed: %v\n%s", err, out)
	}

	out, err := runCmd(t, "cleanup", "status", "--config", configPath)
	if err != nil {
		t.Fatalf("cleanup status failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "completed") {
		t.Errorf("status output missing completed job: %s", out)
	}
}

func TestCleanupStatus_Empty(t *testing.T) {
	configPath := writeTestConfig(t)
	if out, err := runCmd(t, "db", "init", "--config", configPath); err != nil {
		t.Fatalf("db init failed: %v\n%s", err, out)
	}

	out, err := runCmd(t, "cleanup", "status", "--config", configPath)
	if err != nil {
		t.Fatalf("cleanup status failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "No cleanup runs recorded.") {
		t.Errorf("output = %s", out)
	}
}
