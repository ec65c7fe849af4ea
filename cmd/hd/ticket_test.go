package main

import (
	"context"
	"strings"
	"testing"

	"github.com/opsline/helpdesk/internal/config"
	"github.com/opsline/helpdesk/internal/db"
	"github.com/opsline/helpdesk/internal/ticket"
)

// initWithTickets initializes a test database and seeds two tickets through
// the engine. Returns the config path.
func initWithTickets(t *testing.T) string {
	t.Helper()
	configPath := writeTestConfig(t)

	if out, err := runCmd(t, "db", "init", "--config", configPath); err != nil {
		t.Fatalf("db init failed: %v\n%s", err, out)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	gormDB, err := db.Open(cfg.Database)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	engine, err := ticket.NewEngine(ticket.EngineOpts{DB: gormDB})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}

	alice := ticket.Actor{ID: "100", Name: "alice"}
	first, err := engine.Create(context.Background(), alice, "Bug Report", "Login broken", "Cannot log in on mobile.", nil)
	if err != nil {
		t.Fatalf("create ticket: %v", err)
	}
	if _, err := engine.Append(context.Background(), first.ID, alice, "Still broken today.", nil); err != nil {
		t.Fatalf("append: %v", err)
	}

	bob := ticket.Actor{ID: "101", Name: "bob"}
	if _, err := engine.Create(context.Background(), bob, "General Question", "Export data", "How do I export my data?", nil); err != nil {
		t.Fatalf("create second ticket: %v", err)
	}
	return configPath
}

func TestTicketList(t *testing.T) {
	configPath := initWithTickets(t)

	out, err := runCmd(t, "ticket", "list", "--config", configPath)
	if err != nil {
		t.Fatalf("ticket list failed: %v\n%s", err, out)
	}
	for _, want := range []string{"Login broken", "Export data", "alice", "bob", "open"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q: %s", want, out)
		}
	}
}

func TestTicketList_Empty(t *testing.T) {
	configPath := writeTestConfig(t)
	if out, err := runCmd(t, "db", "init", "--config", configPath); err != nil {
		t.Fatalf("db init failed: %v\n%s", err, out)
	}

	out, err := runCmd(t, "ticket", "list", "--config", configPath)
	if err != nil {
		t.Fatalf("ticket list failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "No tickets.") {
		t.Errorf("output = %s, want empty notice", out)
	}
}

func TestTicketShow(t *testing.T) {
	configPath := initWithTickets(t)

	out, err := runCmd(t, "ticket", "show", "1", "--config", configPath)
	if err != nil {
		t.Fatalf("ticket show failed: %v\n%s", err, out)
	}
	for _, want := range []string{
		"Ticket #1: Login broken",
		"Status:    open",
		"Category:  Bug Report",
		"alice (100)",
		"Cannot log in on mobile.",
		"Still broken today.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q: %s", want, out)
		}
	}
}

func TestTicketShow_BadID(t *testing.T) {
	configPath := initWithTickets(t)

	if _, err := runCmd(t, "ticket", "show", "abc", "--config", configPath); err == nil {
		t.Fatal("expected error for non-numeric id")
	}
	if _, err := runCmd(t, "ticket", "show", "999", "--config", configPath); err == nil {
		t.Fatal("expected error for unknown id")
	}
}

func TestTicketClose(t *testing.T) {
	configPath := initWithTickets(t)

	out, err := runCmd(t, "ticket", "close", "1", "--config", configPath)
	if err != nil {
		t.Fatalf("ticket close failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Ticket #1 closed.") {
		t.Errorf("output = %s", out)
	}

	out, err = runCmd(t, "ticket", "show", "1", "--config", configPath)
	if err != nil {
		t.Fatalf("ticket show failed: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Status:    closed") {
		t.Errorf("ticket not closed: %s", out)
	}

	// Closing again is rejected.
	if _, err := runCmd(t, "ticket", "close", "1", "--config", configPath); err == nil {
		t.Fatal("expected error closing a closed ticket")
	}
}

func TestTicketList_OpenFilter(t *testing.T) {
	configPath := initWithTickets(t)

	if out, err := runCmd(t, "ticket", "close", "1", "--config", configPath); err != nil {
		t.Fatalf("close failed: %v\n%s", err, out)
	}

	out, err := runCmd(t, "ticket", "list", "--open", "--config", configPath)
	if err != nil {
		t.Fatalf("ticket list failed: %v\n%s", err, out)
	}
	if strings.Contains(out, "Login broken") {
		t.Errorf("closed ticket leaked into --open list: %s", out)
	}
	if !strings.Contains(out, "Export data") {
		t.Errorf("open ticket missing from --open list: %s", out)
	}
}
