package ticket

import (
	"context"
	"testing"
)

func TestSummarize(t *testing.T) {
	db := openTestDB(t)
	seedTaxonomy(t, db)
	e := newTestEngine(t, db)

	for i := 0; i < 3; i++ {
		if _, err := e.Create(context.Background(), requester, "Bug Report", "s", "d", nil); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	closed, err := e.Create(context.Background(), requester, "General Question", "s", "d", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := e.Close(context.Background(), closed.ID, requester); err != nil {
		t.Fatalf("close: %v", err)
	}

	s, err := Summarize(db)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Total != 4 || s.Open != 3 || s.Closed != 1 {
		t.Fatalf("summary = %+v, want total 4 open 3 closed 1", *s)
	}
}

func TestSummarize_Empty(t *testing.T) {
	db := openTestDB(t)

	s, err := Summarize(db)
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if s.Total != 0 || s.Open != 0 || s.Closed != 0 {
		t.Fatalf("summary = %+v, want all zero", *s)
	}
}

func TestCountByCategory(t *testing.T) {
	db := openTestDB(t)
	seedTaxonomy(t, db)
	e := newTestEngine(t, db)

	if _, err := e.Create(context.Background(), requester, "Bug Report", "s", "d", nil); err != nil {
		t.Fatalf("create: %v", err)
	}
	tk, err := e.Create(context.Background(), requester, "Bug Report", "s", "d", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := e.Close(context.Background(), tk.ID, requester); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := e.Create(context.Background(), requester, "General Question", "s", "d", nil); err != nil {
		t.Fatalf("create: %v", err)
	}

	counts, err := CountByCategory(db)
	if err != nil {
		t.Fatalf("count by category: %v", err)
	}
	byName := map[string]CategoryCount{}
	for _, c := range counts {
		byName[c.Category] = c
	}
	bugs := byName["Bug Report"]
	if bugs.Total != 2 || bugs.Open != 1 {
		t.Fatalf("bug report = %+v, want total 2 open 1", bugs)
	}
	general := byName["General Question"]
	if general.Total != 1 || general.Open != 1 {
		t.Fatalf("general question = %+v, want total 1 open 1", general)
	}
}

func TestRecent_LimitAndOrder(t *testing.T) {
	db := openTestDB(t)
	seedTaxonomy(t, db)
	e := newTestEngine(t, db)

	var last uint
	for i := 0; i < 5; i++ {
		tk, err := e.Create(context.Background(), requester, "Bug Report", "s", "d", nil)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		last = tk.ID
	}

	recent, err := Recent(db, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d tickets, want 3", len(recent))
	}
	if recent[0].ID != last {
		t.Fatalf("first id = %d, want most recent %d", recent[0].ID, last)
	}

	// A non-positive limit falls back to the default page size.
	all, err := Recent(db, 0)
	if err != nil {
		t.Fatalf("recent default: %v", err)
	}
	if len(all) != 5 {
		t.Fatalf("got %d tickets, want 5", len(all))
	}
}

func TestOpenTickets(t *testing.T) {
	db := openTestDB(t)
	seedTaxonomy(t, db)
	e := newTestEngine(t, db)

	a, err := e.Create(context.Background(), requester, "Bug Report", "s", "d", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	b, err := e.Create(context.Background(), requester, "Bug Report", "s", "d", nil)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := e.Close(context.Background(), a.ID, requester); err != nil {
		t.Fatalf("close: %v", err)
	}

	open, err := OpenTickets(db)
	if err != nil {
		t.Fatalf("open tickets: %v", err)
	}
	if len(open) != 1 || open[0].ID != b.ID {
		t.Fatalf("open = %v, want only ticket %d", open, b.ID)
	}
}
