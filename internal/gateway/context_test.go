package gateway

import (
	"sync"
	"testing"
)

func TestContextStore_DefaultsToIdle(t *testing.T) {
	s := NewContextStore()
	c := s.Get("100")
	if c.State != StateIdle {
		t.Fatalf("state = %q, want idle", c.State)
	}
	if s.InWizard("100") {
		t.Fatal("unknown actor must not be in a wizard")
	}
}

func TestContextStore_SetOverwrites(t *testing.T) {
	s := NewContextStore()
	s.Set("100", Context{State: StateAwaitingSubject, Category: "Bug Report"})
	s.Set("100", Context{State: StateAwaitingCategoryName})

	c := s.Get("100")
	if c.State != StateAwaitingCategoryName {
		t.Fatalf("state = %q, want category wizard", c.State)
	}
	if c.Category != "" {
		t.Fatalf("stale category %q survived overwrite", c.Category)
	}
}

func TestContextStore_Clear(t *testing.T) {
	s := NewContextStore()
	s.Set("100", Context{State: StateAdminReplying, TicketID: 7})
	s.Clear("100")
	if s.InWizard("100") {
		t.Fatal("cleared actor must be idle")
	}
}

func TestContextStore_PerActorIsolation(t *testing.T) {
	s := NewContextStore()
	s.Set("100", Context{State: StateAwaitingSubject})
	if s.InWizard("200") {
		t.Fatal("contexts must not leak across actors")
	}
}

func TestContextStore_ConcurrentAccess(t *testing.T) {
	s := NewContextStore()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Set("100", Context{State: StateAwaitingSubject})
			s.Get("100")
			s.Clear("100")
		}()
	}
	wg.Wait()
}
