package gateway

import "sync"

// State tags where an actor is in a multi-turn conversation.
type State string

const (
	// StateIdle means no wizard is in progress. The zero context.
	StateIdle State = "idle"

	// Ticket creation wizard.
	StateAwaitingCategory    State = "awaiting_category"
	StateAwaitingSubject     State = "awaiting_subject"
	StateAwaitingDescription State = "awaiting_description"

	// Admin pressed Reply on a ticket and owes us the reply text.
	StateAdminReplying State = "admin_replying"

	// Category creation wizard (main admin).
	StateAwaitingCategoryName        State = "awaiting_category_name"
	StateAwaitingCategoryDescription State = "awaiting_category_description"

	// Admin roster wizard (main admin).
	StateAwaitingAdminID State = "awaiting_admin_id"
)

// Context is the per-actor conversation state. Fields accumulate as a
// wizard progresses and are dropped wholesale on any terminal transition.
type Context struct {
	State        State
	Category     string // chosen category (ticket wizard)
	Subject      string // collected subject (ticket wizard)
	TicketID     uint   // target ticket (admin reply)
	CategoryName string // collected name (category wizard)
}

// ContextStore holds one conversation context per actor. Starting a new
// wizard overwrites whatever was in progress; there is no nesting.
type ContextStore struct {
	mu       sync.Mutex
	contexts map[string]Context
}

// NewContextStore creates an empty ContextStore.
func NewContextStore() *ContextStore {
	return &ContextStore{contexts: make(map[string]Context)}
}

// Get returns the actor's current context, or an idle zero context.
func (s *ContextStore) Get(userID string) Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contexts[userID]
	if !ok {
		return Context{State: StateIdle}
	}
	return c
}

// Set replaces the actor's context.
func (s *ContextStore) Set(userID string, c Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contexts[userID] = c
}

// Clear drops the actor's context, returning them to idle.
func (s *ContextStore) Clear(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.contexts, userID)
}

// InWizard reports whether the actor has a non-idle context.
func (s *ContextStore) InWizard(userID string) bool {
	return s.Get(userID).State != StateIdle
}
