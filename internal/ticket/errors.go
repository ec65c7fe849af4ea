package ticket

import "errors"

// Error kinds returned by the lifecycle engine and directory. Callers
// discriminate with errors.Is; the chat layer maps each kind to a reply.
var (
	// ErrNotFound means a referenced ticket, category, or admin is absent.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyClosed means the ticket is closed. Returned both for a
	// second close attempt and for a message append to a closed ticket.
	ErrAlreadyClosed = errors.New("ticket already closed")

	// ErrForbidden means the actor lacks the required role for the
	// operation (closing another user's ticket, managing the roster).
	ErrForbidden = errors.New("forbidden")

	// ErrValidation means an input failed validation (empty subject,
	// oversized category name, non-numeric admin id).
	ErrValidation = errors.New("validation failed")

	// ErrDuplicate means an entity with the same identity already exists.
	ErrDuplicate = errors.New("duplicate entity")
)
