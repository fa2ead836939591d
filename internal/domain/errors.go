package domain

import "errors"

// Repository-level sentinels. Services translate these into the typed
// errors surfaced to callers.
var (
	// ErrNotFound means the requested record does not exist. Repositories
	// return it instead of nil-pointer results for single-row lookups that
	// must exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateSession means a chat session insert lost a race against a
	// concurrent insert with the same session id.
	ErrDuplicateSession = errors.New("chat session already exists")
)
