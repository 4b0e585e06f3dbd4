package store

import "errors"

// Error kinds surfaced by store implementations. Repositories wrap these
// with %w so callers can classify failures with errors.Is without losing
// the underlying driver message.
var (
	// ErrNotFound: the targeted record id does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrPermissionDenied: the store rejected the operation due to
	// authorization, distinct from transport failures.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrAborted: an atomic transaction could not commit within the
	// retry budget. The caller must not treat any value produced by the
	// aborted attempt as committed.
	ErrAborted = errors.New("transaction aborted")

	// ErrUnavailable: transport or connectivity failure; transient and
	// safe to retry.
	ErrUnavailable = errors.New("store unavailable")
)
