package lifecycle

import "errors"

// Error kinds surfaced by the lifecycle client. Callers branch on these with
// errors.Is; every failure names its actionable cause so the UI never shows a
// generic "request failed" for a password or state problem.
var (
	// ErrNotFound: no order matches the requested id.
	ErrNotFound = errors.New("order not found")

	// ErrInvalidState: the transition was attempted from the wrong status.
	// Recoverable locally; the order is unchanged.
	ErrInvalidState = errors.New("order is not in the required status")

	// ErrInvalidPassword: the credential did not verify against the named
	// salesperson. Local to the active dialog; must never tear the session down.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrTransient: connectivity or server failure. Retryable by re-opening
	// the action; no automatic retry is performed.
	ErrTransient = errors.New("order store unreachable")

	// ErrSessionExpired: global auth failure. The session is torn down and
	// supersedes any local error handling.
	ErrSessionExpired = errors.New("session expired")

	// ErrEmptyItems: an edit carried no items. Rejected before submission;
	// the request never reaches the store.
	ErrEmptyItems = errors.New("at least one item is required")

	// ErrMissingFields: presence validation failed on a confirmation form.
	ErrMissingFields = errors.New("all fields are required")
)
