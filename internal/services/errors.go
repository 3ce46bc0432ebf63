package services

import "errors"

// Operation errors surfaced to handlers. Anything not listed here is treated
// as a persistence failure: the operation aborted without partial writes and
// may be retried by re-invoking it.
var (
	// Precondition failures: abort before any mutation, no retry.
	ErrIdentityRequired = errors.New("identity required")
	ErrLocationRequired = errors.New("location required")

	// Referenced entity vanished.
	ErrNotFound       = errors.New("not found")
	ErrCatalogMissing = errors.New("catalog card missing")

	// Domain refusals.
	ErrAlreadyOwned = errors.New("card already in deck")
	ErrQuestExists  = errors.New("quest already accepted")
	ErrOwnCard      = errors.New("cannot accept a quest on your own card")
	ErrCardNotOwned = errors.New("card not owned")
	ErrScanInFlight = errors.New("scan already in progress")
)
