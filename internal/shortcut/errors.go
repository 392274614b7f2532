package shortcut

import "errors"

// Registry and donation errors.
var (
	// ErrStoreUnavailable is returned when the shortcut store cannot be
	// reached. The registry keeps serving its last-known snapshot.
	ErrStoreUnavailable = errors.New("shortcut store unavailable")

	// ErrPermissionDenied is returned when the store rejects access.
	ErrPermissionDenied = errors.New("shortcut store permission denied")

	// ErrDonationFailed is returned when the interaction or relevance
	// donation fails. Donation is best-effort; callers on a UI path
	// should use DonateAsync and let the registry log it.
	ErrDonationFailed = errors.New("donation failed")
)
