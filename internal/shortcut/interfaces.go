// Package shortcut tracks which intents already have a user-created voice
// shortcut and donates intents to the platform's suggestion subsystems.
//
// The Registry holds a snapshot of the external shortcut store, replaced
// wholesale on each reload. It is eventually consistent with the store:
// a donation does not update the snapshot until the next reload.
package shortcut

import (
	"context"

	"voicelink/internal/intent"
)

// VoiceShortcut is a handle to a shortcut the user has already created,
// owned by the external store. The registry holds read-only references
// loaded at reload time.
type VoiceShortcut struct {
	// ID is the store's opaque identifier for the shortcut.
	ID string

	// Phrase is the spoken phrase the user bound to the intent.
	Phrase string

	// Intent is the intent the shortcut wraps.
	Intent intent.Intent
}

// ShortcutStore lists the voice shortcuts the user has created.
//
// Implementations must return a slice the caller may retain; mutation of
// the returned slice must not affect store state.
type ShortcutStore interface {
	ListAll(ctx context.Context) ([]VoiceShortcut, error)
}

// InteractionDonor records that an intent occurred or is likely to occur
// again, feeding future suggestion ranking.
type InteractionDonor interface {
	Donate(ctx context.Context, in intent.Intent, groupID string) error
}

// RelevanceStore registers intents as candidates for proactive surfacing,
// e.g. in a search or suggestions surface.
type RelevanceStore interface {
	SetRelevant(ctx context.Context, intents []intent.Intent) error
}
