package store

import "errors"

// Local store errors.
var (
	// ErrShortcutNotFound is returned when removing a shortcut id that
	// does not exist.
	ErrShortcutNotFound = errors.New("shortcut not found")
)
