package intent

import "errors"

// Intent factory errors.
var (
	// ErrUnsupportedKind is returned when Build is asked for a kind the
	// app does not support. Callers must treat the result as "no intent".
	ErrUnsupportedKind = errors.New("unsupported intent kind")
)
