// Package intent defines the typed user actions the app can donate to the
// platform's voice/search suggestion system, and the factory that builds
// them from parameters.
//
// An Intent is a pure value: building one has no side effects and touches
// no platform API. Donation and shortcut tracking live in internal/shortcut.
package intent

// Kind identifies a supported intent variant.
//
// The zero value is KindUnknown; callers must treat it as "not donatable".
type Kind int

const (
	// KindUnknown is the zero value for unrecognized or unsupported kinds.
	KindUnknown Kind = iota

	// KindAddItem adds a named item to a shopping list at a store.
	KindAddItem
)

// Valid reports whether k is a known, donatable kind.
func (k Kind) Valid() bool {
	return k == KindAddItem
}

// Identifier returns the stable identifier for the kind. It doubles as the
// default donation group key, so repeated donations of the same logical
// action collapse into one group in the platform's bookkeeping.
func (k Kind) Identifier() string {
	switch k {
	case KindAddItem:
		return "add_item"
	default:
		return ""
	}
}

// Title returns the human-readable short title for the kind.
func (k Kind) Title() string {
	switch k {
	case KindAddItem:
		return "Add Item"
	default:
		return ""
	}
}

// DefaultPhrase returns the default invocation phrase for the kind, used
// when no parameter overrides it.
func (k Kind) DefaultPhrase() string {
	switch k {
	case KindAddItem:
		return "Add Item"
	default:
		return ""
	}
}

func (k Kind) String() string {
	if id := k.Identifier(); id != "" {
		return id
	}
	return "unknown"
}

// KindFromIdentifier resolves a stable identifier back to its Kind.
// Unrecognized identifiers yield KindUnknown.
func KindFromIdentifier(id string) Kind {
	switch id {
	case "add_item":
		return KindAddItem
	default:
		return KindUnknown
	}
}

// Parameters is the untyped-ish input to Build. Empty strings mean unset;
// a quantity of zero or less means unset.
type Parameters struct {
	// Store is the store the item should be added at.
	Store string

	// Product is the item to add.
	Product string

	// Quantity is how many to add. Values <= 0 are treated as "not
	// specified", not as an error.
	Quantity int
}

// Intent combines a Kind with resolved parameters and a resolved invocation
// phrase. Produced by Build; treat it as immutable.
type Intent struct {
	// Kind is the intent variant.
	Kind Kind

	// Store is the store name, empty when unset.
	Store string

	// Product is the product name, empty when unset.
	Product string

	// Quantity is the item count; zero means unset.
	Quantity int

	// Phrase is the resolved invocation phrase.
	Phrase string
}

// GroupID returns the donation group key for the intent: its kind
// identifier.
func (in Intent) GroupID() string {
	return in.Kind.Identifier()
}
