package intent

import "fmt"

// Build constructs an Intent of the given kind from parameters.
//
// The phrase starts as the kind's default. A non-empty store name overrides
// it to "Add Item To {store}" and sets the store field. A non-empty product
// name sets the product field. A quantity greater than zero sets the
// quantity; anything else leaves it unset.
//
// Build is deterministic and never fails for a valid kind. An unknown kind
// returns the zero Intent and ErrUnsupportedKind.
func Build(kind Kind, p Parameters) (Intent, error) {
	if !kind.Valid() {
		return Intent{}, fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}

	in := Intent{
		Kind:   kind,
		Phrase: kind.DefaultPhrase(),
	}

	if p.Store != "" {
		in.Store = p.Store
		in.Phrase = fmt.Sprintf("Add Item To %s", p.Store)
	}
	if p.Product != "" {
		in.Product = p.Product
	}
	if p.Quantity > 0 {
		in.Quantity = p.Quantity
	}

	return in, nil
}
