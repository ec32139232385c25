package store

import (
	"fmt"

	"github.com/solatis/policystore/internal/types"
)

// ValidateIdentifier accepts only non-empty names of ASCII letters, digits,
// underscore and dot. Table names are interpolated into SQL text because
// identifiers cannot be bound, so this check must run before any statement
// containing the name is built.
func ValidateIdentifier(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", types.ErrInvalidIdentifier)
	}
	for i := 0; i < len(name); i++ {
		c := name[i]
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_' || c == '.') {
			return fmt.Errorf("%w: %q contains %q at offset %d", types.ErrInvalidIdentifier, name, c, i)
		}
	}
	return nil
}
