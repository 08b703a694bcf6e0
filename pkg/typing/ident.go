package typing

import (
	"fmt"
	"strings"

	"github.com/duynguyendang/implica/pkg/common/errors"
)

const (
	// MaxIdentLen bounds identifiers and property keys.
	MaxIdentLen = 255

	// AnonymousName is the sentinel for an anonymous pattern slot. It never
	// binds in a Context.
	AnonymousName = "_"

	// PlaceholderPrefix is reserved for executor-synthesized join variables.
	PlaceholderPrefix = "__ph_"
)

// IsIdent reports whether s is lexically an identifier:
// [A-Za-z_][A-Za-z0-9_]*, at most MaxIdentLen runes.
func IsIdent(s string) bool {
	if len(s) == 0 || len(s) > MaxIdentLen {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// ValidateName checks a user-supplied name (type name, constant name,
// binding variable, property key). The anonymous sentinel and the reserved
// placeholder prefix are rejected.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", errors.ErrEmptyName)
	}
	if name == AnonymousName {
		return fmt.Errorf("%w: %q is the anonymous sentinel", errors.ErrReservedName, name)
	}
	if strings.HasPrefix(name, PlaceholderPrefix) {
		return fmt.Errorf("%w: prefix %q is reserved for internal placeholders", errors.ErrReservedName, PlaceholderPrefix)
	}
	if !IsIdent(name) {
		return fmt.Errorf("%w: %q", errors.ErrInvalidIdentifier, name)
	}
	if name[0] == '_' {
		return fmt.Errorf("%w: %q must begin with a letter", errors.ErrInvalidIdentifier, name)
	}
	return nil
}
