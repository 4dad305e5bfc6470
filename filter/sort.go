package filter

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnknownSort is returned for a sort directive outside KnownSortFields.
var ErrUnknownSort = errors.New("filter: unknown sort directive")

// KnownSortFields lists the fields results can be sorted by.
var KnownSortFields = []string{FieldTitleSort, FieldInstitution, FieldDateMin, FieldDateMax}

// Sort is a single-field sort directive. The zero value means relevance
// order and renders as "".
type Sort struct {
	Field string
	Desc  bool
}

// ParseSort parses "field:asc" or "field:desc". An empty string returns the
// zero Sort.
func ParseSort(s string) (Sort, error) {
	if s == "" {
		return Sort{}, nil
	}

	field, dir, ok := strings.Cut(s, ":")
	if !ok || !slices.Contains(KnownSortFields, field) {
		return Sort{}, fmt.Errorf("%w: %q", ErrUnknownSort, s)
	}

	switch dir {
	case "asc":
		return Sort{Field: field}, nil
	case "desc":
		return Sort{Field: field, Desc: true}, nil
	default:
		return Sort{}, fmt.Errorf("%w: %q", ErrUnknownSort, s)
	}
}

// String renders the directive as a sort_by value.
func (s Sort) String() string {
	if s.Field == "" {
		return ""
	}
	if s.Desc {
		return s.Field + ":desc"
	}
	return s.Field + ":asc"
}

// IsZero reports whether s is the relevance order.
func (s Sort) IsZero() bool {
	return s.Field == ""
}
