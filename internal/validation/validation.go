package validation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// UniqueIDLength is the length of an allocated portfolio unique_id.
const UniqueIDLength = 21

// Common validation errors
var (
	ErrInvalidUniqueID = fmt.Errorf("invalid unique_id format")
)

var uniqueIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{21}$`)

// Error collects per-field validation failures.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	sort.Strings(keys)

	msgs := make([]string, 0, len(keys))
	for _, field := range keys {
		msgs = append(msgs, e.Fields[field])
	}
	return strings.Join(msgs, "; ")
}

// IsUniqueID reports whether s already satisfies the allocated unique_id format.
// Values failing this check are legacy ids that the backfill replaces.
func IsUniqueID(s string) bool {
	return uniqueIDPattern.MatchString(s)
}

// ValidateUniqueID returns ErrInvalidUniqueID unless id has the allocated format.
func ValidateUniqueID(id string) error {
	if !IsUniqueID(id) {
		return fmt.Errorf("%w: %s", ErrInvalidUniqueID, id)
	}
	return nil
}
