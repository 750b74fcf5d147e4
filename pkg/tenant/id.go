package tenant

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// MaxIDLength keeps the derived schema name inside PostgreSQL's 63 byte identifier limit
// ("tenant_" + escaped id + "_schema"). It bounds the escaped form, in which
// every '_' and '-' takes two bytes.
const MaxIDLength = 49

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ID is an opaque, validated tenant identifier. It partitions every aggregate,
// schema and cache entry in the system.
type ID string

// ParseID validates raw input against the identifier grammar: ASCII letters,
// digits, hyphen and underscore, where letters and digits count one byte and
// '_' or '-' count two, for at most MaxIDLength bytes in total.
// Every accepted id therefore has a valid schema name.
func ParseID(raw string) (ID, error) {
	if raw == "" || !idPattern.MatchString(raw) {
		return "", errors.Join(ErrInvalidIdentifier, errors.New("tenant id must match [A-Za-z0-9_-]+"))
	}
	if n := EscapedLen(raw); n > MaxIDLength {
		return "", errors.Join(ErrInvalidIdentifier, fmt.Errorf("tenant id too long: %d of %d bytes once escaped", n, MaxIDLength))
	}
	return ID(raw), nil
}

// EscapedLen is the length of raw inside its schema name.
func EscapedLen(raw string) int {
	return len(raw) + strings.Count(raw, "_") + strings.Count(raw, "-")
}

// MustParseID is like ParseID but panics on invalid input. Intended for tests and constants.
func MustParseID(raw string) ID {
	id, err := ParseID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// String implements fmt.Stringer.
func (id ID) String() string { return string(id) }

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool { return id == "" }

// Valid re-checks the grammar. Useful for values that did not come through ParseID,
// e.g. rows decoded from storage.
func (id ID) Valid() bool {
	_, err := ParseID(string(id))
	return err == nil
}
