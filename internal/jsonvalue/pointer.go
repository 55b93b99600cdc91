package jsonvalue

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/qri-io/jsonpointer"
)

// arrayIndex matches an RFC 6901 array index: 0 or digits without a leading zero
var arrayIndex = regexp.MustCompile(`^(0|[1-9][0-9]*)$`)

// Pointer resolves an RFC 6901 JSON Pointer against v.
// The empty path returns v itself.
func (v Value) Pointer(path string) (Value, error) {
	if path == "" {
		return v, nil
	}

	ptr, err := jsonpointer.Parse(path)
	if err != nil {
		return Value{}, fmt.Errorf("invalid JSON Pointer %q: %w", path, err)
	}

	current := v
	for _, token := range ptr {
		switch current.Kind {
		case Object:
			next, ok := current.Get(token)
			if !ok {
				return Value{}, fmt.Errorf("%w: %s", ErrNotFound, path)
			}
			current = next
		case Array:
			if !arrayIndex.MatchString(token) {
				return Value{}, fmt.Errorf("%w: %s (array index %q)", ErrNotFound, path, token)
			}
			idx, err := strconv.Atoi(token)
			if err != nil || idx >= len(current.Items) {
				return Value{}, fmt.Errorf("%w: %s (array index %q)", ErrNotFound, path, token)
			}
			current = current.Items[idx]
		default:
			return Value{}, fmt.Errorf("%w: %s (cannot descend into %s)", ErrNotFound, path, current.Kind)
		}
	}

	return current, nil
}
