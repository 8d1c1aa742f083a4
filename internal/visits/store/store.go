// Package store holds the visit counter backends.
package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrNotFound is returned when a counter key has never been written.
	ErrNotFound = errors.New("visit counter not found")
	// ErrCorrupt is returned when a stored value is not an integer.
	ErrCorrupt = errors.New("visit counter value is not an integer")
)

func parseValue(key, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: key %q holds %q", ErrCorrupt, key, raw)
	}
	return n, nil
}
