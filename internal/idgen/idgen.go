// Package idgen generates short, human-typeable chart identifiers.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"
)

// ChartPrefix is prepended to every chart short id.
const ChartPrefix = "gc-"

// alphabet avoids upper case so ids survive case-insensitive shells and URLs.
const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Length is the number of random characters after the prefix.
const Length = 8

// ChartShortID returns a new id such as "gc-3k9x0qzt".
func ChartShortID() (string, error) {
	return WithPrefix(ChartPrefix)
}

// WithPrefix returns a new random id with the given prefix.
func WithPrefix(prefix string) (string, error) {
	id, err := nanoid.Generate(alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("generating short id: %w", err)
	}
	return prefix + id, nil
}
