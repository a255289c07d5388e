// Package pnr issues reservation codes.
package pnr

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

const Length = 8

var pattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

// Generator produces candidate codes. Uniqueness is checked by the caller.
type Generator func() string

// Generate returns the first eight characters of a random UUID, upper-cased.
func Generate() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:Length])
}

// Valid reports whether code has the shape of an issued reservation code.
func Valid(code string) bool {
	return pattern.MatchString(code)
}

// Normalize trims and upper-cases user input before a lookup.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
