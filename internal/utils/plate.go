package utils

import (
	"regexp"
	"strings"
)

// platePattern matches license plates in the AA-123-BB format (two
// letters, three digits, two letters).  Plates are always stored and
// compared uppercase.
var platePattern = regexp.MustCompile(`^[A-Z]{2}-[0-9]{3}-[A-Z]{2}$`)

// NormalizePlate uppercases and trims a raw plate string.
func NormalizePlate(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// ValidPlate reports whether the (normalized) plate matches the
// AA-123-BB format.
func ValidPlate(plate string) bool {
	return platePattern.MatchString(NormalizePlate(plate))
}
