package components

import "strings"

const maxCachedPad = 64

// spaces backs Pad for the common widths.
var spaces = strings.Repeat(" ", maxCachedPad)

// Pad returns n spaces. Non-positive n yields an empty string.
func Pad(n int) string {
	switch {
	case n <= 0:
		return ""
	case n <= maxCachedPad:
		return spaces[:n]
	default:
		return strings.Repeat(" ", n)
	}
}
