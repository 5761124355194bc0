package utils

import (
	"strconv"
)

// StringToInt parses s, returning fallback when s is empty, malformed or not positive.
func StringToInt(s string, fallback int) int {
	i, err := strconv.Atoi(s)
	if err != nil || i <= 0 {
		return fallback
	}
	return i
}
