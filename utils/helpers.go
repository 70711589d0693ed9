package utils

import "strconv"

// IntQueryParam parses an optional positive-integer query parameter, returning
// fallback for empty input and ok=false for malformed or non-positive values.
func IntQueryParam(raw string, fallback int) (int, bool) {
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// BoolQueryParam parses an optional boolean query parameter with a fallback
// for empty input.
func BoolQueryParam(raw string, fallback bool) (bool, bool) {
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
