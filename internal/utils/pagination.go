package utils

import (
	"strconv"

	"github.com/codewright/jobhub/internal/listing"
)

// ParsePage parses a 1-based page query param; anything unparsable or below
// one falls back to page one.
func ParsePage(raw string) int {
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// ParseLimit parses a page-size query param, clamped to listing.MaxLimit.
func ParseLimit(raw string) int {
	if raw == "" {
		return listing.DefaultLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return listing.DefaultLimit
	}
	if n > listing.MaxLimit {
		return listing.MaxLimit
	}
	return n
}
