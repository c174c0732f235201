package utils

import (
	"crypto/rand"
	"encoding/base64"
	"strconv"

	"github.com/google/uuid"
)

// ParseLimit coerces a limit query parameter to a sane value. Non-numeric
// or non-positive input falls back to def; the result never exceeds max.
// Bad input is never an error.
func ParseLimit(raw string, def, max int) int {
	if raw == "" {
		return def
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}

// GenerateSessionID creates an opaque session identifier for beacons that
// arrive without one (first hit before the storefront script stored its id).
func GenerateSessionID() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; a UUID is
		// still unique enough for a session tag.
		return uuid.New().String()
	}
	return base64.URLEncoding.EncodeToString(b)
}
