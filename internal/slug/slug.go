// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package slug generates and validates URL-friendly category identifiers.
package slug

import (
	"regexp"
	"strings"
)

var (
	// nonAlphanumeric matches anything that isn't a letter, digit, or space.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9\s-]`)
	// multipleHyphens collapses consecutive hyphens into one.
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// validSlug accepts letters, digits, hyphens, and underscores.
	validSlug = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)
)

// Generate creates a URL-friendly slug from the given string.
// Example: "Travel Notes, 2026!" → "travel-notes-2026"
func Generate(s string) string {
	result := strings.ToLower(strings.TrimSpace(s))
	result = nonAlphanumeric.ReplaceAllString(result, "")
	result = strings.ReplaceAll(result, " ", "-")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")
	return result
}

// Valid reports whether s is usable as a category slug. Slugs appear in
// URLs, so only letters, digits, hyphens, and underscores are allowed.
func Valid(s string) bool {
	return validSlug.MatchString(s)
}
