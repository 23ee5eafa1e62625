package handlers

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Validation limits for user-submitted fields.
const (
	maxUsernameLen  = 150
	minPasswordLen  = 8
	maxNameLen      = 150
	maxEmailLen     = 254
	maxPostTitleLen = 256
	maxPostTextLen  = 100_000
	maxCommentLen   = 10_000
)

// usernamePattern mirrors the characters allowed in profile URLs.
var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// validateRegistration checks signup credentials and returns the first
// error found.
func validateRegistration(username, password string) string {
	if username == "" {
		return "Username is required."
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return "Username is too long (max 150 characters)."
	}
	if !usernamePattern.MatchString(username) {
		return "Username may only contain letters, digits, and @/./+/-/_ characters."
	}
	if utf8.RuneCountInString(password) < minPasswordLen {
		return "Password must be at least 8 characters."
	}
	return ""
}

// validateProfileFields checks the optional name and email fields.
func validateProfileFields(firstName, lastName, email string) string {
	if utf8.RuneCountInString(firstName) > maxNameLen {
		return "First name is too long (max 150 characters)."
	}
	if utf8.RuneCountInString(lastName) > maxNameLen {
		return "Last name is too long (max 150 characters)."
	}
	if utf8.RuneCountInString(email) > maxEmailLen {
		return "Email is too long (max 254 characters)."
	}
	if email != "" && !strings.Contains(email, "@") {
		return "Email address is invalid."
	}
	return ""
}

// validatePostFields checks post form inputs and returns the first
// error found.
func validatePostFields(title, text string) string {
	if strings.TrimSpace(title) == "" {
		return "Title is required."
	}
	if utf8.RuneCountInString(title) > maxPostTitleLen {
		return "Title is too long (max 256 characters)."
	}
	if strings.TrimSpace(text) == "" {
		return "Text is required."
	}
	if utf8.RuneCountInString(text) > maxPostTextLen {
		return "Text is too long (max 100,000 characters)."
	}
	return ""
}

// validateCommentText checks a comment body.
func validateCommentText(text string) string {
	if strings.TrimSpace(text) == "" {
		return "Comment text is required."
	}
	if utf8.RuneCountInString(text) > maxCommentLen {
		return "Comment is too long (max 10,000 characters)."
	}
	return ""
}
