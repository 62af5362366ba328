// Package validate holds the format rules for account fields and the
// free-text sanitizer applied to user supplied content.
package validate

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"taskmanager/internal/apperror"
)

const (
	MsgUsername = "Username must be 3-50 characters and contain only letters, numbers, and underscores"
	MsgEmail    = "Invalid email address"
	MsgPassword = "Password must be at least 8 characters and contain uppercase, lowercase, number, and special character"
)

// passwordSymbols is the fixed punctuation set a password must draw at least one symbol from.
const passwordSymbols = `!@#$%^&*(),.?":{}|<>`

var (
	usernameRe   = regexp.MustCompile(`^[A-Za-z0-9_]{3,50}$`)
	emailRe      = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	tagRe        = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`[\s\v\p{Zs}]+`)
)

func Username(s string) bool {
	return usernameRe.MatchString(s)
}

// Email checks a single-@ address with a TLD of two or more letters. It is
// deliberately narrower than RFC 5322.
func Email(s string) bool {
	return emailRe.MatchString(s)
}

// Password requires at least 8 characters, counted as code points.
func Password(s string) bool {
	if utf8.RuneCountInString(s) < 8 {
		return false
	}

	var upper, lower, digit, symbol bool
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, r):
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// Sanitize removes tag-like substrings, collapses whitespace runs and trims the result.
func Sanitize(s string) string {
	s = tagRe.ReplaceAllString(s, "")
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// SanitizePtr is Sanitize for optional fields; nil passes through.
func SanitizePtr(s *string) *string {
	if s == nil {
		return nil
	}
	clean := Sanitize(*s)
	return &clean
}

// Registration checks username, email and password in that order and
// returns a validation error for the first violation.
func Registration(username, email, password string) error {
	if !Username(username) {
		return apperror.Validation(MsgUsername)
	}
	if !Email(email) {
		return apperror.Validation(MsgEmail)
	}
	if !Password(password) {
		return apperror.Validation(MsgPassword)
	}
	return nil
}
