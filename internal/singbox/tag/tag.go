// Package tag turns free-form remarks into identifiers that are safe to use
// as outbound tags.
package tag

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

// MaxLength is the rune limit of a sanitized tag.
const MaxLength = 50

var (
	spaceRun     = regexp.MustCompile(`\s+`)
	specialChars = regexp.MustCompile("[|()\\[\\]{}:;\"'<>,.?/~`!@#$%^&*+=]")
	underscores  = regexp.MustCompile(`__+`)
)

var now = time.Now

// Sanitize never returns an empty string.
func Sanitize(s string) string {
	s = strings.TrimSpace(strings.Map(keep, s))
	s = spaceRun.ReplaceAllString(s, "_")
	s = specialChars.ReplaceAllString(s, "_")
	s = underscores.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")

	if r := []rune(s); len(r) > MaxLength {
		s = strings.TrimRight(string(r[:MaxLength]), "_")
	}
	if s == "" {
		return Fallback()
	}
	return s
}

// Fallback is the tag used when a remark sanitizes to nothing.
func Fallback() string {
	return fmt.Sprintf("proxy_tag_%d", now().UnixMilli()%10000)
}

// keep drops symbols, emoji and control characters.
func keep(r rune) rune {
	switch {
	case unicode.IsLetter(r), unicode.IsNumber(r), unicode.IsPunct(r):
		return r
	case unicode.In(r, unicode.Z):
		return r
	case r == '_', r == '-':
		return r
	}
	return -1
}
