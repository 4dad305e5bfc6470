package params

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MaxInputLength is the maximum length of a sanitized input, in characters.
const MaxInputLength = 500

// DangerousChars are removed from every input.
const DangerousChars = "<>\"'&;|`$"

// DangerousPatterns cause an input to be rejected. Matching is
// case-insensitive.
var DangerousPatterns = []string{
	"javascript:",
	"data:",
	"vbscript:",
	"file:",
	"ignore previous instructions",
	"system prompt",
	"assistant:",
	"human:",
	"```",
	"eval(",
	"exec(",
	"import os",
	"subprocess",
	"/etc/passwd",
	"../",
}

var dangerousCharRemover = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(DangerousChars))
	for _, r := range DangerousChars {
		pairs = append(pairs, string(r), "")
	}
	return strings.NewReplacer(pairs...)
}()

// Sanitize strips dangerous characters from s, rejects dangerous patterns
// and overlong input, and trims surrounding whitespace. The result is in
// Unicode NFC. Patterns are matched against the compatibility-folded text,
// so fullwidth and case variants are caught too.
func Sanitize(s string) (string, error) {
	s = norm.NFC.String(dangerousCharRemover.Replace(s))

	folded := cases.Fold().String(norm.NFKC.String(s))
	for _, p := range DangerousPatterns {
		if strings.Contains(folded, p) {
			return "", fmt.Errorf("%w: %q", ErrDangerousInput, p)
		}
	}

	if utf8.RuneCountInString(s) > MaxInputLength {
		return "", ErrInputTooLong
	}

	return strings.TrimSpace(s), nil
}

// sanitizeAll sanitizes each value and drops values that end up empty.
func sanitizeAll(field string, values []string) ([]string, error) {
	if len(values) == 0 {
		return nil, nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		clean, err := Sanitize(v)
		if err != nil {
			return nil, invalid(field, err)
		}
		if clean != "" {
			out = append(out, clean)
		}
	}
	return out, nil
}

func checkLen(field string, values []string, limit int) error {
	if len(values) > limit {
		return invalid(field, fmt.Errorf("%w: %d > %d", ErrTooManyValues, len(values), limit))
	}
	return nil
}

func checkRange(field string, v, lo, hi int) error {
	if v < lo || v > hi {
		return invalid(field, fmt.Errorf("%w: %d not in [%d, %d]", ErrOutOfRange, v, lo, hi))
	}
	return nil
}
