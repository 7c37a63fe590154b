package notifier

import (
	"strings"
	"unicode/utf8"
)

// MaskRune fills redacted substrings.
const MaskRune = '*'

// Redact replaces every occurrence of each blocked substring with a mask of the
// same character length. Substrings are trimmed and blank ones skipped; they
// are applied in list order, so a later key may match filler produced by an
// earlier one.
func Redact(msg string, blocked []string) string {
	for _, key := range blocked {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		msg = strings.ReplaceAll(msg, key, strings.Repeat(string(MaskRune), utf8.RuneCountInString(key)))
	}
	return msg
}
