package tgui

import "unicode/utf8"

// TruncRunes returns s truncated to at most n runes.
// It appends an ellipsis "…" when truncated.
func TruncRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	// Single-pass implementation:
	//  - remember the byte index after the n-th rune
	//  - if there is an (n+1)-th rune, truncate + ellipsis
	count := 0
	cut := 0
	for i, r := range s {
		count++
		if count == n {
			cut = i + utf8.RuneLen(r)
			continue
		}
		if count > n {
			if cut <= 0 {
				cut = i
			}
			return s[:cut] + "…"
		}
	}
	return s
}

// RuneLen is the length of s in characters, the unit Telegram limits use.
func RuneLen(s string) int { return utf8.RuneCountInString(s) }

// TailRunes returns the last n runes of s, prefixed with "…" when cut.
func TailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := len(s); i > 0; {
		_, size := utf8.DecodeLastRuneInString(s[:i])
		i -= size
		count++
		if count == n {
			if i == 0 {
				return s
			}
			return "…" + s[i:]
		}
	}
	return s
}
