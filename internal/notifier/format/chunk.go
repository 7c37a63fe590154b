package format

import (
	"strings"

	"checkinbot/pkg/tgui"
)

// Chunk splits msg into ordered pieces of at most limit characters.
//
// Splits happen only at newlines, so strings.Join(chunks, "\n") == msg. A single
// line longer than limit is cut by tgui.SplitHTML into pieces of at most
// limit-tgui.HardSplitMargin characters. Those pieces keep their tags balanced
// and entities whole; for plain text the character count is preserved.
func Chunk(msg string, limit int) []string {
	if limit <= 0 || tgui.RuneLen(msg) <= limit {
		return []string{msg}
	}
	hard := limit - tgui.HardSplitMargin
	if hard <= 0 {
		hard = limit
	}

	var (
		chunks []string
		cur    strings.Builder
		curLen int
		open   bool
	)
	flush := func() {
		chunks = append(chunks, cur.String())
		cur.Reset()
		curLen = 0
		open = false
	}

	for _, line := range strings.Split(msg, "\n") {
		n := tgui.RuneLen(line)
		if n > limit {
			if open {
				flush()
			}
			chunks = append(chunks, tgui.SplitHTML(line, hard)...)
			continue
		}
		if open && curLen+1+n > limit {
			flush()
		}
		if open {
			cur.WriteByte('\n')
			curLen++
		}
		cur.WriteString(line)
		curLen += n
		open = true
	}
	if open {
		flush()
	}
	return chunks
}
