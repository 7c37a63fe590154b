package format

import (
	"regexp"
	"strings"

	"checkinbot/pkg/tgui"
)

// Entry-boundary markers inside a compound account line.
var segmentMarkers = []string{"🎮", "🚀"}

// Glyphs that may lead a single entry and replace the looked-up one.
var leadingGlyphs = []string{"🎮", "🚀", "⚔️", "⚔", "🎯"}

type gameGlyph struct {
	name  string
	glyph string
}

// Ordered: the first name contained in a line wins.
var gameGlyphs = []gameGlyph{
	{"原神", "🎮"},
	{"星铁", "🚀"},
	{"星穹铁道", "🚀"},
	{"崩坏3", "⚔️"},
	{"崩坏：星穹铁道", "🚀"},
	{"绝区零", "🎯"},
	{"未定事件簿", "📖"},
	{"崩坏学园2", "🎓"},
	{"米游社", "🏠"},
	{"云原神", "☁️"},
	{"云绝区零", "☁️"},
}

var (
	reStreak          = regexp.MustCompile(`签到(\d+)天`)
	inactiveKeywords  = []string{"未绑定", "未开启"}
	rewardMarkers     = []string{"→", "×"}
	entryIndent       = "  "
	entryDetailIndent = "      "
)

// compoundLine splits "账号2 (昵称) 🎮 原神：… 🚀 星铁：…" into an account
// header followed by one formatted entry per segment.
func compoundLine(line string) []string {
	cuts := markerPositions(line)
	if len(cuts) == 0 {
		return entryLine(line)
	}

	var out []string
	if name := strings.TrimSpace(line[:cuts[0]]); name != "" {
		out = append(out, tgui.B("👤 "+name).String())
	}
	for i, start := range cuts {
		end := len(line)
		if i+1 < len(cuts) {
			end = cuts[i+1]
		}
		if seg := strings.TrimSpace(line[start:end]); seg != "" {
			out = append(out, entryLine(seg)...)
		}
	}
	return out
}

// markerPositions returns the byte offsets of every segment marker, ascending.
func markerPositions(line string) []int {
	var pos []int
	for i := 0; i < len(line); {
		matched := false
		for _, m := range segmentMarkers {
			if strings.HasPrefix(line[i:], m) {
				pos = append(pos, i)
				i += len(m)
				matched = true
				break
			}
		}
		if !matched {
			i++
		}
	}
	return pos
}

// entryLine formats one "name：detail" entry. The detail is split into a
// streak line and a reward line when it carries both.
func entryLine(line string) []string {
	line = strings.TrimSpace(line)

	var name, glyph string
	for _, g := range gameGlyphs {
		if strings.Contains(line, g.name) {
			name, glyph = g.name, g.glyph
			break
		}
	}
	for _, g := range leadingGlyphs {
		if strings.HasPrefix(line, g) {
			glyph = g
			line = strings.TrimSpace(strings.TrimPrefix(line, g))
			break
		}
	}

	details := line
	for _, sep := range []string{"：", ":"} {
		if head, tail, ok := strings.Cut(line, sep); ok {
			if name == "" {
				name = strings.TrimSpace(head)
			}
			details = strings.TrimSpace(tail)
			break
		}
	}

	var out []string
	if name != "" {
		title := tgui.B(name).String()
		if glyph != "" {
			title = glyph + " " + title
		}
		out = append(out, entryIndent+title)
	}
	if details == "" {
		return out
	}

	switch {
	case containsAny(details, rewardMarkers) && reStreak.MatchString(details):
		before, reward, hasArrow := strings.Cut(details, "→")
		out = append(out, entryDetailIndent+tgui.Code("📅 "+strings.TrimSpace(before)).String())
		if hasArrow {
			out = append(out, entryDetailIndent+tgui.Code("🎁 "+strings.TrimSpace(reward)).String())
		}
	case containsAny(details, inactiveKeywords):
		out = append(out, entryDetailIndent+tgui.I("⚪ "+details).String())
	default:
		out = append(out, entryDetailIndent+tgui.Code(details).String())
	}
	return out
}
