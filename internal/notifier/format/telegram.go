package format

import (
	"strings"
	"time"

	"checkinbot/internal/report"
	"checkinbot/pkg/tgui"
)

const rule = "━━━━━━━━━━━━━━━━━━━━"

type lineClass int

const (
	lineBlank lineClass = iota
	lineSummaryHeader
	lineStatus
	lineAccountHeader
	lineCompound
	lineEntry
	lineError
	linePlain
)

var (
	statusPrefixes   = []string{"✅", "❌", "⚠️", "⏸"}
	accountKeywords  = []string{"账号", "【", "】"}
	compoundMarkers  = []string{"🎮", "🚀", "原神", "星铁", "崩坏"}
	entryIndicators  = []string{"🎮", "🚀", "原神：", "星铁：", "崩坏", "绝区零：", "米游社："}
	errorKeywords    = []string{"出错", "失败", "错误", "异常", "Cookie", "Stoken"}
	summaryStatWords = []string{"成功", "失败"}
)

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// classify assigns a trimmed report line to one class. Order matters: status
// glyph lines win over the account keywords they may contain.
func classify(line string) lineClass {
	switch {
	case line == "":
		return lineBlank
	case strings.HasPrefix(line, "📊"):
		return lineSummaryHeader
	case hasAnyPrefix(line, statusPrefixes):
		return lineStatus
	case containsAny(line, accountKeywords):
		if containsAny(line, compoundMarkers) {
			return lineCompound
		}
		return lineAccountHeader
	case containsAny(line, entryIndicators):
		return lineEntry
	case containsAny(line, errorKeywords):
		return lineError
	default:
		return linePlain
	}
}

// TelegramHTML renders msg as Telegram HTML: a bold status header, the
// reclassified report lines, and a timestamp footer taken from now.
func TelegramHTML(status report.Status, msg string, now time.Time) string {
	var b strings.Builder
	b.WriteString(tgui.B(Glyph(status) + " " + Title(status)).String())
	b.WriteByte('\n')
	b.WriteString(strings.Join(telegramBody(msg), "\n"))

	// The footer is appended after formatting and never re-parsed.
	b.WriteString("\n\n")
	b.WriteString(tgui.B(rule).String())
	b.WriteByte('\n')
	b.WriteString(tgui.I("⏰ " + now.Format(time.DateTime)).String())
	return b.String()
}

func telegramBody(msg string) []string {
	lines := strings.Split(msg, "\n")
	out := make([]string, 0, len(lines)+8)

	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		switch classify(line) {
		case lineBlank:
			out = append(out, "")
		case lineSummaryHeader:
			out = append(out, "\n"+tgui.B(line).String())
			// A following stats line belongs to the summary.
			if i+1 < len(lines) && containsAny(lines[i+1], summaryStatWords) {
				i++
				out = append(out, tgui.B(strings.TrimSpace(lines[i])).String())
			}
			out = append(out, "\n"+tgui.B(rule).String())
		case lineStatus:
			out = append(out, tgui.I(line).String())
		case lineAccountHeader:
			out = append(out, "", tgui.B("👤 "+line).String())
		case lineCompound:
			out = append(out, "")
			out = append(out, compoundLine(line)...)
		case lineEntry:
			out = append(out, entryLine(line)...)
		case lineError:
			out = append(out, tgui.I("⚠️ "+line).String())
		default:
			out = append(out, tgui.Esc(line).String())
		}
	}
	return out
}
