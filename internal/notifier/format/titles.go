package format

import "checkinbot/internal/report"

var titles = map[report.Status]string{
	report.StatusDependencyMissing: "「米游社脚本」依赖缺失",
	report.StatusUnknown:           "「米游社脚本」StatusID 错误",
	report.StatusConfigOutdated:    "「米游社脚本」Config版本已更新",
	report.StatusSuccess:           "「米游社脚本」执行成功!",
	report.StatusAllFailed:         "「米游社脚本」执行失败!",
	report.StatusPartial:           "「米游社脚本」部分账号执行失败！",
	report.StatusCaptcha:           "「米游社脚本」社区/游戏道具签到触发验证码！",
}

var glyphs = map[report.Status]string{
	report.StatusSuccess:           "✅",
	report.StatusAllFailed:         "❌",
	report.StatusPartial:           "⚠️",
	report.StatusCaptcha:           "🔐",
	report.StatusConfigOutdated:    "📢",
	report.StatusUnknown:           "❓",
	report.StatusDependencyMissing: "🚫",
}

// Title returns the notification title for s, falling back to the
// StatusUnknown title for codes outside the table.
func Title(s report.Status) string {
	if t, ok := titles[s]; ok {
		return t
	}
	return titles[report.StatusUnknown]
}

// HasTitle reports whether s has its own title entry.
func HasTitle(s report.Status) bool {
	_, ok := titles[s]
	return ok
}

// Glyph returns the status emoji used in rich headers.
func Glyph(s report.Status) string {
	if g, ok := glyphs[s]; ok {
		return g
	}
	return "ℹ️"
}

// Plain is the text body used by channels without markup: title, CRLF, message.
func Plain(s report.Status, msg string) string {
	return Title(s) + "\r\n" + msg
}
