package tgui

import (
	"html"
	"strings"
	"unicode/utf8"
)

// H represents HTML that is safe to pass to Telegram when ParseMode="HTML".
// Values of type H should be treated as already-escaped.
type H string

func (h H) String() string { return string(h) }

// Esc escapes text for Telegram HTML parse mode.
func Esc(s string) H { return H(html.EscapeString(s)) }

func wrap(tag string, inner H) H { return H("<" + tag + ">" + inner.String() + "</" + tag + ">") }

func B(s string) H    { return wrap("b", Esc(s)) }
func I(s string) H    { return wrap("i", Esc(s)) }
func Code(s string) H { return wrap("code", Esc(s)) }

// SplitHTML cuts Telegram HTML s into pieces of at most n characters. Cuts
// never fall inside a tag or an entity. Tags still open at a cut are closed at
// the end of the piece and reopened at the start of the next one, so every
// piece parses on its own. Plain text splits exactly like a rune split.
func SplitHTML(s string, n int) []string {
	if n <= 0 || RuneLen(s) <= n {
		return []string{s}
	}

	var (
		out      []string
		cur      strings.Builder
		curLen   int
		prefix   int      // characters of reopened tags at the start of cur
		open     []string // open tag names, outermost first
		opening  []string // the opening tags as written
		closeLen int      // characters needed to close every open tag
	)
	cut := func() {
		for i := len(open) - 1; i >= 0; i-- {
			cur.WriteString("</" + open[i] + ">")
		}
		out = append(out, cur.String())
		cur.Reset()
		re := strings.Join(opening, "")
		cur.WriteString(re)
		curLen = RuneLen(re)
		prefix = curLen
	}

	for s != "" {
		tok := nextToken(s)
		s = s[len(tok):]
		n0 := RuneLen(tok)

		name, closing, isTag := tagName(tok)
		top := len(open) - 1
		pops := isTag && closing && top >= 0 && open[top] == name
		pushes := isTag && !closing
		after := closeLen
		switch {
		case pops:
			after -= len(name) + 3
		case pushes:
			after += len(name) + 3
		}
		if curLen > prefix && curLen+n0+after > n {
			cut()
		}

		cur.WriteString(tok)
		curLen += n0
		switch {
		case pops:
			open = open[:top]
			opening = opening[:top]
		case pushes:
			open = append(open, name)
			opening = append(opening, tok)
		}
		closeLen = after
	}
	return append(out, cur.String())
}

// nextToken returns the leading tag, entity or single rune of s.
func nextToken(s string) string {
	switch s[0] {
	case '<':
		if i := strings.IndexByte(s, '>'); i > 0 {
			return s[:i+1]
		}
	case '&':
		if i := strings.IndexByte(s, ';'); i > 1 && i <= maxEntityLen && !strings.ContainsAny(s[1:i], " &<>") {
			return s[:i+1]
		}
	}
	_, size := utf8.DecodeRuneInString(s)
	return s[:size]
}

const maxEntityLen = 10

// tagName reports the element name of a tag token and whether it closes.
func tagName(tok string) (name string, closing, ok bool) {
	if len(tok) < 3 || tok[0] != '<' || tok[len(tok)-1] != '>' {
		return "", false, false
	}
	inner := tok[1 : len(tok)-1]
	if strings.HasPrefix(inner, "/") {
		closing = true
		inner = inner[1:]
	}
	if i := strings.IndexAny(inner, " \t"); i >= 0 {
		inner = inner[:i]
	}
	if inner == "" {
		return "", false, false
	}
	return inner, closing, true
}
