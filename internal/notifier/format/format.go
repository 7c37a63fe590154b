package format

import (
	"fmt"
	"strings"
	"time"

	"checkinbot/internal/report"
	"checkinbot/pkg/tgui"
)

// Kind names a markup dialect. Text-only channels take Plain directly.
type Kind int

const (
	KindTelegramHTML Kind = iota + 1
	KindEmailHTML
)

// Message is a formatted message: one part, or ordered length-bounded chunks.
type Message struct {
	Parts []string
}

// Single returns the only part, or all parts joined by newlines.
func (m Message) Single() string {
	return strings.Join(m.Parts, "\n")
}

// Formatter renders reports for a channel kind. Now supplies the footer
// timestamp; nil means time.Now.
type Formatter struct {
	Now func() time.Time
	// TelegramLimit overrides tgui.MaxMessageLen (tests).
	TelegramLimit int
	// Background is the optional email decoration image URL.
	Background string
}

func (f Formatter) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

// Format renders msg for kind. Output is fully determined by the inputs and
// the clock.
func (f Formatter) Format(status report.Status, msg string, kind Kind) (Message, error) {
	switch kind {
	case KindTelegramHTML:
		limit := f.TelegramLimit
		if limit <= 0 {
			limit = tgui.MaxMessageLen
		}
		return Message{Parts: Chunk(TelegramHTML(status, msg, f.now()), limit)}, nil
	case KindEmailHTML:
		body, err := EmailHTML(status, msg, f.Background)
		if err != nil {
			return Message{}, err
		}
		return Message{Parts: []string{body}}, nil
	default:
		return Message{}, fmt.Errorf("format: unknown kind %d", kind)
	}
}
