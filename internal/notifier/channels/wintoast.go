package channels

import (
	"context"

	"github.com/gen2brain/beeep"

	"checkinbot/internal/notifier"
	"checkinbot/internal/notifier/format"
)

// WinToast raises a desktop notification on the local machine.
type WinToast struct {
	notify func(title, body string) error
}

func NewWinToast() *WinToast {
	return &WinToast{notify: func(title, body string) error {
		return beeep.Notify(title, body, "")
	}}
}

func (c *WinToast) Name() string { return "wintoast" }

func (c *WinToast) Send(_ context.Context, _ *notifier.Config, msg notifier.Message) error {
	return c.notify(format.Title(msg.Status), msg.Text)
}
