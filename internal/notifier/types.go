package notifier

import (
	"context"
	"errors"

	"checkinbot/internal/report"
)

var (
	// ErrConfigMissing means the push config file does not exist.
	ErrConfigMissing = errors.New("push config missing")
	// ErrMissingOption is returned when a required channel option is absent.
	ErrMissingOption = errors.New("missing option")
)

// Message is what a channel receives: the status used for title lookup and the
// redacted report text.
type Message struct {
	Status report.Status
	Text   string
}

// Channel is one push protocol. Send reads its options from cfg and returns an
// error when delivery failed.
type Channel interface {
	Name() string
	Send(ctx context.Context, cfg *Config, msg Message) error
}
