package notifier

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
)

// Registry maps channel names to Channel values. It is populated at startup and
// read-only afterwards.
type Registry struct {
	channels map[string]Channel
}

func NewRegistry(chs ...Channel) *Registry {
	r := &Registry{channels: make(map[string]Channel, len(chs))}
	for _, ch := range chs {
		r.Register(ch)
	}
	return r
}

// normalizeName folds case so "Telegram" and "TELEGRAM" resolve alike.
func normalizeName(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Register adds ch under its Name(); a later channel with the same name wins.
func (r *Registry) Register(ch Channel) {
	if ch == nil {
		return
	}
	r.channels[normalizeName(ch.Name())] = ch
}

// Resolve looks up a configured channel name.
func (r *Registry) Resolve(name string) (Channel, bool) {
	ch, ok := r.channels[normalizeName(name)]
	return ch, ok
}

// Names lists registered channel names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.channels))
	for n := range r.channels {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
