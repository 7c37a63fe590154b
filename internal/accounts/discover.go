package accounts

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// PanelPrefix is the file prefix kept in panel mode.
const PanelPrefix = "mhy_"

// ErrNoAccounts is returned when discovery finds no account config.
var ErrNoAccounts = errors.New("no account config found")

// Options filter discovery.
type Options struct {
	// Prefix keeps only files starting with it. Empty keeps everything.
	Prefix string
	// PanelMode keeps only files starting with PanelPrefix.
	PanelMode bool
	// Exclude drops exact file names (e.g. the push config living in the
	// same directory).
	Exclude []string
}

// Discover lists account configs in dir: .yaml files first, then .yml, each
// group sorted by name.
func Discover(dir string, opts Options) ([]AccountTask, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read accounts dir: %w", err)
	}
	excluded := make(map[string]bool, len(opts.Exclude))
	for _, n := range opts.Exclude {
		excluded[n] = true
	}

	var yamls, ymls []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if excluded[name] {
			continue
		}
		if opts.Prefix != "" && !strings.HasPrefix(name, opts.Prefix) {
			continue
		}
		if opts.PanelMode && !strings.HasPrefix(name, PanelPrefix) {
			continue
		}
		switch filepath.Ext(name) {
		case ".yaml":
			yamls = append(yamls, name)
		case ".yml":
			ymls = append(ymls, name)
		}
	}
	sort.Strings(yamls)
	sort.Strings(ymls)

	refs := append(yamls, ymls...)
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoAccounts, dir)
	}
	tasks := make([]AccountTask, 0, len(refs))
	for _, ref := range refs {
		tasks = append(tasks, AccountTask{Ref: ref, Path: filepath.Join(dir, ref), Name: DisplayName(ref)})
	}
	return tasks, nil
}

// Refs returns the file names of tasks, in order.
func Refs(tasks []AccountTask) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Ref
	}
	return out
}
