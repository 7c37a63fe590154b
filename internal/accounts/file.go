package accounts

import (
	"fmt"
	"os"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

// File holds the fields of an account config the runner itself needs. The
// rest of the document belongs to the check-in task and is left untouched.
type File struct {
	// Version is the config schema version written by the check-in task.
	Version int `yaml:"version"`
	// Push names a push config file (in the push dir) for this account's
	// credential alerts. Empty disables them.
	Push string `yaml:"push"`
}

// Load reads the runner-relevant fields of an account config.
func Load(path string) (File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return File{}, err
	}
	var f File
	if err := yaml.Unmarshal(b, &f); err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	f.Push = strings.TrimSpace(f.Push)
	return f, nil
}

// Outdated reports whether f predates required. A zero requirement never
// flags.
func (f File) Outdated(required int) bool {
	return required > 0 && f.Version < required
}
