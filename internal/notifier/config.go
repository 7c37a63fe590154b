package notifier

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	yaml "go.yaml.in/yaml/v3"
)

// SettingSection is the reserved section holding global push options.
const SettingSection = "setting"

// Config is a parsed push config: one key/value Section per channel plus the
// reserved "setting" section. It is read-only once loaded.
type Config struct {
	path     string
	sections map[string]Section
}

// Section is a flat option table. Keys are case-insensitive.
type Section struct {
	name   string
	values map[string]string
}

// LoadConfig reads a push config file. A missing file yields an error
// wrapping ErrConfigMissing.
//
// Example:
//
//	setting:
//	  enable: true
//	  push_server: telegram,dingrobot
//	  push_block_keys: my-uid,my-nickname
//	telegram:
//	  api_url: api.telegram.org
//	  bot_token: "123:abc"
//	  chat_id: "1000"
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigMissing, path)
		}
		return nil, err
	}
	cfg, err := ParseConfig(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	cfg.path = path
	return cfg, nil
}

// ParseConfig parses push config YAML. Top-level keys are sections; section
// values must be scalars.
func ParseConfig(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("yaml unmarshal: %w", err)
	}
	cfg := &Config{sections: make(map[string]Section, len(raw))}
	for name, v := range raw {
		key := strings.ToLower(strings.TrimSpace(name))
		sec := Section{name: key, values: map[string]string{}}
		switch m := v.(type) {
		case nil:
		case map[string]any:
			for k, val := range m {
				s, err := scalar(val)
				if err != nil {
					return nil, fmt.Errorf("%s.%s: %w", key, k, err)
				}
				sec.values[strings.ToLower(strings.TrimSpace(k))] = s
			}
		default:
			return nil, fmt.Errorf("%s: section must be a mapping, got %T", key, v)
		}
		cfg.sections[key] = sec
	}
	return cfg, nil
}

func scalar(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int:
		return strconv.Itoa(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), nil
	case []any:
		// Lists are accepted for comma-separated options.
		parts := make([]string, 0, len(x))
		for _, item := range x {
			s, err := scalar(item)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

func (c *Config) Path() string { return c.path }

// Section returns the named section; absent sections are empty.
func (c *Config) Section(name string) Section {
	name = strings.ToLower(strings.TrimSpace(name))
	if c != nil {
		if s, ok := c.sections[name]; ok {
			return s
		}
	}
	return Section{name: name}
}

func (c *Config) HasSection(name string) bool {
	if c == nil {
		return false
	}
	_, ok := c.sections[strings.ToLower(strings.TrimSpace(name))]
	return ok
}

func (s Section) Name() string { return s.name }

// Get returns the raw value and whether the key is present.
func (s Section) Get(key string) (string, bool) {
	v, ok := s.values[strings.ToLower(key)]
	return v, ok
}

// String returns the trimmed value, or "" when absent.
func (s Section) String(key string) string {
	v, _ := s.Get(key)
	return strings.TrimSpace(v)
}

// StringOr returns the trimmed value, or def when absent or blank.
func (s Section) StringOr(key, def string) string {
	if v := s.String(key); v != "" {
		return v
	}
	return def
}

// Require returns the value or an error wrapping ErrMissingOption.
func (s Section) Require(key string) (string, error) {
	if v := s.String(key); v != "" {
		return v, nil
	}
	return "", fmt.Errorf("%w: %s.%s", ErrMissingOption, s.name, key)
}

// BoolOr parses a boolean option, returning def when absent or blank.
// Accepted values: 1/yes/true/on and 0/no/false/off.
func (s Section) BoolOr(key string, def bool) (bool, error) {
	v := strings.ToLower(s.String(key))
	switch v {
	case "":
		return def, nil
	case "1", "yes", "true", "on":
		return true, nil
	case "0", "no", "false", "off":
		return false, nil
	default:
		return def, fmt.Errorf("%s.%s: not a boolean: %q", s.name, key, v)
	}
}

// IntOr parses an integer option, returning def when absent or blank.
func (s Section) IntOr(key string, def int) (int, error) {
	v := s.String(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%s.%s: %w", s.name, key, err)
	}
	return n, nil
}

// List splits a comma-separated option, dropping blank items.
func (s Section) List(key string) []string {
	var out []string
	for _, p := range strings.Split(s.String(key), ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
