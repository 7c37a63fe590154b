package config

// Config is the application configuration. Push channel credentials live in a
// separate push config (see internal/notifier) and are not part of this file.
type Config struct {
	// Autorun skips the interactive confirmation before a batch starts.
	Autorun bool `json:"autorun,omitempty"`

	Accounts AccountsConfig `json:"accounts"`
	Task     TaskConfig     `json:"task"`
	Throttle ThrottleConfig `json:"throttle"`
	Push     PushConfig     `json:"push"`
	Logging  LoggingConfig  `json:"logging"`
	Daemon   DaemonConfig   `json:"daemon"`
}

// AccountsConfig controls account config discovery.
//
// Example:
//
//	accounts:
//	  dir: ./config
//	  prefix: ""
//	  required_version: 15
type AccountsConfig struct {
	Dir    string `json:"dir"`
	Prefix string `json:"prefix,omitempty"`
	// PanelMode keeps only files prefixed with "mhy_" (multi-user panel layout).
	PanelMode bool `json:"panel_mode,omitempty"`
	// RequiredVersion flags the run as "config outdated" when an account file
	// declares an older version. 0 disables the check.
	RequiredVersion int `json:"required_version,omitempty"`
}

// TaskConfig describes the external check-in command run once per account.
type TaskConfig struct {
	Command []string          `json:"command"`
	Env     map[string]string `json:"env,omitempty"`
}

// ThrottleConfig is the randomized delay between two accounts.
// Both bounds are Go duration strings (e.g. "3s", "10s").
type ThrottleConfig struct {
	Min string `json:"min,omitempty"`
	Max string `json:"max,omitempty"`
}

// PushConfig locates the push config file.
type PushConfig struct {
	Dir  string `json:"dir,omitempty"`
	Name string `json:"name,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// DaemonConfig controls scheduled mode.
//
// Schedule accepts a cron expression ("0 8 * * *", "@daily"), a Go duration
// ("12h") or HH:MM interval ("24:00"). Optional "cron:"/"interval:" prefixes
// force the parse mode.
type DaemonConfig struct {
	Schedule    string `json:"schedule,omitempty"`
	Timezone    string `json:"timezone,omitempty"`
	LockFile    string `json:"lock_file,omitempty"`
	WatchConfig bool   `json:"watch_config,omitempty"`
}
