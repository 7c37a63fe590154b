package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"checkinbot/pkg/logx"
)

const (
	DefaultPushName     = "push.yaml"
	DefaultThrottleMin  = 3 * time.Second
	DefaultThrottleMax  = 10 * time.Second
	DefaultLockFileName = "checkin.lock"
)

// Default returns the config used when no file is present. Parse decodes on top
// of it, so omitted keys keep these values.
func Default() Config {
	return Config{
		Accounts: AccountsConfig{Dir: "./config"},
		Throttle: ThrottleConfig{Min: "3s", Max: "10s"},
		Push:     PushConfig{Dir: "./config", Name: DefaultPushName},
		Logging:  LoggingConfig{Level: "info", Console: true},
		Daemon:   DaemonConfig{Schedule: "@daily"},
	}
}

// ApplyEnv overlays environment overrides. getenv is usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv("CHECKIN_AUTORUN") == "1" {
		c.Autorun = true
	}
	if v, ok := lookup(getenv, "CHECKIN_CONFIG_PREFIX"); ok {
		c.Accounts.Prefix = v
	} else if getenv("CHECKIN_CONFIG_MULTI") == "1" && getenv("QL_DIR") != "" {
		// Panel installs expose QL_DIR; their account files share a fixed prefix.
		c.Accounts.PanelMode = true
	}
	if v, ok := lookup(getenv, "CHECKIN_PUSH_PATH"); ok {
		c.Push.Dir = v
	}
	if v, ok := lookup(getenv, "CHECKIN_PUSH_NAME"); ok {
		c.Push.Name = v
	}
}

func lookup(getenv func(string) string, key string) (string, bool) {
	v := strings.TrimSpace(getenv(key))
	return v, v != ""
}

// Validate checks fields that would otherwise fail late, mid-batch.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Accounts.Dir) == "" {
		errs = append(errs, errors.New("accounts.dir: required"))
	}
	if c.Accounts.RequiredVersion < 0 {
		errs = append(errs, errors.New("accounts.required_version: must be >= 0"))
	}
	if _, _, err := c.ThrottleRange(); err != nil {
		errs = append(errs, err)
	}
	if lvl := strings.TrimSpace(c.Logging.Level); lvl != "" {
		if _, ok := logx.ParseLevel(lvl); !ok {
			errs = append(errs, fmt.Errorf("logging.level: unknown level %q", lvl))
		}
	}
	if tz := strings.TrimSpace(c.Daemon.Timezone); tz != "" {
		if _, err := time.LoadLocation(tz); err != nil {
			errs = append(errs, fmt.Errorf("daemon.timezone: %w", err))
		}
	}
	return errors.Join(errs...)
}

// ThrottleRange returns the resolved [min, max] delay between accounts.
func (c *Config) ThrottleRange() (time.Duration, time.Duration, error) {
	lo, err := ParseDurationOrDefault("throttle.min", c.Throttle.Min, DefaultThrottleMin)
	if err != nil {
		return 0, 0, err
	}
	hi, err := ParseDurationOrDefault("throttle.max", c.Throttle.Max, DefaultThrottleMax)
	if err != nil {
		return 0, 0, err
	}
	if hi < lo {
		return 0, 0, fmt.Errorf("throttle: max %s is below min %s", hi, lo)
	}
	return lo, hi, nil
}

// PushPath is the full path of the push config file.
func (c *Config) PushPath() string {
	name := strings.TrimSpace(c.Push.Name)
	if name == "" {
		name = DefaultPushName
	}
	return filepath.Join(c.Push.Dir, name)
}

// LockPath is the run lock shared by "run" and "daemon".
func (c *Config) LockPath() string {
	if p := strings.TrimSpace(c.Daemon.LockFile); p != "" {
		return p
	}
	return filepath.Join(c.Accounts.Dir, DefaultLockFileName)
}

// LogConfig maps logging settings onto logx.
func (c *Config) LogConfig() logx.Config {
	return logx.Config{
		Level:   c.Logging.Level,
		Console: c.Logging.Console,
		File:    logx.FileConfig{Enabled: c.Logging.File.Enabled, Path: c.Logging.File.Path},
	}
}
