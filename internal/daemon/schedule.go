package daemon

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ScheduleKind tells cron expressions from fixed intervals.
type ScheduleKind int

const (
	ScheduleCron ScheduleKind = iota
	ScheduleInterval
)

// Schedule is a parsed daemon.schedule value.
//
// Accepted forms:
//   - cron: "0 8 * * *", "0 30 8 * * *" (with seconds), "@daily", "@every 6h"
//   - Go duration: "12h", "90m"
//   - HH:MM interval: "24:00", "06:30"
//
// "cron:" and "interval:" prefixes force the parse mode.
type Schedule struct {
	Kind   ScheduleKind
	Expr   string
	Every  time.Duration
	Source string // "cron" | "duration" | "hhmm"
}

var hhmmPattern = regexp.MustCompile(`^(\d{1,3}):(\d{2})$`)

// cronParser accepts 5- and 6-field expressions plus descriptors.
var cronParser = cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ParseSchedule classifies raw and validates it.
func ParseSchedule(raw string) (Schedule, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Schedule{}, errors.New("schedule required")
	}
	low := strings.ToLower(s)
	switch {
	case strings.HasPrefix(low, "cron:"):
		return parseCron(strings.TrimSpace(s[len("cron:"):]))
	case strings.HasPrefix(low, "interval:"):
		return parseInterval(strings.TrimSpace(s[len("interval:"):]))
	case strings.HasPrefix(s, "@") || strings.ContainsAny(s, " \t"):
		return parseCron(s)
	}
	if sc, err := parseInterval(s); err == nil {
		return sc, nil
	}
	return Schedule{}, fmt.Errorf("invalid schedule %q (use cron like '0 8 * * *', HH:MM like '24:00', or a duration like '12h')", raw)
}

func parseCron(expr string) (Schedule, error) {
	if expr == "" {
		return Schedule{}, errors.New("cron expression required")
	}
	if _, err := cronParser.Parse(expr); err != nil {
		return Schedule{}, fmt.Errorf("cron %q: %w", expr, err)
	}
	return Schedule{Kind: ScheduleCron, Expr: expr, Source: "cron"}, nil
}

func parseInterval(v string) (Schedule, error) {
	if v == "" {
		return Schedule{}, errors.New("interval required")
	}
	if m := hhmmPattern.FindStringSubmatch(v); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if mm > 59 {
			return Schedule{}, fmt.Errorf("invalid minutes in %q", v)
		}
		d := time.Duration(hh)*time.Hour + time.Duration(mm)*time.Minute
		if d <= 0 {
			return Schedule{}, errors.New("interval must be > 0")
		}
		return Schedule{Kind: ScheduleInterval, Every: d, Source: "hhmm"}, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid interval %q", v)
	}
	if d < time.Second {
		return Schedule{}, errors.New("interval must be at least 1s")
	}
	return Schedule{Kind: ScheduleInterval, Every: d, Source: "duration"}, nil
}

// Cron builds the robfig/cron schedule.
func (s Schedule) Cron() (cron.Schedule, error) {
	if s.Kind == ScheduleInterval {
		return cron.Every(s.Every), nil
	}
	return cronParser.Parse(s.Expr)
}

func (s Schedule) String() string {
	if s.Kind == ScheduleInterval {
		return "every " + s.Every.String()
	}
	return s.Expr
}
