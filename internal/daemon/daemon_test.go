package daemon

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"checkinbot/internal/config"
	logx "checkinbot/pkg/logx"
)

func TestParseScheduleVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		raw    string
		kind   ScheduleKind
		source string
		every  time.Duration
	}{
		{name: "cron", raw: "0 8 * * *", kind: ScheduleCron, source: "cron"},
		{name: "cron seconds", raw: "0 30 8 * * *", kind: ScheduleCron, source: "cron"},
		{name: "descriptor", raw: "@daily", kind: ScheduleCron, source: "cron"},
		{name: "prefixed cron", raw: "cron:0 0 * * *", kind: ScheduleCron, source: "cron"},
		{name: "duration", raw: "12h", kind: ScheduleInterval, source: "duration", every: 12 * time.Hour},
		{name: "prefixed interval", raw: "interval:45m", kind: ScheduleInterval, source: "duration", every: 45 * time.Minute},
		{name: "hhmm", raw: "24:00", kind: ScheduleInterval, source: "hhmm", every: 24 * time.Hour},
		{name: "prefixed hhmm", raw: "Interval:01:30", kind: ScheduleInterval, source: "hhmm", every: 90 * time.Minute},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseSchedule(tt.raw)
			if err != nil {
				t.Fatalf("ParseSchedule(%q) error: %v", tt.raw, err)
			}
			if got.Kind != tt.kind || got.Source != tt.source {
				t.Fatalf("got %+v", got)
			}
			if tt.kind == ScheduleInterval && got.Every != tt.every {
				t.Fatalf("Every = %v, want %v", got.Every, tt.every)
			}
			if _, err := got.Cron(); err != nil {
				t.Fatalf("Cron(): %v", err)
			}
		})
	}
}

func TestParseScheduleInvalid(t *testing.T) {
	t.Parallel()
	for _, raw := range []string{"", "not-a-schedule", "cron:", "0 99 * * *", "01:75", "00:00", "500ms", "interval:"} {
		if _, err := ParseSchedule(raw); err == nil {
			t.Errorf("ParseSchedule(%q) expected error", raw)
		}
	}
}

func newTestDaemon(t *testing.T, batch BatchFunc) (*Daemon, *config.Config) {
	t.Helper()
	cfg := config.Default()
	cfg.Accounts.Dir = t.TempDir()
	cfg.Daemon.Schedule = "@daily"
	mgr := config.NewManager(filepath.Join(t.TempDir(), "checkin.yaml"))
	mgr.Commit(&cfg)
	d := New(mgr, batch, logx.Nop())
	d.notify = func(string) {}
	return d, &cfg
}

func TestTriggerRunsBatchUnderLock(t *testing.T) {
	t.Parallel()

	var calls int
	d, cfg := newTestDaemon(t, func(ctx context.Context, c *config.Config) error {
		calls++
		// the lock is held for the duration of the batch
		other := flock.New(c.LockPath())
		if ok, _ := other.TryLock(); ok {
			_ = other.Unlock()
			t.Errorf("run lock not held during batch")
		}
		return nil
	})
	if err := d.Trigger(context.Background()); err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls=%d", calls)
	}

	// A lock held elsewhere skips the trigger.
	holder := flock.New(cfg.LockPath())
	if ok, err := holder.TryLock(); !ok || err != nil {
		t.Fatalf("holder lock: ok=%v err=%v", ok, err)
	}
	defer func() { _ = holder.Unlock() }()
	if err := d.Trigger(context.Background()); !errors.Is(err, ErrLocked) {
		t.Fatalf("err=%v want ErrLocked", err)
	}
	if calls != 1 {
		t.Fatalf("batch ran while locked")
	}
}

func TestTriggerPropagatesBatchError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	d, _ := newTestDaemon(t, func(context.Context, *config.Config) error { return boom })
	if err := d.Trigger(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
}

func TestRunNotifiesSystemd(t *testing.T) {
	t.Parallel()

	d, _ := newTestDaemon(t, func(context.Context, *config.Config) error { return nil })
	var (
		mu     sync.Mutex
		states []string
	)
	d.notify = func(s string) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	}
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	if err := d.Run(ctx); err != nil {
		t.Fatalf("run: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(states) != 2 || states[0] != "READY=1" || states[1] != "STOPPING=1" {
		t.Fatalf("states=%v", states)
	}
}

func TestApplyRejectsBadSchedule(t *testing.T) {
	t.Parallel()

	d, cfg := newTestDaemon(t, nil)
	if err := d.apply(cfg); err != nil {
		t.Fatalf("apply: %v", err)
	}
	defer d.stop()

	bad := *cfg
	bad.Daemon.Schedule = "whenever"
	if err := d.apply(&bad); err == nil {
		t.Fatalf("expected error")
	}
	if d.current() != cfg {
		t.Fatalf("config replaced by rejected update")
	}
	if got := d.sched.String(); got != "@daily" {
		t.Fatalf("schedule=%s", got)
	}
}
