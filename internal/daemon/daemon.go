package daemon

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	sd "github.com/coreos/go-systemd/v22/daemon"
	"github.com/gofrs/flock"
	"github.com/robfig/cron/v3"

	"checkinbot/internal/config"
	logx "checkinbot/pkg/logx"
)

// ErrLocked is returned by Trigger when another batch holds the run lock.
var ErrLocked = errors.New("run lock held by another batch")

// BatchFunc runs one full batch plus dispatch with the given config.
type BatchFunc func(ctx context.Context, cfg *config.Config) error

// Daemon schedules BatchFunc according to daemon.schedule.
type Daemon struct {
	mgr   *config.Manager
	batch BatchFunc
	log   logx.Logger

	// notify reports service state to systemd; a no-op outside it.
	notify func(state string)

	mu     sync.Mutex
	ctx    context.Context
	cfg    *config.Config
	c      *cron.Cron
	sched  Schedule
	tz     string
	runsMu sync.Mutex
}

func New(mgr *config.Manager, batch BatchFunc, log logx.Logger) *Daemon {
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.With(logx.String("comp", "daemon"))
	return &Daemon{
		mgr:   mgr,
		batch: batch,
		log:   log,
		notify: func(state string) {
			if ok, err := sd.SdNotify(false, state); err != nil {
				log.Debug("sd_notify failed", logx.String("state", state), logx.Err(err))
			} else if ok {
				log.Debug("sd_notify sent", logx.String("state", state))
			}
		},
	}
}

// Run blocks until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	cfg := d.mgr.Get()
	if cfg == nil {
		return errors.New("daemon: config not loaded")
	}

	d.mu.Lock()
	d.ctx = ctx
	d.mu.Unlock()
	if err := d.apply(cfg); err != nil {
		return err
	}
	defer d.stop()

	var wg sync.WaitGroup
	if cfg.Daemon.WatchConfig {
		sub := d.mgr.Subscribe(1)
		defer d.mgr.Unsubscribe(sub)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = d.mgr.Watch(ctx)
		}()
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case next, ok := <-sub:
					if !ok {
						return
					}
					if err := d.apply(next); err != nil {
						d.log.Error("config reload rejected, keeping previous schedule", logx.Err(err))
					}
				}
			}
		}()
	}

	d.notify(sd.SdNotifyReady)
	d.log.Info("daemon started")
	<-ctx.Done()
	d.notify(sd.SdNotifyStopping)
	d.log.Info("daemon stopping")
	wg.Wait()
	return nil
}

// apply installs cfg, rebuilding the cron runner when the schedule or the
// timezone changed.
func (d *Daemon) apply(cfg *config.Config) error {
	sched, err := ParseSchedule(cfg.Daemon.Schedule)
	if err != nil {
		return err
	}
	loc := time.Local
	tz := strings.TrimSpace(cfg.Daemon.Timezone)
	if tz != "" {
		if loc, err = time.LoadLocation(tz); err != nil {
			return err
		}
	}
	cs, err := sched.Cron()
	if err != nil {
		return err
	}

	d.mu.Lock()
	d.cfg = cfg
	if d.c != nil && sched == d.sched && tz == d.tz {
		d.mu.Unlock()
		return nil
	}
	old := d.c
	clog := cronLogger{log: d.log}
	d.c = cron.New(cron.WithLocation(loc), cron.WithLogger(clog),
		cron.WithChain(cron.Recover(clog), cron.SkipIfStillRunning(clog)))
	d.c.Schedule(cs, cron.FuncJob(func() {
		if err := d.Trigger(d.baseContext()); err != nil && !errors.Is(err, ErrLocked) {
			d.log.Error("scheduled batch failed", logx.Err(err))
		}
	}))
	d.c.Start()
	d.sched, d.tz = sched, tz
	d.mu.Unlock()

	// A batch started by the old runner keeps going; the run lock keeps it
	// from overlapping with the new one.
	if old != nil {
		old.Stop()
	}
	d.log.Info("schedule installed",
		logx.String("schedule", sched.String()),
		logx.String("tz", loc.String()),
		logx.Time("next", cs.Next(time.Now().In(loc))))
	return nil
}

func (d *Daemon) baseContext() context.Context {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ctx == nil {
		return context.Background()
	}
	return d.ctx
}

func (d *Daemon) current() *config.Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg
}

// Trigger runs one batch under the run lock.
func (d *Daemon) Trigger(ctx context.Context) error {
	cfg := d.current()
	if cfg == nil {
		cfg = d.mgr.Get()
	}
	if cfg == nil {
		return errors.New("daemon: config not loaded")
	}

	// runsMu covers triggers inside this process, the flock covers other processes.
	if !d.runsMu.TryLock() {
		d.log.Warn("previous batch still running, trigger skipped")
		return ErrLocked
	}
	defer d.runsMu.Unlock()

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return err
	}
	if !locked {
		d.log.Warn("batch still running elsewhere, trigger skipped", logx.String("lock", cfg.LockPath()))
		return ErrLocked
	}
	defer func() { _ = lock.Unlock() }()

	start := time.Now()
	d.log.Info("scheduled batch start")
	err = d.batch(ctx, cfg)
	d.log.Info("scheduled batch done", logx.Duration("took", time.Since(start)))
	return err
}

func (d *Daemon) stop() {
	d.mu.Lock()
	c := d.c
	d.c = nil
	d.mu.Unlock()
	if c != nil {
		<-c.Stop().Done()
	}
}
