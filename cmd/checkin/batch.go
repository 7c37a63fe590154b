package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"checkinbot/internal/accounts"
	"checkinbot/internal/checkin"
	"checkinbot/internal/config"
	"checkinbot/internal/notifier"
	"checkinbot/internal/report"
	logx "checkinbot/pkg/logx"
)

// confirmFunc is asked before the first account runs. A non-nil error aborts
// the batch without dispatching.
type confirmFunc func(ctx context.Context, tasks []accounts.AccountTask) error

// batchRunner wires discovery, the runner and the dispatcher for one batch.
type batchRunner struct {
	cc      *commandContext
	out     io.Writer
	confirm confirmFunc
	task    checkin.Task
}

func (b *batchRunner) run(ctx context.Context, cfg *config.Config) error {
	log := b.cc.logger()

	tasks, err := accounts.Discover(cfg.Accounts.Dir, accounts.Options{
		Prefix:    cfg.Accounts.Prefix,
		PanelMode: cfg.Accounts.PanelMode,
		Exclude:   pushExcludes(cfg),
	})
	if err != nil {
		return err
	}
	log.Info("accounts discovered", logx.Int("count", len(tasks)), logx.Strings("accounts", accounts.Refs(tasks)))

	task := b.task
	if task == nil {
		et := checkin.NewExecTask(cfg.Task.Command, cfg.Task.Env)
		if err := et.Check(); err != nil {
			return b.dependencyMissing(ctx, cfg, err)
		}
		task = et
	}

	if b.confirm != nil {
		if err := b.confirm(ctx, tasks); err != nil {
			log.Info("batch cancelled before start", logx.Err(err))
			return nil
		}
	}

	lo, hi, err := cfg.ThrottleRange()
	if err != nil {
		return err
	}
	disp := b.cc.dispatcher(cfg, false)
	runner := checkin.NewRunner(task, checkin.Options{
		ThrottleMin:       lo,
		ThrottleMax:       hi,
		RequiredVersion:   cfg.Accounts.RequiredVersion,
		OnCredentialError: accountPush(cfg, disp, log),
	}, log)

	batch, err := runner.Run(ctx, tasks)
	switch {
	case errors.Is(err, checkin.ErrAborted):
		return nil
	case errors.Is(err, checkin.ErrDependencyMissing):
		return b.dependencyMissing(ctx, cfg, err)
	case err != nil:
		return err
	}

	if b.out != nil {
		fmt.Fprintln(b.out, batch.Result.Table())
	}
	text := batch.Result.Text()
	log.Info("batch summary", logx.String("run_id", batch.RunID), logx.String("summary", batch.Result.Summary()))

	res := b.cc.dispatcher(cfg, batch.ConfigOutdated).
		Dispatch(context.WithoutCancel(ctx), batch.Result.Status, text)
	log.Debug("dispatch finished", logx.String("state", res.State.String()), logx.Int("code", res.Code()))
	return nil
}

func (b *batchRunner) dependencyMissing(ctx context.Context, cfg *config.Config, err error) error {
	b.cc.logger().Error("check-in dependency missing", logx.Err(err))
	b.cc.dispatcher(cfg, false).Dispatch(context.WithoutCancel(ctx), report.StatusDependencyMissing, err.Error())
	return nil
}

// pushExcludes keeps the push config out of discovery when it shares the
// accounts directory.
func pushExcludes(cfg *config.Config) []string {
	if filepath.Clean(cfg.Push.Dir) != filepath.Clean(cfg.Accounts.Dir) {
		return nil
	}
	return []string{filepath.Base(cfg.PushPath())}
}

// accountPush sends a status-1 notice to the account's own push config on a
// credential error.
func accountPush(cfg *config.Config, disp *notifier.Dispatcher, log logx.Logger) checkin.CredentialHook {
	return func(ctx context.Context, rc checkin.RunContext, o report.RunOutcome) {
		name := strings.TrimSpace(rc.Config.Push)
		if name == "" {
			return
		}
		res := disp.WithPath(filepath.Join(cfg.Push.Dir, name)).
			Dispatch(ctx, report.StatusAllFailed, o.Credential.Cause())
		log.Debug("account push finished",
			logx.String("account", rc.Account.Ref), logx.String("state", res.State.String()))
	}
}
