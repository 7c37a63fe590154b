package checkin

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"checkinbot/internal/accounts"
	"checkinbot/internal/report"
	logx "checkinbot/pkg/logx"
)

// CredentialHook is called right after an account hits a credential error,
// before the batch moves on.
type CredentialHook func(ctx context.Context, rc RunContext, o report.RunOutcome)

// Options tunes a Runner. Zero values fall back to defaults.
type Options struct {
	ThrottleMin time.Duration
	ThrottleMax time.Duration
	// RequiredVersion marks the batch ConfigOutdated when an account file is
	// older. 0 disables the check.
	RequiredVersion int

	OnCredentialError CredentialHook

	// Sleep and Rand are injectable for tests.
	Sleep func(time.Duration)
	Rand  *rand.Rand
	NewID func() string
}

// Batch is the outcome of one Run.
type Batch struct {
	RunID          string
	Result         report.Result
	ConfigOutdated bool
	Took           time.Duration
}

// Runner iterates accounts sequentially.
type Runner struct {
	task Task
	opts Options
	log  logx.Logger
}

func NewRunner(task Task, opts Options, log logx.Logger) *Runner {
	if log.IsZero() {
		log = logx.Nop()
	}
	if opts.ThrottleMax < opts.ThrottleMin {
		opts.ThrottleMax = opts.ThrottleMin
	}
	if opts.Sleep == nil {
		opts.Sleep = time.Sleep
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Runner{task: task, opts: opts, log: log.With(logx.String("comp", "batch"))}
}

// Run checks in every account in order and aggregates the outcomes.
//
// ctx is consulted only before the first account; a cancelled context at that
// point returns ErrAborted. A task error wrapping ErrDependencyMissing stops
// the batch and is returned as is.
func (r *Runner) Run(ctx context.Context, tasks []accounts.AccountTask) (Batch, error) {
	b := Batch{RunID: r.opts.NewID()}
	log := r.log.With(logx.String("run_id", b.RunID))
	if err := ctx.Err(); err != nil {
		log.Warn("batch aborted before first account", logx.Err(err))
		return b, errors.Join(ErrAborted, err)
	}
	// Past this point the batch is not cancellable.
	runCtx := context.WithoutCancel(ctx)

	start := time.Now()
	log.Info("batch start", logx.Int("accounts", len(tasks)))

	outcomes := make([]report.RunOutcome, 0, len(tasks))
	for i, t := range tasks {
		rc := RunContext{RunID: b.RunID, Index: i, Total: len(tasks), Account: t}
		alog := log.With(logx.String("account", t.Ref))

		file, err := accounts.Load(t.Path)
		if err != nil {
			alog.Warn("account config unreadable", logx.Err(err))
		}
		rc.Config = file
		if file.Outdated(r.opts.RequiredVersion) {
			alog.Warn("account config outdated",
				logx.Int("version", file.Version), logx.Int("required", r.opts.RequiredVersion))
			b.ConfigOutdated = true
		}

		alog.Info("check-in start", logx.Int("index", i+1), logx.Int("total", len(tasks)))
		o, err := r.checkIn(runCtx, rc)
		if err != nil {
			return b, err
		}
		outcomes = append(outcomes, o)
		alog.Info("check-in done", logx.String("bucket", string(o.Bucket())), logx.String("kind", o.Kind.String()))

		if o.Kind == report.KindCredentialError && r.opts.OnCredentialError != nil {
			r.opts.OnCredentialError(runCtx, rc, o)
		}

		if i < len(tasks)-1 {
			d := r.delay()
			alog.Debug("throttle", logx.Duration("delay", d))
			r.opts.Sleep(d)
		}
	}

	b.Result = report.Aggregate(outcomes)
	b.Took = time.Since(start)
	log.Info("batch done",
		logx.Int("status", int(b.Result.Status)),
		logx.Int("success", b.Result.SuccessCount),
		logx.Int("failure", b.Result.FailureCount),
		logx.Int("skipped", b.Result.SkippedCount),
		logx.Int("captcha", b.Result.CaptchaCount),
		logx.Duration("took", b.Took),
	)
	return b, nil
}

// checkIn runs one account and classifies the result.
func (r *Runner) checkIn(ctx context.Context, rc RunContext) (report.RunOutcome, error) {
	name := rc.Account.Name
	res, err := r.task.CheckIn(ctx, rc)
	if err == nil {
		return report.FromRunCode(name, res.Code, res.Message), nil
	}
	if errors.Is(err, ErrDependencyMissing) {
		return report.RunOutcome{}, err
	}
	if c := credentialOf(err); c != 0 {
		return report.CredentialError(name, c), nil
	}
	r.log.Warn("check-in raised unexpected error, account skipped",
		logx.String("account", rc.Account.Ref), logx.Err(err))
	return report.Unknown(name), nil
}

// delay picks a uniform duration in [ThrottleMin, ThrottleMax].
func (r *Runner) delay() time.Duration {
	lo, hi := r.opts.ThrottleMin, r.opts.ThrottleMax
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(r.opts.Rand.Int63n(int64(hi-lo)+1))
}
