package checkin

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"testing"
	"time"

	"checkinbot/internal/accounts"
	"checkinbot/internal/report"
	logx "checkinbot/pkg/logx"
)

func writeAccounts(t *testing.T, bodies ...string) []accounts.AccountTask {
	t.Helper()
	dir := t.TempDir()
	for i, b := range bodies {
		name := fmt.Sprintf("account_%d.yaml", i+1)
		if err := os.WriteFile(filepath.Join(dir, name), []byte(b), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	tasks, err := accounts.Discover(dir, accounts.Options{})
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	return tasks
}

type scripted struct {
	results []RunResult
	errs    []error
	seen    []RunContext
}

func (s *scripted) CheckIn(_ context.Context, rc RunContext) (RunResult, error) {
	s.seen = append(s.seen, rc)
	i := rc.Index
	var err error
	if i < len(s.errs) {
		err = s.errs[i]
	}
	if err != nil {
		return RunResult{}, err
	}
	return s.results[i], nil
}

func newTestRunner(task Task, opts Options) (*Runner, *[]time.Duration) {
	var slept []time.Duration
	opts.Sleep = func(d time.Duration) { slept = append(slept, d) }
	opts.Rand = rand.New(rand.NewSource(1))
	opts.NewID = func() string { return "run-1" }
	return NewRunner(task, opts, logx.Nop()), &slept
}

func TestRunnerStatusExamples(t *testing.T) {
	t.Parallel()

	ok := RunResult{Code: 0, Message: "done"}
	fail := RunResult{Code: 1, Message: "bad"}
	captcha := RunResult{Code: 3, Message: "captcha"}

	cases := []struct {
		name    string
		results []RunResult
		status  report.Status
		counts  [4]int // success, failure, skipped, captcha
	}{
		{"partial", []RunResult{ok, fail, ok}, report.StatusPartial, [4]int{2, 1, 0, 0}},
		{"all failed", []RunResult{fail, {Code: 2}}, report.StatusAllFailed, [4]int{0, 2, 0, 0}},
		{"captcha", []RunResult{ok, captcha}, report.StatusCaptcha, [4]int{2, 0, 0, 1}},
		{"unknown code skipped", []RunResult{ok, {Code: 7}}, report.StatusSuccess, [4]int{1, 0, 1, 0}},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			bodies := make([]string, len(tc.results))
			tasks := writeAccounts(t, bodies...)
			r, _ := newTestRunner(&scripted{results: tc.results}, Options{})

			b, err := r.Run(context.Background(), tasks)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			res := b.Result
			if res.Status != tc.status {
				t.Fatalf("status=%d want %d", res.Status, tc.status)
			}
			got := [4]int{res.SuccessCount, res.FailureCount, res.SkippedCount, res.CaptchaCount}
			if got != tc.counts {
				t.Fatalf("counts=%v want %v", got, tc.counts)
			}
			if res.SuccessCount+res.FailureCount+res.SkippedCount != res.Total {
				t.Fatalf("count invariant broken: %+v", res)
			}
		})
	}
}

func TestRunnerCredentialErrorsContinue(t *testing.T) {
	t.Parallel()

	tasks := writeAccounts(t, "push: a_push.yaml\n", "", "")
	task := &scripted{
		results: []RunResult{{}, {}, {Code: 0, Message: "ok"}},
		errs:    []error{fmt.Errorf("login: %w", ErrCookie), ErrStoken, nil},
	}
	var hooked []string
	r, _ := newTestRunner(task, Options{OnCredentialError: func(_ context.Context, rc RunContext, o report.RunOutcome) {
		hooked = append(hooked, rc.Config.Push+"|"+o.Credential.Cause())
	}})

	b, err := r.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(task.seen) != 3 {
		t.Fatalf("accounts run=%d want 3", len(task.seen))
	}
	if b.Result.Status != report.StatusPartial || b.Result.FailureCount != 2 {
		t.Fatalf("result=%+v", b.Result)
	}
	want := []string{"a_push.yaml|账号 Cookie 出错！", "|账号 Stoken 有问题！"}
	if fmt.Sprint(hooked) != fmt.Sprint(want) {
		t.Fatalf("hooked=%q want %q", hooked, want)
	}
}

func TestRunnerUnexpectedErrorIsSkipped(t *testing.T) {
	t.Parallel()

	tasks := writeAccounts(t, "")
	r, _ := newTestRunner(&scripted{errs: []error{errors.New("exit status 137")}}, Options{})
	b, err := r.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if b.Result.SkippedCount != 1 || b.Result.Status != report.StatusSuccess {
		t.Fatalf("result=%+v", b.Result)
	}
}

func TestRunnerThrottleBetweenAccounts(t *testing.T) {
	t.Parallel()

	tasks := writeAccounts(t, "", "", "", "")
	ok := RunResult{Code: 0}
	r, slept := newTestRunner(&scripted{results: []RunResult{ok, ok, ok, ok}}, Options{
		ThrottleMin: 3 * time.Second,
		ThrottleMax: 10 * time.Second,
	})
	if _, err := r.Run(context.Background(), tasks); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(*slept) != 3 {
		t.Fatalf("sleeps=%d want 3", len(*slept))
	}
	for _, d := range *slept {
		if d < 3*time.Second || d > 10*time.Second {
			t.Fatalf("delay %s out of range", d)
		}
	}
}

func TestRunnerAbortBeforeStart(t *testing.T) {
	t.Parallel()

	tasks := writeAccounts(t, "")
	task := &scripted{results: []RunResult{{}}}
	r, _ := newTestRunner(task, Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := r.Run(ctx, tasks)
	if !errors.Is(err, ErrAborted) || !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v", err)
	}
	if len(task.seen) != 0 {
		t.Fatalf("task ran after abort")
	}
}

func TestRunnerIgnoresCancelAfterStart(t *testing.T) {
	t.Parallel()

	tasks := writeAccounts(t, "", "")
	ctx, cancel := context.WithCancel(context.Background())
	var ctxErrs []error
	task := TaskFunc(func(c context.Context, rc RunContext) (RunResult, error) {
		cancel()
		ctxErrs = append(ctxErrs, c.Err())
		return RunResult{Code: 0}, nil
	})
	r, _ := newTestRunner(task, Options{})
	b, err := r.Run(ctx, tasks)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if b.Result.Total != 2 || ctxErrs[1] != nil {
		t.Fatalf("total=%d ctxErrs=%v", b.Result.Total, ctxErrs)
	}
}

func TestRunnerDependencyMissingStops(t *testing.T) {
	t.Parallel()

	tasks := writeAccounts(t, "", "")
	task := &scripted{errs: []error{fmt.Errorf("%w: mys-checkin", ErrDependencyMissing)}}
	r, _ := newTestRunner(task, Options{})
	if _, err := r.Run(context.Background(), tasks); !errors.Is(err, ErrDependencyMissing) {
		t.Fatalf("err=%v", err)
	}
	if len(task.seen) != 1 {
		t.Fatalf("accounts run=%d want 1", len(task.seen))
	}
}

func TestRunnerConfigOutdated(t *testing.T) {
	t.Parallel()

	tasks := writeAccounts(t, "version: 15\n", "version: 12\n")
	ok := RunResult{Code: 0}
	r, _ := newTestRunner(&scripted{results: []RunResult{ok, ok}}, Options{RequiredVersion: 15})
	b, err := r.Run(context.Background(), tasks)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !b.ConfigOutdated {
		t.Fatalf("expected ConfigOutdated")
	}

	r2, _ := newTestRunner(&scripted{results: []RunResult{ok, ok}}, Options{})
	b2, _ := r2.Run(context.Background(), tasks)
	if b2.ConfigOutdated {
		t.Fatalf("check disabled but ConfigOutdated set")
	}
}

func TestRunnerPassesFreshContext(t *testing.T) {
	t.Parallel()

	tasks := writeAccounts(t, "version: 1\n", "version: 2\n")
	task := &scripted{results: []RunResult{{}, {}}}
	r, _ := newTestRunner(task, Options{})
	if _, err := r.Run(context.Background(), tasks); err != nil {
		t.Fatalf("run: %v", err)
	}
	if task.seen[0].Config.Version != 1 || task.seen[1].Config.Version != 2 {
		t.Fatalf("contexts=%+v", task.seen)
	}
	if task.seen[1].Account.Name != "账号_2" || task.seen[1].RunID != "run-1" {
		t.Fatalf("rc=%+v", task.seen[1])
	}
}
