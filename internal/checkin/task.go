package checkin

import (
	"context"

	"checkinbot/internal/accounts"
)

// RunContext is everything one check-in call may read. A fresh value is built
// for every account.
type RunContext struct {
	RunID   string
	Index   int
	Total   int
	Account accounts.AccountTask
	Config  accounts.File
}

// RunResult is what the check-in task reports for one account.
type RunResult struct {
	Code    int
	Message string
}

// Task performs one account's check-in. Credential problems are reported as
// errors wrapping ErrCookie or ErrStoken; any other error is treated as an
// unexpected signal and the account is counted as skipped.
type Task interface {
	CheckIn(ctx context.Context, rc RunContext) (RunResult, error)
}

// TaskFunc adapts a function to Task.
type TaskFunc func(ctx context.Context, rc RunContext) (RunResult, error)

func (f TaskFunc) CheckIn(ctx context.Context, rc RunContext) (RunResult, error) { return f(ctx, rc) }
