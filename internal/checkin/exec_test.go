package checkin

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"checkinbot/internal/accounts"
)

func TestExecTask(t *testing.T) {
	t.Parallel()

	rc := RunContext{RunID: "r1", Account: accounts.AccountTask{Ref: "config.yaml", Path: "/tmp/config.yaml", Name: "主账号"}}
	cases := []struct {
		name    string
		script  string
		want    RunResult
		wantErr error
		anyErr  bool
	}{
		{"success", `echo progress; echo '{"code":0,"message":"ok"}'`, RunResult{Code: 0, Message: "ok"}, nil, false},
		{"env", `printf '{"code":2,"message":"%s %s %s"}' "$CHECKIN_ACCOUNT_CONFIG" "$CHECKIN_RUN_ID" "$EXTRA"`, RunResult{Code: 2, Message: "/tmp/config.yaml r1 x"}, nil, false},
		{"cookie", `echo '{"error":"cookie"}'`, RunResult{}, ErrCookie, false},
		{"stoken", `echo '{"error":"Stoken"}'; exit 1`, RunResult{}, ErrStoken, false},
		{"garbage", `echo hello`, RunResult{}, nil, true},
		{"crash", `exit 3`, RunResult{}, nil, true},
		{"no code", `echo '{"message":"?"}'`, RunResult{}, nil, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			task := NewExecTask([]string{"/bin/sh", "-c", tc.script}, map[string]string{"EXTRA": "x"})
			got, err := task.CheckIn(context.Background(), rc)
			switch {
			case tc.wantErr != nil:
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("err=%v want %v", err, tc.wantErr)
				}
			case tc.anyErr:
				if err == nil {
					t.Fatalf("expected error, got %+v", got)
				}
				if errors.Is(err, ErrDependencyMissing) {
					t.Fatalf("unexpected dependency error: %v", err)
				}
			default:
				if err != nil {
					t.Fatalf("err=%v", err)
				}
				if got != tc.want {
					t.Fatalf("got=%+v want %+v", got, tc.want)
				}
			}
		})
	}
}

func TestExecTaskDependencyMissing(t *testing.T) {
	t.Parallel()

	missing := NewExecTask([]string{filepath.Join(t.TempDir(), "no-such-binary")}, nil)
	if err := missing.Check(); !errors.Is(err, ErrDependencyMissing) {
		t.Fatalf("Check err=%v", err)
	}
	if _, err := missing.CheckIn(context.Background(), RunContext{}); !errors.Is(err, ErrDependencyMissing) {
		t.Fatalf("CheckIn err=%v", err)
	}
	if err := NewExecTask(nil, nil).Check(); !errors.Is(err, ErrDependencyMissing) {
		t.Fatalf("empty command err=%v", err)
	}
}

func TestTailKeepsRunesWhole(t *testing.T) {
	t.Parallel()

	got := tail("  Traceback\n"+strings.Repeat("签到失败", 200)+"\n", 10)
	if !utf8.ValidString(got) {
		t.Fatalf("tail cut a character: %q", got)
	}
	if want := "…失败签到失败签到失败"; got != want {
		t.Fatalf("tail = %q, want %q", got, want)
	}
	if got := tail("short", 10); got != "short" {
		t.Fatalf("tail(short) = %q", got)
	}
}
