package checkin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strconv"
	"strings"

	"checkinbot/pkg/tgui"
)

// Environment passed to the check-in command.
const (
	EnvAccountConfig = "CHECKIN_ACCOUNT_CONFIG"
	EnvAccountName   = "CHECKIN_ACCOUNT_NAME"
	EnvRunID         = "CHECKIN_RUN_ID"
)

// execReply is the JSON line the command prints last on stdout.
//
//	{"code": 0, "message": "..."}
//	{"error": "cookie"}
type execReply struct {
	Code    *int   `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// ExecTask runs an external command once per account.
type ExecTask struct {
	argv []string
	env  map[string]string
}

func NewExecTask(argv []string, env map[string]string) *ExecTask {
	return &ExecTask{argv: append([]string(nil), argv...), env: env}
}

// Check resolves the command binary. Failures wrap ErrDependencyMissing.
func (t *ExecTask) Check() error {
	if len(t.argv) == 0 || strings.TrimSpace(t.argv[0]) == "" {
		return fmt.Errorf("%w: task.command is empty", ErrDependencyMissing)
	}
	if _, err := exec.LookPath(t.argv[0]); err != nil {
		return fmt.Errorf("%w: %v", ErrDependencyMissing, err)
	}
	return nil
}

func (t *ExecTask) CheckIn(ctx context.Context, rc RunContext) (RunResult, error) {
	if err := t.Check(); err != nil {
		return RunResult{}, err
	}
	cmd := exec.CommandContext(ctx, t.argv[0], t.argv[1:]...)
	cmd.Env = append(os.Environ(), t.environ(rc)...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if errors.Is(runErr, exec.ErrNotFound) {
		return RunResult{}, fmt.Errorf("%w: %v", ErrDependencyMissing, runErr)
	}

	reply, perr := parseReply(stdout.Bytes())
	if perr != nil {
		if runErr != nil {
			return RunResult{}, fmt.Errorf("check-in command: %w (stderr: %s)", runErr, tail(stderr.String(), 512))
		}
		return RunResult{}, perr
	}
	switch strings.ToLower(strings.TrimSpace(reply.Error)) {
	case "":
	case "cookie":
		return RunResult{}, ErrCookie
	case "stoken":
		return RunResult{}, ErrStoken
	default:
		return RunResult{}, fmt.Errorf("check-in command reported %q", reply.Error)
	}
	if reply.Code == nil {
		return RunResult{}, errors.New("check-in reply has no code")
	}
	return RunResult{Code: *reply.Code, Message: reply.Message}, nil
}

func (t *ExecTask) environ(rc RunContext) []string {
	keys := make([]string, 0, len(t.env))
	for k := range t.env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys)+3)
	for _, k := range keys {
		out = append(out, k+"="+t.env[k])
	}
	return append(out,
		EnvAccountConfig+"="+rc.Account.Path,
		EnvAccountName+"="+rc.Account.Name,
		EnvRunID+"="+rc.RunID,
	)
}

// parseReply decodes the last non-empty stdout line.
func parseReply(out []byte) (execReply, error) {
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	if last == "" {
		return execReply{}, errors.New("check-in command printed nothing")
	}
	var r execReply
	if err := json.Unmarshal([]byte(last), &r); err != nil {
		return execReply{}, fmt.Errorf("check-in reply %s: %w", strconv.Quote(tail(last, 200)), err)
	}
	return r, nil
}

// tail keeps the last n characters of a stderr dump.
func tail(s string, n int) string {
	return tgui.TailRunes(strings.TrimSpace(s), n)
}
