package notifier

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"

	"checkinbot/internal/report"
	logx "checkinbot/pkg/logx"
)

type fakeChannel struct {
	name  string
	err   error
	panic bool
	got   []Message
}

func (f *fakeChannel) Name() string { return f.name }

func (f *fakeChannel) Send(_ context.Context, _ *Config, msg Message) error {
	f.got = append(f.got, msg)
	if f.panic {
		panic("boom")
	}
	return f.err
}

func writePush(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "push.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return p
}

func TestDispatchUnknownChannelIsSkipped(t *testing.T) {
	t.Parallel()

	path := writePush(t, `
setting:
  enable: true
  push_server: chatbot,foobar,webhook
`)
	chatbot := &fakeChannel{name: "chatbot"}
	webhook := &fakeChannel{name: "webhook"}

	var buf bytes.Buffer
	d := NewDispatcher(Options{Path: path}, NewRegistry(chatbot, webhook), logx.NewWriter(&buf, "debug"))
	res := d.Dispatch(context.Background(), report.StatusSuccess, "hello")

	if res.Code() != 0 {
		t.Fatalf("code=%d want 0 (%+v)", res.Code(), res)
	}
	if len(chatbot.got) != 1 || len(webhook.got) != 1 {
		t.Fatalf("invocations chatbot=%d webhook=%d", len(chatbot.got), len(webhook.got))
	}
	if len(res.Channels) != 3 || !res.Channels[1].Unresolved || res.Channels[1].Name != "foobar" {
		t.Fatalf("channels=%+v", res.Channels)
	}
	if !strings.Contains(buf.String(), `"level":"warn"`) || !strings.Contains(buf.String(), "foobar") {
		t.Fatalf("expected warning for foobar, log:\n%s", buf.String())
	}
}

func TestDispatchIsolatesChannelFailures(t *testing.T) {
	t.Parallel()

	path := writePush(t, `
setting:
  enable: true
  push_server: a,b,c
`)
	a := &fakeChannel{name: "a", err: errors.New("http 500")}
	b := &fakeChannel{name: "b", panic: true}
	c := &fakeChannel{name: "c"}

	res := NewDispatcher(Options{Path: path}, NewRegistry(a, b, c), logx.Nop()).
		Dispatch(context.Background(), report.StatusPartial, "x")

	if len(c.got) != 1 {
		t.Fatalf("c not invoked after earlier failures")
	}
	if res.Code() != 1 {
		t.Fatalf("code=%d want 1", res.Code())
	}
	if res.Channels[0].Err == nil || res.Channels[1].Err == nil || res.Channels[2].Err != nil {
		t.Fatalf("channel errors=%+v", res.Channels)
	}
}

func TestDispatchSuppression(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		body   string
		status report.Status
		state  State
		sent   int
	}{
		{"disabled", "setting:\n  enable: false\n  push_server: a\n", report.StatusAllFailed, StateDisabled, 0},
		{"enable absent", "setting:\n  push_server: a\n", report.StatusAllFailed, StateDisabled, 0},
		{"error only success", "setting:\n  enable: true\n  error_push_only: true\n  push_server: a\n", report.StatusSuccess, StateSuppressed, 0},
		{"error only failure", "setting:\n  enable: true\n  error_push_only: true\n  push_server: a\n", report.StatusPartial, StateDispatched, 1},
		{"error only captcha", "setting:\n  enable: on\n  error_push_only: yes\n  push_server: a\n", report.StatusCaptcha, StateDispatched, 1},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			ch := &fakeChannel{name: "a"}
			res := NewDispatcher(Options{Path: writePush(t, tc.body)}, NewRegistry(ch), logx.Nop()).
				Dispatch(context.Background(), tc.status, "m")
			if res.State != tc.state {
				t.Fatalf("state=%v want %v", res.State, tc.state)
			}
			if len(ch.got) != tc.sent {
				t.Fatalf("sent=%d want %d", len(ch.got), tc.sent)
			}
			if res.Code() != 0 {
				t.Fatalf("code=%d want 0", res.Code())
			}
		})
	}
}

func TestDispatchConfigMissingAndInvalid(t *testing.T) {
	t.Parallel()

	missing := NewDispatcher(Options{Path: filepath.Join(t.TempDir(), "nope.yaml")}, nil, logx.Nop()).
		Dispatch(context.Background(), report.StatusAllFailed, "m")
	if missing.State != StateConfigMissing || missing.Code() != 0 {
		t.Fatalf("missing: %+v code=%d", missing, missing.Code())
	}

	invalid := NewDispatcher(Options{Path: writePush(t, "setting: [1, 2\n")}, nil, logx.Nop()).
		Dispatch(context.Background(), report.StatusAllFailed, "m")
	if invalid.State != StateConfigInvalid || invalid.Code() != 1 {
		t.Fatalf("invalid: %+v code=%d", invalid, invalid.Code())
	}

	badBool := NewDispatcher(Options{Path: writePush(t, "setting:\n  enable: maybe\n")}, nil, logx.Nop()).
		Dispatch(context.Background(), report.StatusAllFailed, "m")
	if badBool.Code() != 1 {
		t.Fatalf("bad bool code=%d want 1", badBool.Code())
	}
}

func TestDispatchRedactsAndCaseFoldsNames(t *testing.T) {
	t.Parallel()

	path := writePush(t, `
setting:
  enable: true
  push_server: " Telegram "
  push_block_keys: "uid-42, ,旅行者"
`)
	ch := &fakeChannel{name: "telegram"}
	NewDispatcher(Options{Path: path}, NewRegistry(ch), logx.Nop()).
		Dispatch(context.Background(), report.StatusSuccess, "【旅行者】 uid-42 ok")

	if len(ch.got) != 1 {
		t.Fatalf("sent=%d", len(ch.got))
	}
	if want := "【***】 ****** ok"; ch.got[0].Text != want {
		t.Fatalf("text=%q want %q", ch.got[0].Text, want)
	}
}

func TestDispatchConfigOutdatedOverride(t *testing.T) {
	t.Parallel()

	path := writePush(t, "setting:\n  enable: true\n  push_server: a\n")
	ch := &fakeChannel{name: "a"}
	NewDispatcher(Options{Path: path, ConfigOutdated: true}, NewRegistry(ch), logx.Nop()).
		Dispatch(context.Background(), report.StatusPartial, "body")

	got := ch.got[0]
	if got.Status != report.StatusConfigOutdated {
		t.Fatalf("status=%d want %d", got.Status, report.StatusConfigOutdated)
	}
	want := ConfigOutdatedNotice + "\r\n「米游社脚本」部分账号执行失败！\r\nbody"
	if got.Text != want {
		t.Fatalf("text=%q\nwant %q", got.Text, want)
	}
}

func TestRedactLengthPreserving(t *testing.T) {
	t.Parallel()

	cases := []struct {
		msg  string
		keys []string
		want string
	}{
		{"abc abc", []string{"abc"}, "*** ***"},
		{"abc", []string{"", "  "}, "abc"},
		{"米游社", []string{"游"}, "米*社"},
		// a later key may match filler from an earlier one
		{"ab", []string{"ab", "**"}, "**"},
		{"x-secret-x", []string{" secret "}, "x-******-x"},
	}
	for _, tc := range cases {
		got := Redact(tc.msg, tc.keys)
		if got != tc.want {
			t.Errorf("Redact(%q, %q)=%q want %q", tc.msg, tc.keys, got, tc.want)
		}
		if utf8.RuneCountInString(got) != utf8.RuneCountInString(tc.msg) {
			t.Errorf("length changed: %q -> %q", tc.msg, got)
		}
	}
}

func TestConfigSectionLookups(t *testing.T) {
	t.Parallel()

	cfg, err := ParseConfig([]byte(`
Telegram:
  Bot_Token: "1:abc"
  chat_id: 1000
  http_proxy: ""
  retries: 3
  ids: [1, 2]
`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	sec := cfg.Section("telegram")
	if v := sec.String("bot_token"); v != "1:abc" {
		t.Fatalf("bot_token=%q", v)
	}
	if v := sec.String("chat_id"); v != "1000" {
		t.Fatalf("chat_id=%q", v)
	}
	if v := sec.StringOr("http_proxy", "none"); v != "none" {
		t.Fatalf("http_proxy=%q", v)
	}
	if n, err := sec.IntOr("retries", 1); err != nil || n != 3 {
		t.Fatalf("retries=%d err=%v", n, err)
	}
	if got := sec.List("ids"); len(got) != 2 || got[1] != "2" {
		t.Fatalf("ids=%q", got)
	}
	if _, err := sec.Require("api_url"); !errors.Is(err, ErrMissingOption) {
		t.Fatalf("Require err=%v", err)
	}
	if cfg.HasSection("discord") {
		t.Fatalf("unexpected discord section")
	}
	if _, err := ParseConfig([]byte("telegram: 5\n")); err == nil {
		t.Fatalf("expected error for scalar section")
	}
}

func TestRegistryNames(t *testing.T) {
	t.Parallel()

	r := NewRegistry(&fakeChannel{name: "Webhook"}, &fakeChannel{name: "bark"})
	if got := strings.Join(r.Names(), ","); got != "bark,webhook" {
		t.Fatalf("names=%s", got)
	}
	if _, ok := r.Resolve("WEBHOOK"); !ok {
		t.Fatalf("case-folded lookup failed")
	}
}
