package accounts

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("version: 1\n"), 0o644); err != nil {
			t.Fatalf("write %s: %v", n, err)
		}
	}
}

func TestDisplayName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"config.yaml":     "主账号",
		"account_2.yaml":  "账号_2",
		"mhy_account.yml": "mhy_账号",
		"alice.yaml":      "alice",
		"config_bak.yml":  "主账号_bak",
	}
	for in, want := range cases {
		if got := DisplayName(in); got != want {
			t.Errorf("DisplayName(%q)=%q want %q", in, got, want)
		}
	}
}

func TestDiscoverOrderAndFilters(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "b.yaml", "a.yaml", "c.yml", "mhy_1.yaml", "push.yaml", "notes.txt")
	if err := os.Mkdir(filepath.Join(dir, "sub.yaml"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cases := []struct {
		name string
		opts Options
		want string
	}{
		{"all", Options{Exclude: []string{"push.yaml"}}, "a.yaml,b.yaml,mhy_1.yaml,c.yml"},
		{"prefix", Options{Prefix: "b"}, "b.yaml"},
		{"panel", Options{PanelMode: true}, "mhy_1.yaml"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			tasks, err := Discover(dir, tc.opts)
			if err != nil {
				t.Fatalf("discover: %v", err)
			}
			if got := strings.Join(Refs(tasks), ","); got != tc.want {
				t.Fatalf("refs=%s want %s", got, tc.want)
			}
			if tasks[0].Path != filepath.Join(dir, tasks[0].Ref) {
				t.Fatalf("path=%s", tasks[0].Path)
			}
		})
	}
}

func TestDiscoverEmpty(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	touch(t, dir, "readme.md")
	if _, err := Discover(dir, Options{}); !errors.Is(err, ErrNoAccounts) {
		t.Fatalf("err=%v want ErrNoAccounts", err)
	}
	if _, err := Discover(filepath.Join(dir, "missing"), Options{}); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	p := filepath.Join(t.TempDir(), "config.yaml")
	body := "version: 14\npush: \" alice_push.yaml \"\naccount:\n  cookie: abc\n"
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := Load(p)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if f.Version != 14 || f.Push != "alice_push.yaml" {
		t.Fatalf("file=%+v", f)
	}
	if !f.Outdated(15) || f.Outdated(14) || f.Outdated(0) {
		t.Fatalf("Outdated mismatch for version %d", f.Version)
	}
}
