package accounts

import (
	"strings"
)

// AccountTask is one account to check in. It is created during discovery and
// never mutated.
type AccountTask struct {
	// Ref is the config file name, e.g. "account_2.yaml".
	Ref string
	// Path is Ref joined with the accounts directory.
	Path string
	// Name is the display name used in reports.
	Name string
}

// DisplayName derives the report name from a config file name: the extension
// is dropped, "config" becomes 主账号 and "account" becomes 账号.
func DisplayName(ref string) string {
	name := strings.TrimSuffix(ref, ".yaml")
	name = strings.TrimSuffix(name, ".yml")
	name = strings.ReplaceAll(name, "config", "主账号")
	return strings.ReplaceAll(name, "account", "账号")
}
