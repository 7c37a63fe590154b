package report

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"checkinbot/pkg/tgui"
)

const tableDetailWidth = 48

// Table renders the result as a console table, one row per account, with a
// footer carrying the bucket counts and status.
func (r Result) Table() string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{"#", "Account", "Result", "Detail"})
	for i, o := range r.Outcomes {
		tw.AppendRow(table.Row{i + 1, o.Account, string(o.Bucket()), firstLine(o.Message)})
	}
	tw.AppendFooter(table.Row{
		"", "status " + strconv.Itoa(int(r.Status)),
		"ok " + strconv.Itoa(r.SuccessCount) + " / err " + strconv.Itoa(r.FailureCount),
		"skipped " + strconv.Itoa(r.SkippedCount) + " / captcha " + strconv.Itoa(r.CaptchaCount),
	})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 3, Align: text.AlignLeft},
	})
	return tw.Render()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return tgui.TruncRunes(s, tableDetailWidth)
}
