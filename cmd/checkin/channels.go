package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"checkinbot/internal/notifier"
)

func newChannelsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "channels",
		Short: "List push channels and whether the push config enables them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			pushCfg, err := notifier.LoadConfig(cfg.PushPath())
			switch {
			case errors.Is(err, notifier.ErrConfigMissing):
				pushCfg = nil
			case err != nil:
				return err
			}

			enabled := map[string]bool{}
			if pushCfg != nil {
				for _, n := range pushCfg.Section(notifier.SettingSection).List("push_server") {
					enabled[strings.ToLower(n)] = true
				}
			}

			rows := make([][]string, 0)
			for _, name := range ctx.channels().Names() {
				section, active := "-", "-"
				if pushCfg != nil && pushCfg.HasSection(name) {
					section = "yes"
				}
				if enabled[name] {
					active = "yes"
				}
				rows = append(rows, []string{name, section, active})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Channel", "Section", "Enabled"}, rows))
			if pushCfg == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "push config %s not found\n", cfg.PushPath())
			}
			return nil
		},
	}
}

func renderTable(headers []string, rows [][]string) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	hdr := make(table.Row, len(headers))
	for i, h := range headers {
		hdr[i] = h
	}
	tw.AppendHeader(hdr)
	for _, r := range rows {
		row := make(table.Row, len(r))
		for i, v := range r {
			row[i] = v
		}
		tw.AppendRow(row)
	}
	return tw.Render()
}
