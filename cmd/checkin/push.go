package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"checkinbot/internal/report"
)

const defaultPushMessage = "这是一条测试推送消息，如果你看到了说明推送配置正确。"

func newPushCommand(ctx *commandContext) *cobra.Command {
	var status int
	var pushFile string

	cmd := &cobra.Command{
		Use:   "push [message]",
		Short: "Send a message through the configured push channels",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			msg := defaultPushMessage
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				msg = args[0]
			}
			sigCtx, stop := signalContext(cmd.Context())
			defer stop()

			disp := ctx.dispatcher(cfg, false)
			if strings.TrimSpace(pushFile) != "" {
				disp = disp.WithPath(pushFile)
			}
			res := disp.Dispatch(sigCtx, report.Status(status), msg)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s\n", disp.Path(), res.State)
			for _, ch := range res.Channels {
				switch {
				case ch.Unresolved:
					fmt.Fprintf(out, "  %-12s unknown channel\n", ch.Name)
				case ch.Err != nil:
					fmt.Fprintf(out, "  %-12s failed: %v\n", ch.Name, ch.Err)
				default:
					fmt.Fprintf(out, "  %-12s ok (%s)\n", ch.Name, ch.Took.Round(time.Millisecond))
				}
			}
			if code := res.Code(); code != 0 {
				return exitCode(code)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&status, "status", int(report.StatusSuccess), "Status code used for the title")
	cmd.Flags().StringVar(&pushFile, "file", "", "Push config path (default: push.dir/push.name)")
	return cmd
}
