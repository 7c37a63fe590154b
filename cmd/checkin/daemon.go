package main

import (
	"github.com/spf13/cobra"

	"checkinbot/internal/daemon"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run batches on the configured schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := ctx.ensureConfig(); err != nil {
				return err
			}
			sigCtx, stop := signalContext(cmd.Context())
			defer stop()

			b := &batchRunner{cc: ctx}
			return daemon.New(ctx.manager, b.run, ctx.logger()).Run(sigCtx)
		},
	}
}
