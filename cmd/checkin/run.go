package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"checkinbot/internal/accounts"
)

var errNotConfirmed = errors.New("batch not confirmed")

func newRunCommand(ctx *commandContext) *cobra.Command {
	var autorun bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Check in every discovered account once and push the summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			sigCtx, stop := signalContext(cmd.Context())
			defer stop()

			lock := flock.New(cfg.LockPath())
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("run lock: %w", err)
			}
			if !locked {
				return fmt.Errorf("another batch is running (lock %s)", cfg.LockPath())
			}
			defer func() { _ = lock.Unlock() }()

			b := &batchRunner{cc: ctx, out: cmd.OutOrStdout()}
			if !autorun && !cfg.Autorun {
				b.confirm = promptConfirm(cmd.InOrStdin(), cmd.OutOrStdout())
			}
			return b.run(sigCtx, cfg)
		},
	}

	cmd.Flags().BoolVar(&autorun, "autorun", false, "Skip the confirmation prompt")
	return cmd
}

// promptConfirm lists the accounts and waits for Enter. EOF or a cancelled
// context (Ctrl+C) declines.
func promptConfirm(in io.Reader, out io.Writer) confirmFunc {
	return func(ctx context.Context, tasks []accounts.AccountTask) error {
		fmt.Fprintf(out, "Found %d account config(s):\n", len(tasks))
		for _, t := range tasks {
			fmt.Fprintf(out, "  - %s\n", t.Ref)
		}
		fmt.Fprint(out, "Press Enter to start, Ctrl+C to quit and rescan: ")

		done := make(chan error, 1)
		go func() {
			_, err := bufio.NewReader(in).ReadString('\n')
			done <- err
		}()
		select {
		case <-ctx.Done():
			fmt.Fprintln(out)
			return errors.Join(errNotConfirmed, ctx.Err())
		case err := <-done:
			if err != nil {
				fmt.Fprintln(out)
				return errors.Join(errNotConfirmed, err)
			}
			return nil
		}
	}
}
