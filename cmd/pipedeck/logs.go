package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pipedeck"
	"pipedeck/cmd/pipedeck/ui"
)

func logsCmd(c *console) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "logs <stage>",
		Short: "Fetch a bounded tail of one stage's recent logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := c.controller()
			if err != nil {
				return err
			}
			stage, ok := ctrl.Topology().Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown stage %q; run 'pipedeck topology' to list stages", args[0])
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			var snap pipedeck.LogSnapshot
			err = ui.RunWithSpinner(ctx, "Fetching logs for "+stage.Label, func(ctx context.Context) error {
				snap = ctrl.FetchLogs(ctx, stage.ID)
				return nil
			})
			if err != nil {
				return err
			}

			if !snap.Available {
				fmt.Println(ui.ErrorMsg("Could not retrieve logs for %s", ui.Accent(stage.Label)))
				fmt.Print(ui.DetailBlock(snap.Text))
				return fmt.Errorf("log retrieval failed for %s", stage.ID)
			}

			fmt.Fprintln(cmd.ErrOrStderr(), ui.InfoMsg("Logs for %s %s", ui.Accent(stage.Label), ui.Muted(fmt.Sprintf("(last %d lines)", c.effective.TailLines))))
			fmt.Println(snap.Text)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort the fetch after this long (0 waits indefinitely)")
	return cmd
}
