package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pipedeck"
	"pipedeck/cmd/pipedeck/ui"
	"pipedeck/internal/telemetry"
)

const (
	stepStart = "start"
	stepLogs  = "logs"
)

func startCmd(c *console) *cobra.Command {
	var (
		showDetails bool
		timeout     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "start <stage>",
		Short: "Start one pipeline stage and collect its recent logs",
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

			out := ui.NewTelemetryOutput()
			defer out.Close()

			plan := telemetry.Plan{Steps: []telemetry.PlannedStep{
				{ID: stepStart, Title: "Start " + stage.Label},
				{ID: stepLogs, Title: "Collect recent logs"},
			}}
			op, err := telemetry.Begin(ctx, out.Tracer("pipedeck/start"), "start "+stage.ID, plan)
			if err != nil {
				return err
			}

			var (
				outcome  pipedeck.StartOutcome
				snapshot *pipedeck.LogSnapshot
			)
			startErr := op.RunStep(stepStart, func(ctx context.Context) error {
				outcome = ctrl.StartStage(ctx, stage.ID)
				if !outcome.Succeeded {
					return errors.New(outcome.Message)
				}
				return nil
			})
			if startErr == nil {
				_ = op.RunStep(stepLogs, func(ctx context.Context) error {
					snap := ctrl.FetchLogs(ctx, stage.ID)
					snapshot = &snap
					if !snap.Available {
						return errors.New("log retrieval failed")
					}
					return nil
				})
			}
			op.End(startErr)
			out.Close()

			renderOutcome(outcome, showDetails)
			if snapshot != nil {
				fmt.Println()
				renderSnapshot(stage, *snapshot, c.effective.TailLines)
			}
			if !outcome.Succeeded {
				return fmt.Errorf("stage %s failed to start", stage.ID)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showDetails, "details", false, "Print the full command transcript even on success")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Abort the operation after this long (0 waits indefinitely)")
	return cmd
}

func renderOutcome(outcome pipedeck.StartOutcome, showDetails bool) {
	if outcome.Succeeded {
		fmt.Println(ui.SuccessMsg("%s", outcome.Message))
	} else {
		fmt.Println(ui.ErrorMsg("%s", outcome.Message))
	}
	if showDetails || !outcome.Succeeded {
		fmt.Print(ui.DetailBlock(outcome.Details))
	}
}

func renderSnapshot(stage pipedeck.Stage, snap pipedeck.LogSnapshot, tail int) {
	if !snap.Available {
		fmt.Println(ui.ErrorMsg("Could not retrieve logs for %s", ui.Accent(stage.Label)))
		fmt.Print(ui.DetailBlock(snap.Text))
		return
	}
	fmt.Println(ui.InfoMsg("Recent logs for %s %s", ui.Accent(stage.Label), ui.Muted(fmt.Sprintf("(last %d lines)", tail))))
	fmt.Print(ui.DetailBlock(snap.Text))
}
