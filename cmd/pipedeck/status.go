package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pipedeck"
	"pipedeck/cmd/pipedeck/ui"
)

func statusCmd(c *console) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [stage]",
		Short: "Show the start outcomes recorded during this session",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctrl, err := c.controller()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				stage, ok := ctrl.Topology().Lookup(args[0])
				if !ok {
					return fmt.Errorf("unknown stage %q; run 'pipedeck topology' to list stages", args[0])
				}
				printStageStatus(stage, ctrl.ReadStatus(stage.ID))
				return nil
			}

			snapshot := ctrl.StatusSnapshot()
			if len(snapshot) == 0 {
				fmt.Println(ui.InfoMsg("No services have been started from this session yet."))
				return nil
			}

			rows := make([][]string, 0, ctrl.Topology().Len())
			for _, stage := range ctrl.Stages() {
				rows = append(rows, statusRow(stage, snapshot[stage.ID]))
			}
			fmt.Println(ui.Table([]string{"Stage", "Service", "State", "When", "Logs"}, rows))
			return nil
		},
	}
	return cmd
}

func statusRow(stage pipedeck.Stage, status pipedeck.StageStatus) []string {
	state, when, logs := "-", "-", "-"
	if status.Outcome != nil {
		when = status.Outcome.At.Format(time.TimeOnly)
		if status.Outcome.Succeeded {
			state = ui.Success("started")
		} else {
			state = ui.ErrorStyle.Render("failed")
		}
	}
	if status.Logs != nil {
		logs = "yes"
	}
	return []string{stage.Label, stage.ID, state, when, logs}
}

func printStageStatus(stage pipedeck.Stage, status pipedeck.StageStatus) {
	fmt.Println(ui.Bold(stage.Label) + " " + ui.Muted("("+stage.ID+")"))
	fmt.Println(ui.Muted(stage.Description))
	fmt.Println()

	if status.Outcome == nil {
		fmt.Println(ui.InfoMsg("Not started during this session."))
		return
	}

	state := ui.Success("started")
	if !status.Outcome.Succeeded {
		state = ui.ErrorStyle.Render("failed")
	}
	fmt.Print(ui.KeyValues("",
		ui.KV("State", state),
		ui.KV("When", status.Outcome.At.Format(time.RFC3339)),
		ui.KV("Message", status.Outcome.Message),
	))
	if status.Outcome.Details != "" {
		fmt.Println()
		fmt.Print(ui.DetailBlock(status.Outcome.Details))
	}
	if status.Logs != nil {
		fmt.Println()
		fmt.Println(ui.InfoMsg("Captured logs %s", ui.Muted("("+status.Logs.At.Format(time.TimeOnly)+")")))
		fmt.Print(ui.DetailBlock(status.Logs.Text))
	}
}
