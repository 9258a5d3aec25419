package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pipedeck/cmd/pipedeck/ui"
	"pipedeck/pipeline"
)

func topologyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topology",
		Short: "Show the pipeline stages and how data flows between them",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			top := pipeline.Default()
			stages := top.Stages()

			labels := make([]string, len(stages))
			for i, stage := range stages {
				labels[i] = stage.Label
			}
			fmt.Println(ui.Flow(labels...))
			fmt.Println()

			rows := make([][]string, len(stages))
			for i, stage := range stages {
				rows[i] = []string{strconv.Itoa(i + 1), stage.Label, stage.ID, stage.Description}
			}
			fmt.Println(ui.Table([]string{"#", "Stage", "Service", "Description"}, rows))
			return nil
		},
	}
}
