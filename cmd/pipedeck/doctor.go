package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"pipedeck/cmd/pipedeck/ui"
	"pipedeck/internal/adapter/composecli"
	"pipedeck/internal/adapter/docker"
	"pipedeck/internal/manifest"
	"pipedeck/pipeline"
)

func doctorCmd(c *console) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment the console depends on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			healthy := true

			fmt.Println(ui.Bold("Manifest"))
			path, err := manifest.Locate(c.effective.ProjectDir)
			if err != nil {
				healthy = false
				fmt.Println(ui.ErrorMsg("%v", err))
			} else {
				fmt.Println(ui.SuccessMsg("Found %s", ui.Muted(path)))
				project, err := manifest.Load(ctx, path)
				if err != nil {
					healthy = false
					fmt.Println(ui.ErrorMsg("%v", err))
				} else {
					fmt.Println(ui.SuccessMsg("Parses cleanly (%d services)", len(project.Services)))
					missing := manifest.MissingServices(project, pipeline.Default().Stages())
					if len(missing) == 0 {
						fmt.Println(ui.SuccessMsg("All pipeline stages are declared"))
					} else {
						fmt.Println(ui.WarnMsg("Stages missing from the manifest: %s", strings.Join(missing, ", ")))
					}
				}
			}

			fmt.Println()
			fmt.Println(ui.Bold("Orchestration CLI"))
			runner := composecli.New()
			result := runner.Run(ctx, []pipeline.Form{
				{Label: "docker compose", Argv: []string{"docker", "compose", "version"}},
				{Label: "docker-compose", Argv: []string{"docker-compose", "--version"}},
			}, ".")
			if result.Succeeded {
				label := result.Form[0]
				if label == "docker" && len(result.Form) > 1 {
					label = strings.Join(result.Form[:2], " ")
				}
				version := strings.SplitN(result.Stdout, "\n", 2)[0]
				fmt.Println(ui.SuccessMsg("%s %s", ui.Accent(label), ui.Muted(version)))
			} else {
				healthy = false
				fmt.Println(ui.ErrorMsg("No working compose command found"))
				fmt.Print(ui.DetailBlock(strings.Join(result.Diagnostics, "\n")))
			}

			fmt.Println()
			fmt.Println(ui.Bold("Container engine"))
			desc, err := docker.PingEngine(ctx)
			if err != nil {
				healthy = false
				fmt.Println(ui.ErrorMsg("Engine unreachable: %v", err))
			} else {
				fmt.Println(ui.SuccessMsg("%s", desc))
			}

			fmt.Println()
			if !healthy {
				return errors.New("environment is not ready")
			}
			fmt.Println(ui.SuccessMsg("Environment ready"))
			return nil
		},
	}
}
