package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"pipedeck/cmd/pipedeck/dashboard"
	"pipedeck/cmd/pipedeck/ui"
	"pipedeck/config"
	"pipedeck/internal/adapter/composecli"
	"pipedeck/internal/logging"
	"pipedeck/internal/support/buildinfo"
	"pipedeck/pipeline"
)

// console carries the persistent flag values and the settings resolved
// from them, so every subcommand builds its controller the same way.
type console struct {
	debug         bool
	noInteraction bool
	projectDir    string
	tailLines     int

	effective config.Settings
}

func (c *console) resolve() error {
	settings, err := config.Load()
	if err != nil {
		slog.Warn("Ignoring unreadable config file.", "error", err)
		settings = &config.Settings{}
	}
	c.effective = config.Resolve(settings, c.projectDir, c.tailLines)
	return nil
}

func (c *console) controller() (*pipeline.Controller, error) {
	return pipeline.New(pipeline.Default(),
		pipeline.WithRunner(composecli.New()),
		pipeline.WithProjectDir(c.effective.ProjectDir),
		pipeline.WithTailLines(c.effective.TailLines),
	)
}

func main() {
	c := &console{}

	if err := logging.Configure(logging.LevelWarn); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	root := &cobra.Command{
		Use:           "pipedeck",
		Short:         "Control console for the data platform pipeline",
		Long:          "pipedeck starts, inspects, and tails the docker-compose services\nthat make up the data platform pipeline.",
		Version:       buildinfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.resolve(); err != nil {
				return err
			}
			level := c.effective.LogLevel
			if c.debug {
				level = logging.LevelDebug
			}
			if err := logging.Configure(level); err != nil {
				return err
			}
			ui.ConfigureInteraction(c.noInteraction)
			return nil
		},
	}

	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "Enable debug logging")
	root.PersistentFlags().BoolVar(&c.noInteraction, "no-interaction", false, "Disable prompts, spinners, and color output")
	root.PersistentFlags().StringVar(&c.projectDir, "project-dir", "", "Directory holding docker-compose.yml (defaults to the config file, then the current directory)")
	root.PersistentFlags().IntVar(&c.tailLines, "tail", 0, "Log lines to fetch per stage (defaults to 200)")

	root.AddCommand(
		topologyCmd(),
		startCmd(c),
		logsCmd(c),
		statusCmd(c),
		doctorCmd(c),
		configCmd(c),
		dashboard.Cmd(c.controller),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
