package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"pipedeck/cmd/pipedeck/ui"
	"pipedeck/config"
	"pipedeck/internal/logging"
)

func configCmd(c *console) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective console settings",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			fmt.Println(ui.Muted("File: " + config.Path()))
			fmt.Print(ui.KeyValues("",
				ui.KV("project-dir", c.effective.ProjectDir),
				ui.KV("tail", strconv.Itoa(c.effective.TailLines)),
				ui.KV("log-level", c.effective.LogLevel),
			))
			return nil
		},
	}
	cmd.AddCommand(configSetCmd())
	return cmd
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Persist a setting in the config file",
		Long:  "Persist a setting in the config file. Keys: project-dir, tail, log-level.",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				return err
			}
			if err := applySetting(settings, args[0], args[1]); err != nil {
				return err
			}
			if err := settings.Save(); err != nil {
				return err
			}
			fmt.Println(ui.SuccessMsg("Saved %s to %s.", args[0], config.Path()))
			return nil
		},
	}
}

func applySetting(s *config.Settings, key, value string) error {
	switch key {
	case "project-dir":
		s.ProjectDir = value
	case "tail":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("tail must be a positive integer, got %q", value)
		}
		s.TailLines = n
	case "log-level":
		switch value {
		case logging.LevelDebug, logging.LevelInfo, logging.LevelWarn, logging.LevelError:
			s.LogLevel = value
		default:
			return fmt.Errorf("unknown log level %q", value)
		}
	default:
		return fmt.Errorf("unknown setting %q; valid keys: project-dir, tail, log-level", key)
	}
	return nil
}
