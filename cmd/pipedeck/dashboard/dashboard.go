// Package dashboard is the interactive console: one screen with every
// pipeline stage, started and inspected from the keyboard. State comes
// from the controller's status store; the dashboard never shells out on
// its own.
package dashboard

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"pipedeck/cmd/pipedeck/ui"
	"pipedeck/pipeline"
)

// Cmd returns the dashboard subcommand. The controller factory is invoked
// lazily so persistent flags are resolved first.
func Cmd(controller func() (*pipeline.Controller, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Interactive console for the whole pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if ui.IsNoInteraction() {
				return errors.New("dashboard needs an interactive terminal; use 'pipedeck start' and 'pipedeck status' instead")
			}
			ctrl, err := controller()
			if err != nil {
				return err
			}

			p := tea.NewProgram(newModel(ctrl),
				tea.WithOutput(os.Stderr),
				tea.WithContext(cmd.Context()),
			)
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("dashboard: %w", err)
			}
			return nil
		},
	}
}
