package dashboard

import (
	"fmt"
	"strings"

	"pipedeck"
	"pipedeck/cmd/pipedeck/ui"
)

func (m *model) View() string {
	if m.logView != nil {
		return m.logViewRender()
	}

	var b strings.Builder
	b.WriteString(ui.Bold("Data Platform Console") + "\n\n")

	labels := make([]string, len(m.stages))
	for i, stage := range m.stages {
		labels[i] = stage.Label
	}
	b.WriteString(ui.Flow(labels...) + "\n\n")

	for i, stage := range m.stages {
		b.WriteString(m.stageLine(i, stage) + "\n")
	}

	if m.showInfo {
		b.WriteString("\n" + m.detailPane())
	}

	if len(m.activity) > 0 {
		b.WriteString("\n" + ui.Muted("Activity") + "\n")
		for _, line := range m.activity {
			b.WriteString("  " + line + "\n")
		}
	}

	b.WriteString("\n" + ui.MutedStyle.Render("↑/↓ navigate  s start  l logs  d details  q quit") + "\n")
	return b.String()
}

func (m *model) stageLine(i int, stage pipedeck.Stage) string {
	status := m.ctrl.ReadStatus(stage.ID)

	glyph := ui.FaintStyle.Render("·")
	note := ui.Muted("not started")
	switch {
	case m.busy == stage.ID:
		glyph = m.spin.View()
		note = ui.Muted("starting")
	case status.Outcome != nil && status.Outcome.Succeeded:
		glyph = ui.SuccessStyle.Render("✓")
		note = ui.Muted("started " + status.Outcome.At.Format("15:04:05"))
	case status.Outcome != nil:
		glyph = ui.ErrorStyle.Render("✗")
		note = ui.ErrorStyle.Render("failed") + " " + ui.Muted(status.Outcome.At.Format("15:04:05"))
	}

	// Pad before styling so ANSI codes don't skew the columns.
	label := fmt.Sprintf("%-20s", stage.Label)
	cursor := "  "
	if i == m.cursor {
		cursor = ui.AccentStyle.Render("▸") + " "
		label = ui.BoldStyle.Render(label)
	}
	return fmt.Sprintf("%s%s %s %s", cursor, glyph, label, note)
}

func (m *model) detailPane() string {
	stage := m.stages[m.cursor]
	status := m.ctrl.ReadStatus(stage.ID)

	var b strings.Builder
	b.WriteString(ui.Accent(stage.Label) + " " + ui.Muted("("+stage.ID+")") + "\n")
	b.WriteString(ui.Muted(stage.Description) + "\n")
	if status.Outcome != nil && status.Outcome.Details != "" {
		b.WriteString(ui.DetailBlock(status.Outcome.Details))
	}
	return b.String()
}

func (m *model) logViewRender() string {
	header := ui.Bold("Logs") + " " + ui.Accent(m.logView.title)
	footer := ui.MutedStyle.Render("↑/↓ scroll  esc close")
	return header + "\n\n" + m.logView.view.View() + "\n" + footer + "\n"
}
