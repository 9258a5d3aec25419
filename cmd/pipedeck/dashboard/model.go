package dashboard

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"pipedeck"
	"pipedeck/cmd/pipedeck/ui"
	"pipedeck/pipeline"
)

// maxActivity bounds the activity feed shown under the stage list.
const maxActivity = 6

// actionDoneMsg delivers the result of a start action back to the
// update loop. logs is nil when the start failed.
type actionDoneMsg struct {
	stageID string
	outcome pipedeck.StartOutcome
	logs    *pipedeck.LogSnapshot
}

// logViewer is the full-screen overlay showing one stage's captured logs.
type logViewer struct {
	title string
	view  viewport.Model
}

type model struct {
	ctrl   *pipeline.Controller
	stages []pipedeck.Stage

	cursor   int
	busy     string // stage ID with an action in flight, "" when idle
	spin     spinner.Model
	activity []string
	showInfo bool

	logView *logViewer

	width  int
	height int
}

func newModel(ctrl *pipeline.Controller) *model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = ui.AccentStyle
	return &model{
		ctrl:   ctrl,
		stages: ctrl.Stages(),
		spin:   sp,
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.logView != nil {
			w, h := m.viewportSize()
			m.logView.view.Width = w
			m.logView.view.Height = h
		}
		return m, nil

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case actionDoneMsg:
		m.busy = ""
		m.record(msg.outcome)
		return m, nil

	case tea.KeyMsg:
		if m.logView != nil {
			return m.updateLogView(msg)
		}
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.stages)-1 {
				m.cursor++
			}
		case "enter", "s":
			return m, m.startSelected()
		case "l":
			m.openLogs()
		case "d":
			m.showInfo = !m.showInfo
		}
	}
	return m, nil
}

// startSelected kicks off the start-then-fetch action for the stage under
// the cursor. Only one action runs at a time; extra presses are ignored.
func (m *model) startSelected() tea.Cmd {
	if m.busy != "" {
		return nil
	}
	stage := m.stages[m.cursor]
	m.busy = stage.ID

	ctrl := m.ctrl
	return tea.Batch(m.spin.Tick, func() tea.Msg {
		outcome, logs := ctrl.StartAndFetchLogs(context.Background(), stage.ID)
		return actionDoneMsg{stageID: stage.ID, outcome: outcome, logs: logs}
	})
}

// openLogs shows the captured log snapshot for the stage under the
// cursor, if one exists.
func (m *model) openLogs() {
	stage := m.stages[m.cursor]
	status := m.ctrl.ReadStatus(stage.ID)
	if status.Logs == nil {
		m.note(ui.WarnStyle.Render("!") + " No captured logs for " + stage.Label + "; start it first.")
		return
	}

	w, h := m.viewportSize()
	vp := viewport.New(w, h)
	vp.SetContent(status.Logs.Text)
	m.logView = &logViewer{title: stage.Label, view: vp}
}

func (m *model) updateLogView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc", "l":
		m.logView = nil
		return m, nil
	case "ctrl+c":
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.logView.view, cmd = m.logView.view.Update(msg)
	return m, cmd
}

// record appends an outcome line to the activity feed.
func (m *model) record(outcome pipedeck.StartOutcome) {
	mark := ui.SuccessStyle.Render("✓")
	if !outcome.Succeeded {
		mark = ui.ErrorStyle.Render("✗")
	}
	stamp := ui.Muted(outcome.At.Format("15:04:05"))
	m.note(fmt.Sprintf("%s %s %s", stamp, mark, outcome.Message))
}

func (m *model) note(line string) {
	m.activity = append(m.activity, line)
	if len(m.activity) > maxActivity {
		m.activity = m.activity[len(m.activity)-maxActivity:]
	}
}

func (m *model) viewportSize() (w, h int) {
	w, h = m.width, m.height-4
	if w <= 0 {
		w = 80
	}
	if h <= 0 {
		h = 20
	}
	return w, h
}
