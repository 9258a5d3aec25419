package dashboard

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"pipedeck/internal/adapter/fake"
	"pipedeck/pipeline"
)

func newTestModel(t *testing.T, runner *fake.Runner) *model {
	t.Helper()

	dir := t.TempDir()
	manifest := "services:\n  dataingestion-service:\n    image: ingest:latest\n"
	if err := os.WriteFile(filepath.Join(dir, pipeline.ManifestName), []byte(manifest), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	clk := fake.NewClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	ctrl, err := pipeline.New(pipeline.Default(),
		pipeline.WithRunner(runner),
		pipeline.WithProjectDir(dir),
		pipeline.WithClock(clk.Now),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return newModel(ctrl)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// runAction drives the command returned by a start keypress to completion
// and feeds the resulting message back into the model.
func runAction(t *testing.T, m *model, cmd tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command from the start action")
	}

	queue := []tea.Cmd{cmd}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case tea.BatchMsg:
			queue = append(queue, msg...)
		case actionDoneMsg:
			m.Update(msg)
		}
	}
}

func TestCursorStaysInBounds(t *testing.T) {
	m := newTestModel(t, fake.NewRunner())

	m.Update(keyMsg("up"))
	if m.cursor != 0 {
		t.Fatalf("cursor = %d after up at top, want 0", m.cursor)
	}

	last := len(m.stages) - 1
	for range m.stages {
		m.Update(keyMsg("down"))
	}
	if m.cursor != last {
		t.Fatalf("cursor = %d after overshooting down, want %d", m.cursor, last)
	}
}

func TestStartRunsOneActionAtATime(t *testing.T) {
	m := newTestModel(t, fake.NewRunner().Succeed("", ""))

	_, cmd := m.Update(keyMsg("s"))
	if cmd == nil {
		t.Fatal("first start should produce a command")
	}
	if m.busy == "" {
		t.Fatal("model should be busy while the action runs")
	}

	if _, second := m.Update(keyMsg("s")); second != nil {
		t.Fatal("second start while busy should be ignored")
	}
}

func TestActionUpdatesStoreAndActivity(t *testing.T) {
	runner := fake.NewRunner().Succeed("up ok", "").Succeed("line1\nline2", "")
	m := newTestModel(t, runner)

	_, cmd := m.Update(keyMsg("s"))
	runAction(t, m, cmd)

	if m.busy != "" {
		t.Fatalf("busy = %q after completion, want empty", m.busy)
	}
	stage := m.stages[0]
	status := m.ctrl.ReadStatus(stage.ID)
	if status.Outcome == nil || !status.Outcome.Succeeded {
		t.Fatalf("store outcome = %+v, want recorded success", status.Outcome)
	}
	if status.Logs == nil || status.Logs.Text != "line1\nline2" {
		t.Fatalf("store logs = %+v, want captured snapshot", status.Logs)
	}
	if len(m.activity) != 1 {
		t.Fatalf("activity entries = %d, want 1", len(m.activity))
	}
	if !strings.Contains(m.activity[0], "started successfully") {
		t.Fatalf("activity line %q should mention the success message", m.activity[0])
	}
	if !strings.Contains(m.View(), "✓") {
		t.Fatal("view should mark the started stage")
	}
}

func TestFailedStartShowsFailureMark(t *testing.T) {
	m := newTestModel(t, fake.NewRunner().Fail("Command not found: docker compose"))

	_, cmd := m.Update(keyMsg("s"))
	runAction(t, m, cmd)

	view := m.View()
	if !strings.Contains(view, "✗") {
		t.Fatal("view should mark the failed stage")
	}
	if !strings.Contains(view, "failed") {
		t.Fatal("view should name the failed state")
	}
	stage := m.stages[0]
	if logs := m.ctrl.ReadStatus(stage.ID).Logs; logs != nil {
		t.Fatalf("logs = %+v after failed start, want none", logs)
	}
}

func TestLogOverlayNeedsCapturedLogs(t *testing.T) {
	runner := fake.NewRunner().Succeed("", "").Succeed("hello logs", "")
	m := newTestModel(t, runner)

	m.Update(keyMsg("l"))
	if m.logView != nil {
		t.Fatal("log overlay should not open before any capture")
	}

	_, cmd := m.Update(keyMsg("s"))
	runAction(t, m, cmd)

	m.Update(keyMsg("l"))
	if m.logView == nil {
		t.Fatal("log overlay should open once logs are captured")
	}
	if !strings.Contains(m.View(), "hello logs") {
		t.Fatal("overlay should render the captured text")
	}

	m.Update(keyMsg("esc"))
	if m.logView != nil {
		t.Fatal("esc should close the log overlay")
	}
}

func TestDetailToggle(t *testing.T) {
	m := newTestModel(t, fake.NewRunner())

	if strings.Contains(m.View(), m.stages[0].Description) {
		t.Fatal("description should be hidden before toggling details")
	}
	m.Update(keyMsg("d"))
	if !strings.Contains(m.View(), m.stages[0].Description) {
		t.Fatal("description should show after toggling details")
	}
}

func TestQuitKey(t *testing.T) {
	m := newTestModel(t, fake.NewRunner())

	_, cmd := m.Update(keyMsg("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if msg := cmd(); msg != (tea.QuitMsg{}) {
		t.Fatalf("q produced %T, want tea.QuitMsg", msg)
	}
}
