package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"pipedeck"
)

// startForms returns the orchestration invocations that start one service
// detached, in preference order: the compose plugin first, then the legacy
// standalone binary.
func startForms(serviceID string) []Form {
	return []Form{
		{Label: "docker compose", Argv: []string{"docker", "compose", "up", "-d", serviceID}},
		{Label: "docker-compose", Argv: []string{"docker-compose", "up", "-d", serviceID}},
	}
}

// logForms returns the invocations that fetch a bounded tail of one
// service's logs, in the same preference order as startForms.
func logForms(serviceID string, tail int) []Form {
	n := strconv.Itoa(tail)
	return []Form{
		{Label: "docker compose", Argv: []string{"docker", "compose", "logs", "--tail", n, serviceID}},
		{Label: "docker-compose", Argv: []string{"docker-compose", "logs", "--tail", n, serviceID}},
	}
}

// StartStage starts one stage detached via the orchestration CLI and records
// the outcome in the status store. Every failure comes back inside the
// outcome value; nothing crosses this boundary as an error.
//
// The manifest is checked before any command form is attempted: without it
// the CLI would fail all forms with noise that hides the real problem.
func (c *Controller) StartStage(ctx context.Context, stageID string) pipedeck.StartOutcome {
	stage, ok := c.topology.Lookup(stageID)
	if !ok {
		return c.unknownStage(stageID)
	}
	if outcome, ok := c.manifestMissing(); ok {
		c.store.RecordOutcome(stage.ID, outcome)
		slog.Warn("Start aborted, manifest missing.", "stage", stage.ID, "manifest", c.ManifestPath())
		return outcome
	}

	res := c.runner.Run(ctx, startForms(stage.ID), c.projectDir)
	outcome := pipedeck.StartOutcome{At: c.now()}
	if res.Succeeded {
		outcome.Succeeded = true
		outcome.Message = fmt.Sprintf("Service '%s' started successfully.", stage.ID)
		outcome.Details = transcript(res)
		slog.Info("Stage started.", "stage", stage.ID, "command", strings.Join(res.Form, " "))
	} else {
		outcome.Message = fmt.Sprintf("Failed to start service '%s'. See details below.", stage.ID)
		outcome.Details = diagnosticTrail(res)
		slog.Warn("Stage start failed.", "stage", stage.ID, "attempts", len(res.Diagnostics))
	}
	c.store.RecordOutcome(stage.ID, outcome)
	return outcome
}

// FetchLogs captures a bounded tail of one stage's logs via the orchestration
// CLI and records the snapshot in the status store. The store drops the
// write when the stage's latest start outcome is not a success, so a
// standalone fetch against a failed stage returns a snapshot the caller can
// render without leaving a stray record behind.
func (c *Controller) FetchLogs(ctx context.Context, stageID string) pipedeck.LogSnapshot {
	stage, ok := c.topology.Lookup(stageID)
	if !ok {
		return pipedeck.LogSnapshot{
			Available: false,
			Text:      fmt.Sprintf("Unknown stage %q.", stageID),
			At:        c.now(),
		}
	}
	if outcome, ok := c.manifestMissing(); ok {
		slog.Warn("Log fetch aborted, manifest missing.", "stage", stage.ID, "manifest", c.ManifestPath())
		return pipedeck.LogSnapshot{Available: false, Text: outcome.Message, At: outcome.At}
	}

	res := c.runner.Run(ctx, logForms(stage.ID, c.tailLines), c.projectDir)
	snap := pipedeck.LogSnapshot{At: c.now()}
	if res.Succeeded {
		snap.Available = true
		snap.Text = combineStreams(res.Stdout, res.Stderr)
		slog.Debug("Logs fetched.", "stage", stage.ID, "bytes", len(snap.Text))
	} else {
		snap.Text = diagnosticTrail(res)
		slog.Warn("Log fetch failed.", "stage", stage.ID, "attempts", len(res.Diagnostics))
	}
	c.store.RecordLog(stage.ID, snap)
	return snap
}

// StartAndFetchLogs is the composed single user action: start the stage and,
// only when the start succeeded, collect its recent logs. A failed start
// returns a nil snapshot and never invokes the log fetch.
func (c *Controller) StartAndFetchLogs(ctx context.Context, stageID string) (pipedeck.StartOutcome, *pipedeck.LogSnapshot) {
	outcome := c.StartStage(ctx, stageID)
	if !outcome.Succeeded {
		return outcome, nil
	}
	snap := c.FetchLogs(ctx, stageID)
	return outcome, &snap
}

// ReadStatus returns the recorded state for one stage.
func (c *Controller) ReadStatus(stageID string) pipedeck.StageStatus {
	return c.store.Read(stageID)
}

// StatusSnapshot returns the recorded state for every stage that has one.
func (c *Controller) StatusSnapshot() map[string]pipedeck.StageStatus {
	return c.store.Snapshot()
}

// unknownStage covers callers that bypass topology validation. The outcome
// is not recorded: the store only tracks real stages.
func (c *Controller) unknownStage(stageID string) pipedeck.StartOutcome {
	return pipedeck.StartOutcome{
		Succeeded: false,
		Message:   fmt.Sprintf("Unknown stage %q.", stageID),
		Details:   "The identifier does not match any stage in the pipeline topology.",
		At:        c.now(),
	}
}

// manifestMissing reports whether the orchestration manifest is absent and,
// if so, builds the short-circuit failure outcome.
func (c *Controller) manifestMissing() (pipedeck.StartOutcome, bool) {
	path := c.ManifestPath()
	if _, err := os.Stat(path); err == nil {
		return pipedeck.StartOutcome{}, false
	}
	return pipedeck.StartOutcome{
		Succeeded: false,
		Message:   fmt.Sprintf("Unable to locate %s at %s.", ManifestName, path),
		Details:   "Ensure the project is checked out with its Docker configuration.",
		At:        c.now(),
	}, true
}

// transcript renders a successful run the way the activity log shows it: the
// command line first, then whichever streams produced output.
func transcript(res Result) string {
	blocks := []string{"Command executed:", strings.Join(res.Form, " ")}
	if res.Stdout != "" {
		blocks = append(blocks, "Standard output:\n"+res.Stdout)
	}
	if res.Stderr != "" {
		blocks = append(blocks, "Standard error:\n"+res.Stderr)
	}
	return strings.Join(blocks, "\n\n")
}

// diagnosticTrail joins the per-attempt diagnostics of a failed run. The
// trail is never truncated; every attempted form keeps its entry.
func diagnosticTrail(res Result) string {
	if len(res.Diagnostics) == 0 {
		return "Unknown error"
	}
	return strings.Join(res.Diagnostics, "\n\n")
}

// combineStreams merges the captured log streams into one payload: both
// non-empty joins them with a blank line, one non-empty passes through, and
// neither yields the sentinel.
func combineStreams(stdout, stderr string) string {
	switch {
	case stdout != "" && stderr != "":
		return stdout + "\n\n" + stderr
	case stdout != "":
		return stdout
	case stderr != "":
		return stderr
	default:
		return pipedeck.NoLogsMessage
	}
}
