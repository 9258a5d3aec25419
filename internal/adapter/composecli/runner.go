// Package composecli executes orchestration commands for the controller by
// spawning the docker compose CLI. Each action arrives as an ordered list of
// equivalent command forms; the runner tries them until one exits zero and
// keeps a diagnostic entry for every form that did not.
package composecli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"pipedeck/pipeline"
)

var _ pipeline.CommandRunner = (*Runner)(nil)

// Runner spawns orchestration CLI processes. It keeps no state; the zero
// value is ready to use.
type Runner struct{}

// New returns a process-spawning runner.
func New() *Runner {
	return &Runner{}
}

// Run tries each form in order from dir. The first process that exits zero
// wins and its captured streams come back in the Result; every earlier
// failure stays in the diagnostic trail. When all forms fail the Result
// carries the whole trail, one entry per attempt.
//
// An unusable working directory fails the run before any process is spawned:
// the CLI's own error for that case names the wrong problem.
func (r *Runner) Run(ctx context.Context, forms []pipeline.Form, dir string) pipeline.Result {
	if len(forms) == 0 {
		return pipeline.Result{Diagnostics: []string{"no command forms to attempt"}}
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return pipeline.Result{Diagnostics: []string{fmt.Sprintf("working directory %s is not usable", dir)}}
	}

	var trail []string
	for _, form := range forms {
		if len(form.Argv) == 0 {
			trail = append(trail, fmt.Sprintf("empty command form %q", form.Label))
			continue
		}
		stdout, stderr, err := attempt(ctx, form.Argv, dir)
		if err == nil {
			return pipeline.Result{
				Succeeded:   true,
				Form:        append([]string(nil), form.Argv...),
				Stdout:      stdout,
				Stderr:      stderr,
				Diagnostics: trail,
			}
		}
		trail = append(trail, diagnose(ctx, form, stderr, err))
	}
	return pipeline.Result{Diagnostics: trail}
}

// attempt runs one command form and captures its streams, trimmed.
func attempt(ctx context.Context, argv []string, dir string) (stdout, stderr string, err error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	return strings.TrimSpace(outBuf.String()), strings.TrimSpace(errBuf.String()), err
}

// diagnose turns one failed attempt into its trail entry. A missing program
// is reported under the form's logical name so "docker compose" reads as one
// command, not as a complaint about the docker binary alone. A non-zero exit
// surfaces whatever the process wrote to stderr.
func diagnose(ctx context.Context, form pipeline.Form, stderr string, err error) string {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return "Command not found: " + form.Label
	}
	if ctx.Err() != nil {
		return fmt.Sprintf("%s interrupted: %v", form.Label, ctx.Err())
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if stderr != "" {
			return stderr
		}
		return fmt.Sprintf("%s exited with status %d and produced no diagnostics", form.Label, exitErr.ExitCode())
	}
	return fmt.Sprintf("%s: %v", form.Label, err)
}
