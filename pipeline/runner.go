package pipeline

import "context"

// Form is one concrete way to invoke the orchestration CLI. Forms earlier in
// a list are preferred; later forms are legacy fallbacks for the same action.
// Label is the logical command name used in diagnostics ("docker compose",
// "docker-compose"), not necessarily Argv[0] alone.
type Form struct {
	Label string
	Argv  []string
}

// Result carries everything one runner invocation produced. Exactly one of
// two shapes comes back: a success with the winning form and its captured
// streams, or a failure with the full diagnostic trail.
type Result struct {
	Succeeded   bool
	Form        []string // argv of the form that succeeded
	Stdout      string   // trimmed capture of the winning process
	Stderr      string
	Diagnostics []string // one entry per failed attempt, in attempt order
}

// CommandRunner executes an ordered list of equivalent command forms from
// dir, stopping at the first one that exits zero. Implementations report
// every failure through the Result; they do not return errors.
type CommandRunner interface {
	Run(ctx context.Context, forms []Form, dir string) Result
}
