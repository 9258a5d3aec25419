// Package fake provides an in-memory command runner for tests. Results are
// scripted ahead of time and every invocation is recorded for assertions.
package fake

import (
	"context"
	"sync"

	"pipedeck/pipeline"
)

var _ pipeline.CommandRunner = (*Runner)(nil)

// Invocation captures one Run call.
type Invocation struct {
	Forms []pipeline.Form
	Dir   string
}

// Runner is a scripted pipeline.CommandRunner. Scripted results are consumed
// in FIFO order; once the script runs out every call returns Default. The
// zero value fails every run with a canned diagnostic.
type Runner struct {
	mu     sync.Mutex
	script []pipeline.Result
	calls  []Invocation

	// Default is returned when no scripted result remains.
	Default pipeline.Result
}

// NewRunner returns a runner whose unscripted calls fail loudly.
func NewRunner() *Runner {
	return &Runner{Default: pipeline.Result{Diagnostics: []string{"fake runner: no scripted result"}}}
}

// Succeed queues a successful result carrying the given streams. The winning
// argv is filled in from the first offered form at call time.
func (r *Runner) Succeed(stdout, stderr string) *Runner {
	return r.Enqueue(pipeline.Result{Succeeded: true, Stdout: stdout, Stderr: stderr})
}

// Fail queues a failed result carrying the given diagnostic trail.
func (r *Runner) Fail(diagnostics ...string) *Runner {
	return r.Enqueue(pipeline.Result{Diagnostics: diagnostics})
}

// Enqueue queues a raw result.
func (r *Runner) Enqueue(res pipeline.Result) *Runner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.script = append(r.script, res)
	return r
}

// Run consumes the next scripted result and records the invocation.
func (r *Runner) Run(_ context.Context, forms []pipeline.Form, dir string) pipeline.Result {
	r.mu.Lock()
	defer r.mu.Unlock()

	recorded := make([]pipeline.Form, len(forms))
	for i, f := range forms {
		recorded[i] = pipeline.Form{Label: f.Label, Argv: append([]string(nil), f.Argv...)}
	}
	r.calls = append(r.calls, Invocation{Forms: recorded, Dir: dir})

	if len(r.script) == 0 {
		return r.Default
	}
	res := r.script[0]
	r.script = r.script[1:]
	if res.Succeeded && res.Form == nil && len(forms) > 0 {
		res.Form = append([]string(nil), forms[0].Argv...)
	}
	return res
}

// Calls returns the recorded invocations in order.
func (r *Runner) Calls() []Invocation {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Invocation, len(r.calls))
	copy(out, r.calls)
	return out
}

// CallCount returns how many times Run was invoked.
func (r *Runner) CallCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}
