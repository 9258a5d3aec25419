// Package pipeline is the lifecycle controller for the console: it owns the
// stage topology, drives the orchestration CLI through a command runner, and
// records per-stage outcomes and log snapshots in a status store.
//
// The controller never returns errors across the presentation boundary.
// Every start attempt and log fetch produces a value the caller can render,
// whether the underlying command worked or not.
package pipeline

import (
	"errors"
	"path/filepath"
	"time"

	"pipedeck"
)

// ManifestName is the orchestration manifest expected under the project root.
const ManifestName = "docker-compose.yml"

// DefaultTailLines caps how many log lines a fetch requests when the caller
// does not say otherwise.
const DefaultTailLines = 200

// Controller coordinates starts and log fetches for every stage in the
// topology. It is the single writer of its status store; presentation
// layers read snapshots.
type Controller struct {
	topology *Topology
	runner   CommandRunner
	store    *StatusStore

	projectDir string
	tailLines  int
	now        func() time.Time
}

// Option configures a Controller. Use these to inject test dependencies.
type Option func(*Controller)

// WithRunner injects the command runner that executes orchestration forms.
func WithRunner(r CommandRunner) Option {
	return func(c *Controller) {
		c.runner = r
	}
}

// WithStore shares an externally owned status store.
func WithStore(s *StatusStore) Option {
	return func(c *Controller) {
		c.store = s
	}
}

// WithProjectDir sets the compose project root the CLI runs from.
func WithProjectDir(dir string) Option {
	return func(c *Controller) {
		c.projectDir = dir
	}
}

// WithTailLines caps log fetches at n lines.
func WithTailLines(n int) Option {
	return func(c *Controller) {
		c.tailLines = n
	}
}

// WithClock overrides outcome timestamping.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// New creates a controller over the given topology. A command runner must be
// injected; everything else has defaults (fresh store, project root ".",
// DefaultTailLines, wall clock).
func New(topology *Topology, opts ...Option) (*Controller, error) {
	if topology == nil {
		return nil, errors.New("pipeline: topology is required")
	}
	c := &Controller{
		topology:   topology,
		projectDir: ".",
		tailLines:  DefaultTailLines,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.runner == nil {
		return nil, errors.New("pipeline: command runner is required")
	}
	if c.store == nil {
		c.store = NewStatusStore()
	}
	if c.tailLines <= 0 {
		c.tailLines = DefaultTailLines
	}
	return c, nil
}

// Topology returns the controller's stage topology.
func (c *Controller) Topology() *Topology {
	return c.topology
}

// Stages lists the pipeline stages in declaration order.
func (c *Controller) Stages() []pipedeck.Stage {
	return c.topology.Stages()
}

// Edges lists the data-flow edges between consecutive stages.
func (c *Controller) Edges() []pipedeck.Edge {
	return c.topology.Edges()
}

// Store returns the controller's status store.
func (c *Controller) Store() *StatusStore {
	return c.store
}

// ProjectDir returns the compose project root the CLI runs from.
func (c *Controller) ProjectDir() string {
	return c.projectDir
}

// ManifestPath returns the path of the orchestration manifest the controller
// checks before every command.
func (c *Controller) ManifestPath() string {
	return filepath.Join(c.projectDir, ManifestName)
}
