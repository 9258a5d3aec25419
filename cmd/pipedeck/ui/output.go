package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"pipedeck/internal/telemetry"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// TelemetryOutput turns an operation's span stream into terminal progress:
// a live checklist when the terminal is interactive, plain step lines
// otherwise. Commands create one per operation and Close it before printing
// their results.
type TelemetryOutput struct {
	provider *sdktrace.TracerProvider
	closeFn  func()
	once     sync.Once
}

// NewTelemetryOutput builds the renderer appropriate for the current
// interaction mode.
func NewTelemetryOutput() *TelemetryOutput {
	var report func(stepSnapshot)
	closeFn := func() {}

	if IsInteractive() {
		checklist := NewChecklist()
		report = checklist.OnSnapshot
		closeFn = checklist.Close
	} else {
		lines := newStepLines()
		report = lines.OnSnapshot
	}

	observer := newStepObserver(report)
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(&stepSpanProcessor{observer: observer}))
	return &TelemetryOutput{provider: provider, closeFn: closeFn}
}

// Tracer returns a tracer feeding this renderer.
func (o *TelemetryOutput) Tracer(name string) trace.Tracer {
	if o == nil || o.provider == nil {
		return otel.Tracer(name)
	}
	return o.provider.Tracer(name)
}

// Close flushes the provider and stops the renderer. Safe to call twice.
func (o *TelemetryOutput) Close() {
	if o == nil {
		return
	}
	o.once.Do(func() {
		if o.provider != nil {
			_ = o.provider.Shutdown(context.Background())
		}
		if o.closeFn != nil {
			o.closeFn()
		}
	})
}

// stepObserver folds span events into an ordered step snapshot. Steps appear
// in plan order; spans for unplanned steps are appended as they start.
type stepObserver struct {
	mu       sync.Mutex
	steps    map[string]stepState
	order    []string
	reporter func(stepSnapshot)
}

func newStepObserver(reporter func(stepSnapshot)) *stepObserver {
	return &stepObserver{
		steps:    make(map[string]stepState),
		order:    make([]string, 0, 4),
		reporter: reporter,
	}
}

func (o *stepObserver) onPlan(plan telemetry.Plan) {
	o.mu.Lock()
	defer o.mu.Unlock()

	for _, planned := range plan.Steps {
		id := strings.TrimSpace(planned.ID)
		if id == "" {
			continue
		}
		step, exists := o.steps[id]
		if !exists {
			o.order = append(o.order, id)
			step = stepState{ID: id, Status: stepPending}
		}
		step.Title = strings.TrimSpace(planned.Title)
		if step.Title == "" {
			step.Title = id
		}
		o.steps[id] = step
	}
	o.emitLocked()
}

func (o *stepObserver) onStepStart(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	step := o.ensureLocked(id)
	step.Status = stepRunning
	step.Message = ""
	o.steps[step.ID] = step
	o.emitLocked()
}

func (o *stepObserver) onStepEnd(id string, failed bool, message string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	step := o.ensureLocked(id)
	if failed {
		step.Status = stepFailed
		step.Message = strings.TrimSpace(message)
	} else {
		step.Status = stepDone
		step.Message = ""
	}
	o.steps[step.ID] = step
	o.emitLocked()
}

func (o *stepObserver) ensureLocked(id string) stepState {
	id = strings.TrimSpace(id)
	if id == "" {
		id = "unnamed"
	}
	if step, exists := o.steps[id]; exists {
		return step
	}
	o.order = append(o.order, id)
	return stepState{ID: id, Title: id, Status: stepPending}
}

func (o *stepObserver) emitLocked() {
	if o.reporter == nil {
		return
	}
	steps := make([]stepState, 0, len(o.order))
	for _, id := range o.order {
		if step, exists := o.steps[id]; exists {
			steps = append(steps, step)
		}
	}
	o.reporter(stepSnapshot{Steps: steps})
}

// stepLines prints each step transition once, for logs and CI output.
type stepLines struct {
	mu   sync.Mutex
	last map[string]string
}

func newStepLines() *stepLines {
	return &stepLines{last: make(map[string]string)}
}

func (l *stepLines) OnSnapshot(snapshot stepSnapshot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, step := range snapshot.Steps {
		if step.Status == stepPending {
			continue
		}
		line := formatStepLine(step)
		if l.last[step.ID] == line {
			continue
		}
		l.last[step.ID] = line
		fmt.Fprintln(os.Stderr, line)
	}
}

func formatStepLine(step stepState) string {
	prefix := "[..]"
	switch step.Status {
	case stepRunning:
		prefix = "[->]"
	case stepDone:
		prefix = "[ok]"
	case stepFailed:
		prefix = "[x]"
	}

	title := strings.TrimSpace(step.Title)
	if title == "" {
		title = strings.TrimSpace(step.ID)
	}
	if msg := strings.TrimSpace(step.Message); msg != "" {
		return fmt.Sprintf("  %s %s (%s)", prefix, title, msg)
	}
	return fmt.Sprintf("  %s %s", prefix, title)
}

// stepSpanProcessor maps the span stream onto observer events: the root span
// announces the plan through its attributes, child spans are steps.
type stepSpanProcessor struct {
	observer *stepObserver
}

func (p *stepSpanProcessor) OnStart(_ context.Context, span sdktrace.ReadWriteSpan) {
	if p == nil || p.observer == nil {
		return
	}
	if span.Parent().IsValid() {
		p.observer.onStepStart(span.Name())
		return
	}

	planJSON := attributeValue(span.Attributes(), telemetry.PlanJSONKey)
	if strings.TrimSpace(planJSON) == "" {
		return
	}
	var plan telemetry.Plan
	if err := json.Unmarshal([]byte(planJSON), &plan); err != nil {
		return
	}
	p.observer.onPlan(plan)
}

func (p *stepSpanProcessor) OnEnd(span sdktrace.ReadOnlySpan) {
	if p == nil || p.observer == nil {
		return
	}
	if !span.Parent().IsValid() {
		return
	}
	status := span.Status()
	p.observer.onStepEnd(span.Name(), status.Code == codes.Error, strings.TrimSpace(status.Description))
}

func (p *stepSpanProcessor) Shutdown(context.Context) error {
	return nil
}

func (p *stepSpanProcessor) ForceFlush(context.Context) error {
	return nil
}

func attributeValue(attrs []attribute.KeyValue, key string) string {
	for _, attr := range attrs {
		if string(attr.Key) == key {
			return attr.Value.AsString()
		}
	}
	return ""
}
