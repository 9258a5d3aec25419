// Package telemetry shapes console operations as OTel spans: one root span
// per user action carrying a machine-readable plan of its steps, one child
// span per executed step. Renderers subscribe to the span stream to show
// live progress without the operation knowing how it is displayed.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// PlanJSONKey holds the serialized plan on the operation's root span.
	PlanJSONKey = "pipedeck.plan.json"
	// PlanVersionKey tags the plan encoding so renderers can evolve.
	PlanVersionKey = "pipedeck.plan.version"
	// PlanVersion is the current plan encoding.
	PlanVersion = "1"
)

// PlannedStep announces one step before any work runs. Plans are flat: steps
// execute in order and each maps to exactly one child span named by its ID.
type PlannedStep struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Plan is the ordered list of steps an operation intends to run.
type Plan struct {
	Steps []PlannedStep `json:"steps"`
}

// Operation is one in-flight user action. Created by Begin, closed by End.
type Operation struct {
	ctx    context.Context
	tracer trace.Tracer
	span   trace.Span
}

// Begin opens the operation's root span with the plan attached, so renderers
// can draw the full step list before the first step starts.
func Begin(ctx context.Context, tracer trace.Tracer, name string, plan Plan) (*Operation, error) {
	if tracer == nil {
		return nil, fmt.Errorf("begin operation: tracer is required")
	}
	if err := validatePlan(plan); err != nil {
		return nil, fmt.Errorf("begin operation: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = "operation"
	}

	planJSON, err := json.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("begin operation: marshal plan: %w", err)
	}

	spanCtx, span := tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String(PlanVersionKey, PlanVersion),
		attribute.String(PlanJSONKey, string(planJSON)),
	))
	return &Operation{ctx: spanCtx, tracer: tracer, span: span}, nil
}

// Context returns the context carrying the operation's root span.
func (o *Operation) Context() context.Context {
	if o == nil || o.ctx == nil {
		return context.Background()
	}
	return o.ctx
}

// RunStep executes fn under a child span named id. The step's error marks
// the span and is returned unchanged; a nil Operation just runs fn.
func (o *Operation) RunStep(id string, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("run step: step id is required")
	}
	if o == nil || o.tracer == nil {
		return fn(context.Background())
	}

	stepCtx, span := o.tracer.Start(o.ctx, id)
	defer span.End()

	if err := fn(stepCtx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, strings.TrimSpace(err.Error()))
		return err
	}
	return nil
}

// End closes the operation's root span, marking it failed when err is set.
func (o *Operation) End(err error) {
	if o == nil || o.span == nil {
		return
	}
	if err != nil {
		o.span.RecordError(err)
		o.span.SetStatus(codes.Error, strings.TrimSpace(err.Error()))
	}
	o.span.End()
}

func validatePlan(plan Plan) error {
	if len(plan.Steps) == 0 {
		return fmt.Errorf("plan has no steps")
	}
	seen := make(map[string]struct{}, len(plan.Steps))
	for i, step := range plan.Steps {
		id := strings.TrimSpace(step.ID)
		if id == "" {
			return fmt.Errorf("step %d has empty id", i)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("duplicate step id %q", id)
		}
		seen[id] = struct{}{}
	}
	return nil
}
