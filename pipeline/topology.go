package pipeline

import (
	"fmt"
	"strings"

	"pipedeck"
)

// Topology is the ordered set of pipeline stages. The chain is strictly
// linear: declaration order is flow order, and every stage except the last
// feeds the one after it.
type Topology struct {
	stages []pipedeck.Stage
	index  map[string]int
}

// NewTopology validates ordered stages and builds a topology. Stage IDs must
// be non-blank and unique.
func NewTopology(stages ...pipedeck.Stage) (*Topology, error) {
	if len(stages) == 0 {
		return nil, fmt.Errorf("topology needs at least one stage")
	}
	index := make(map[string]int, len(stages))
	for i, s := range stages {
		if strings.TrimSpace(s.ID) == "" {
			return nil, fmt.Errorf("stage %d has a blank identifier", i)
		}
		if _, dup := index[s.ID]; dup {
			return nil, fmt.Errorf("duplicate stage identifier %q", s.ID)
		}
		index[s.ID] = i
	}
	owned := make([]pipedeck.Stage, len(stages))
	copy(owned, stages)
	return &Topology{stages: owned, index: index}, nil
}

var defaultStages = []pipedeck.Stage{
	{
		ID:          "dataingestion-service",
		Label:       "Data Ingestion",
		Description: "Collects data from product analytics sources and APIs, preparing it for downstream processing.",
	},
	{
		ID:          "datadeduplication-service",
		Label:       "Data Deduplication",
		Description: "Removes duplicate records to ensure unique, high-quality data assets.",
	},
	{
		ID:          "dataquality-service",
		Label:       "Data Quality",
		Description: "Validates schema, completeness, and accuracy rules before persistence.",
	},
	{
		ID:          "datalineage-service",
		Label:       "Data Lineage",
		Description: "Captures lineage metadata so teams can trace transformations across the pipeline.",
	},
}

// Default returns the built-in four-stage data platform topology.
func Default() *Topology {
	t, err := NewTopology(defaultStages...)
	if err != nil {
		panic("pipeline: default topology: " + err.Error())
	}
	return t
}

// Stages returns the stages in flow order.
func (t *Topology) Stages() []pipedeck.Stage {
	out := make([]pipedeck.Stage, len(t.stages))
	copy(out, t.stages)
	return out
}

// Edges returns the directed hops between consecutive stages. A topology of
// n stages always has n-1 edges.
func (t *Topology) Edges() []pipedeck.Edge {
	if len(t.stages) < 2 {
		return nil
	}
	out := make([]pipedeck.Edge, 0, len(t.stages)-1)
	for i := 0; i < len(t.stages)-1; i++ {
		out = append(out, pipedeck.Edge{From: t.stages[i].ID, To: t.stages[i+1].ID})
	}
	return out
}

// Lookup returns the stage with the given ID.
func (t *Topology) Lookup(stageID string) (pipedeck.Stage, bool) {
	i, ok := t.index[stageID]
	if !ok {
		return pipedeck.Stage{}, false
	}
	return t.stages[i], true
}

// Contains reports whether the topology has a stage with the given ID.
func (t *Topology) Contains(stageID string) bool {
	_, ok := t.index[stageID]
	return ok
}

// Len returns the number of stages.
func (t *Topology) Len() int {
	return len(t.stages)
}
