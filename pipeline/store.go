package pipeline

import (
	"sync"

	"pipedeck"
)

// StatusStore holds the latest start outcome and log snapshot per stage.
// It lives in process memory only and resets with the process; the console
// reports what happened this session, not durable service state.
//
// The controller is the single writer. Reads return copies, so callers can
// hold a snapshot across renders without racing later writes.
type StatusStore struct {
	mu      sync.RWMutex
	entries map[string]statusEntry
}

type statusEntry struct {
	outcome *pipedeck.StartOutcome
	logs    *pipedeck.LogSnapshot
}

// NewStatusStore returns an empty store.
func NewStatusStore() *StatusStore {
	return &StatusStore{entries: make(map[string]statusEntry)}
}

// RecordOutcome stores the latest start outcome for a stage. Any log
// snapshot from an earlier attempt is dropped with it: logs describe one
// attempt, and this write begins a new one. Replaying the same outcome is
// idempotent; the newest write always wins whole.
func (s *StatusStore) RecordOutcome(stageID string, outcome pipedeck.StartOutcome) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[stageID] = statusEntry{outcome: &outcome}
}

// RecordLog attaches a log snapshot to the stage's current attempt. The
// write is dropped when no outcome is recorded or the latest one failed:
// a snapshot may only exist for a successfully started stage.
func (s *StatusStore) RecordLog(stageID string, snap pipedeck.LogSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[stageID]
	if !ok || e.outcome == nil || !e.outcome.Succeeded {
		return
	}
	e.logs = &snap
	s.entries[stageID] = e
}

// Read returns the recorded state for one stage. Both members are nil when
// the stage has not been started this session.
func (s *StatusStore) Read(stageID string) pipedeck.StageStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[stageID].view()
}

// Snapshot returns the whole store keyed by stage ID. Stages never started
// are absent.
func (s *StatusStore) Snapshot() map[string]pipedeck.StageStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]pipedeck.StageStatus, len(s.entries))
	for id, e := range s.entries {
		out[id] = e.view()
	}
	return out
}

// Len returns how many stages have recorded state.
func (s *StatusStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (e statusEntry) view() pipedeck.StageStatus {
	var st pipedeck.StageStatus
	if e.outcome != nil {
		o := *e.outcome
		st.Outcome = &o
	}
	if e.logs != nil {
		l := *e.logs
		st.Logs = &l
	}
	return st
}
