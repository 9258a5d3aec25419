package pipeline

import (
	"testing"
	"time"

	"pipedeck"
)

func TestStatusStore_ReadAbsentStage(t *testing.T) {
	s := NewStatusStore()

	st := s.Read("ingest")
	if st.Outcome != nil || st.Logs != nil {
		t.Fatalf("Read of absent stage = %+v, want empty status", st)
	}
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
}

func TestStatusStore_LatestOutcomeWins(t *testing.T) {
	s := NewStatusStore()

	s.RecordOutcome("ingest", pipedeck.StartOutcome{Succeeded: true, Message: "first"})
	s.RecordOutcome("ingest", pipedeck.StartOutcome{Succeeded: false, Message: "second"})

	st := s.Read("ingest")
	if st.Outcome == nil || st.Outcome.Message != "second" {
		t.Fatalf("outcome = %+v, want the second write", st.Outcome)
	}
	if st.Outcome.Succeeded {
		t.Fatal("outcome should reflect the latest (failed) attempt")
	}
}

func TestStatusStore_RecordOutcomeIsIdempotent(t *testing.T) {
	s := NewStatusStore()
	outcome := pipedeck.StartOutcome{Succeeded: true, Message: "started", At: time.Unix(100, 0)}

	s.RecordOutcome("ingest", outcome)
	s.RecordOutcome("ingest", outcome)

	st := s.Read("ingest")
	if st.Outcome == nil || *st.Outcome != outcome {
		t.Fatalf("outcome = %+v, want %+v", st.Outcome, outcome)
	}
	if s.Len() != 1 {
		t.Fatalf("Len = %d, want 1", s.Len())
	}
}

func TestStatusStore_RecordLogRequiresSuccessfulOutcome(t *testing.T) {
	s := NewStatusStore()
	snap := pipedeck.LogSnapshot{Available: true, Text: "line1"}

	s.RecordLog("ingest", snap)
	if st := s.Read("ingest"); st.Logs != nil {
		t.Fatal("log write without any outcome should be dropped")
	}

	s.RecordOutcome("ingest", pipedeck.StartOutcome{Succeeded: false, Message: "failed"})
	s.RecordLog("ingest", snap)
	if st := s.Read("ingest"); st.Logs != nil {
		t.Fatal("log write after a failed outcome should be dropped")
	}

	s.RecordOutcome("ingest", pipedeck.StartOutcome{Succeeded: true, Message: "started"})
	s.RecordLog("ingest", snap)
	st := s.Read("ingest")
	if st.Logs == nil || st.Logs.Text != "line1" {
		t.Fatalf("logs = %+v, want the recorded snapshot", st.Logs)
	}
}

func TestStatusStore_NewOutcomeDropsOldLogs(t *testing.T) {
	s := NewStatusStore()

	s.RecordOutcome("ingest", pipedeck.StartOutcome{Succeeded: true})
	s.RecordLog("ingest", pipedeck.LogSnapshot{Available: true, Text: "old logs"})

	s.RecordOutcome("ingest", pipedeck.StartOutcome{Succeeded: false, Message: "retry failed"})

	st := s.Read("ingest")
	if st.Logs != nil {
		t.Fatalf("logs = %+v, want nil after a failed retry", st.Logs)
	}
	if st.Outcome == nil || st.Outcome.Succeeded {
		t.Fatalf("outcome = %+v, want the failed retry", st.Outcome)
	}
}

func TestStatusStore_StagesAreIndependent(t *testing.T) {
	s := NewStatusStore()

	s.RecordOutcome("ingest", pipedeck.StartOutcome{Succeeded: true, Message: "a"})
	s.RecordOutcome("dedupe", pipedeck.StartOutcome{Succeeded: false, Message: "b"})
	s.RecordLog("ingest", pipedeck.LogSnapshot{Available: true, Text: "ingest logs"})

	if st := s.Read("dedupe"); st.Logs != nil {
		t.Fatal("dedupe should have no logs")
	}
	if st := s.Read("ingest"); st.Logs == nil {
		t.Fatal("ingest logs should survive writes to other stages")
	}

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot size = %d, want 2", len(snap))
	}
}

func TestStatusStore_SnapshotIsDetached(t *testing.T) {
	s := NewStatusStore()
	s.RecordOutcome("ingest", pipedeck.StartOutcome{Succeeded: true, Message: "started"})

	snap := s.Snapshot()
	snap["ingest"].Outcome.Message = "mutated"

	if got := s.Read("ingest").Outcome.Message; got != "started" {
		t.Fatalf("message = %q, snapshot mutation leaked into the store", got)
	}
}
