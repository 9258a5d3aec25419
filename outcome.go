package pipedeck

import "time"

// NoLogsMessage is what a log snapshot carries when the fetch worked but the
// service has produced no output yet.
const NoLogsMessage = "no logs available"

// StartOutcome records one start attempt for a stage. The status store keeps
// the latest one per stage; a retry replaces the whole record.
type StartOutcome struct {
	Succeeded bool
	Message   string // one-line summary for lists and activity feeds
	Details   string // command transcript on success, diagnostic trail on failure
	At        time.Time
}

// LogSnapshot is a bounded capture of a stage's recent log output. Available
// stays true when the fetch worked but both streams were empty; Text then
// holds NoLogsMessage.
type LogSnapshot struct {
	Available bool
	Text      string
	At        time.Time
}

// StageStatus is the read view of one stage's recorded state. Nil members
// mean nothing has been recorded this session.
type StageStatus struct {
	Outcome *StartOutcome
	Logs    *LogSnapshot
}
