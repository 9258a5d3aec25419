package ui

type stepStatus string

const (
	stepPending stepStatus = "pending"
	stepRunning stepStatus = "running"
	stepDone    stepStatus = "done"
	stepFailed  stepStatus = "failed"
)

// stepState is one row of an operation's progress. Plans are flat, so there
// is no nesting to track; steps render in plan order.
type stepState struct {
	ID      string
	Title   string
	Status  stepStatus
	Message string
}

type stepSnapshot struct {
	Steps []stepState
}
