package pipedeck

// Stage is one service in the pipeline. ID doubles as the compose service
// name the orchestration CLI targets; Label is what people see.
type Stage struct {
	ID          string
	Label       string
	Description string
}

// Edge is one directed hop in the pipeline's data flow.
type Edge struct {
	From string // stage ID producing the data
	To   string // stage ID consuming it
}
