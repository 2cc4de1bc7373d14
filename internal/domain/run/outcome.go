package run

// Outcome is the single result of a maintenance run.
type Outcome string

const (
	// SuccessNoop means the run ended early without anything to do.
	SuccessNoop Outcome = "success-noop"
	// Success means an upgrade was installed.
	Success Outcome = "success"
	// Failure means a fatal step failed.
	Failure Outcome = "failure"
)

// Outcomes lists every outcome.
func Outcomes() []Outcome {
	return []Outcome{SuccessNoop, Success, Failure}
}

// ExitCode maps the outcome to the process exit status.
func (o Outcome) ExitCode() int {
	if o == Failure {
		return 1
	}

	return 0
}
