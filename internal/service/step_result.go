package service

// StepStatus is the outcome of one step of a multi-step operation.
type StepStatus string

const (
	StepOK       StepStatus = "ok"
	StepDegraded StepStatus = "degraded"
	StepFatal    StepStatus = "fatal"
)

// StepResult makes the difference between "continue anyway" and "abort"
// explicit. Best-effort steps only ever produce OK or Degraded.
type StepResult struct {
	Status StepStatus
	Reason string
	Err    error
}

func OK() StepResult { return StepResult{Status: StepOK} }

func Degraded(reason string, err error) StepResult {
	return StepResult{Status: StepDegraded, Reason: reason, Err: err}
}

func Fatal(err error) StepResult {
	return StepResult{Status: StepFatal, Reason: err.Error(), Err: err}
}

func (r StepResult) IsOK() bool       { return r.Status == StepOK }
func (r StepResult) IsDegraded() bool { return r.Status == StepDegraded }
func (r StepResult) IsFatal() bool    { return r.Status == StepFatal }
