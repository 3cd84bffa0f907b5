package domain

import "fmt"

// Severity of a pipeline diagnostic
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Stage names a pipeline step that emitted a diagnostic
type Stage string

const (
	StageLoad      Stage = "load"
	StageClean     Stage = "clean"
	StageAggregate Stage = "aggregate"
	StagePresent   Stage = "present"
)

// Diagnostic is an observation made while processing. Stages return them
// instead of printing; the caller decides how to surface them.
type Diagnostic struct {
	Stage    Stage    `json:"stage"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	// Count carries the row count the message refers to, when there is one
	Count int `json:"count,omitempty"`
}

// String formats the diagnostic for display
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Stage, d.Message)
}

// Infof builds an informational diagnostic
func Infof(stage Stage, format string, args ...any) Diagnostic {
	return Diagnostic{Stage: stage, Severity: SeverityInfo, Message: fmt.Sprintf(format, args...)}
}

// Warnf builds a warning diagnostic
func Warnf(stage Stage, format string, args ...any) Diagnostic {
	return Diagnostic{Stage: stage, Severity: SeverityWarning, Message: fmt.Sprintf(format, args...)}
}

// Errorf builds an error diagnostic
func Errorf(stage Stage, format string, args ...any) Diagnostic {
	return Diagnostic{Stage: stage, Severity: SeverityError, Message: fmt.Sprintf(format, args...)}
}
