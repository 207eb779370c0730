package domain

import "fmt"

// Severity ranks a diagnostic.
type Severity int

const (
	// SeverityNote is informational.
	SeverityNote Severity = iota
	// SeverityWarning never stops planning.
	SeverityWarning
	// SeverityError aborts the affected target.
	SeverityError
)

// String returns the lower-case name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "note"
	}
}

// Diagnostic is a structured message attributed to a target and project.
type Diagnostic struct {
	Severity Severity
	Message  string
	Target   TargetRef
}

// String renders the diagnostic the way it is printed to users.
func (d Diagnostic) String() string {
	if d.Target == (TargetRef{}) {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s (in target '%s' from project '%s')", d.Severity, d.Message, d.Target.Name, d.Target.Project)
}

// Warningf builds a warning attributed to target.
func Warningf(target TargetRef, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...), Target: target}
}

// Errorf builds an error diagnostic attributed to target.
func Errorf(target TargetRef, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityError, Message: fmt.Sprintf(format, args...), Target: target}
}

// Notef builds a note attributed to target.
func Notef(target TargetRef, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityNote, Message: fmt.Sprintf(format, args...), Target: target}
}
