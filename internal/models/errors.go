package models

import "fmt"

// SourceLocation represents a position in a source file
type SourceLocation struct {
	File   string // file path
	Line   int    // line number (1-based)
	Column int    // column number (1-based)
}

// String returns a formatted string representation of the location
func (s SourceLocation) String() string {
	if s.File == "" {
		return "unknown location"
	}
	if s.Line == 0 {
		return s.File
	}
	if s.Column == 0 {
		return fmt.Sprintf("%s:%d", s.File, s.Line)
	}
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

// IsEmpty returns true if the location has no useful information
func (s SourceLocation) IsEmpty() bool {
	return s.File == ""
}

// Severity is the severity of a reported diagnostic
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// String returns the lowercase severity name
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Diagnostic is a problem found while reading or merging declarations.
// Diagnostics are collected and reported, never returned as errors.
type Diagnostic struct {
	Severity Severity
	Location SourceLocation
	Message  string
}

// String formats the diagnostic as "<location>: <severity>: <message>"
func (d Diagnostic) String() string {
	if d.Location.IsEmpty() {
		return fmt.Sprintf("%s: %s", d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s: %s", d.Location, d.Severity, d.Message)
}

// Warningf creates a warning diagnostic at the given location
func Warningf(loc SourceLocation, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Location: loc, Message: fmt.Sprintf(format, args...)}
}

// Errorf creates an error diagnostic at the given location
func Errorf(loc SourceLocation, format string, args ...interface{}) Diagnostic {
	return Diagnostic{Severity: SeverityError, Location: loc, Message: fmt.Sprintf(format, args...)}
}
