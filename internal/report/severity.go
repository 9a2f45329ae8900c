// Package report evaluates a metrics snapshot against configured
// thresholds and composes the resulting server status report.
package report

// Severity is the ordered tri-state classification of a metric or of the
// whole report: OK < Warning < Error.
type Severity int

const (
	OK Severity = iota
	Warning
	Error
)

// Severity icons rendered before non-OK lines and the heading.
const (
	warningIcon = "⚠️"
	errorIcon   = "🚨"
)

func (s Severity) String() string {
	switch s {
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return "OK"
	}
}

// Icon returns the marker for a severity, empty for OK.
func (s Severity) Icon() string {
	switch s {
	case Warning:
		return warningIcon
	case Error:
		return errorIcon
	default:
		return ""
	}
}

// Level returns the matching message level key used for frequencies and
// recipient lists.
func (s Severity) Level() string {
	switch s {
	case Warning:
		return "warning"
	case Error:
		return "error"
	default:
		return "info"
	}
}
