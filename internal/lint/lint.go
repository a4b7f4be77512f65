// Package lint is an in-memory static-analysis engine. It is a pure function
// of (virtual filename, source text): the filename only selects a language
// profile, nothing is ever read from disk or the network.
package lint

// Severity is the collapsed two-bucket severity exposed to callers. The
// engine's native levels (info/warning/error/fatal) are mapped before a
// finding leaves this package; fatal collapses into ERROR.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Finding is one raw engine output record for a single file.
type Finding struct {
	Line     int
	Column   int
	RuleID   string
	Severity Severity
	Message  string
}

// level is the engine-native severity of a rule.
type level int

const (
	levelInfo level = iota
	levelWarning
	levelError
	levelFatal
)

func (l level) collapse() Severity {
	switch l {
	case levelError, levelFatal:
		return SeverityError
	default:
		return SeverityWarning
	}
}
