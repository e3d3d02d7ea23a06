// Package diag defines the severity and sink vocabulary shared by every
// layer of ged7: the tag parser, the schema lookup, and the typed dataset
// validator all report through the same Diagnostic shape, following the
// teacher's decoder.Diagnostic/Severity split between parse-phase and
// entity-phase issues (decoder/diagnostics.go), generalized with a Locator
// sum type so a single diagnostic can carry either a tag-layer line number
// or a typed-layer type URI.
package diag

import (
	"fmt"
	"strings"
)

// Severity classifies a Diagnostic per spec §7: Fatal aborts the call,
// Error normalizes the offending node and continues, Warning changes no
// state.
type Severity int

const (
	// Warning indicates a stylistic or compatibility issue.
	Warning Severity = iota
	// Error indicates a well-formedness or validity failure.
	Error
	// Fatal indicates a grammar failure that prevents further parsing.
	Fatal
)

// String returns the human-readable severity name.
func (s Severity) String() string {
	switch s {
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	case Fatal:
		return "FATAL"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(s))
	}
}

// Locator pinpoints where a diagnostic originated: a 1-based tag-layer line
// number, or a typed-layer type URI (optionally with the child URI under
// consideration). Exactly one of Line or TypeURI is meaningful; IsLine
// reports which.
type Locator struct {
	Line     int
	TypeURI  string
	ChildURI string
	isLine   bool
}

// AtLine builds a tag-layer locator.
func AtLine(line int) Locator { return Locator{Line: line, isLine: true} }

// AtType builds a typed-layer locator naming the structure's own type URI.
func AtType(uri string) Locator { return Locator{TypeURI: uri} }

// AtChild builds a typed-layer locator naming both a container's type URI
// and the child type URI under consideration, for cardinality/prohibited
// diagnostics that are about a specific (container, child) pair.
func AtChild(containerURI, childURI string) Locator {
	return Locator{TypeURI: containerURI, ChildURI: childURI}
}

// IsLine reports whether this locator carries a tag-layer line number.
func (l Locator) IsLine() bool { return l.isLine }

func (l Locator) String() string {
	if l.isLine {
		return fmt.Sprintf("line %d", l.Line)
	}
	if l.ChildURI != "" {
		return fmt.Sprintf("%s > %s", l.TypeURI, l.ChildURI)
	}
	return l.TypeURI
}

// Sinker is the minimal warn/err surface a leaf package (e.g. datatype)
// needs to report diagnostics without depending on the concrete Sink
// type, so both a bare Sink and a PrefixedSink can be passed
// interchangeably.
type Sinker interface {
	Warn(loc Locator, msg string)
	Err(loc Locator, msg string)
}

// Diagnostic is a single issue surfaced while parsing, resolving, or
// validating GEDCOM data.
type Diagnostic struct {
	Severity Severity
	Locator  Locator
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s: %s", d.Severity, d.Locator, d.Message)
}

// Error implements the error interface so a Diagnostic can be returned
// directly for Fatal cases.
func (d Diagnostic) Error() string { return d.String() }

// Sink collects diagnostics emitted during a single parse/resolve/validate
// call, deduplicating by message content within one Locator as spec §4.4 and
// §5 require ("deduplicated incidents are emitted at first occurrence").
// The zero value is ready to use.
type Sink struct {
	items []Diagnostic
	seen  map[string]struct{}
}

// NewSink returns a ready-to-use Sink.
func NewSink() *Sink { return &Sink{seen: make(map[string]struct{})} }

func (s *Sink) dedupeKey(loc Locator, msg string) string {
	return loc.String() + "\x00" + msg
}

func (s *Sink) emit(sev Severity, loc Locator, msg string) {
	if s == nil {
		return
	}
	if s.seen == nil {
		s.seen = make(map[string]struct{})
	}
	key := s.dedupeKey(loc, msg)
	if _, ok := s.seen[key]; ok {
		return
	}
	s.seen[key] = struct{}{}
	s.items = append(s.items, Diagnostic{Severity: sev, Locator: loc, Message: msg})
}

// Warn records a warning-severity diagnostic.
func (s *Sink) Warn(loc Locator, msg string) { s.emit(Warning, loc, msg) }

// Err records an error-severity diagnostic.
func (s *Sink) Err(loc Locator, msg string) { s.emit(Error, loc, msg) }

// Fatal records a fatal-severity diagnostic.
func (s *Sink) Fatal(loc Locator, msg string) { s.emit(Fatal, loc, msg) }

// All returns every collected diagnostic in document order of first
// occurrence.
func (s *Sink) All() []Diagnostic {
	if s == nil {
		return nil
	}
	return s.items
}

// Errors returns only Error and Fatal severity diagnostics.
func (s *Sink) Errors() []Diagnostic {
	if s == nil {
		return nil
	}
	var out []Diagnostic
	for _, d := range s.items {
		if d.Severity != Warning {
			out = append(out, d)
		}
	}
	return out
}

// Warnings returns only Warning severity diagnostics.
func (s *Sink) Warnings() []Diagnostic {
	if s == nil {
		return nil
	}
	var out []Diagnostic
	for _, d := range s.items {
		if d.Severity == Warning {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether any Error or Fatal diagnostic was recorded.
func (s *Sink) HasErrors() bool {
	if s == nil {
		return false
	}
	for _, d := range s.items {
		if d.Severity != Warning {
			return true
		}
	}
	return false
}

// Count returns the total number of distinct diagnostics recorded.
func (s *Sink) Count() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// String renders every diagnostic, one per line.
func (s *Sink) String() string {
	if s == nil || len(s.items) == 0 {
		return "no diagnostics"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d diagnostic(s):\n", len(s.items))
	for _, d := range s.items {
		b.WriteString("  ")
		b.WriteString(d.String())
		b.WriteString("\n")
	}
	return b.String()
}

// Prefixed returns a Sink-compatible pair of warn/err functions that prefix
// every message with the given string before delegating to s. This replaces
// the teacher's module-level mutation for contextual prefixes (spec §9
// Design Notes: "Prefer threading a small diagnostics context value
// explicitly through parser calls") with an explicit wrapper value.
func (s *Sink) Prefixed(prefix string) *PrefixedSink {
	return &PrefixedSink{sink: s, prefix: prefix}
}

// PrefixedSink wraps a Sink so every emitted message is prefixed, used while
// parsing a child's payload so diagnostics read "<type URI>: message" as
// spec §4.5 requires ("the lookup's error sink is transiently wrapped to
// prefix messages with the target type URI").
type PrefixedSink struct {
	sink   *Sink
	prefix string
}

func (p *PrefixedSink) Warn(loc Locator, msg string) { p.sink.Warn(loc, p.prefix+": "+msg) }
func (p *PrefixedSink) Err(loc Locator, msg string)  { p.sink.Err(loc, p.prefix+": "+msg) }
