package entry

import "fmt"

// Kind classifies the condition an entry reports.
type Kind uint8

// Kinds, in wire order.
const (
	KindOK Kind = iota
	KindInfo
	KindWarning
	KindError
	KindPanic

	kindCount
)

// Severity grades the importance of an entry. It is orthogonal to Kind;
// neither is derived from the other.
type Severity uint8

// Severities, in wire order.
const (
	SeverityNone Severity = iota
	SeverityLow
	SeverityMid
	SeverityHigh

	severityCount
)

// Name tables are sized by the enum counts so a new variant shows up as an
// empty name in tests instead of silently stringifying.
var kindNames = [kindCount]string{
	KindOK:      "OK",
	KindInfo:    "INFO",
	KindWarning: "WARNING",
	KindError:   "ERROR",
	KindPanic:   "PANIC",
}

var severityNames = [severityCount]string{
	SeverityNone: "NONE",
	SeverityLow:  "LOW",
	SeverityMid:  "MID",
	SeverityHigh: "HIGH",
}

var kindByName = func() map[string]Kind {
	m := make(map[string]Kind, kindCount)
	for k, name := range kindNames {
		m[name] = Kind(k)
	}
	return m
}()

var severityByName = func() map[string]Severity {
	m := make(map[string]Severity, severityCount)
	for s, name := range severityNames {
		m[name] = Severity(s)
	}
	return m
}()

// String returns the wire name of the kind.
func (k Kind) String() string {
	if k < kindCount {
		return kindNames[k]
	}
	return "UNKNOWN"
}

// String returns the wire name of the severity.
func (s Severity) String() string {
	if s < severityCount {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// ParseKind maps a wire name back to its Kind.
func ParseKind(name string) (Kind, error) {
	if k, ok := kindByName[name]; ok {
		return k, nil
	}
	return 0, fmt.Errorf("entry: unknown kind %q", name)
}

// ParseSeverity maps a wire name back to its Severity.
func ParseSeverity(name string) (Severity, error) {
	if s, ok := severityByName[name]; ok {
		return s, nil
	}
	return 0, fmt.Errorf("entry: unknown severity %q", name)
}

// Entry is one immutable log event.
//
// Timestamp is a monotonic clock reading in microseconds, comparable only
// within one process run. Seq is strictly increasing and gapless per Logger
// instance, starting at 1; it is not unique across instances or processes.
// ActivityID and ParentID are opaque grouping identifiers; zero means unset.
type Entry struct {
	Kind       Kind
	Severity   Severity
	Timestamp  uint64
	ActivityID uint64
	Seq        uint64
	ParentID   uint64
	Message    string
}
