package replication

import "fmt"

// SchemaError reports a structural problem with a replication document:
// unknown or duplicate keys, values of the wrong kind, bad toggle values.
type SchemaError struct {
	Key  string
	Line int
	Msg  string
}

func (e *SchemaError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("replication config: line %d: %s", e.Line, e.Msg)
	}
	return fmt.Sprintf("replication config: %s", e.Msg)
}

// IdentifierError reports a stream name that cannot be parsed as a
// qualified identifier, or one that is not usable where it appears
// (wildcards at resolve time, schema-less names in templates).
type IdentifierError struct {
	Name string
	Msg  string
}

func (e *IdentifierError) Error() string {
	return fmt.Sprintf("invalid stream identifier %q: %s", e.Name, e.Msg)
}

// AmbiguousDestinationError reports a stream whose destination object
// cannot be determined from the entry, the defaults template, or the
// stream name.
type AmbiguousDestinationError struct {
	Stream string
	Msg    string
}

func (e *AmbiguousDestinationError) Error() string {
	return fmt.Sprintf("stream %q: ambiguous destination: %s", e.Stream, e.Msg)
}

// DuplicateStreamError reports a stream key declared more than once.
type DuplicateStreamError struct {
	Stream    string
	Line      int
	FirstLine int
}

func (e *DuplicateStreamError) Error() string {
	return fmt.Sprintf(
		"stream %q redeclared on line %d (first declared on line %d)",
		e.Stream, e.Line, e.FirstLine,
	)
}
