package replication

import (
	"fmt"

	"github.com/xwb1989/sqlparser"
)

// LintSQL parses every literal sql block in the document and rejects
// anything that is not a plain select. The parser speaks a generic
// dialect, so engine-specific syntax may not pass; lint runs on the
// validate path with an opt-out and is never part of resolution.
func LintSQL(doc *Document) error {
	for i := range doc.Streams {
		s := &doc.Streams[i]
		if s.SQL == nil {
			continue
		}
		stmt, err := sqlparser.Parse(*s.SQL)
		if err != nil {
			return &SchemaError{
				Key:  s.Name,
				Line: s.line,
				Msg:  fmt.Sprintf("stream %q: sql does not parse: %v", s.Name, err),
			}
		}
		switch stmt.(type) {
		case *sqlparser.Select, *sqlparser.Union:
		default:
			return &SchemaError{
				Key:  s.Name,
				Line: s.line,
				Msg:  fmt.Sprintf("stream %q: sql must be a select statement", s.Name),
			}
		}
	}
	return nil
}
