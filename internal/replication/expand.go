package replication

import (
	"context"
	"fmt"
)

// SourceCatalog lists the tables a source schema actually contains.
type SourceCatalog interface {
	Tables(ctx context.Context, schema string) ([]string, error)
}

type tableKey struct {
	schema string
	table  string
}

// ExpandWildcards replaces every schema.* stream with one entry per table
// the source catalog reports for that schema, carrying the wildcard's
// overrides onto each expanded entry. Tables already declared concretely
// keep their own entries. A new document is returned; the input is left
// untouched.
func ExpandWildcards(ctx context.Context, doc *Document, catalog SourceCatalog) (*Document, error) {
	ids := make([]Identifier, len(doc.Streams))
	declared := make(map[tableKey]bool, len(doc.Streams))
	for i := range doc.Streams {
		id, err := ParseIdentifier(doc.Streams[i].Name)
		if err != nil {
			return nil, err
		}
		ids[i] = id
		if !id.Wildcard() {
			declared[tableKey{id.Schema, id.Table}] = true
		}
	}

	out := &Document{
		Source:   doc.Source,
		Target:   doc.Target,
		Defaults: doc.Defaults,
		Env:      doc.Env,
	}

	for i := range doc.Streams {
		s, id := doc.Streams[i], ids[i]
		if !id.Wildcard() {
			out.Streams = append(out.Streams, s)
			continue
		}
		if id.Schema == "" {
			return nil, &IdentifierError{Name: s.Name, Msg: "wildcard streams need a schema qualifier"}
		}
		if s.SQL != nil {
			return nil, &SchemaError{
				Key:  s.Name,
				Line: s.line,
				Msg:  fmt.Sprintf("stream %q: sql is not allowed on a wildcard stream", s.Name),
			}
		}
		if s.Object != nil {
			return nil, &SchemaError{
				Key:  s.Name,
				Line: s.line,
				Msg:  fmt.Sprintf("stream %q: object is not allowed on a wildcard stream; use the defaults template", s.Name),
			}
		}

		tables, err := catalog.Tables(ctx, id.Schema)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", s.Name, err)
		}
		for _, table := range tables {
			if declared[tableKey{id.Schema, table}] {
				continue
			}
			exp := s
			exp.Name = Identifier{Database: id.Database, Schema: id.Schema, Table: table}.String()
			out.Streams = append(out.Streams, exp)
		}
	}

	return out, nil
}
