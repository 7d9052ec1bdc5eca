package replication

import (
	"fmt"
	"regexp"
	"strings"
)

// Placeholders understood inside a destination object template.
const (
	placeholderSchema = "{stream_schema}"
	placeholderTable  = "{stream_table}"
	placeholderName   = "{stream_name}"
)

var templatePlaceholder = regexp.MustCompile(`\{[^{}]*\}`)

// ResolvedStream is one stream after defaults, the object template, and
// env toggles have been applied. It carries everything an engine needs to
// move the stream, with no further lookups into the document.
type ResolvedStream struct {
	Name   string `json:"name" yaml:"name"`
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`
	Table  string `json:"table,omitempty" yaml:"table,omitempty"`

	Object     string   `json:"object" yaml:"object"`
	Mode       Mode     `json:"mode" yaml:"mode"`
	PrimaryKey []string `json:"primary_key,omitempty" yaml:"primary_key,omitempty"`
	UpdateKey  string   `json:"update_key,omitempty" yaml:"update_key,omitempty"`
	SQL        string   `json:"sql,omitempty" yaml:"sql,omitempty"`
	Disabled   bool     `json:"disabled" yaml:"disabled"`

	SourceOptions map[string]any `json:"source_options,omitempty" yaml:"source_options,omitempty"`
	Meta          map[string]any `json:"meta,omitempty" yaml:"meta,omitempty"`

	Columns ColumnPolicy `json:"columns" yaml:"columns"`
}

// Resolution is the output of Resolve: every stream in declaration order,
// disabled ones included so the result is a faithful audit of the document.
type Resolution struct {
	Source  string            `json:"source" yaml:"source"`
	Target  string            `json:"target" yaml:"target"`
	Streams []ResolvedStream  `json:"streams" yaml:"streams"`
	Columns ColumnPolicy      `json:"columns" yaml:"columns"`
	Env     map[string]string `json:"env,omitempty" yaml:"env,omitempty"`
}

// Enabled returns the streams an engine should actually run, in order.
func (r *Resolution) Enabled() []ResolvedStream {
	out := make([]ResolvedStream, 0, len(r.Streams))
	for _, s := range r.Streams {
		if !s.Disabled {
			out = append(out, s)
		}
	}
	return out
}

// Stream returns the resolved stream with the given name.
func (r *Resolution) Stream(name string) (ResolvedStream, bool) {
	for _, s := range r.Streams {
		if s.Name == name {
			return s, true
		}
	}
	return ResolvedStream{}, false
}

// Resolve applies defaults, the object template, and env toggles to every
// stream in the document. It resolves the whole document or returns the
// first error; a partially resolved result is never produced, and the
// document itself is never modified.
func Resolve(doc *Document) (*Resolution, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil replication document")
	}
	if doc.Source == "" {
		return nil, &SchemaError{Key: "source", Msg: "source is required"}
	}
	if doc.Target == "" {
		return nil, &SchemaError{Key: "target", Msg: "target is required"}
	}

	columns, err := columnPolicy(doc.Env)
	if err != nil {
		return nil, err
	}

	res := &Resolution{
		Source:  doc.Source,
		Target:  doc.Target,
		Streams: make([]ResolvedStream, 0, len(doc.Streams)),
		Columns: columns,
	}
	if len(doc.Env) > 0 {
		res.Env = make(map[string]string, len(doc.Env))
		for k, v := range doc.Env {
			res.Env[k] = v
		}
	}

	for i := range doc.Streams {
		rs, err := resolveStream(doc.Defaults, doc.Streams[i])
		if err != nil {
			return nil, err
		}
		res.Streams = append(res.Streams, rs)
	}

	// Column toggles are global switches, not per-stream settings; stamp
	// them on after every stream has resolved.
	for i := range res.Streams {
		res.Streams[i].Columns = columns
	}

	return res, nil
}

func resolveStream(defaults Defaults, s Stream) (ResolvedStream, error) {
	id, err := ParseIdentifier(s.Name)
	if err != nil {
		return ResolvedStream{}, err
	}
	if id.Wildcard() {
		return ResolvedStream{}, &IdentifierError{
			Name: s.Name,
			Msg:  "wildcard streams must be expanded against the source catalog before resolution",
		}
	}

	rs := ResolvedStream{
		Name:   s.Name,
		Schema: id.Schema,
		Table:  id.Table,
		Mode:   ModeFullRefresh,
	}

	// Scalar fields: the entry wins wherever it set a value, defaults fill
	// the gaps.
	if defaults.Mode != nil {
		rs.Mode = *defaults.Mode
	}
	if s.Mode != nil {
		rs.Mode = *s.Mode
	}
	if !rs.Mode.Valid() {
		return ResolvedStream{}, &SchemaError{
			Key:  s.Name,
			Line: s.line,
			Msg:  fmt.Sprintf("stream %q: unknown mode %q", s.Name, rs.Mode),
		}
	}

	switch {
	case s.PrimaryKey != nil:
		rs.PrimaryKey = append([]string(nil), s.PrimaryKey...)
	case defaults.PrimaryKey != nil:
		rs.PrimaryKey = append([]string(nil), defaults.PrimaryKey...)
	}
	if defaults.UpdateKey != nil {
		rs.UpdateKey = *defaults.UpdateKey
	}
	if s.UpdateKey != nil {
		rs.UpdateKey = *s.UpdateKey
	}
	if defaults.Disabled != nil {
		rs.Disabled = *defaults.Disabled
	}
	if s.Disabled != nil {
		rs.Disabled = *s.Disabled
	}
	if s.SQL != nil {
		rs.SQL = strings.TrimSpace(*s.SQL)
	}

	if rs.Mode == ModeIncremental && rs.SQL == "" && len(rs.PrimaryKey) == 0 && rs.UpdateKey == "" {
		return ResolvedStream{}, &SchemaError{
			Key:  s.Name,
			Line: s.line,
			Msg:  fmt.Sprintf("stream %q: incremental mode needs a primary_key or update_key", s.Name),
		}
	}

	rs.SourceOptions = mergeOptions(defaults.SourceOptions, s.SourceOptions)
	rs.Meta = mergeTrees(defaults.Meta, s.Meta)

	// Destination object: an explicit entry value always wins. Streams with
	// literal sql have no source table to template from, so they require
	// one. Everything else synthesizes from the defaults template, or lands
	// on its own canonical name when no template exists.
	switch {
	case s.Object != nil:
		rs.Object = *s.Object
	case rs.SQL != "":
		return ResolvedStream{}, &AmbiguousDestinationError{
			Stream: s.Name,
			Msg:    "streams with literal sql must set object explicitly",
		}
	case defaults.Object != nil:
		obj, err := renderObject(*defaults.Object, id)
		if err != nil {
			return ResolvedStream{}, err
		}
		rs.Object = obj
	default:
		rs.Object = id.String()
	}

	if rs.Object == "" {
		return ResolvedStream{}, &AmbiguousDestinationError{
			Stream: s.Name,
			Msg:    "resolved object name is empty",
		}
	}

	return rs, nil
}

func renderObject(template string, id Identifier) (string, error) {
	if strings.Contains(template, placeholderSchema) && id.Schema == "" {
		return "", &IdentifierError{
			Name: id.Raw,
			Msg:  fmt.Sprintf("object template %q needs a schema-qualified stream name", template),
		}
	}

	// Only the template's own text can name a placeholder; braces inside
	// substituted identifier parts are literal.
	for _, m := range templatePlaceholder.FindAllString(template, -1) {
		switch m {
		case placeholderSchema, placeholderTable, placeholderName:
		default:
			return "", &SchemaError{
				Key: "object",
				Msg: fmt.Sprintf("object template %q: unknown placeholder %q", template, m),
			}
		}
	}

	return strings.NewReplacer(
		placeholderSchema, id.Schema,
		placeholderTable, id.Table,
		placeholderName, id.Underscored(),
	).Replace(template), nil
}
