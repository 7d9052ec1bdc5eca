// Package replication parses stream replication documents and resolves
// them into the flat per-stream configurations an execution engine runs.
package replication

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Mode is a replication mode for a stream.
type Mode string

const (
	ModeFullRefresh Mode = "full-refresh"
	ModeIncremental Mode = "incremental"
	ModeTruncate    Mode = "truncate"
	ModeSnapshot    Mode = "snapshot"
)

var modes = map[Mode]bool{
	ModeFullRefresh: true,
	ModeIncremental: true,
	ModeTruncate:    true,
	ModeSnapshot:    true,
}

// Valid reports whether m names a known replication mode.
func (m Mode) Valid() bool { return modes[m] }

// StringList accepts either a single YAML scalar or a sequence of scalars,
// so primary_key: id and primary_key: [id, org_id] are both legal.
type StringList []string

func (l *StringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		*l = StringList{s}
		return nil
	case yaml.SequenceNode:
		var ss []string
		if err := node.Decode(&ss); err != nil {
			return err
		}
		*l = StringList(ss)
		return nil
	}
	return &SchemaError{Line: node.Line, Msg: "expected a scalar or a sequence of scalars"}
}

// Document is a parsed replication document, prior to resolution. Streams
// keep their declaration order.
type Document struct {
	Source   string
	Target   string
	Defaults Defaults
	Streams  []Stream
	Env      map[string]string
}

// Defaults carries the document-wide values every stream starts from.
// Object holds the destination naming template.
type Defaults struct {
	Mode          *Mode          `yaml:"mode,omitempty"`
	Object        *string        `yaml:"object,omitempty"`
	PrimaryKey    StringList     `yaml:"primary_key,omitempty"`
	UpdateKey     *string        `yaml:"update_key,omitempty"`
	Disabled      *bool          `yaml:"disabled,omitempty"`
	SourceOptions map[string]any `yaml:"source_options,omitempty"`
	Meta          map[string]any `yaml:"meta,omitempty"`
}

func (d Defaults) isZero() bool {
	return d.Mode == nil && d.Object == nil && d.PrimaryKey == nil &&
		d.UpdateKey == nil && d.Disabled == nil &&
		d.SourceOptions == nil && d.Meta == nil
}

// Stream is one entry under the streams mapping. Pointer fields distinguish
// "not set" from zero values so defaults only fill true gaps.
type Stream struct {
	Name string `yaml:"-"`

	Mode          *Mode          `yaml:"mode,omitempty"`
	Object        *string        `yaml:"object,omitempty"`
	PrimaryKey    StringList     `yaml:"primary_key,omitempty"`
	UpdateKey     *string        `yaml:"update_key,omitempty"`
	SQL           *string        `yaml:"sql,omitempty"`
	Disabled      *bool          `yaml:"disabled,omitempty"`
	SourceOptions map[string]any `yaml:"source_options,omitempty"`
	Meta          map[string]any `yaml:"meta,omitempty"`

	line int
}

var streamKeys = map[string]bool{
	"mode":           true,
	"object":         true,
	"primary_key":    true,
	"update_key":     true,
	"sql":            true,
	"disabled":       true,
	"source_options": true,
	"meta":           true,
}

var defaultsKeys = map[string]bool{
	"mode":           true,
	"object":         true,
	"primary_key":    true,
	"update_key":     true,
	"disabled":       true,
	"source_options": true,
	"meta":           true,
}

// NewDocumentFromFile reads and parses a replication document from disk.
func NewDocumentFromFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading replication config: %w", err)
	}
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// NewDocumentFromReader parses a replication document from r.
func NewDocumentFromReader(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading replication config: %w", err)
	}
	var d Document
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// UnmarshalYAML walks the document node by node rather than relying on
// struct decoding: the streams mapping must keep declaration order, stream
// keys must be checked for duplicates, and unknown keys are errors.
func (d *Document) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return &SchemaError{Line: node.Line, Msg: "replication document must be a mapping"}
	}

	seen := make(map[string]int, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		key, value := node.Content[i], resolveAlias(node.Content[i+1])

		if first, ok := seen[key.Value]; ok {
			return &SchemaError{
				Key:  key.Value,
				Line: key.Line,
				Msg:  fmt.Sprintf("duplicate key %q (first set on line %d)", key.Value, first),
			}
		}
		seen[key.Value] = key.Line

		switch key.Value {
		case "source":
			if err := decodeRequiredScalar(key, value, &d.Source); err != nil {
				return err
			}
		case "target":
			if err := decodeRequiredScalar(key, value, &d.Target); err != nil {
				return err
			}
		case "defaults":
			if err := d.Defaults.decode(value); err != nil {
				return err
			}
		case "streams":
			if err := d.decodeStreams(value); err != nil {
				return err
			}
		case "env":
			if err := d.decodeEnv(value); err != nil {
				return err
			}
		default:
			return &SchemaError{
				Key:  key.Value,
				Line: key.Line,
				Msg:  fmt.Sprintf("unknown key %q", key.Value),
			}
		}
	}
	return nil
}

func (d *Defaults) decode(node *yaml.Node) error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return &SchemaError{Key: "defaults", Line: node.Line, Msg: "defaults must be a mapping"}
	}
	for i := 0; i < len(node.Content); i += 2 {
		if key := node.Content[i]; key.Value == "sql" {
			return &SchemaError{
				Key:  "sql",
				Line: key.Line,
				Msg:  "defaults cannot set sql; a literal query cannot apply to every stream",
			}
		}
	}
	if err := checkKeys(node, defaultsKeys, "defaults"); err != nil {
		return err
	}
	if err := node.Decode(d); err != nil {
		return decodeError("defaults", node, err)
	}
	return nil
}

func (d *Document) decodeStreams(node *yaml.Node) error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return &SchemaError{Key: "streams", Line: node.Line, Msg: "streams must be a mapping of stream names"}
	}

	seen := make(map[string]int, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		key, value := node.Content[i], resolveAlias(node.Content[i+1])

		name := key.Value
		if first, ok := seen[name]; ok {
			return &DuplicateStreamError{Stream: name, Line: key.Line, FirstLine: first}
		}
		seen[name] = key.Line

		if _, err := ParseIdentifier(name); err != nil {
			return err
		}

		s := Stream{Name: name, line: key.Line}
		if err := s.decode(value); err != nil {
			return err
		}
		d.Streams = append(d.Streams, s)
	}
	return nil
}

func (s *Stream) decode(node *yaml.Node) error {
	// A bare "schema.table:" entry inherits everything from defaults.
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return &SchemaError{
			Key:  s.Name,
			Line: node.Line,
			Msg:  fmt.Sprintf("stream %q must be a mapping or empty", s.Name),
		}
	}
	if err := checkKeys(node, streamKeys, fmt.Sprintf("stream %q", s.Name)); err != nil {
		return err
	}
	if err := node.Decode(s); err != nil {
		return decodeError(fmt.Sprintf("stream %q", s.Name), node, err)
	}
	return nil
}

func (d *Document) decodeEnv(node *yaml.Node) error {
	if isNull(node) {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return &SchemaError{Key: "env", Line: node.Line, Msg: "env must be a mapping of scalar values"}
	}
	if d.Env == nil {
		d.Env = make(map[string]string, len(node.Content)/2)
	}
	for i := 0; i < len(node.Content); i += 2 {
		key, value := node.Content[i], resolveAlias(node.Content[i+1])
		if value.Kind != yaml.ScalarNode {
			return &SchemaError{
				Key:  key.Value,
				Line: value.Line,
				Msg:  fmt.Sprintf("env %q must be a scalar", key.Value),
			}
		}
		d.Env[key.Value] = value.Value
	}
	return nil
}

// MarshalYAML renders the document with streams in declaration order.
func (d *Document) MarshalYAML() (interface{}, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}

	appendPair := func(k string, v interface{}) error {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: k}
		valNode := &yaml.Node{}
		if err := valNode.Encode(v); err != nil {
			return err
		}
		root.Content = append(root.Content, keyNode, valNode)
		return nil
	}

	if err := appendPair("source", d.Source); err != nil {
		return nil, err
	}
	if err := appendPair("target", d.Target); err != nil {
		return nil, err
	}
	if !d.Defaults.isZero() {
		if err := appendPair("defaults", d.Defaults); err != nil {
			return nil, err
		}
	}

	streams := &yaml.Node{Kind: yaml.MappingNode}
	for i := range d.Streams {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: d.Streams[i].Name}
		valNode := &yaml.Node{}
		if err := valNode.Encode(d.Streams[i]); err != nil {
			return nil, err
		}
		streams.Content = append(streams.Content, keyNode, valNode)
	}
	root.Content = append(root.Content,
		&yaml.Node{Kind: yaml.ScalarNode, Value: "streams"}, streams)

	if len(d.Env) > 0 {
		if err := appendPair("env", d.Env); err != nil {
			return nil, err
		}
	}
	return root, nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	if node.Kind == yaml.AliasNode && node.Alias != nil {
		return node.Alias
	}
	return node
}

func isNull(node *yaml.Node) bool {
	return node == nil || node.Tag == "!!null"
}

func decodeRequiredScalar(key, value *yaml.Node, dst *string) error {
	if value.Kind != yaml.ScalarNode || value.Tag == "!!null" || value.Value == "" {
		return &SchemaError{
			Key:  key.Value,
			Line: value.Line,
			Msg:  fmt.Sprintf("%q must be a non-empty scalar", key.Value),
		}
	}
	*dst = value.Value
	return nil
}

func checkKeys(node *yaml.Node, allowed map[string]bool, where string) error {
	seen := make(map[string]int, len(node.Content)/2)
	for i := 0; i < len(node.Content); i += 2 {
		key := node.Content[i]
		if !allowed[key.Value] {
			return &SchemaError{
				Key:  key.Value,
				Line: key.Line,
				Msg:  fmt.Sprintf("unknown key %q in %s", key.Value, where),
			}
		}
		if first, ok := seen[key.Value]; ok {
			return &SchemaError{
				Key:  key.Value,
				Line: key.Line,
				Msg:  fmt.Sprintf("duplicate key %q in %s (first set on line %d)", key.Value, where, first),
			}
		}
		seen[key.Value] = key.Line
	}
	return nil
}

func decodeError(where string, node *yaml.Node, err error) error {
	var se *SchemaError
	if errors.As(err, &se) {
		return se
	}
	return &SchemaError{Line: node.Line, Msg: fmt.Sprintf("%s: %v", where, err)}
}
