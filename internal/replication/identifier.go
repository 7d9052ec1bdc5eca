package replication

import (
	"regexp"
	"strings"
	"unicode"
)

// Identifier is a parsed qualified stream name: up to three dot-separated
// parts (database.schema.table). Unquoted parts fold to lower case the way
// most SQL engines do; double-quoted parts keep their exact spelling, and a
// doubled quote inside a quoted part escapes a literal quote. Beyond the
// quoting structure, part spelling is left to the source engine.
type Identifier struct {
	Database string
	Schema   string
	Table    string

	// Raw is the name exactly as written in the document.
	Raw string

	wildcard bool
}

// Wildcard reports whether the identifier selects every table in a schema
// (an unquoted trailing "*").
func (id Identifier) Wildcard() bool { return id.wildcard }

// ParseIdentifier parses a qualified stream name. Dots inside double quotes
// do not split parts, and whitespace is only legal inside double quotes.
func ParseIdentifier(raw string) (Identifier, error) {
	if strings.TrimSpace(raw) == "" {
		return Identifier{}, &IdentifierError{Name: raw, Msg: "empty identifier"}
	}

	var (
		parts    []string
		isQuoted []bool
		b        strings.Builder
		inQuote  bool
		sawQuote bool
	)

	rs := []rune(raw)
	for i := 0; i < len(rs); i++ {
		switch c := rs[i]; {
		case c == '"':
			if inQuote && i+1 < len(rs) && rs[i+1] == '"' {
				b.WriteRune('"')
				i++
				continue
			}
			inQuote = !inQuote
			sawQuote = true
		case c == '.' && !inQuote:
			parts = append(parts, b.String())
			isQuoted = append(isQuoted, sawQuote)
			b.Reset()
			sawQuote = false
		case unicode.IsSpace(c) && !inQuote:
			return Identifier{}, &IdentifierError{
				Name: raw,
				Msg:  "whitespace is only allowed inside quoted parts",
			}
		default:
			b.WriteRune(c)
		}
	}
	if inQuote {
		return Identifier{}, &IdentifierError{Name: raw, Msg: "unterminated quoted identifier"}
	}
	parts = append(parts, b.String())
	isQuoted = append(isQuoted, sawQuote)

	if len(parts) > 3 {
		return Identifier{}, &IdentifierError{
			Name: raw,
			Msg:  "too many dot-separated parts (at most database.schema.table)",
		}
	}

	for i, p := range parts {
		if p == "" {
			return Identifier{}, &IdentifierError{Name: raw, Msg: "empty identifier part"}
		}
		if !isQuoted[i] {
			parts[i] = strings.ToLower(p)
		}
	}

	// An unquoted "*" is only meaningful as the table part.
	for i, p := range parts[:len(parts)-1] {
		if p == "*" && !isQuoted[i] {
			return Identifier{}, &IdentifierError{
				Name: raw,
				Msg:  "wildcard is only supported for the table part",
			}
		}
	}

	id := Identifier{Raw: raw}
	switch len(parts) {
	case 1:
		id.Table = parts[0]
	case 2:
		id.Schema, id.Table = parts[0], parts[1]
	case 3:
		id.Database, id.Schema, id.Table = parts[0], parts[1], parts[2]
	}
	id.wildcard = id.Table == "*" && !isQuoted[len(parts)-1]

	return id, nil
}

// String re-renders the identifier in canonical form, quoting any part that
// would not survive a round trip unquoted.
func (id Identifier) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{id.Database, id.Schema, id.Table} {
		if p != "" {
			parts = append(parts, quotePart(p))
		}
	}
	return strings.Join(parts, ".")
}

// Underscored flattens the identifier for {stream_name} substitutions:
// parts joined by underscores, quoting stripped.
func (id Identifier) Underscored() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{id.Database, id.Schema, id.Table} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "_")
}

var plainIdentifier = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func quotePart(p string) string {
	if plainIdentifier.MatchString(p) || p == "*" {
		return p
	}
	return `"` + strings.ReplaceAll(p, `"`, `""`) + `"`
}
