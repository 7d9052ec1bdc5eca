package replication

import (
	"fmt"
	"strings"
)

// Env keys the resolver understands. Anything else under env passes
// through untouched for whichever engine eventually runs the replication.
const (
	EnvLoadedAtColumn  = "LOADED_AT_COLUMN"
	EnvStreamURLColumn = "STREAM_URL_COLUMN"
)

// ColumnPolicy says which bookkeeping columns the target engine should add
// to every stream's output.
type ColumnPolicy struct {
	LoadedAt  bool `json:"loaded_at" yaml:"loaded_at"`
	StreamURL bool `json:"stream_url" yaml:"stream_url"`
}

func columnPolicy(env map[string]string) (ColumnPolicy, error) {
	var p ColumnPolicy
	for k, v := range env {
		switch k {
		case EnvLoadedAtColumn, EnvStreamURLColumn:
			b, err := parseToggle(v)
			if err != nil {
				return ColumnPolicy{}, &SchemaError{
					Key: k,
					Msg: fmt.Sprintf("env %s: %v", k, err),
				}
			}
			if k == EnvLoadedAtColumn {
				p.LoadedAt = b
			} else {
				p.StreamURL = b
			}
		}
	}
	return p, nil
}

func parseToggle(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1", "yes", "on":
		return true, nil
	case "false", "0", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("boolean-like value required, got %q", s)
}
