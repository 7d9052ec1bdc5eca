package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/turbolytics/curator/internal"
	"github.com/turbolytics/curator/internal/catalog"
	"github.com/turbolytics/curator/internal/replication"
)

// Formats the resolved artifact can be rendered in.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

type Option func(*Compiler)

func WithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) {
		c.logger = logger
	}
}

func WithRepository(repo internal.Repository) Option {
	return func(c *Compiler) {
		c.repo = repo
	}
}

func WithFormat(format string) Option {
	return func(c *Compiler) {
		c.format = format
	}
}

// Compiler turns a raw replication document into compiled artifacts: the
// fully resolved config plus a catalog tying it back to its input.
type Compiler struct {
	logger *zap.Logger
	repo   internal.Repository
	format string
}

func New(opts ...Option) *Compiler {
	c := &Compiler{
		logger: zap.NewNop(),
		format: FormatYAML,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Result is the output of one compile.
type Result struct {
	// Artifact is the name the resolved config is written under.
	Artifact string
	// Resolved is the rendered resolved config.
	Resolved []byte
	Catalog  *catalog.Catalog
}

// Compile parses and resolves raw, renders the resolved config, and, when a
// repository is configured, writes the artifact and its catalog.
func (c *Compiler) Compile(ctx context.Context, raw []byte) (*Result, error) {
	doc, err := replication.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}

	res, err := replication.Resolve(doc)
	if err != nil {
		return nil, err
	}

	var (
		resolved []byte
		artifact string
	)
	switch c.format {
	case FormatYAML:
		resolved, err = yaml.Marshal(res)
		artifact = "replication.resolved.yml"
	case FormatJSON:
		resolved, err = json.MarshalIndent(res, "", "  ")
		artifact = "replication.resolved.json"
	default:
		return nil, fmt.Errorf("unknown format %q (expected yaml or json)", c.format)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{
		Artifact: artifact,
		Resolved: resolved,
		Catalog:  catalog.New(res, raw),
	}

	if c.repo == nil {
		return result, nil
	}

	if err := c.repo.Write(ctx, artifact, bytes.NewReader(resolved)); err != nil {
		return nil, err
	}

	catBytes, err := json.MarshalIndent(result.Catalog, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := c.repo.Write(ctx, "catalog.json", bytes.NewReader(catBytes)); err != nil {
		return nil, err
	}

	c.logger.Info(
		"compiled replication config",
		zap.String("artifact", artifact),
		zap.String("config_sha256", result.Catalog.ConfigSHA256),
		zap.Int("streams", result.Catalog.Streams),
		zap.Int("enabled", result.Catalog.Enabled),
	)
	return result, nil
}
