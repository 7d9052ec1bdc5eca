package compiler

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/turbolytics/curator/internal/catalog"
	"github.com/turbolytics/curator/internal/local"
	"github.com/turbolytics/curator/internal/replication"
)

var testDoc = []byte(`source: PG_PROD
target: WAREHOUSE

defaults:
  mode: full-refresh
  object: "{stream_schema}_{stream_table}"

streams:
  public.accounts:

  public.users:
    disabled: true
`)

func TestCompileWithoutRepository(t *testing.T) {
	c := New()
	result, err := c.Compile(context.Background(), testDoc)
	require.NoError(t, err)

	assert.Equal(t, "replication.resolved.yml", result.Artifact)

	var res replication.Resolution
	require.NoError(t, yaml.Unmarshal(result.Resolved, &res))
	require.Len(t, res.Streams, 2)
	assert.Equal(t, "public_accounts", res.Streams[0].Object)

	assert.Equal(t, 2, result.Catalog.Streams)
	assert.Equal(t, 1, result.Catalog.Enabled)
}

func TestCompileWritesArtifacts(t *testing.T) {
	dir := t.TempDir()
	repo := local.New(dir)

	c := New(
		WithRepository(repo),
		WithFormat(FormatJSON),
	)
	result, err := c.Compile(context.Background(), testDoc)
	require.NoError(t, err)
	assert.Equal(t, "replication.resolved.json", result.Artifact)

	data, err := os.ReadFile(filepath.Join(dir, "replication.resolved.json"))
	require.NoError(t, err)
	assert.JSONEq(t, string(result.Resolved), string(data))

	data, err = os.ReadFile(filepath.Join(dir, "catalog.json"))
	require.NoError(t, err)

	var cat catalog.Catalog
	require.NoError(t, json.Unmarshal(data, &cat))
	assert.Equal(t, result.Catalog.ConfigSHA256, cat.ConfigSHA256)
	assert.Equal(t, "PG_PROD", cat.Source)
}

func TestCompileUnknownFormat(t *testing.T) {
	c := New(WithFormat("toml"))
	_, err := c.Compile(context.Background(), testDoc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "toml")
}

func TestCompileInvalidDocument(t *testing.T) {
	c := New()
	_, err := c.Compile(context.Background(), []byte("streams: {}\n"))
	require.Error(t, err)
}
