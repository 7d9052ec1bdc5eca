package replication

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/turbolytics/curator/internal/catalog"
	"github.com/turbolytics/curator/internal/replication"
)

func TestCompileCommandWritesArtifacts(t *testing.T) {
	configPath := writeConfig(t, testConfig)
	outDir := t.TempDir()

	cmd := newCompileCommand()
	cmd.SetArgs([]string{"--config", configPath, "--output", outDir})
	err := cmd.ExecuteContext(context.Background())
	require.NoError(t, err)

	// Verify the resolved artifact round-trips.
	data, err := os.ReadFile(filepath.Join(outDir, "replication.resolved.yml"))
	require.NoError(t, err)

	var res replication.Resolution
	require.NoError(t, yaml.Unmarshal(data, &res))
	assert.Equal(t, "PG_PROD", res.Source)
	assert.Equal(t, "WAREHOUSE", res.Target)
	require.Len(t, res.Streams, 3)
	assert.Equal(t, "public_accounts", res.Streams[0].Object)

	// Verify the catalog ties back to the exact input.
	data, err = os.ReadFile(filepath.Join(outDir, "catalog.json"))
	require.NoError(t, err)

	var cat catalog.Catalog
	require.NoError(t, json.Unmarshal(data, &cat))

	raw, err := os.ReadFile(configPath)
	require.NoError(t, err)
	sum := sha256.Sum256(raw)

	assert.Equal(t, hex.EncodeToString(sum[:]), cat.ConfigSHA256)
	assert.Equal(t, 3, cat.Streams)
	assert.Equal(t, 2, cat.Enabled)
	assert.Equal(t, 1, cat.Disabled)
}

func TestCompileCommandStdoutJSON(t *testing.T) {
	configPath := writeConfig(t, testConfig)

	var out bytes.Buffer
	cmd := newCompileCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", configPath, "--format", "json"})
	err := cmd.ExecuteContext(context.Background())
	require.NoError(t, err)

	var res replication.Resolution
	require.NoError(t, json.Unmarshal(out.Bytes(), &res))
	require.Len(t, res.Streams, 3)
	assert.Equal(t, "public_Transactions", res.Streams[2].Object)
	assert.True(t, res.Columns.LoadedAt)
}

func TestCompileCommandUnknownFormat(t *testing.T) {
	configPath := writeConfig(t, testConfig)

	cmd := newCompileCommand()
	cmd.SetArgs([]string{"--config", configPath, "--format", "toml"})
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "toml")
}
