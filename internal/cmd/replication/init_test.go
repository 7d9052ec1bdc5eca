package replication

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbolytics/curator/internal/replication"
)

func TestInitCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replication.yml")

	cmd := newInitCommand()
	cmd.SetArgs([]string{"--output", path})
	err := cmd.ExecuteContext(context.Background())
	require.NoError(t, err)

	// The starter config must itself be valid.
	doc, err := replication.NewDocumentFromFile(path)
	require.NoError(t, err)
	res, err := replication.Resolve(doc)
	require.NoError(t, err)
	assert.NotEmpty(t, res.Streams)
}

func TestInitCommandRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "replication.yml")
	require.NoError(t, os.WriteFile(path, []byte("source: X\n"), 0644))

	cmd := newInitCommand()
	cmd.SetArgs([]string{"--output", path})
	err := cmd.ExecuteContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	cmd = newInitCommand()
	cmd.SetArgs([]string{"--output", path, "--force"})
	err = cmd.ExecuteContext(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "streams:")
}
