package replication

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamsCommand(t *testing.T) {
	configPath := writeConfig(t, testConfig)

	var out bytes.Buffer
	cmd := newStreamsCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", configPath})
	err := cmd.ExecuteContext(context.Background())
	require.NoError(t, err)

	assert.Contains(t, out.String(), "NAME")
	assert.Contains(t, out.String(), "public.accounts")
	assert.Contains(t, out.String(), "public_accounts")
	assert.NotContains(t, out.String(), "public.users")
}

func TestStreamsCommandAll(t *testing.T) {
	configPath := writeConfig(t, testConfig)

	var out bytes.Buffer
	cmd := newStreamsCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", configPath, "--all"})
	err := cmd.ExecuteContext(context.Background())
	require.NoError(t, err)

	assert.Contains(t, out.String(), "public.users")
	assert.Contains(t, out.String(), "true")
}
