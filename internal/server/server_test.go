package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/turbolytics/curator/internal/plan"
	"github.com/turbolytics/curator/internal/replication"
)

func testServer(t *testing.T) *httptest.Server {
	t.Helper()

	doc, err := replication.NewDocumentFromReader(strings.NewReader(`
source: PG_PROD
target: WAREHOUSE
defaults:
  object: "{stream_schema}_{stream_table}"
streams:
  public.accounts:
  public.users:
    disabled: true
  public."Transactions":
    mode: incremental
    primary_key: id
env:
  LOADED_AT_COLUMN: "true"
`))
	require.NoError(t, err)

	res, err := replication.Resolve(doc)
	require.NoError(t, err)

	srv := httptest.NewServer(New(res, zap.NewNop()).Routes())
	t.Cleanup(srv.Close)
	return srv
}

func TestHealthz(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}

func TestGetResolution(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/replication")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res replication.Resolution
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.Equal(t, "PG_PROD", res.Source)
	assert.Equal(t, "WAREHOUSE", res.Target)
	assert.Len(t, res.Streams, 3)
	assert.True(t, res.Columns.LoadedAt)
}

func TestListStreams(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/replication/streams")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Streams []replication.ResolvedStream `json:"streams"`
		Count   int                          `json:"count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))

	// Disabled streams stay visible; the list is an audit view.
	assert.Equal(t, 3, body.Count)
	assert.Equal(t, "public.accounts", body.Streams[0].Name)
	assert.True(t, body.Streams[1].Disabled)
}

func TestGetStream(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/replication/streams/public.accounts")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var s replication.ResolvedStream
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	assert.Equal(t, "public_accounts", s.Object)
}

func TestGetStreamQuotedName(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/replication/streams/" + url.PathEscape(`public."Transactions"`))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var s replication.ResolvedStream
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&s))
	assert.Equal(t, "Transactions", s.Table)
	assert.Equal(t, replication.ModeIncremental, s.Mode)
}

func TestGetStreamNotFound(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/replication/streams/public.missing")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetPlan(t *testing.T) {
	srv := testServer(t)

	resp, err := http.Get(srv.URL + "/api/v1/replication/plan")
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)

	var p plan.Plan
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&p))

	assert.NotEmpty(t, p.ID)
	assert.Equal(t, 3, p.TotalStreams)
	assert.Equal(t, 1, p.DisabledStreams)
	require.Len(t, p.Tasks, 2)
	assert.Equal(t, "public.accounts", p.Tasks[0].Stream.Name)
}
