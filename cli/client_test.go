package cli

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"status":"healthy","version":"v0.3.0","db_healthy":true}`)
	})
	mux.HandleFunc("/api/folder-settings", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			var body map[string]any
			json.NewDecoder(r.Body).Decode(&body)
			if body["folder_path"] == "" {
				w.WriteHeader(http.StatusBadRequest)
				io.WriteString(w, `{"error":"Invalid request data. folder_path is required."}`)
				return
			}
			io.WriteString(w, `{"success":true,"message":"Settings created successfully","settings":{"folder_path":"/a","stretch_type":"linear","stf_strength":0.3}}`)
			return
		}
		assert.Equal(t, "/a b", r.URL.Query().Get("folder_path"))
		io.WriteString(w, `{"success":true,"effective_folder":"/","requested_folder":"/a b","message":"Using default settings","settings":{"folder_path":"/","stretch_type":"linear","linear_high_percent":99.5}}`)
	})
	mux.HandleFunc("/api/folder-settings/curve", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "3", r.URL.Query().Get("samples"))
		io.WriteString(w, `{"effective_folder":"/","stretch_type":"linear","input":[0,0.5,1],"output":[0,0.5,1]}`)
	})
	mux.HandleFunc("/api/reindex", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		if body["folder"] == "bad" {
			w.WriteHeader(http.StatusInternalServerError)
			io.WriteString(w, `{"error":"Reindexing failed","output":"Traceback","code":3,"run_id":"r1"}`)
			return
		}
		assert.Equal(t, true, body["force"])
		io.WriteString(w, `{"success":true,"message":"Reindexing completed successfully","folder":"M31","output":"ok","run_id":"r2"}`)
	})
	mux.HandleFunc("/api/reindex/last", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"No reindex run recorded"}`)
	})
	mux.HandleFunc("/api/metrics", func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"uptime_seconds":42,"sqlite":{"queries_total":7},"reindex":{"runs_total":2,"failures_total":1},"system":{"goroutines":9,"memory_alloc":2048}}`)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientFolderSettings(t *testing.T) {
	c := NewClient(newFakeServer(t).URL + "/")

	health, err := c.HealthCheck()
	require.NoError(t, err)
	assert.True(t, health.DBHealthy)

	res, err := c.GetFolderSettings("/a b")
	require.NoError(t, err)
	assert.Equal(t, "/", res.EffectiveFolder)
	assert.Equal(t, 99.5, res.Settings.LinearHighPercent)
	assert.Equal(t, "Using default settings", res.Message)

	saved, err := c.SaveFolderSettings(map[string]any{"folder_path": "/a", "stf_strength": 0.3})
	require.NoError(t, err)
	assert.Equal(t, 0.3, saved.Settings.STFStrength)

	_, err = c.SaveFolderSettings(map[string]any{"folder_path": ""})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid request data. folder_path is required.", apiErr.Message)

	curve, err := c.GetCurve("/", 3)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0.5, 1}, curve.Output)
}

func TestClientReindex(t *testing.T) {
	c := NewClient(newFakeServer(t).URL)

	res, err := c.Reindex("M31", true)
	require.NoError(t, err)
	assert.Equal(t, "r2", res.RunID)

	_, err = c.Reindex("bad", true)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Traceback", apiErr.Output)
	require.NotNil(t, apiErr.ExitCode)
	assert.Equal(t, 3, *apiErr.ExitCode)

	run, err := c.LastReindex()
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestClientMetrics(t *testing.T) {
	c := NewClient(newFakeServer(t).URL)

	m, err := c.GetMetrics()
	require.NoError(t, err)
	assert.Equal(t, int64(42), m.UptimeSeconds)
	assert.Equal(t, uint64(7), m.SQLite.QueriesTotal)
	assert.Equal(t, uint64(1), m.Reindex.FailuresTotal)
	assert.Equal(t, uint64(2048), m.System.MemoryAlloc)
}
