package handlers

import (
	"awi/config"
	"awi/database"
	"awi/service"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	calls    int
	args     []string
	output   string
	exitCode int
}

func (f *fakeExecutor) Run(_ context.Context, _ string, args []string) (string, int, error) {
	f.calls++
	f.args = append([]string(nil), args...)
	return f.output, f.exitCode, nil
}

func newTestRouter(t *testing.T, exec *fakeExecutor) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		DatabaseURL:          filepath.Join(t.TempDir(), "awi.db"),
		SQLitePragmasEnabled: true,
		SQLiteBusyTimeoutMS:  1000,
		SQLiteMaxOpenConns:   1,
		SQLiteMaxIdleConns:   1,
		ReindexCommand:       "docker-compose",
		ReindexService:       "python",
		ReindexInterpreter:   "python",
		ReindexScript:        "/app/reindex.py",
		FitsRoot:             "/fits",
	}
	db, err := database.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	services, err := service.InitServices(db, cfg, service.WithExecutor(exec))
	require.NoError(t, err)
	return NewRouter(New(services, db))
}

func doJSON(t *testing.T, r http.Handler, method, target string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var out map[string]any
	if w.Body.Len() > 0 && strings.HasPrefix(strings.TrimSpace(w.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w, out
}

func TestGetFolderSettingsDefaults(t *testing.T) {
	r := newTestRouter(t, &fakeExecutor{})

	w, body := doJSON(t, r, http.MethodGet, "/api/folder-settings?folder_path=/a/b", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Using default settings", body["message"])
	assert.Equal(t, "/", body["effective_folder"])
	assert.Equal(t, "/a/b", body["requested_folder"])

	settings := body["settings"].(map[string]any)
	assert.Equal(t, "linear", settings["stretch_type"])
	assert.Equal(t, 0.5, settings["linear_low_percent"])
	assert.Equal(t, 99.5, settings["linear_high_percent"])
	assert.Equal(t, true, settings["apply_to_subfolders"])
}

func TestSaveThenResolveInherited(t *testing.T) {
	r := newTestRouter(t, &fakeExecutor{})

	w, body := doJSON(t, r, http.MethodPost, "/api/folder-settings", map[string]any{
		"folder_path":         "/a",
		"stretch_type":        "pixinsight_stf",
		"stf_strength":        "0.7",
		"apply_to_subfolders": true,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Settings created successfully", body["message"])

	w, body = doJSON(t, r, http.MethodPost, "/api/folder-settings", map[string]any{
		"folder_path":  "/a",
		"stretch_type": "pixinsight_stf",
		"stf_strength": 0.4,
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Settings updated successfully", body["message"])

	w, body = doJSON(t, r, http.MethodGet, "/api/folder-settings?folder_path=/a/b/c", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/a", body["effective_folder"])
	assert.NotContains(t, body, "message")
	settings := body["settings"].(map[string]any)
	assert.Equal(t, "pixinsight_stf", settings["stretch_type"])
	assert.Equal(t, 0.4, settings["stf_strength"])
}

func TestSaveFolderSettingsRequiresPath(t *testing.T) {
	r := newTestRouter(t, &fakeExecutor{})

	w, body := doJSON(t, r, http.MethodPost, "/api/folder-settings", map[string]any{"stretch_type": "linear"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid request data. folder_path is required.", body["error"])

	w, _ = doJSON(t, r, http.MethodPost, "/api/folder-settings", "not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	r := newTestRouter(t, &fakeExecutor{})

	w, body := doJSON(t, r, http.MethodPut, "/api/folder-settings", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, "Method not allowed", body["error"])

	w, _ = doJSON(t, r, http.MethodGet, "/api/reindex", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestGetStretchCurve(t *testing.T) {
	r := newTestRouter(t, &fakeExecutor{})

	w, body := doJSON(t, r, http.MethodGet, "/api/folder-settings/curve?folder_path=/x&samples=5", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, body["input"], 5)
	assert.Len(t, body["output"], 5)
	assert.Equal(t, "linear", body["stretch_type"])

	w, _ = doJSON(t, r, http.MethodGet, "/api/folder-settings/curve?samples=1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = doJSON(t, r, http.MethodGet, "/api/folder-settings/curve?samples=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReindexSuccess(t *testing.T) {
	exec := &fakeExecutor{output: "indexed 12 files"}
	r := newTestRouter(t, exec)

	w, body := doJSON(t, r, http.MethodPost, "/api/reindex", map[string]any{"folder": "M31", "force": "1"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Reindexing completed successfully", body["message"])
	assert.Equal(t, "M31", body["folder"])
	assert.Equal(t, "indexed 12 files", body["output"])
	assert.NotEmpty(t, body["run_id"])
	assert.Contains(t, exec.args, "/fits/M31")
	assert.Contains(t, exec.args, "--force")

	w, body = doJSON(t, r, http.MethodGet, "/api/reindex/last", nil)
	require.Equal(t, http.StatusOK, w.Code)
	run := body["run"].(map[string]any)
	assert.Equal(t, "M31", run["folder"])
	assert.Equal(t, true, run["success"])
}

func TestReindexRejectsMetacharacters(t *testing.T) {
	exec := &fakeExecutor{}
	r := newTestRouter(t, exec)

	w, body := doJSON(t, r, http.MethodPost, "/api/reindex", map[string]any{"folder": "a;rm -rf /"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid folder path", body["error"])
	assert.Zero(t, exec.calls)
}

func TestReindexFailureSurfacesDiagnostics(t *testing.T) {
	exec := &fakeExecutor{output: "Traceback: boom", exitCode: 2}
	r := newTestRouter(t, exec)

	w, body := doJSON(t, r, http.MethodPost, "/api/reindex", map[string]any{"folder": "M42"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Reindexing failed", body["error"])
	assert.Equal(t, "Traceback: boom", body["output"])
	assert.Equal(t, float64(2), body["code"])
	assert.NotEmpty(t, body["run_id"])
}

func TestGetLastReindexNone(t *testing.T) {
	r := newTestRouter(t, &fakeExecutor{})

	w, _ := doJSON(t, r, http.MethodGet, "/api/reindex/last", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndRequestID(t *testing.T) {
	r := newTestRouter(t, &fakeExecutor{})

	w, body := doJSON(t, r, http.MethodGet, "/api/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, true, body["db_healthy"])
	assert.NotEmpty(t, w.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set(requestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", rec.Header().Get(requestIDHeader))
}

func TestMetricsAndErrorLogs(t *testing.T) {
	r := newTestRouter(t, &fakeExecutor{exitCode: 1})

	doJSON(t, r, http.MethodPost, "/api/reindex", map[string]any{"folder": "x"})

	w, body := doJSON(t, r, http.MethodGet, "/api/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	reindex := body["reindex"].(map[string]any)
	assert.Equal(t, float64(1), reindex["runs_total"])
	assert.Equal(t, float64(1), reindex["failures_total"])

	req := httptest.NewRequest(http.MethodGet, "/api/error-logs", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	var logs []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &logs))
	require.NotEmpty(t, logs)
	assert.Equal(t, "Reindex", logs[0]["source"])

	w, _ = doJSON(t, r, http.MethodDelete, "/api/error-logs", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
