package cli

import (
	"awi/models"
	"awi/service"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Client is the HTTP client for talking to the AWI server
type Client struct {
	baseURL    string
	httpClient *http.Client
	// reindexClient has no timeout; the server bounds reindex runs itself
	reindexClient *http.Client
}

// NewClient creates a new HTTP client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		reindexClient: &http.Client{},
	}
}

// APIError is a non-2xx reply from the server
type APIError struct {
	StatusCode int
	Message    string `json:"error"`
	Output     string `json:"output"`
	ExitCode   *int   `json:"code"`
	RunID      string `json:"run_id"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// FolderSettingsResponse is the reply of GET /api/folder-settings
type FolderSettingsResponse struct {
	Success         bool                         `json:"success"`
	Settings        models.FolderStretchSettings `json:"settings"`
	EffectiveFolder string                       `json:"effective_folder"`
	RequestedFolder string                       `json:"requested_folder"`
	Message         string                       `json:"message"`
}

// SaveResponse is the reply of POST /api/folder-settings
type SaveResponse struct {
	Success  bool                         `json:"success"`
	Message  string                       `json:"message"`
	Settings models.FolderStretchSettings `json:"settings"`
}

// CurveResponse is the reply of GET /api/folder-settings/curve
type CurveResponse struct {
	EffectiveFolder string             `json:"effective_folder"`
	StretchType     models.StretchType `json:"stretch_type"`
	Input           []float64          `json:"input"`
	Output          []float64          `json:"output"`
}

// ReindexResponse is the reply of a successful POST /api/reindex
type ReindexResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Folder  string `json:"folder"`
	Output  string `json:"output"`
	RunID   string `json:"run_id"`
}

// HealthResponse is the reply of GET /api/health
type HealthResponse struct {
	Status    string `json:"status"`
	Version   string `json:"version"`
	DBHealthy bool   `json:"db_healthy"`
}

// doRequest executes an HTTP request
func (c *Client) doRequest(hc *http.Client, method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}

	return resp, nil
}

// handleResponse decodes a 2xx body into result, or returns an *APIError
func (c *Client) handleResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		bodyBytes, _ := io.ReadAll(resp.Body)
		if err := json.Unmarshal(bodyBytes, apiErr); err != nil {
			apiErr.Message = strings.TrimSpace(string(bodyBytes))
		}
		return apiErr
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %v", err)
		}
	}

	return nil
}

func (c *Client) call(hc *http.Client, method, path string, body, result interface{}) error {
	resp, err := c.doRequest(hc, method, path, body)
	if err != nil {
		return err
	}
	return c.handleResponse(resp, result)
}

// HealthCheck pings the health endpoint
func (c *Client) HealthCheck() (*HealthResponse, error) {
	var health HealthResponse
	if err := c.call(c.httpClient, "GET", "/api/health", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// GetFolderSettings fetches the settings in effect for folder
func (c *Client) GetFolderSettings(folder string) (*FolderSettingsResponse, error) {
	var out FolderSettingsResponse
	path := "/api/folder-settings?folder_path=" + url.QueryEscape(folder)
	if err := c.call(c.httpClient, "GET", path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SaveFolderSettings upserts settings; payload must carry folder_path
func (c *Client) SaveFolderSettings(payload map[string]any) (*SaveResponse, error) {
	var out SaveResponse
	if err := c.call(c.httpClient, "POST", "/api/folder-settings", payload, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetCurve samples the transfer curve in effect for folder
func (c *Client) GetCurve(folder string, samples int) (*CurveResponse, error) {
	q := url.Values{}
	q.Set("folder_path", folder)
	if samples > 0 {
		q.Set("samples", strconv.Itoa(samples))
	}
	var out CurveResponse
	if err := c.call(c.httpClient, "GET", "/api/folder-settings/curve?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Reindex triggers a reindex and waits for it to finish
func (c *Client) Reindex(folder string, force bool) (*ReindexResponse, error) {
	var out ReindexResponse
	body := map[string]any{"folder": folder, "force": force}
	if err := c.call(c.reindexClient, "POST", "/api/reindex", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LastReindex fetches the latest reindex run; nil when none was recorded
func (c *Client) LastReindex() (*service.ReindexRun, error) {
	var out struct {
		Run service.ReindexRun `json:"run"`
	}
	err := c.call(c.httpClient, "GET", "/api/reindex/last", nil, &out)
	if apiErr, ok := err.(*APIError); ok && apiErr.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &out.Run, nil
}

// GetErrorLogs lists recent server error logs
func (c *Client) GetErrorLogs() ([]*models.ErrorLog, error) {
	var logs []*models.ErrorLog
	if err := c.call(c.httpClient, "GET", "/api/error-logs", nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// ClearErrorLogs wipes server error logs
func (c *Client) ClearErrorLogs() error {
	return c.call(c.httpClient, "DELETE", "/api/error-logs", nil, nil)
}

// MetricsResponse is the reply of GET /api/metrics
type MetricsResponse struct {
	UptimeSeconds int64 `json:"uptime_seconds"`
	SQLite        struct {
		QueriesTotal      uint64 `json:"queries_total"`
		BusyErrorsTotal   uint64 `json:"busy_errors_total"`
		LockedErrorsTotal uint64 `json:"locked_errors_total"`
	} `json:"sqlite"`
	Reindex struct {
		RunsTotal     uint64 `json:"runs_total"`
		FailuresTotal uint64 `json:"failures_total"`
	} `json:"reindex"`
	System struct {
		Goroutines  int    `json:"goroutines"`
		MemoryAlloc uint64 `json:"memory_alloc"`
	} `json:"system"`
}

// GetMetrics fetches server counters
func (c *Client) GetMetrics() (*MetricsResponse, error) {
	var out MetricsResponse
	if err := c.call(c.httpClient, "GET", "/api/metrics", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
