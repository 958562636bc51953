package handlers

import (
	"awi/config"
	"awi/core"
	"awi/database"
	"awi/models"
	"awi/service"
	"awi/stretch"
	"awi/version"
	"errors"
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Handler serves the HTTP API over the service container
type Handler struct {
	services  *service.Services
	db        *gorm.DB
	startedAt time.Time
}

// New constructs a handler. db is used only for health checks.
func New(services *service.Services, db *gorm.DB) *Handler {
	return &Handler{services: services, db: db, startedAt: time.Now()}
}

// GetFolderSettings returns the settings in effect for ?folder_path= (root when absent)
func (h *Handler) GetFolderSettings(c *gin.Context) {
	res, err := h.services.FolderSettings.Resolve(c.Request.Context(), c.DefaultQuery("folder_path", models.RootFolder))
	if err != nil {
		respondError(c, "FolderSettings", err, nil)
		return
	}

	body := gin.H{
		"success":          true,
		"settings":         res.Settings,
		"effective_folder": res.EffectiveFolder,
		"requested_folder": res.RequestedFolder,
	}
	if res.UsedDefault {
		body["message"] = "Using default settings"
	}
	c.JSON(http.StatusOK, body)
}

// SaveFolderSettings creates or updates the settings row for a folder
func (h *Handler) SaveFolderSettings(c *gin.Context) {
	var req models.FolderSettingsInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data. folder_path is required.")
		return
	}

	res, err := h.services.FolderSettings.Save(c.Request.Context(), req)
	if err != nil {
		respondError(c, "FolderSettings", err, nil)
		return
	}

	message := "Settings updated successfully"
	if res.Created {
		message = "Settings created successfully"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"message":  message,
		"settings": res.Settings,
	})
}

// GetStretchCurve samples the transfer curve of the settings in effect for a folder
func (h *Handler) GetStretchCurve(c *gin.Context) {
	samples := stretch.DefaultCurveSamples
	if raw := c.Query("samples"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < stretch.MinCurveSamples || n > stretch.MaxCurveSamples {
			badRequest(c, "samples must be an integer between 2 and 1024")
			return
		}
		samples = n
	}

	res, err := h.services.FolderSettings.Resolve(c.Request.Context(), c.DefaultQuery("folder_path", models.RootFolder))
	if err != nil {
		respondError(c, "FolderSettings", err, nil)
		return
	}

	input, output := stretch.Curve(res.Settings, samples)
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"effective_folder": res.EffectiveFolder,
		"requested_folder": res.RequestedFolder,
		"stretch_type":     res.Settings.StretchType,
		"input":            input,
		"output":           output,
	})
}

type reindexRequest struct {
	Folder string `json:"folder"`
	Force  any    `json:"force"`
}

// Reindex runs the indexer for a folder and waits for it to finish
func (h *Handler) Reindex(c *gin.Context) {
	var req reindexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request data")
		return
	}

	run, err := h.services.Reindex.Reindex(c.Request.Context(), req.Folder, service.Truthy(req.Force, false))
	if err != nil {
		var extra gin.H
		var appErr *core.AppError
		if errors.As(err, &appErr) && errors.Is(appErr.Kind, core.ErrExternalProcess) {
			extra = gin.H{"output": appErr.Output, "code": appErr.ExitCode}
			if run != nil {
				extra["command"] = run.Command
				extra["run_id"] = run.RunID
			}
		}
		respondError(c, "Reindex", err, extra)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Reindexing completed successfully",
		"folder":  run.Folder,
		"output":  run.Output,
		"run_id":  run.RunID,
	})
}

// GetLastReindex returns the summary of the latest reindex run
func (h *Handler) GetLastReindex(c *gin.Context) {
	run, ok, err := h.services.Reindex.LastRun(c.Request.Context())
	if err != nil {
		respondError(c, "Reindex", err, nil)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "No reindex run recorded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "run": run})
}

// HealthCheck reports database reachability
func (h *Handler) HealthCheck(c *gin.Context) {
	dbHealthy := database.SQLiteUp(c.Request.Context(), h.db)

	health := gin.H{
		"status":     "healthy",
		"timestamp":  time.Now().Unix(),
		"version":    version.GetFullVersion(),
		"db_healthy": dbHealthy,
	}

	if !dbHealthy {
		health["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

// GetMetrics gathers process and storage metrics
func (h *Handler) GetMetrics(c *gin.Context) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	c.JSON(http.StatusOK, gin.H{
		"timestamp":      time.Now().Unix(),
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
		"sqlite": gin.H{
			"queries_total":       database.SQLiteQueriesTotal(),
			"busy_errors_total":   database.SQLiteBusyErrorsTotal(),
			"locked_errors_total": database.SQLiteLockedErrorsTotal(),
		},
		"reindex": gin.H{
			"runs_total":      h.services.Reindex.RunsTotal(),
			"failures_total":  h.services.Reindex.FailuresTotal(),
			"timeout_seconds": config.Settings.ReindexTimeoutSeconds,
		},
		"error_logs": gin.H{
			"total": len(core.ErrorLoggerInstance.GetErrorLogs()),
		},
		"system": gin.H{
			"goroutines":   runtime.NumGoroutine(),
			"memory_alloc": mem.Alloc,
			"memory_total": mem.TotalAlloc,
			"memory_sys":   mem.Sys,
			"gc_runs":      mem.NumGC,
		},
	})
}

// GetErrorLogs returns recent error logs
func GetErrorLogs(c *gin.Context) {
	c.JSON(http.StatusOK, core.ErrorLoggerInstance.GetErrorLogs())
}

// ClearErrorLogs wipes error logs
func ClearErrorLogs(c *gin.Context) {
	core.ErrorLoggerInstance.ClearErrorLogs()
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Error logs cleared"})
}
