package core

import (
	"awi/models"
	"encoding/json"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

const defaultMaxErrorLogs = 100

// ErrorLogger keeps the most recent failures in memory for the diagnostics endpoint.
type ErrorLogger struct {
	logs      []*models.ErrorLog
	mu        sync.RWMutex
	maxLogs   int
	idCounter int
}

var ErrorLoggerInstance = NewErrorLogger(defaultMaxErrorLogs)

// NewErrorLogger creates a logger retaining at most maxLogs entries.
func NewErrorLogger(maxLogs int) *ErrorLogger {
	if maxLogs <= 0 {
		maxLogs = defaultMaxErrorLogs
	}
	return &ErrorLogger{
		logs:    make([]*models.ErrorLog, 0, maxLogs),
		maxLogs: maxLogs,
	}
}

// LogError records an error log entry
func (e *ErrorLogger) LogError(level, source, message, detail string, contextData map[string]any) {
	stack := stackTrace(3)

	contextJSON := ""
	if contextData != nil {
		if data, err := json.Marshal(contextData); err == nil {
			contextJSON = string(data)
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// Oldest entry goes first
	if len(e.logs) >= e.maxLogs {
		e.logs = e.logs[1:]
	}

	e.idCounter++
	e.logs = append(e.logs, &models.ErrorLog{
		ID:        e.idCounter,
		Timestamp: time.Now(),
		Level:     level,
		Source:    source,
		Message:   message,
		Detail:    detail,
		Stack:     stack,
		Context:   contextJSON,
	})
}

// GetErrorLogs returns the retained entries, latest first
func (e *ErrorLogger) GetErrorLogs() []*models.ErrorLog {
	e.mu.RLock()
	defer e.mu.RUnlock()

	total := len(e.logs)
	result := make([]*models.ErrorLog, total)
	for i := 0; i < total; i++ {
		result[i] = e.logs[total-1-i]
	}
	return result
}

// ClearErrorLogs removes all error logs
func (e *ErrorLogger) ClearErrorLogs() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.logs = make([]*models.ErrorLog, 0, e.maxLogs)
	e.idCounter = 0
}

func stackTrace(skip int) string {
	const maxDepth = 10
	var b strings.Builder

	for i := skip; i < skip+maxDepth; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		funcName := "unknown"
		if fn := runtime.FuncForPC(pc); fn != nil {
			funcName = fn.Name()
		}
		fmt.Fprintf(&b, "%s:%d %s\n", file, line, funcName)
	}

	return b.String()
}

// LogAppError records err under source, pulling process diagnostics out of an AppError.
func LogAppError(source string, err error, contextData map[string]any) {
	if err == nil {
		return
	}

	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Kind == ErrExternalProcess {
		if contextData == nil {
			contextData = map[string]any{}
		}
		contextData["exit_code"] = appErr.ExitCode
		ErrorLoggerInstance.LogError("ERROR", source, appErr.Message, appErr.Output, contextData)
		return
	}
	ErrorLoggerInstance.LogError("ERROR", source, err.Error(), "", contextData)
}

// LogWarn records a warning
func LogWarn(source, message, detail string) {
	ErrorLoggerInstance.LogError("WARN", source, message, detail, nil)
}
