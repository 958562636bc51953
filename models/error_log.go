package models

import "time"

// ErrorLog is one entry of the in-memory error ring served by /api/error-logs.
type ErrorLog struct {
	ID        int       `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`   // ERROR, WARN
	Source    string    `json:"source"`  // FolderSettings, Reindex, Main
	Message   string    `json:"message"`
	Detail    string    `json:"detail"`  // process output for failed reindex runs
	Stack     string    `json:"stack"`
	Context   string    `json:"context"` // JSON-encoded request context
}
