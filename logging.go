package main

import (
	"fmt"
	"io"
	"log"
	"os"
)

// setupLogging points the standard logger at console and a fresh log file at path.
// The previous file is kept as path.1. It returns the opened file so callers
// can close it on shutdown.
func setupLogging(path string, console io.Writer) (*os.File, error) {
	if path == "" {
		return nil, fmt.Errorf("log file path is empty")
	}
	if err := rotateLog(path); err != nil {
		return nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	if console != nil {
		log.SetOutput(io.MultiWriter(console, f))
	} else {
		log.SetOutput(f)
	}
	return f, nil
}

// rotateLog moves path to path.1, replacing any older backup.
func rotateLog(path string) error {
	backup := path + ".1"
	if err := os.Remove(backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove old log %s: %w", backup, err)
	}
	if err := os.Rename(path, backup); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to rotate existing log: %w", err)
	}
	return nil
}
