package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors the subset of Config that may be set from a TOML file.
// Pointer fields distinguish "absent" from zero values.
type fileConfig struct {
	LogLevel    *string `toml:"log_level"`
	LogFile     *string `toml:"log_file"`
	Port        *int    `toml:"port"`
	DatabaseURL *string `toml:"database_url"`

	SQLite struct {
		PragmasEnabled *bool   `toml:"pragmas_enabled"`
		BusyTimeoutMS  *int    `toml:"busy_timeout_ms"`
		JournalMode    *string `toml:"journal_mode"`
		Synchronous    *string `toml:"synchronous"`
		ForeignKeys    *bool   `toml:"foreign_keys"`
		MaxOpenConns   *int    `toml:"max_open_conns"`
		MaxIdleConns   *int    `toml:"max_idle_conns"`
	} `toml:"sqlite"`

	Reindex struct {
		Command        *string `toml:"command"`
		Service        *string `toml:"service"`
		Interpreter    *string `toml:"interpreter"`
		Script         *string `toml:"script"`
		FitsRoot       *string `toml:"fits_root"`
		TimeoutSeconds *int    `toml:"timeout_seconds"`
	} `toml:"reindex"`
}

// LoadFile reads a TOML config file and applies every key it sets onto cfg.
func LoadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return applyTOML(data, cfg)
}

func applyTOML(data []byte, cfg *Config) error {
	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFilePath, fc.LogFile)
	setInt(&cfg.Port, fc.Port)
	setString(&cfg.DatabaseURL, fc.DatabaseURL)

	setBool(&cfg.SQLitePragmasEnabled, fc.SQLite.PragmasEnabled)
	setInt(&cfg.SQLiteBusyTimeoutMS, fc.SQLite.BusyTimeoutMS)
	setString(&cfg.SQLiteJournalMode, fc.SQLite.JournalMode)
	setString(&cfg.SQLiteSynchronous, fc.SQLite.Synchronous)
	setBool(&cfg.SQLiteForeignKeys, fc.SQLite.ForeignKeys)
	setInt(&cfg.SQLiteMaxOpenConns, fc.SQLite.MaxOpenConns)
	setInt(&cfg.SQLiteMaxIdleConns, fc.SQLite.MaxIdleConns)

	setString(&cfg.ReindexCommand, fc.Reindex.Command)
	setString(&cfg.ReindexService, fc.Reindex.Service)
	setString(&cfg.ReindexInterpreter, fc.Reindex.Interpreter)
	setString(&cfg.ReindexScript, fc.Reindex.Script)
	setString(&cfg.FitsRoot, fc.Reindex.FitsRoot)
	setInt(&cfg.ReindexTimeoutSeconds, fc.Reindex.TimeoutSeconds)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setInt(dst *int, v *int) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
