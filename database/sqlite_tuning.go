package database

import (
	"awi/config"
	"fmt"
	"net/url"
	"strings"
)

type sqlitePoolConfig struct {
	maxOpenConns int
	maxIdleConns int
	maxIdleSec   int
	maxLifeSec   int
}

// currentSQLitePoolConfig reads pool limits from settings and clamps them:
// at least one open connection, idle connections within [0, open], no negative durations.
func currentSQLitePoolConfig(settings *config.Config) sqlitePoolConfig {
	cfg := sqlitePoolConfig{
		maxOpenConns: max(settings.SQLiteMaxOpenConns, 1),
		maxIdleConns: max(settings.SQLiteMaxIdleConns, 0),
		maxIdleSec:   max(settings.SQLiteConnMaxIdleSec, 0),
		maxLifeSec:   max(settings.SQLiteConnMaxLifeSec, 0),
	}
	cfg.maxIdleConns = min(cfg.maxIdleConns, cfg.maxOpenConns)
	return cfg
}

// sqlitePragmas lists the PRAGMAs implied by settings, in DSN form ("name(value)").
func sqlitePragmas(settings *config.Config) []string {
	if !settings.SQLitePragmasEnabled {
		return nil
	}

	var pragmas []string
	if settings.SQLiteBusyTimeoutMS > 0 {
		pragmas = append(pragmas, fmt.Sprintf("busy_timeout(%d)", settings.SQLiteBusyTimeoutMS))
	}
	if mode := normalizeSQLiteJournalMode(settings.SQLiteJournalMode); mode != "" {
		pragmas = append(pragmas, "journal_mode("+mode+")")
	}
	if sync := normalizeSQLiteSynchronous(settings.SQLiteSynchronous); sync != "" {
		pragmas = append(pragmas, "synchronous("+sync+")")
	}
	if settings.SQLiteForeignKeys {
		pragmas = append(pragmas, "foreign_keys(1)")
	} else {
		pragmas = append(pragmas, "foreign_keys(0)")
	}
	return pragmas
}

// buildSQLiteDSN appends the configured PRAGMAs to dbPath as _pragma query
// parameters, keeping any parameters already present.
func buildSQLiteDSN(dbPath string, settings *config.Config) string {
	base, rawQuery, _ := strings.Cut(dbPath, "?")
	query, _ := url.ParseQuery(rawQuery)

	for _, p := range sqlitePragmas(settings) {
		query.Add("_pragma", p)
	}

	if len(query) == 0 {
		return base
	}
	return base + "?" + query.Encode()
}

// normalizeSQLiteJournalMode returns the uppercase journal mode, or "" when value is not a mode SQLite accepts.
func normalizeSQLiteJournalMode(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch value {
	case "WAL", "DELETE", "TRUNCATE", "PERSIST", "MEMORY", "OFF":
		return value
	}
	return ""
}

func normalizeSQLiteSynchronous(value string) string {
	value = strings.ToUpper(strings.TrimSpace(value))
	switch value {
	case "OFF", "NORMAL", "FULL", "EXTRA", "0", "1", "2", "3":
		return value
	}
	return ""
}
