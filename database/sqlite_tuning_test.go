package database

import (
	"awi/config"
	"strings"
	"testing"
)

func TestBuildSQLiteDSN_PragmaParams(t *testing.T) {
	cfg := &config.Config{
		SQLitePragmasEnabled: true,
		SQLiteBusyTimeoutMS:  5000,
		SQLiteJournalMode:    "wal",
		SQLiteSynchronous:    "NORMAL",
		SQLiteForeignKeys:    true,
	}

	dsn := buildSQLiteDSN("awi.db", cfg)
	for _, want := range []string{
		"_pragma=busy_timeout%285000%29",
		"_pragma=journal_mode%28WAL%29",
		"_pragma=synchronous%28NORMAL%29",
		"_pragma=foreign_keys%281%29",
	} {
		if !strings.Contains(dsn, want) {
			t.Fatalf("expected DSN to contain %q, got %q", want, dsn)
		}
	}
}

func TestBuildSQLiteDSN_PreservesExistingQuery(t *testing.T) {
	cfg := &config.Config{SQLitePragmasEnabled: true}
	dsn := buildSQLiteDSN("awi.db?cache=shared", cfg)
	if !strings.Contains(dsn, "cache=shared") {
		t.Fatalf("expected existing query to be preserved, got %q", dsn)
	}
	if !strings.Contains(dsn, "_pragma=foreign_keys%280%29") {
		t.Fatalf("expected foreign_keys(0) pragma, got %q", dsn)
	}
}

func TestBuildSQLiteDSN_PragmasDisabled(t *testing.T) {
	if dsn := buildSQLiteDSN("awi.db", &config.Config{}); dsn != "awi.db" {
		t.Fatalf("expected bare path, got %q", dsn)
	}
}

func TestBuildSQLiteDSN_SkipsInvalidModes(t *testing.T) {
	cfg := &config.Config{
		SQLitePragmasEnabled: true,
		SQLiteJournalMode:    "sideways",
		SQLiteSynchronous:    "9",
	}
	dsn := buildSQLiteDSN("awi.db", cfg)
	if strings.Contains(dsn, "journal_mode") || strings.Contains(dsn, "synchronous") {
		t.Fatalf("expected invalid modes to be dropped, got %q", dsn)
	}
}

func TestCurrentSQLitePoolConfig_Clamps(t *testing.T) {
	pool := currentSQLitePoolConfig(&config.Config{
		SQLiteMaxOpenConns:   0,
		SQLiteMaxIdleConns:   5,
		SQLiteConnMaxIdleSec: -1,
		SQLiteConnMaxLifeSec: -10,
	})
	if pool.maxOpenConns != 1 || pool.maxIdleConns != 1 {
		t.Fatalf("unexpected conns: open=%d idle=%d", pool.maxOpenConns, pool.maxIdleConns)
	}
	if pool.maxIdleSec != 0 || pool.maxLifeSec != 0 {
		t.Fatalf("unexpected durations: idle=%d life=%d", pool.maxIdleSec, pool.maxLifeSec)
	}
}
