package database

import (
	"awi/config"
	"context"
	"path/filepath"
	"testing"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DatabaseURL:          filepath.Join(t.TempDir(), "awi.db"),
		SQLitePragmasEnabled: true,
		SQLiteBusyTimeoutMS:  1000,
		SQLiteJournalMode:    "WAL",
		SQLiteSynchronous:    "NORMAL",
		SQLiteMaxOpenConns:   1,
		SQLiteMaxIdleConns:   1,
	}
}

func TestOpenMigratesAndPings(t *testing.T) {
	db, err := Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if !db.Migrator().HasTable("folder_stretch_settings") {
		t.Fatalf("expected folder_stretch_settings table")
	}
	if !db.Migrator().HasTable("app_settings") {
		t.Fatalf("expected app_settings table")
	}
	if !SQLiteUp(context.Background(), db) {
		t.Fatalf("expected database to answer ping")
	}
}

func TestOpenNilSettings(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Fatalf("expected error for nil settings")
	}
}

func TestKeyValueStore(t *testing.T) {
	db, err := Open(testConfig(t))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	store := NewKeyValueStore(db)
	ctx := context.Background()

	if _, ok, err := store.Get(ctx, "reindex.last_run"); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "reindex.last_run", `{"folder":"M31"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := store.Set(ctx, " reindex.last_run ", `{"folder":"M42"}`); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	value, ok, err := store.Get(ctx, "reindex.last_run")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if value != `{"folder":"M42"}` {
		t.Fatalf("unexpected value %q", value)
	}

	if err := store.Set(ctx, "  ", "x"); err == nil {
		t.Fatalf("expected error for empty key")
	}
	if _, _, err := (*KeyValueStore)(nil).Get(ctx, "k"); err == nil {
		t.Fatalf("expected error for nil store")
	}
}
