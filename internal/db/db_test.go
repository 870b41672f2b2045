package db

import (
	"path/filepath"
	"testing"

	"github.com/Leganyst/interview-slots/internal/config"
	"github.com/Leganyst/interview-slots/internal/model"
)

func TestNewGormDB_SQLite(t *testing.T) {
	cfg := &config.DBConfig{
		Driver:     config.StorageSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "slots.db"),
	}

	gdb, err := NewGormDB(cfg)
	if err != nil {
		t.Fatalf("NewGormDB: %v", err)
	}
	if err := model.AutoMigrate(gdb); err != nil {
		t.Fatalf("AutoMigrate: %v", err)
	}
	if !gdb.Migrator().HasTable(&model.CatalogSnapshot{}) || !gdb.Migrator().HasTable(&model.Event{}) {
		t.Fatalf("tables were not created")
	}
}

func TestNewGormDB_UnknownDriver(t *testing.T) {
	if _, err := NewGormDB(&config.DBConfig{Driver: "json"}); err == nil {
		t.Fatalf("expected error for unsupported driver")
	}
}
