package repository

import (
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/faceattend/attendbackend/database"
)

// newTestDB opens a throwaway sqlite database with the production init path
// (WAL, error translation, migrations) so repository tests exercise the real
// storage behavior
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.InitGormDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitGormDB failed: %v", err)
	}
	if err := database.AutoMigrateModels(db); err != nil {
		t.Fatalf("AutoMigrateModels failed: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
