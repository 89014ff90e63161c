package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T, entities ...interface{}) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	// The shared in-memory database survives between tests in this package;
	// start each test from empty tables.
	require.NoError(t, db.Migrator().DropTable(entities...))
	require.NoError(t, db.AutoMigrate(entities...))
	return db
}
