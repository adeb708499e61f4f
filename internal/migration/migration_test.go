package migration

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRunMigrationsSQLite(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)

	require.NoError(t, RunMigrations(sqlDB, db.Dialector.Name()))
	// A second run finds nothing to apply.
	require.NoError(t, RunMigrations(sqlDB, db.Dialector.Name()))

	for _, table := range []string{"menu_items", "dining_tables", "orders", "order_lines", "audit_logs"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}

	require.NoError(t, db.Exec(
		`INSERT INTO dining_tables (id, name, capacity, status, created_at, updated_at) VALUES (1, 'T1', 4, 'available', '2026-01-01 00:00:00', '2026-01-01 00:00:00')`,
	).Error)
	err = db.Exec(
		`INSERT INTO dining_tables (id, name, capacity, status, created_at, updated_at) VALUES (2, 'T1', 2, 'available', '2026-01-01 00:00:00', '2026-01-01 00:00:00')`,
	).Error
	assert.Error(t, err)
}

func TestRunMigrationsRejectsUnknownDialect(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)

	assert.Error(t, RunMigrations(sqlDB, "oracle"))
	assert.Error(t, RunMigrations(nil, "sqlite"))
}
