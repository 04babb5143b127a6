// Package dbtest hands tests a migrated, throwaway sqlite database.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mytheresa/storefront/app/database"
)

// New opens a private in-memory database with the full schema applied.
// It is closed when the test finishes.
func New(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := database.Open("sqlite://:memory:", false)
	require.NoError(t, err)

	_, err = database.Migrate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}
