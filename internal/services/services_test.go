package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"github.com/vitalityhub/vitality-helper/internal/database"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	// In-memory sqlite is per-connection; keep the pool at one.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// seedUser creates the tracked account and returns it.
func seedUser(t *testing.T, db *gorm.DB, coins int) *database.User {
	t.Helper()

	user := &database.User{
		Name:              "Alex",
		Coins:             coins,
		BuddyName:         "Sarah",
		BuddyContact:      "sarah@example.com",
		MedicalConditions: "[]",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) *database.User {
	t.Helper()

	var user database.User
	require.NoError(t, db.First(&user, id).Error)
	return &user
}
