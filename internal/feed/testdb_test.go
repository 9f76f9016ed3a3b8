package feed

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)

	// Create tables manually with SQLite-compatible syntax
	// (GORM AutoMigrate tries to use PostgreSQL-specific features like gen_random_uuid)
	err = db.Exec(`
		CREATE TABLE users (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			username TEXT NOT NULL,
			display_name TEXT NOT NULL,
			bio TEXT,
			location TEXT,
			password_hash TEXT,
			email_verified INTEGER DEFAULT 0,
			avatar_url TEXT,
			headline TEXT,
			specialty TEXT,
			credential TEXT,
			procedures TEXT,
			verified_dentist INTEGER DEFAULT 0,
			is_admin INTEGER DEFAULT 0,
			feed_preferences TEXT,
			follower_count INTEGER DEFAULT 0,
			following_count INTEGER DEFAULT 0,
			case_count INTEGER DEFAULT 0,
			last_active_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE follows (
			id TEXT PRIMARY KEY,
			follower_id TEXT NOT NULL,
			following_id TEXT NOT NULL,
			created_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE cases (
			id TEXT PRIMARY KEY,
			author_id TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			procedure_type TEXT,
			tooth_notation TEXT,
			materials TEXT,
			duration_weeks INTEGER,
			before_image_url TEXT,
			after_image_url TEXT,
			patient_consent INTEGER DEFAULT 0,
			is_public INTEGER DEFAULT 1,
			views_count INTEGER DEFAULT 0,
			saves_count INTEGER DEFAULT 0,
			comments_count INTEGER DEFAULT 0,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE forum_threads (
			id TEXT PRIMARY KEY,
			author_id TEXT NOT NULL,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			category TEXT,
			is_pinned INTEGER DEFAULT 0,
			is_locked INTEGER DEFAULT 0,
			replies_count INTEGER DEFAULT 0,
			views_count INTEGER DEFAULT 0,
			last_activity_at DATETIME,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	err = db.Exec(`
		CREATE TABLE clinics (
			id TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			location TEXT,
			address TEXT,
			services TEXT,
			website TEXT,
			phone TEXT,
			logo_url TEXT,
			created_at DATETIME,
			updated_at DATETIME,
			deleted_at DATETIME
		)
	`).Error
	require.NoError(t, err)

	return db
}
