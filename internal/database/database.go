package database

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dentlink/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the database connection
var DB *gorm.DB

// Initialize creates and configures the database connection
func Initialize() error {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		// Fallback to individual components
		host := getEnvOrDefault("DB_HOST", "localhost")
		port := getEnvOrDefault("DB_PORT", "5432")
		user := getEnvOrDefault("DB_USER", "postgres")
		password := getEnvOrDefault("DB_PASSWORD", "")
		dbname := getEnvOrDefault("DB_NAME", "dentlink")
		sslmode := getEnvOrDefault("DB_SSLMODE", "disable")

		databaseURL = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			host, port, user, password, dbname, sslmode)
	}

	// Configure GORM logger
	gormLogger := logger.Default
	if os.Getenv("ENVIRONMENT") == "development" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	// Open database connection
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: gormLogger,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Configure connection pool
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	DB = db
	log.Println("✅ Database connected successfully")

	return nil
}

// Migrate runs auto-migration for all models
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database not initialized")
	}

	// Enable UUID extension for PostgreSQL
	err := DB.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error
	if err != nil {
		log.Printf("Warning: Could not create uuid-ossp extension: %v", err)
	}

	// Auto-migrate all models
	err = DB.AutoMigrate(
		&models.User{},
		&models.PasswordReset{},
		&models.Follow{},
		&models.Case{},
		&models.CaseImage{},
		&models.SavedCase{},
		&models.ForumThread{},
		&models.ForumReply{},
		&models.Clinic{},
		&models.Report{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create indexes for performance
	err = createIndexes()
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	log.Println("✅ Database migrations completed")
	return nil
}

// createIndexes creates performance indexes
func createIndexes() error {
	// User indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username))")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_users_specialty ON users (specialty)")

	// Follow graph indexes - the membership resolver reads follower_id
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_follows_follower ON follows (follower_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_follows_following ON follows (following_id)")
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_follows_unique ON follows (follower_id, following_id)")

	// Case indexes for feed queries
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_cases_author_created ON cases (author_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_cases_visible_created ON cases (patient_consent, is_public, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_cases_procedure_created ON cases (procedure_type, created_at DESC)")

	// Saved case indexes
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_saved_cases_unique ON saved_cases (user_id, case_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_saved_cases_case ON saved_cases (case_id)")

	// Forum indexes - last_activity_at drives the active-discussions sidebar
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_forum_threads_activity ON forum_threads (last_activity_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_forum_threads_category ON forum_threads (category, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_forum_replies_thread ON forum_replies (thread_id, created_at)")

	// Clinic indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_clinics_owner ON clinics (owner_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_clinics_updated ON clinics (updated_at DESC)")

	// Report indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_reports_reporter ON reports (reporter_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_reports_target ON reports (target_type, target_id)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_reports_status ON reports (status)")
	DB.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_reports_unique ON reports (reporter_id, target_type, target_id) WHERE deleted_at IS NULL")

	// Notification indexes
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_user_created ON notifications (user_id, created_at DESC)")
	DB.Exec("CREATE INDEX IF NOT EXISTS idx_notifications_user_unread ON notifications (user_id) WHERE read = false")

	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
