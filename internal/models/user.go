package models

import (
	"database/sql/driver"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StringArray is a custom type for PostgreSQL text[] that implements Scanner and Valuer
type StringArray []string

// Scan implements the sql.Scanner interface for reading from database
func (a *StringArray) Scan(value interface{}) error {
	if value == nil {
		*a = nil
		return nil
	}

	// PostgreSQL returns text[] as a string like "{value1,value2,value3}"
	str, ok := value.(string)
	if !ok {
		// Try []byte
		if bytes, ok := value.([]byte); ok {
			str = string(bytes)
		} else {
			*a = nil
			return nil
		}
	}

	// Remove the curly braces
	str = strings.TrimPrefix(str, "{")
	str = strings.TrimSuffix(str, "}")

	if str == "" {
		*a = []string{}
		return nil
	}

	// Split by comma (simple case - doesn't handle quoted values with commas)
	*a = strings.Split(str, ",")
	return nil
}

// Value implements the driver.Valuer interface for writing to database
func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	if len(a) == 0 {
		return "{}", nil
	}
	return "{" + strings.Join(a, ",") + "}", nil
}

// FeedPreferences stores a user's default feed view. Persisted per user so
// preferences follow the account across devices; never ambient global state.
type FeedPreferences struct {
	DefaultSort   string `json:"default_sort,omitempty"`   // "latest", "trending", "my_network"
	DefaultFilter string `json:"default_filter,omitempty"` // "all", "cases", "threads", "clinics", "professionals"
}

// User represents a Dentlink practitioner account
type User struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	Email       string `gorm:"uniqueIndex;not null" json:"email"`
	Username    string `gorm:"uniqueIndex;not null" json:"username"`
	DisplayName string `gorm:"not null" json:"display_name"`
	Bio         string `gorm:"type:text" json:"bio"`
	Location    string `gorm:"type:text" json:"location"` // City/Country

	// Native auth fields
	PasswordHash  *string `gorm:"type:text" json:"-"`
	EmailVerified bool    `gorm:"default:false" json:"email_verified"`

	// Professional profile data
	AvatarURL       string      `json:"avatar_url"`
	Headline        string      `gorm:"type:text" json:"headline"` // e.g. "Implantologist at Smile Clinic"
	Specialty       string      `json:"specialty"`                 // e.g. "orthodontics", "endodontics"
	Credential      string      `json:"credential"`                // e.g. "DDS", "DMD", "BDS"
	Procedures      StringArray `gorm:"type:text[]" json:"procedures"`
	VerifiedDentist bool        `gorm:"default:false" json:"verified_dentist"`
	IsAdmin         bool        `gorm:"default:false" json:"-"`

	// Feed preferences (explicit per-user configuration, see FeedPreferences)
	FeedPreferences *FeedPreferences `gorm:"type:jsonb;serializer:json" json:"feed_preferences,omitempty"`

	// Social stats (cached counters, maintained by the social handlers)
	FollowerCount  int `gorm:"default:0" json:"follower_count"`
	FollowingCount int `gorm:"default:0" json:"following_count"`
	CaseCount      int `gorm:"default:0" json:"case_count"`

	// Activity tracking
	LastActiveAt *time.Time `json:"last_active_at"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Summary returns the author/owner projection attached to feed content.
func (u *User) Summary() UserSummary {
	return UserSummary{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarURL:   u.AvatarURL,
		Credential:  u.Credential,
		Specialty:   u.Specialty,
	}
}

// UserSummary is the slim author/owner view joined onto content rows
type UserSummary struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	Credential  string `json:"credential"`
	Specialty   string `json:"specialty"`
}

// Follow represents a follower -> following edge in the social graph
type Follow struct {
	ID          string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	FollowerID  string `gorm:"not null;index:idx_follows_pair,unique;index" json:"follower_id"`
	Follower    User   `gorm:"foreignKey:FollowerID" json:"follower,omitempty"`
	FollowingID string `gorm:"not null;index:idx_follows_pair,unique;index" json:"following_id"`
	Following   User   `gorm:"foreignKey:FollowingID" json:"following,omitempty"`

	// GORM fields
	CreatedAt time.Time `json:"created_at"`
}

// TableName ensures one edge per user pair
func (Follow) TableName() string {
	return "follows"
}

// PasswordReset represents password reset tokens
type PasswordReset struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"not null;index" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Token     string    `gorm:"uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	Used      bool      `gorm:"default:false" json:"used"`

	// GORM fields
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hooks for GORM
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = generateUUID()
	}
	return nil
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = generateUUID()
	}
	return nil
}

func (p *PasswordReset) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = generateUUID()
	}
	return nil
}

// Helper function for UUID generation
func generateUUID() string {
	return uuid.New().String()
}
