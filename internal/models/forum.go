package models

import (
	"time"

	"gorm.io/gorm"
)

// ForumThread represents a discussion thread
type ForumThread struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	AuthorID string `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	// Content
	Title    string `gorm:"not null" json:"title"`
	Body     string `gorm:"type:text;not null" json:"body"`
	Category string `gorm:"index" json:"category"` // e.g. "clinical", "practice_management", "equipment"
	IsPinned bool   `gorm:"default:false" json:"is_pinned"`
	IsLocked bool   `gorm:"default:false" json:"is_locked"`

	// Engagement metrics
	RepliesCount int `gorm:"default:0" json:"replies_count"`
	ViewsCount   int `gorm:"default:0" json:"views_count"`

	// Bumped on every new reply, drives the active-discussions sidebar
	LastActivityAt time.Time `gorm:"index" json:"last_activity_at"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// ForumReply represents a reply within a thread
type ForumReply struct {
	ID       string      `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ThreadID string      `gorm:"not null;index" json:"thread_id"`
	Thread   ForumThread `gorm:"foreignKey:ThreadID" json:"-"`
	AuthorID string      `gorm:"not null;index" json:"author_id"`
	Author   User        `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	Body string `gorm:"type:text;not null" json:"body"`

	// Threading - parent_id is null for top-level replies
	ParentID *string `gorm:"type:uuid;index" json:"parent_id,omitempty"`

	// Moderation
	IsDeleted bool `gorm:"default:false" json:"is_deleted"` // soft remove, keeps thread structure

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (t *ForumThread) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = generateUUID()
	}
	if t.LastActivityAt.IsZero() {
		t.LastActivityAt = time.Now().UTC()
	}
	return nil
}

func (r *ForumReply) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	return nil
}
