package models

import (
	"time"

	"gorm.io/gorm"
)

// Case represents a shared clinical case with before/after images
type Case struct {
	ID       string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	AuthorID string `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author,omitempty"`

	// Clinical content
	Title         string      `gorm:"not null" json:"title"`
	Description   string      `gorm:"type:text" json:"description"`
	ProcedureType string      `gorm:"index" json:"procedure_type"` // e.g. "implant", "veneer", "root_canal"
	ToothNotation string      `json:"tooth_notation"`              // FDI notation, e.g. "36"
	Materials     StringArray `gorm:"type:text[]" json:"materials"`
	DurationWeeks int         `json:"duration_weeks"` // treatment duration

	// Images
	BeforeImageURL string      `json:"before_image_url"`
	AfterImageURL  string      `json:"after_image_url"`
	Images         []CaseImage `gorm:"foreignKey:CaseID" json:"images,omitempty"`

	// Consent gating. A case is only ever shown to other users when the
	// author has recorded patient consent AND marked the case public.
	PatientConsent bool `gorm:"default:false;index" json:"patient_consent"`
	IsPublic       bool `gorm:"default:true" json:"is_public"`

	// Engagement metrics
	ViewsCount    int `gorm:"default:0" json:"views_count"`
	SavesCount    int `gorm:"default:0" json:"saves_count"`
	CommentsCount int `gorm:"default:0" json:"comments_count"`

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Visible reports whether the case may be shown to someone other than its author.
func (c *Case) Visible() bool {
	return c.PatientConsent && c.IsPublic
}

// CaseImage stores additional images attached to a case beyond before/after
type CaseImage struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	CaseID string `gorm:"not null;index" json:"case_id"`
	Case   Case   `gorm:"foreignKey:CaseID" json:"-"`

	URL      string `gorm:"not null" json:"url"`
	Caption  string `gorm:"type:text" json:"caption"`
	Position int    `gorm:"default:0" json:"position"` // order within the case

	// GORM fields
	CreatedAt time.Time `json:"created_at"`
}

// SavedCase represents a user bookmarking a case
type SavedCase struct {
	ID     string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID string `gorm:"not null;index:idx_saved_cases_pair,unique" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CaseID string `gorm:"not null;index:idx_saved_cases_pair,unique" json:"case_id"`
	Case   Case   `gorm:"foreignKey:CaseID" json:"case,omitempty"`

	// GORM fields
	CreatedAt time.Time `json:"created_at"`
}

// TableName ensures one save per user per case
func (SavedCase) TableName() string {
	return "saved_cases"
}

func (c *Case) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}

func (ci *CaseImage) BeforeCreate(tx *gorm.DB) error {
	if ci.ID == "" {
		ci.ID = generateUUID()
	}
	return nil
}

func (sc *SavedCase) BeforeCreate(tx *gorm.DB) error {
	if sc.ID == "" {
		sc.ID = generateUUID()
	}
	return nil
}
