package models

import (
	"time"

	"gorm.io/gorm"
)

// Clinic represents a practice page owned by a practitioner
type Clinic struct {
	ID      string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	OwnerID string `gorm:"not null;index" json:"owner_id"`
	Owner   User   `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`

	// Page content
	Name        string      `gorm:"not null" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Location    string      `gorm:"index" json:"location"` // City/Country
	Address     string      `gorm:"type:text" json:"address"`
	Services    StringArray `gorm:"type:text[]" json:"services"` // e.g. "implants", "whitening"
	Website     string      `json:"website"`
	Phone       string      `json:"phone"`
	LogoURL     string      `json:"logo_url"`

	// GORM fields. UpdatedAt drives the recent-clinic-activity sidebar.
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `gorm:"index" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Clinic) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = generateUUID()
	}
	return nil
}
