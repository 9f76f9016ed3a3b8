package models

import (
	"time"

	"gorm.io/gorm"
)

// ReportReason represents the reason for a report
type ReportReason string

const (
	ReportReasonSpam           ReportReason = "spam"
	ReportReasonHarassment     ReportReason = "harassment"
	ReportReasonPatientPrivacy ReportReason = "patient_privacy"
	ReportReasonMisinformation ReportReason = "misinformation"
	ReportReasonInappropriate  ReportReason = "inappropriate"
	ReportReasonImpersonation  ReportReason = "impersonation"
	ReportReasonOther          ReportReason = "other"
)

// ValidReportReasons lists accepted values for request validation
var ValidReportReasons = []ReportReason{
	ReportReasonSpam,
	ReportReasonHarassment,
	ReportReasonPatientPrivacy,
	ReportReasonMisinformation,
	ReportReasonInappropriate,
	ReportReasonImpersonation,
	ReportReasonOther,
}

// ReportStatus represents the status of a report
type ReportStatus string

const (
	ReportStatusPending   ReportStatus = "pending"
	ReportStatusReviewing ReportStatus = "reviewing"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"
)

// ReportTargetType represents what type of content is being reported
type ReportTargetType string

const (
	ReportTargetCase   ReportTargetType = "case"
	ReportTargetThread ReportTargetType = "thread"
	ReportTargetReply  ReportTargetType = "reply"
	ReportTargetClinic ReportTargetType = "clinic"
	ReportTargetUser   ReportTargetType = "user"
)

// Report represents a user report for moderation
type Report struct {
	ID         string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	ReporterID string `gorm:"not null;index" json:"reporter_id"`
	Reporter   User   `gorm:"foreignKey:ReporterID" json:"reporter,omitempty"`

	// Target of the report
	TargetType   ReportTargetType `gorm:"not null" json:"target_type"`
	TargetID     string           `gorm:"not null;index" json:"target_id"`
	TargetUserID *string          `gorm:"index" json:"target_user_id"` // author/owner of the reported content

	// Report details
	Reason      ReportReason `gorm:"not null" json:"reason"`
	Description string       `gorm:"type:text" json:"description"`
	Status      ReportStatus `gorm:"default:pending" json:"status"`

	// Moderation action
	ModeratorID *string `gorm:"index" json:"moderator_id"`
	Moderator   *User   `gorm:"foreignKey:ModeratorID" json:"moderator,omitempty"`
	ActionTaken string  `gorm:"type:text" json:"action_taken"` // "warned", "removed", "banned", etc.

	// GORM fields
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// NotificationType identifies what happened
type NotificationType string

const (
	NotificationFollow     NotificationType = "follow"
	NotificationCaseSave   NotificationType = "case_save"
	NotificationReply      NotificationType = "reply"
	NotificationModeration NotificationType = "moderation"
)

// Notification is a stored in-app notification. Delivery channels (email,
// push) are out of scope; rows are written by handlers and read via the API.
type Notification struct {
	ID      string `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	UserID  string `gorm:"not null;index" json:"user_id"` // recipient
	User    User   `gorm:"foreignKey:UserID" json:"-"`
	ActorID string `gorm:"index" json:"actor_id"` // who triggered it
	Actor   User   `gorm:"foreignKey:ActorID" json:"actor,omitempty"`

	Type       NotificationType `gorm:"not null" json:"type"`
	TargetType string           `json:"target_type"` // "case", "thread", "user"
	TargetID   string           `json:"target_id"`
	Message    string           `gorm:"type:text" json:"message"`

	Read   bool       `gorm:"default:false;index" json:"read"`
	ReadAt *time.Time `json:"read_at,omitempty"`

	// GORM fields
	CreatedAt time.Time `json:"created_at"`
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = generateUUID()
	}
	return nil
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = generateUUID()
	}
	return nil
}
