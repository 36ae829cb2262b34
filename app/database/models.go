package database

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"lubd/pkg/utils"
)

// User mirrors the upstream identity record, keyed by the subject claim
// of the access token. PasswordHash is only set for accounts registered
// locally; records mirrored from the upstream profile endpoint keep it
// empty.
type User struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	Username     string     `json:"username" gorm:"uniqueIndex;not null"`
	Email        *string    `json:"email"`
	ProfileImage *string    `json:"profile_image"`
	Positions    string     `json:"positions" gorm:"default:'User'"`
	PasswordHash string     `json:"-"`
	IsStaff      bool       `json:"is_staff" gorm:"default:false"`
	CreatedAt    time.Time  `json:"created_at"`
	Properties   []Property `json:"properties" gorm:"many2many:user_properties"`
}

// Property is a managed facility unit. PropertyID is the public
// identifier ("P" + 8 hex chars), generated on create when absent.
type Property struct {
	ID          uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	PropertyID  string    `json:"property_id" gorm:"uniqueIndex"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	Rooms       []Room    `json:"rooms,omitempty" gorm:"many2many:property_rooms"`
}

func (p *Property) BeforeCreate(tx *gorm.DB) error {
	if p.PropertyID == "" {
		p.PropertyID = fmt.Sprintf("P%s", utils.GenerateRandomHex(8))
	}
	return nil
}

// UserProperty links a user to a property. The composite primary key
// enforces at most one row per (user, property) pair; rows are created
// lazily and never updated.
type UserProperty struct {
	UserID     string    `json:"user_id" gorm:"primaryKey"`
	PropertyID uint      `json:"property_id" gorm:"primaryKey"`
	CreatedAt  time.Time `json:"created_at"`
}

type Room struct {
	ID         uint       `json:"room_id" gorm:"primaryKey;autoIncrement"`
	Name       string     `json:"name" gorm:"not null"`
	RoomType   string     `json:"room_type" gorm:"index"`
	IsActive   bool       `json:"is_active" gorm:"default:true"`
	CreatedAt  time.Time  `json:"created_at"`
	Properties []Property `json:"properties,omitempty" gorm:"many2many:property_rooms"`
}

type Topic struct {
	ID          uint    `json:"id" gorm:"primaryKey;autoIncrement"`
	Title       string  `json:"title" gorm:"uniqueIndex;not null"`
	Description *string `json:"description"`
}

type JobStatus string

const (
	JobStatusPending          JobStatus = "pending"
	JobStatusInProgress       JobStatus = "in_progress"
	JobStatusWaitingSparepart JobStatus = "waiting_sparepart"
	JobStatusCompleted        JobStatus = "completed"
	JobStatusCancelled        JobStatus = "cancelled"
)

const (
	JobPriorityLow    = "low"
	JobPriorityMedium = "medium"
	JobPriorityHigh   = "high"
)

// Job is a maintenance job, reactive or preventive. JobID is the public
// identifier ("j" + two-digit year + 6 hex chars).
type Job struct {
	ID                      uint       `json:"id" gorm:"primaryKey;autoIncrement"`
	JobID                   string     `json:"job_id" gorm:"uniqueIndex;<-:create"`
	UserID                  string     `json:"-"`
	User                    *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	UpdatedByID             *string    `json:"-"`
	UpdatedBy               *User      `json:"updated_by,omitempty" gorm:"foreignKey:UpdatedByID"`
	PropertyID              *string    `json:"property_id"` // public property identifier this job is scoped to
	Description             string     `json:"description"`
	Remarks                 string     `json:"remarks"`
	Status                  JobStatus  `json:"status" gorm:"index;default:'pending'"`
	Priority                string     `json:"priority" gorm:"default:'medium'"`
	IsDefective             bool       `json:"is_defective"`
	IsPreventiveMaintenance bool       `json:"is_preventivemaintenance" gorm:"index"`
	DueDate                 *time.Time `json:"due_date"`
	Rooms                   []Room     `json:"rooms,omitempty" gorm:"many2many:job_rooms"`
	Topics                  []Topic    `json:"topics,omitempty" gorm:"many2many:job_topics"`
	Images                  []JobImage `json:"images,omitempty" gorm:"foreignKey:JobRecordID"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
	CompletedAt             *time.Time `json:"completed_at"`
}

func (j *Job) BeforeCreate(tx *gorm.DB) error {
	if j.JobID == "" {
		j.JobID = fmt.Sprintf("j%s%s", time.Now().Format("06"), utils.GenerateRandomHex(6))
	}
	return nil
}

type JobImage struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	JobRecordID  uint      `json:"-" gorm:"index"`
	Key          string    `json:"-" gorm:"uniqueIndex;not null"`
	URL          string    `json:"image_url"`
	UploadedByID *string   `json:"uploaded_by"`
	UploadedAt   time.Time `json:"uploaded_at" gorm:"autoCreateTime"`
}

// Session is the materialized login session; one row per user, replaced
// on re-login.
type Session struct {
	ID           uint      `json:"-" gorm:"primaryKey;autoIncrement"`
	SessionToken string    `json:"session_token" gorm:"uniqueIndex;not null"`
	UserID       string    `json:"user_id" gorm:"uniqueIndex"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}

func (s *Session) IsExpired() bool {
	return !time.Now().Before(s.ExpiresAt)
}

type ResetKey struct {
	Key        string    `json:"key" gorm:"primaryKey"`
	UserID     string    `json:"user_id"`
	CreateDate time.Time `json:"create_date" gorm:"autoCreateTime"`
}
