package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FollowUp statuses
const (
	FollowUpOpen      = "open"
	FollowUpCompleted = "completed"
)

// ValidFollowUpStatus reports whether s is a known status value.
func ValidFollowUpStatus(s string) bool {
	return s == FollowUpOpen || s == FollowUpCompleted
}

// FollowUp is a pending task attached to a patient.
type FollowUp struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	PatientID   uuid.UUID `json:"patient_id" gorm:"type:uuid;index;not null"`
	Title       string    `json:"title" gorm:"type:varchar(200);not null"`
	Description *string   `json:"description,omitempty" gorm:"type:text"`
	DueDate     Date      `json:"due_date" gorm:"not null"`
	Status      string    `json:"status" gorm:"type:varchar(20);not null;default:'open'"`
	CompanyID   uuid.UUID `json:"company_id" gorm:"type:uuid;index;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (f *FollowUp) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// FollowUpRow is the list/dashboard projection with the patient name
// joined in at the query boundary.
type FollowUpRow struct {
	FollowUp
	PatientName string `json:"patient_name"`
}
