package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note is a free-text entry on a patient, attributed to its author.
type Note struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	PatientID       uuid.UUID `json:"patient_id" gorm:"type:uuid;index;not null"`
	Content         string    `json:"content" gorm:"type:text;not null"`
	CreatedByUserID uuid.UUID `json:"created_by_user_id" gorm:"type:uuid;not null"`
	CompanyID       uuid.UUID `json:"company_id" gorm:"type:uuid;index;not null"`
	CreatedAt       time.Time `json:"created_at"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// NoteRow is the list projection with the author name joined in.
type NoteRow struct {
	Note
	CreatedBy string `json:"created_by"`
}
