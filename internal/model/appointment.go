package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Appointment statuses. Transitions are unconstrained: any status may
// be replaced by any other via update.
const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentCancelled = "cancelled"
)

// ValidAppointmentStatus reports whether s is a known status value.
func ValidAppointmentStatus(s string) bool {
	return s == AppointmentScheduled || s == AppointmentCompleted || s == AppointmentCancelled
}

// Appointment belongs to one patient. CompanyID is carried redundantly
// so list queries filter by tenant without joining patients.
type Appointment struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	PatientID uuid.UUID `json:"patient_id" gorm:"type:uuid;index;not null"`
	Date      Date      `json:"date" gorm:"not null"`
	Time      string    `json:"time" gorm:"type:varchar(20);not null"`
	Reason    string    `json:"reason" gorm:"type:text;not null"`
	Status    string    `json:"status" gorm:"type:varchar(20);not null;default:'scheduled'"`
	CompanyID uuid.UUID `json:"company_id" gorm:"type:uuid;index;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (a *Appointment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// AppointmentRow is the list/dashboard projection: the patient name is
// joined in at the query boundary rather than resolved lazily.
type AppointmentRow struct {
	Appointment
	PatientName string `json:"patient_name"`
}
