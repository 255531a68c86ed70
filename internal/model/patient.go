package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Patient represents a patient record owned by one company.
type Patient struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name        string    `json:"name" gorm:"type:varchar(200);not null"`
	Email       string    `json:"email" gorm:"type:varchar(100);not null"`
	Phone       string    `json:"phone" gorm:"type:varchar(50);not null"`
	DateOfBirth *Date     `json:"date_of_birth,omitempty"`
	Address     *string   `json:"address,omitempty" gorm:"type:text"`
	CompanyID   uuid.UUID `json:"company_id" gorm:"type:uuid;index;not null"`
	CreatedAt   time.Time `json:"created_at"`
}

func (p *Patient) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
