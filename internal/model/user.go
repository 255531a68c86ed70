package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// User represents a staff account. Email is unique across all
// companies; CompanyID is immutable after creation.
type User struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string    `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"type:varchar(255);not null"`
	Name         string    `json:"name" gorm:"type:varchar(200);not null"`
	Role         string    `json:"role" gorm:"type:varchar(20);not null"`
	CompanyID    uuid.UUID `json:"company_id" gorm:"type:uuid;index;not null"`
	CreatedAt    time.Time `json:"created_at"`

	Company Company `json:"-" gorm:"foreignKey:CompanyID"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
