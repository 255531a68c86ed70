package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Company represents a clinic tenant. Every business entity is
// partitioned by company and queries never cross the boundary.
type Company struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name      string    `json:"name" gorm:"type:varchar(200);not null"`
	Code      string    `json:"code" gorm:"type:varchar(20);uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (c *Company) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
