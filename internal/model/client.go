package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Client is a customer company that places orders
type Client struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CompanyName   string         `gorm:"type:varchar(255);not null;index" json:"company_name"`
	ContactPerson string         `gorm:"type:varchar(255)" json:"contact_person"`
	Email         string         `gorm:"type:varchar(255)" json:"email"`
	Phone         string         `gorm:"type:varchar(50)" json:"phone"`
	Address       string         `gorm:"type:text" json:"address"`
	City          string         `gorm:"type:varchar(100)" json:"city"`
	PostalCode    string         `gorm:"type:varchar(20)" json:"postal_code"`
	Country       string         `gorm:"type:varchar(100);not null;default:'Sénégal'" json:"country"`
	IsActive      bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (c *Client) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
