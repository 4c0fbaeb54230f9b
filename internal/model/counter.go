package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DocumentKind is the prefix of a numbered commercial document.
type DocumentKind string

const (
	DocOrder   DocumentKind = "CMD"
	DocQuote   DocumentKind = "DEV"
	DocInvoice DocumentKind = "FACT"
)

// DocumentCounter holds the last number handed out for a kind in a month
// (period formatted YYYYMM).
type DocumentCounter struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Kind      DocumentKind `gorm:"type:varchar(10);not null;uniqueIndex:idx_counter_kind_period" json:"kind"`
	Period    string       `gorm:"type:varchar(6);not null;uniqueIndex:idx_counter_kind_period" json:"period"`
	LastValue int          `gorm:"not null;default:0" json:"last_value"`
	UpdatedAt time.Time    `json:"updated_at"`
}

func (c *DocumentCounter) BeforeCreate(*gorm.DB) error {
	assignID(&c.ID)
	return nil
}
