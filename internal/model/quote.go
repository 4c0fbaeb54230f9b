package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuoteStatus string

const (
	QuotePending  QuoteStatus = "pending"
	QuoteAccepted QuoteStatus = "accepted"
	QuoteRejected QuoteStatus = "rejected"
	QuoteExpired  QuoteStatus = "expired"
)

// Quote (devis) is the priced offer sent for a confirmed order
type Quote struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	QuoteNumber  string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"quote_number"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	QuoteDate    datatypes.Date  `gorm:"not null" json:"quote_date"`
	ValidityDate datatypes.Date  `gorm:"not null" json:"validity_date"`
	Status       QuoteStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_amount"`
	Notes        string          `gorm:"type:text" json:"notes"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (q *Quote) BeforeCreate(*gorm.DB) error {
	assignID(&q.ID)
	return nil
}

// ExpiredOn reports whether the quote's validity ended before day.
func (q *Quote) ExpiredOn(day time.Time) bool {
	return time.Time(q.ValidityDate).Before(day)
}
