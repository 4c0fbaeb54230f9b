package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSent      InvoiceStatus = "sent"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceOverdue   InvoiceStatus = "overdue"
	InvoiceCancelled InvoiceStatus = "cancelled"
)

// Payment methods
const (
	PaymentCash     = "cash"
	PaymentCheck    = "check"
	PaymentTransfer = "transfer"
	PaymentCard     = "card"
)

func IsValidPaymentMethod(m string) bool {
	switch m {
	case PaymentCash, PaymentCheck, PaymentTransfer, PaymentCard:
		return true
	}
	return false
}

// Invoice represents the bill issued once a quote is accepted. An order has
// at most one invoice.
type Invoice struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceNumber string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"invoice_number"`
	OrderID       uuid.UUID       `gorm:"type:uuid;uniqueIndex;not null" json:"order_id"`
	InvoiceDate   datatypes.Date  `gorm:"not null" json:"invoice_date"`
	DueDate       datatypes.Date  `gorm:"not null" json:"due_date"`
	Status        InvoiceStatus   `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	TotalAmount   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_amount"` // copied from the order
	PaidAmount    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"paid_amount"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedBy     *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	Payments      []Payment       `gorm:"foreignKey:InvoiceID" json:"payments,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (i *Invoice) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}

// Remaining is what is still owed on the invoice.
func (i *Invoice) Remaining() decimal.Decimal {
	return i.TotalAmount.Sub(i.PaidAmount)
}

// IsOverdueOn reports whether an unpaid invoice passed its due date before day.
func (i *Invoice) IsOverdueOn(day time.Time) bool {
	if i.Status != InvoiceDraft && i.Status != InvoiceSent {
		return false
	}
	return time.Time(i.DueDate).Before(day)
}

// MarkOverdue shows an unpaid invoice past its due date as overdue. The
// status column only ever holds draft, sent, paid or cancelled.
func (i *Invoice) MarkOverdue(day time.Time) {
	if i.IsOverdueOn(day) {
		i.Status = InvoiceOverdue
	}
}

// IsCentAmount reports whether d fits a decimal(14,2) money column without
// rounding.
func IsCentAmount(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// Payment records money received against an invoice
type Payment struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"invoice_id"`
	PaymentDate datatypes.Date  `gorm:"not null" json:"payment_date"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Method      string          `gorm:"type:varchar(20);not null" json:"method"`
	Reference   string          `gorm:"type:varchar(100)" json:"reference"`
	Notes       string          `gorm:"type:text" json:"notes"`
	CreatedBy   *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	CreatedAt   time.Time       `json:"created_at"`
}

func (p *Payment) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}
