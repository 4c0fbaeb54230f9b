package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActionCreateReport      = "CREATE_REPORT"
	ActionUpdateReport      = "UPDATE_REPORT"
	ActionDeleteReport      = "DELETE_REPORT"
	ActionSubmitReport      = "SUBMIT_REPORT"
	ActionStockAdjustment   = "STOCK_ADJUSTMENT"
	ActionCreateOrder       = "CREATE_ORDER"
	ActionDeleteOrder       = "DELETE_ORDER"
	ActionOrderTransition   = "ORDER_TRANSITION"
	ActionCreateQuote       = "CREATE_QUOTE"
	ActionCreateInvoice     = "CREATE_INVOICE"
	ActionRecordPayment     = "RECORD_PAYMENT"
	ActionCreateClient      = "CREATE_CLIENT"
	ActionUpdateClient      = "UPDATE_CLIENT"
	ActionCreateCatalogItem = "CREATE_CATALOG_ITEM"
	ActionUpdateCatalogItem = "UPDATE_CATALOG_ITEM"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID     `gorm:"type:uuid;index" json:"user_id"` // Nullable for automated jobs
	User       *User          `gorm:"foreignKey:UserID" json:"user"`
	Action     string         `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string         `gorm:"type:varchar(50);index" json:"entity_id"`
	EntityName string         `gorm:"type:varchar(255)" json:"entity_name,omitempty"`
	Details    datatypes.JSON `json:"details"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}
