package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OrderStatus is the closed set of states a sales order moves through.
type OrderStatus string

const (
	OrderDraft         OrderStatus = "draft"
	OrderConfirmed     OrderStatus = "confirmed"
	OrderQuoted        OrderStatus = "quoted"
	OrderQuoteAccepted OrderStatus = "quote_accepted"
	OrderInvoiced      OrderStatus = "invoiced"
	OrderDelivered     OrderStatus = "delivered"
	OrderCancelled     OrderStatus = "cancelled"
)

// orderTransitions is the only place allowed moves are declared.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderDraft:         {OrderConfirmed, OrderCancelled},
	OrderConfirmed:     {OrderQuoted, OrderCancelled},
	OrderQuoted:        {OrderQuoteAccepted, OrderConfirmed, OrderCancelled},
	OrderQuoteAccepted: {OrderInvoiced, OrderCancelled},
	OrderInvoiced:      {OrderDelivered, OrderCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderDraft, OrderConfirmed, OrderQuoted, OrderQuoteAccepted, OrderInvoiced, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether next is reachable from s in one step.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, to := range orderTransitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s OrderStatus) Terminal() bool {
	return len(orderTransitions[s]) == 0
}

// Order is a client's purchase of PBA products
type Order struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber  string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"order_number"`
	ClientID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"client_id"`
	Client       *Client         `gorm:"foreignKey:ClientID" json:"client,omitempty"`
	Status       OrderStatus     `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	OrderDate    datatypes.Date  `gorm:"not null" json:"order_date"`
	DeliveryDate *datatypes.Date `json:"delivery_date,omitempty"`
	TotalAmount  decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"total_amount"`
	Notes        string          `gorm:"type:text" json:"notes"`
	CreatedBy    *uuid.UUID      `gorm:"type:uuid" json:"created_by"`
	Creator      *User           `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Items        []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Quotes       []Quote         `gorm:"foreignKey:OrderID" json:"quotes,omitempty"`
	Invoice      *Invoice        `gorm:"foreignKey:OrderID" json:"invoice,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (o *Order) BeforeCreate(*gorm.DB) error {
	assignID(&o.ID)
	return nil
}

// OrderItem represents a line item within an Order
type OrderItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	PBAProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"pba_product_id"`
	PBAProduct   *PBAProduct     `gorm:"foreignKey:PBAProductID" json:"pba_product,omitempty"`
	Quantity     int             `gorm:"not null" json:"quantity"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"unit_price"`
	TotalPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_price"`
}

func (i *OrderItem) BeforeCreate(*gorm.DB) error {
	assignID(&i.ID)
	return nil
}
