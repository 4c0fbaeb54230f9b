package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ItemClass tells which catalog a stock row tracks.
type ItemClass string

const (
	ItemClassFinishedProduct ItemClass = "finished_product"
	ItemClassRawMaterial     ItemClass = "raw_material"
	ItemClassSubAssembly     ItemClass = "sub_assembly"
)

func (c ItemClass) Valid() bool {
	switch c {
	case ItemClassFinishedProduct, ItemClassRawMaterial, ItemClassSubAssembly:
		return true
	}
	return false
}

// MovementKind is the business reason of a stock change.
type MovementKind string

const (
	MovementProduction MovementKind = "production"
	MovementDelivery   MovementKind = "delivery"
	MovementUsage      MovementKind = "usage"
	MovementAdjustment MovementKind = "adjustment"
)

// ReferenceKind names the document a movement originates from.
type ReferenceKind string

const (
	RefReport ReferenceKind = "report"
	RefOrder  ReferenceKind = "order"
	RefManual ReferenceKind = "manual"
)

// ErrImmutableMovement is returned by the movement hooks when code tries to
// rewrite history.
var ErrImmutableMovement = errors.New("stock movements are append-only")

// StockItem is the ledger row of one catalog item. Exactly one of the
// catalog foreign keys is set, matching ItemClass.
type StockItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ItemClass      ItemClass       `gorm:"type:varchar(20);not null;index" json:"item_class"`
	PBAProductID   *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"pba_product_id,omitempty"`
	PBAProduct     *PBAProduct     `gorm:"foreignKey:PBAProductID" json:"pba_product,omitempty"`
	MaterialID     *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"material_id,omitempty"`
	Material       *Material       `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
	ArmatureID     *uuid.UUID      `gorm:"type:uuid;uniqueIndex" json:"armature_id,omitempty"`
	Armature       *Armature       `gorm:"foreignKey:ArmatureID" json:"armature,omitempty"`
	InitialStock   decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0" json:"initial_stock"`
	CurrentStock   decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0" json:"current_stock"`
	TotalProduced  decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0" json:"total_produced"`
	TotalDelivered decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0" json:"total_delivered"`
	TotalEntries   decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0" json:"total_entries"`
	TotalUsed      decimal.Decimal `gorm:"type:decimal(14,3);not null;default:0" json:"total_used"`
	LastUpdated    time.Time       `json:"last_updated"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

func (s *StockItem) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	if s.LastUpdated.IsZero() {
		s.LastUpdated = time.Now().UTC()
	}
	return nil
}

// ItemCode returns the code of the preloaded catalog row, if any.
func (s *StockItem) ItemCode() string {
	switch {
	case s.PBAProduct != nil:
		return s.PBAProduct.Code
	case s.Material != nil:
		return s.Material.Code
	case s.Armature != nil:
		return s.Armature.Code
	}
	return ""
}

// ItemName returns the name of the preloaded catalog row, if any.
func (s *StockItem) ItemName() string {
	switch {
	case s.PBAProduct != nil:
		return s.PBAProduct.Name
	case s.Material != nil:
		return s.Material.Name
	case s.Armature != nil:
		return s.Armature.Name
	}
	return ""
}

// StockMovement (stock card line) is the immutable record of one change to a
// StockItem. Quantity is what was requested, AppliedQuantity what the ledger
// actually moved; they differ only when a raw material floor clamped.
type StockMovement struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	StockItemID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"stock_item_id"`
	StockItem       *StockItem      `gorm:"foreignKey:StockItemID" json:"stock_item,omitempty"`
	Kind            MovementKind    `gorm:"type:varchar(20);not null;index" json:"kind"`
	Quantity        decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
	AppliedQuantity decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"applied_quantity"`
	StockAfter      decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"stock_after"`
	ReferenceKind   ReferenceKind   `gorm:"type:varchar(20);not null;index:idx_movement_reference" json:"reference_kind"`
	ReferenceID     *uuid.UUID      `gorm:"type:uuid;index:idx_movement_reference" json:"reference_id,omitempty"`
	ActorID         *uuid.UUID      `gorm:"type:uuid;index" json:"actor_id,omitempty"`
	Actor           *User           `gorm:"foreignKey:ActorID" json:"actor,omitempty"`
	Notes           string          `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
}

func (m *StockMovement) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}

func (m *StockMovement) BeforeUpdate(*gorm.DB) error { return ErrImmutableMovement }

func (m *StockMovement) BeforeDelete(*gorm.DB) error { return ErrImmutableMovement }

// Clamped reports whether the ledger moved less than requested.
func (m *StockMovement) Clamped() bool {
	return !m.Quantity.Equal(m.AppliedQuantity)
}
