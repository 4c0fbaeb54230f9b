package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PBA product categories
const (
	PBACategory9AR  = "9AR"
	PBACategory12AR = "12AR"
	PBACategory12B  = "12B"
	PBACategory10B  = "10B"
)

// Material units
const (
	UnitKg    = "kg"
	UnitTonne = "t"
	UnitGram  = "g"
	UnitSac   = "sac"
	UnitBarre = "barre"
)

// Material categories
const (
	MaterialCategoryFer    = "fer"
	MaterialCategoryCiment = "ciment"
	MaterialCategoryEtrier = "etrier"
)

// PBAProduct is a finished precast block sold to clients
type PBAProduct struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Category    string          `gorm:"type:varchar(10);not null;index" json:"category"`
	Description string          `gorm:"type:text" json:"description"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"unit_price"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (p *PBAProduct) BeforeCreate(*gorm.DB) error {
	assignID(&p.ID)
	return nil
}

// Material is a raw input consumed by production (iron, cement, stirrups)
type Material struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code        string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Unit        string          `gorm:"type:varchar(10);not null" json:"unit"`
	Category    string          `gorm:"type:varchar(20);not null;index" json:"category"`
	Description string          `gorm:"type:text" json:"description"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"unit_price"`
	IsActive    bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

func (m *Material) BeforeCreate(*gorm.DB) error {
	assignID(&m.ID)
	return nil
}

// Armature is a welded reinforcement cage built in-house for a PBA product
type Armature struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Code         string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	PBAProductID *uuid.UUID      `gorm:"type:uuid;index" json:"pba_product_id"`
	PBAProduct   *PBAProduct     `gorm:"foreignKey:PBAProductID" json:"pba_product,omitempty"`
	Description  string          `gorm:"type:text" json:"description"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"unit_price"`
	IsActive     bool            `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

func (a *Armature) BeforeCreate(*gorm.DB) error {
	assignID(&a.ID)
	return nil
}

// IsValidPBACategory reports whether c is a known PBA category.
func IsValidPBACategory(c string) bool {
	switch c {
	case PBACategory9AR, PBACategory12AR, PBACategory12B, PBACategory10B:
		return true
	}
	return false
}

// IsValidMaterialUnit reports whether u is a known material unit.
func IsValidMaterialUnit(u string) bool {
	switch u {
	case UnitKg, UnitTonne, UnitGram, UnitSac, UnitBarre:
		return true
	}
	return false
}

// IsValidMaterialCategory reports whether c is a known material category.
func IsValidMaterialCategory(c string) bool {
	switch c {
	case MaterialCategoryFer, MaterialCategoryCiment, MaterialCategoryEtrier:
		return true
	}
	return false
}
