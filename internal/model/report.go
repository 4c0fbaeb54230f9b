package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportDraft     ReportStatus = "draft"
	ReportSubmitted ReportStatus = "submitted"
)

// Personnel positions
const (
	PositionProduction  = "production"
	PositionSoudeur     = "soudeur"
	PositionFerrailleur = "ferrailleur"
	PositionOuvrier     = "ouvrier"
	PositionMacon       = "macon"
	PositionManoeuvre   = "manoeuvre"
)

func IsValidPosition(p string) bool {
	switch p {
	case PositionProduction, PositionSoudeur, PositionFerrailleur, PositionOuvrier, PositionMacon, PositionManoeuvre:
		return true
	}
	return false
}

// DailyReport is what a production operator fills in at the end of a shift.
// A user has at most one report per day.
type DailyReport struct {
	ID                  uuid.UUID                  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID                  `gorm:"type:uuid;not null;uniqueIndex:idx_daily_report_user_date" json:"user_id"`
	User                *User                      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ReportDate          datatypes.Date             `gorm:"not null;uniqueIndex:idx_daily_report_user_date;index" json:"report_date"`
	FirstName           string                     `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName            string                     `gorm:"type:varchar(100);not null" json:"last_name"`
	Status              ReportStatus               `gorm:"type:varchar(20);not null;default:'draft';index" json:"status"`
	Observations        string                     `gorm:"type:text" json:"observations"`
	SubmittedAt         *time.Time                 `json:"submitted_at,omitempty"`
	Productions         []ReportProduction         `gorm:"foreignKey:ReportID" json:"productions"`
	MaterialUsages      []ReportMaterialUsage      `gorm:"foreignKey:ReportID" json:"material_usages"`
	ArmatureProductions []ReportArmatureProduction `gorm:"foreignKey:ReportID" json:"armature_productions"`
	Personnel           []ReportPersonnel          `gorm:"foreignKey:ReportID" json:"personnel"`
	CreatedAt           time.Time                  `json:"created_at"`
	UpdatedAt           time.Time                  `json:"updated_at"`
}

func (r *DailyReport) BeforeCreate(*gorm.DB) error {
	assignID(&r.ID)
	return nil
}

// ReportProduction is a count of finished PBA blocks cast during the shift
type ReportProduction struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"report_id"`
	PBAProductID uuid.UUID   `gorm:"type:uuid;not null;index" json:"pba_product_id"`
	PBAProduct   *PBAProduct `gorm:"foreignKey:PBAProductID" json:"pba_product,omitempty"`
	Quantity     int         `gorm:"not null" json:"quantity"`
}

func (l *ReportProduction) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}

// ReportMaterialUsage is raw material consumed during the shift
type ReportMaterialUsage struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"report_id"`
	MaterialID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"material_id"`
	Material       *Material       `gorm:"foreignKey:MaterialID" json:"material,omitempty"`
	Quantity       decimal.Decimal `gorm:"type:decimal(14,3);not null" json:"quantity"`
	Unit           string          `gorm:"type:varchar(10)" json:"unit"`
	AdditionalInfo string          `gorm:"type:text" json:"additional_info"`
}

func (l *ReportMaterialUsage) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}

// ReportArmatureProduction is a count of reinforcement cages welded during the shift
type ReportArmatureProduction struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID   uuid.UUID `gorm:"type:uuid;not null;index" json:"report_id"`
	ArmatureID uuid.UUID `gorm:"type:uuid;not null;index" json:"armature_id"`
	Armature   *Armature `gorm:"foreignKey:ArmatureID" json:"armature,omitempty"`
	Quantity   int       `gorm:"not null" json:"quantity"`
}

func (l *ReportArmatureProduction) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}

// ReportPersonnel is the headcount per position. It never touches stock.
type ReportPersonnel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ReportID  uuid.UUID `gorm:"type:uuid;not null;index" json:"report_id"`
	Position  string    `gorm:"type:varchar(20);not null" json:"position"`
	Headcount int       `gorm:"not null" json:"headcount"`
}

func (l *ReportPersonnel) BeforeCreate(*gorm.DB) error {
	assignID(&l.ID)
	return nil
}
