package repository

import (
	"context"
	"time"

	"precast-erp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MovementRepository only appends and reads. Movements are never updated or
// deleted.
type MovementRepository interface {
	Record(ctx context.Context, m *model.StockMovement) error
	ListByStockItem(ctx context.Context, stockItemID uuid.UUID, since time.Time) ([]model.StockMovement, error)
	AllForStockItem(ctx context.Context, stockItemID uuid.UUID) ([]model.StockMovement, error)
	List(ctx context.Context, f *Filter, page, limit int) ([]model.StockMovement, int64, error)
	ListForExport(ctx context.Context, f *Filter, max int) ([]model.StockMovement, error)
}

type movementRepository struct {
	db *gorm.DB
}

func NewMovementRepository(db *gorm.DB) MovementRepository {
	return &movementRepository{db: db}
}

func (r *movementRepository) Record(ctx context.Context, m *model.StockMovement) error {
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *movementRepository) ListByStockItem(ctx context.Context, stockItemID uuid.UUID, since time.Time) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	if err := GetDB(ctx, r.db).Preload("Actor").
		Where("stock_item_id = ? AND created_at >= ?", stockItemID, since).
		Order("created_at DESC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *movementRepository) AllForStockItem(ctx context.Context, stockItemID uuid.UUID) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	if err := GetDB(ctx, r.db).
		Where("stock_item_id = ?", stockItemID).
		Order("created_at, id").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *movementRepository) List(ctx context.Context, f *Filter, page, limit int) ([]model.StockMovement, int64, error) {
	var movements []model.StockMovement
	var total int64

	if err := GetDB(ctx, r.db).Model(&model.StockMovement{}).Scopes(f.Scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := r.detailed(ctx).Scopes(f.Scope).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&movements).Error; err != nil {
		return nil, 0, err
	}

	return movements, total, nil
}

func (r *movementRepository) ListForExport(ctx context.Context, f *Filter, max int) ([]model.StockMovement, error) {
	var movements []model.StockMovement
	if err := r.detailed(ctx).Scopes(f.Scope).
		Order("created_at DESC").
		Limit(max).
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}

func (r *movementRepository) detailed(ctx context.Context) *gorm.DB {
	return GetDB(ctx, r.db).
		Preload("StockItem.PBAProduct").
		Preload("StockItem.Material").
		Preload("StockItem.Armature").
		Preload("Actor")
}
