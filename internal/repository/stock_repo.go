package repository

import (
	"context"
	"fmt"

	"precast-erp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StockRepository reads and writes ledger rows. Counter changes go through
// SaveCounters so callers never overwrite the catalog link or initial stock.
type StockRepository interface {
	Create(ctx context.Context, item *model.StockItem) error
	// Ensure inserts item unless a row for the same catalog item exists.
	Ensure(ctx context.Context, item *model.StockItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.StockItem, error)
	FindByItem(ctx context.Context, class model.ItemClass, itemID uuid.UUID) (*model.StockItem, error)
	FindByItemForUpdate(ctx context.Context, class model.ItemClass, itemID uuid.UUID) (*model.StockItem, error)
	SaveCounters(ctx context.Context, item *model.StockItem) error
	List(ctx context.Context, f *Filter) ([]model.StockItem, error)
}

type stockRepository struct {
	db *gorm.DB
}

func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

func itemColumn(class model.ItemClass) (string, error) {
	switch class {
	case model.ItemClassFinishedProduct:
		return "pba_product_id", nil
	case model.ItemClassRawMaterial:
		return "material_id", nil
	case model.ItemClassSubAssembly:
		return "armature_id", nil
	}
	return "", fmt.Errorf("unknown item class %q", class)
}

func withCatalog(db *gorm.DB) *gorm.DB {
	return db.Preload("PBAProduct").Preload("Material").Preload("Armature")
}

func (r *stockRepository) Create(ctx context.Context, item *model.StockItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *stockRepository) Ensure(ctx context.Context, item *model.StockItem) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(item).Error
}

func (r *stockRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.StockItem, error) {
	var item model.StockItem
	if err := withCatalog(GetDB(ctx, r.db)).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *stockRepository) FindByItem(ctx context.Context, class model.ItemClass, itemID uuid.UUID) (*model.StockItem, error) {
	col, err := itemColumn(class)
	if err != nil {
		return nil, err
	}
	var item model.StockItem
	if err := GetDB(ctx, r.db).
		Where("item_class = ? AND "+col+" = ?", class, itemID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *stockRepository) FindByItemForUpdate(ctx context.Context, class model.ItemClass, itemID uuid.UUID) (*model.StockItem, error) {
	col, err := itemColumn(class)
	if err != nil {
		return nil, err
	}
	var item model.StockItem
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("item_class = ? AND "+col+" = ?", class, itemID).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *stockRepository) SaveCounters(ctx context.Context, item *model.StockItem) error {
	return GetDB(ctx, r.db).Model(item).
		Select("current_stock", "total_produced", "total_delivered", "total_entries", "total_used", "last_updated").
		Updates(item).Error
}

func (r *stockRepository) List(ctx context.Context, f *Filter) ([]model.StockItem, error) {
	var items []model.StockItem
	if err := withCatalog(GetDB(ctx, r.db)).Scopes(f.Scope).
		Order("item_class, created_at").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
