package repository

import (
	"context"
	"fmt"

	"precast-erp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CatalogRepository stores the three item catalogs the ledger tracks.
type CatalogRepository interface {
	CreateProduct(ctx context.Context, p *model.PBAProduct) error
	CreateMaterial(ctx context.Context, m *model.Material) error
	CreateArmature(ctx context.Context, a *model.Armature) error

	FindProduct(ctx context.Context, id uuid.UUID) (*model.PBAProduct, error)
	FindProducts(ctx context.Context, ids []uuid.UUID) ([]model.PBAProduct, error)
	FindMaterial(ctx context.Context, id uuid.UUID) (*model.Material, error)
	FindArmature(ctx context.Context, id uuid.UUID) (*model.Armature, error)

	ListProducts(ctx context.Context, activeOnly bool) ([]model.PBAProduct, error)
	ListMaterials(ctx context.Context, activeOnly bool) ([]model.Material, error)
	ListArmatures(ctx context.Context, activeOnly bool) ([]model.Armature, error)

	// ItemStatus reports whether the catalog row of the given class exists
	// and whether it is active.
	ItemStatus(ctx context.Context, class model.ItemClass, id uuid.UUID) (exists, active bool, err error)
	SetActive(ctx context.Context, class model.ItemClass, id uuid.UUID, active bool) (int64, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func catalogModel(class model.ItemClass) (any, error) {
	switch class {
	case model.ItemClassFinishedProduct:
		return &model.PBAProduct{}, nil
	case model.ItemClassRawMaterial:
		return &model.Material{}, nil
	case model.ItemClassSubAssembly:
		return &model.Armature{}, nil
	}
	return nil, fmt.Errorf("unknown item class %q", class)
}

func (r *catalogRepository) CreateProduct(ctx context.Context, p *model.PBAProduct) error {
	return GetDB(ctx, r.db).Create(p).Error
}

func (r *catalogRepository) CreateMaterial(ctx context.Context, m *model.Material) error {
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *catalogRepository) CreateArmature(ctx context.Context, a *model.Armature) error {
	return GetDB(ctx, r.db).Create(a).Error
}

func (r *catalogRepository) FindProduct(ctx context.Context, id uuid.UUID) (*model.PBAProduct, error) {
	var p model.PBAProduct
	if err := GetDB(ctx, r.db).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *catalogRepository) FindProducts(ctx context.Context, ids []uuid.UUID) ([]model.PBAProduct, error) {
	var products []model.PBAProduct
	if len(ids) == 0 {
		return products, nil
	}
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *catalogRepository) FindMaterial(ctx context.Context, id uuid.UUID) (*model.Material, error) {
	var m model.Material
	if err := GetDB(ctx, r.db).First(&m, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *catalogRepository) FindArmature(ctx context.Context, id uuid.UUID) (*model.Armature, error) {
	var a model.Armature
	if err := GetDB(ctx, r.db).First(&a, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *catalogRepository) ListProducts(ctx context.Context, activeOnly bool) ([]model.PBAProduct, error) {
	var products []model.PBAProduct
	db := GetDB(ctx, r.db)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	if err := db.Order("category, code").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *catalogRepository) ListMaterials(ctx context.Context, activeOnly bool) ([]model.Material, error) {
	var materials []model.Material
	db := GetDB(ctx, r.db)
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	if err := db.Order("category, code").Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *catalogRepository) ListArmatures(ctx context.Context, activeOnly bool) ([]model.Armature, error) {
	var armatures []model.Armature
	db := GetDB(ctx, r.db).Preload("PBAProduct")
	if activeOnly {
		db = db.Where("is_active = ?", true)
	}
	if err := db.Order("code").Find(&armatures).Error; err != nil {
		return nil, err
	}
	return armatures, nil
}

func (r *catalogRepository) ItemStatus(ctx context.Context, class model.ItemClass, id uuid.UUID) (bool, bool, error) {
	m, err := catalogModel(class)
	if err != nil {
		return false, false, err
	}
	var row struct{ IsActive bool }
	res := GetDB(ctx, r.db).Model(m).Select("is_active").Where("id = ?", id).Limit(1).Scan(&row)
	if res.Error != nil {
		return false, false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, false, nil
	}
	return true, row.IsActive, nil
}

func (r *catalogRepository) SetActive(ctx context.Context, class model.ItemClass, id uuid.UUID, active bool) (int64, error) {
	m, err := catalogModel(class)
	if err != nil {
		return 0, err
	}
	res := GetDB(ctx, r.db).Model(m).Where("id = ?", id).Update("is_active", active)
	return res.RowsAffected, res.Error
}
