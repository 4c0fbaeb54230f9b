package service

import (
	"context"
	"fmt"

	"precast-erp/internal/apperror"
	"precast-erp/internal/model"
	"precast-erp/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DTOs
type CreatePBAProductRequest struct {
	Code         string          `json:"code" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	Category     string          `json:"category" binding:"required,oneof=9AR 12AR 12B 10B"`
	Description  string          `json:"description"`
	UnitPrice    decimal.Decimal `json:"unit_price" binding:"gte=0"`
	InitialStock decimal.Decimal `json:"initial_stock" binding:"gte=0"`
}

type CreateMaterialRequest struct {
	Code         string          `json:"code" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	Unit         string          `json:"unit" binding:"required,oneof=kg t g sac barre"`
	Category     string          `json:"category" binding:"required,oneof=fer ciment etrier"`
	Description  string          `json:"description"`
	UnitPrice    decimal.Decimal `json:"unit_price" binding:"gte=0"`
	InitialStock decimal.Decimal `json:"initial_stock" binding:"gte=0"`
}

type CreateArmatureRequest struct {
	Code         string          `json:"code" binding:"required"`
	Name         string          `json:"name" binding:"required"`
	PBAProductID string          `json:"pba_product_id" binding:"omitempty,uuid"`
	Description  string          `json:"description"`
	UnitPrice    decimal.Decimal `json:"unit_price" binding:"gte=0"`
	InitialStock decimal.Decimal `json:"initial_stock" binding:"gte=0"`
}

type CatalogService interface {
	CreateProduct(ctx context.Context, actor Actor, req CreatePBAProductRequest) (*model.PBAProduct, error)
	CreateMaterial(ctx context.Context, actor Actor, req CreateMaterialRequest) (*model.Material, error)
	CreateArmature(ctx context.Context, actor Actor, req CreateArmatureRequest) (*model.Armature, error)
	ListProducts(ctx context.Context, activeOnly bool) ([]model.PBAProduct, error)
	ListMaterials(ctx context.Context, activeOnly bool) ([]model.Material, error)
	ListArmatures(ctx context.Context, activeOnly bool) ([]model.Armature, error)
	SetActive(ctx context.Context, actor Actor, class model.ItemClass, id uuid.UUID, active bool) error
}

type catalogService struct {
	catalogRepo repository.CatalogRepository
	stockRepo   repository.StockRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewCatalogService(
	catalogRepo repository.CatalogRepository,
	stockRepo repository.StockRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) CatalogService {
	return &catalogService{
		catalogRepo: catalogRepo,
		stockRepo:   stockRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// openStock creates the ledger row of a new catalog item with its opening
// balance.
func (s *catalogService) openStock(ctx context.Context, item *model.StockItem, initial decimal.Decimal) error {
	if initial.IsNegative() {
		return apperror.ErrInvalidInput.WithMessage("initial stock must not be negative")
	}
	item.InitialStock = initial
	item.CurrentStock = initial
	if err := s.stockRepo.Create(ctx, item); err != nil {
		return fmt.Errorf("failed to create stock item: %w", err)
	}
	return nil
}

func duplicateOr(err error, code, what string) error {
	if repository.IsUniqueViolation(err) {
		return apperror.ErrDuplicateCode.WithMessage("%s code %q already in use", what, code)
	}
	return fmt.Errorf("failed to create %s: %w", what, err)
}

func (s *catalogService) CreateProduct(ctx context.Context, actor Actor, req CreatePBAProductRequest) (*model.PBAProduct, error) {
	if !model.IsValidPBACategory(req.Category) {
		return nil, apperror.ErrInvalidInput.WithMessage("invalid category %q", req.Category)
	}
	if req.UnitPrice.IsNegative() {
		return nil, apperror.ErrInvalidInput.WithMessage("unit price must not be negative")
	}

	p := &model.PBAProduct{
		Code:        req.Code,
		Name:        req.Name,
		Category:    req.Category,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		IsActive:    true,
	}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.catalogRepo.CreateProduct(txCtx, p); err != nil {
			return duplicateOr(err, req.Code, "product")
		}
		if err := s.openStock(txCtx, &model.StockItem{ItemClass: model.ItemClassFinishedProduct, PBAProductID: &p.ID}, req.InitialStock); err != nil {
			return err
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionCreateCatalogItem, p.ID.String(), p.Code, map[string]any{
			"class":         model.ItemClassFinishedProduct,
			"initial_stock": req.InitialStock,
		})
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *catalogService) CreateMaterial(ctx context.Context, actor Actor, req CreateMaterialRequest) (*model.Material, error) {
	if !model.IsValidMaterialUnit(req.Unit) {
		return nil, apperror.ErrInvalidInput.WithMessage("invalid unit %q", req.Unit)
	}
	if !model.IsValidMaterialCategory(req.Category) {
		return nil, apperror.ErrInvalidInput.WithMessage("invalid category %q", req.Category)
	}

	m := &model.Material{
		Code:        req.Code,
		Name:        req.Name,
		Unit:        req.Unit,
		Category:    req.Category,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		IsActive:    true,
	}
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.catalogRepo.CreateMaterial(txCtx, m); err != nil {
			return duplicateOr(err, req.Code, "material")
		}
		if err := s.openStock(txCtx, &model.StockItem{ItemClass: model.ItemClassRawMaterial, MaterialID: &m.ID}, req.InitialStock); err != nil {
			return err
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionCreateCatalogItem, m.ID.String(), m.Code, map[string]any{
			"class":         model.ItemClassRawMaterial,
			"initial_stock": req.InitialStock,
		})
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *catalogService) CreateArmature(ctx context.Context, actor Actor, req CreateArmatureRequest) (*model.Armature, error) {
	a := &model.Armature{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		UnitPrice:   req.UnitPrice,
		IsActive:    true,
	}
	if req.PBAProductID != "" {
		id, err := uuid.Parse(req.PBAProductID)
		if err != nil {
			return nil, apperror.ErrInvalidInput.WithMessage("invalid pba_product_id %q", req.PBAProductID)
		}
		a.PBAProductID = &id
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if a.PBAProductID != nil {
			if _, err := s.catalogRepo.FindProduct(txCtx, *a.PBAProductID); err != nil {
				if repository.IsNotFound(err) {
					return apperror.ErrProductNotFound
				}
				return fmt.Errorf("failed to load product: %w", err)
			}
		}
		if err := s.catalogRepo.CreateArmature(txCtx, a); err != nil {
			return duplicateOr(err, req.Code, "armature")
		}
		if err := s.openStock(txCtx, &model.StockItem{ItemClass: model.ItemClassSubAssembly, ArmatureID: &a.ID}, req.InitialStock); err != nil {
			return err
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionCreateCatalogItem, a.ID.String(), a.Code, map[string]any{
			"class":         model.ItemClassSubAssembly,
			"initial_stock": req.InitialStock,
		})
	})
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *catalogService) ListProducts(ctx context.Context, activeOnly bool) ([]model.PBAProduct, error) {
	return s.catalogRepo.ListProducts(ctx, activeOnly)
}

func (s *catalogService) ListMaterials(ctx context.Context, activeOnly bool) ([]model.Material, error) {
	return s.catalogRepo.ListMaterials(ctx, activeOnly)
}

func (s *catalogService) ListArmatures(ctx context.Context, activeOnly bool) ([]model.Armature, error) {
	return s.catalogRepo.ListArmatures(ctx, activeOnly)
}

// SetActive withdraws an item from (or returns it to) the catalog. Stock and
// history are kept; inactive items just cannot appear on new reports or orders.
func (s *catalogService) SetActive(ctx context.Context, actor Actor, class model.ItemClass, id uuid.UUID, active bool) error {
	if !class.Valid() {
		return apperror.ErrInvalidInput.WithMessage("unknown item class %q", class)
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		n, err := s.catalogRepo.SetActive(txCtx, class, id, active)
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", class, err)
		}
		if n == 0 {
			return apperror.ErrItemNotFound
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionUpdateCatalogItem, id.String(), string(class), map[string]any{
			"is_active": active,
		})
	})
}
