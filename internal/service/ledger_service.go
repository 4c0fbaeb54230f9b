package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"precast-erp/internal/apperror"
	"precast-erp/internal/export"
	"precast-erp/internal/logger"
	"precast-erp/internal/model"
	"precast-erp/internal/repository"
	"precast-erp/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const (
	defaultHistoryDays = 30
	maxHistoryDays     = 365
)

// Adjustment modes
const (
	AdjustAdd    = "add"
	AdjustRemove = "remove"
	AdjustSet    = "set"
)

// MovementInput describes one signed change to a ledger row.
type MovementInput struct {
	ItemClass model.ItemClass
	ItemID    uuid.UUID
	Kind      model.MovementKind
	Quantity  decimal.Decimal
	RefKind   model.ReferenceKind
	RefID     *uuid.UUID
	Actor     Actor
	Notes     string

	// FloorAtZero clamps the result at zero whatever the item class.
	// Raw material is always clamped.
	FloorAtZero bool
	// AllowInactive lets deliveries of already-sold goods go through after
	// the product was withdrawn from the catalog.
	AllowInactive bool
}

type MovementResult struct {
	Movement  model.StockMovement `json:"movement"`
	StockItem model.StockItem     `json:"stock_item"`
}

// AdjustStockRequest is a manual correction made from the stock screen
type AdjustStockRequest struct {
	ItemClass string          `json:"item_class" binding:"required,oneof=finished_product raw_material sub_assembly"`
	ItemID    string          `json:"item_id" binding:"required,uuid"`
	Mode      string          `json:"mode" binding:"required,oneof=add remove set"`
	Quantity  decimal.Decimal `json:"quantity" binding:"gte=0"`
	Notes     string          `json:"notes"`
}

type ClassSummary struct {
	ItemClass  model.ItemClass `json:"item_class"`
	Items      int             `json:"items"`
	TotalStock decimal.Decimal `json:"total_stock"`
}

type StockSummary struct {
	Classes   []ClassSummary    `json:"classes"`
	LowStock  []model.StockItem `json:"low_stock"`
	Threshold decimal.Decimal   `json:"threshold"`
}

type StockHistory struct {
	StockItem model.StockItem       `json:"stock_item"`
	Days      int                   `json:"days"`
	Movements []model.StockMovement `json:"movements"`
}

// Reconciliation compares a ledger row with the replay of its movements.
type Reconciliation struct {
	StockItemID   uuid.UUID       `json:"stock_item_id"`
	InitialStock  decimal.Decimal `json:"initial_stock"`
	CachedStock   decimal.Decimal `json:"cached_stock"`
	ReplayedStock decimal.Decimal `json:"replayed_stock"`
	ClampedDelta  decimal.Decimal `json:"clamped_delta"`
	Movements     int             `json:"movements"`
	Consistent    bool            `json:"consistent"`
}

type MovementFilter struct {
	StockItemID *uuid.UUID
	Kind        model.MovementKind
	RefKind     model.ReferenceKind
	RefID       *uuid.UUID
	From        *time.Time
	To          *time.Time
}

// LedgerService owns every write to stock_items and stock_movements.
type LedgerService interface {
	ApplyMovement(ctx context.Context, in MovementInput) (*MovementResult, error)
	Adjust(ctx context.Context, actor Actor, req AdjustStockRequest) (*MovementResult, error)
	ListStock(ctx context.Context, class model.ItemClass) ([]model.StockItem, error)
	Summary(ctx context.Context) (*StockSummary, error)
	History(ctx context.Context, stockItemID uuid.UUID, days int) (*StockHistory, error)
	Reconcile(ctx context.Context, stockItemID uuid.UUID) (*Reconciliation, error)
	ListMovements(ctx context.Context, filter MovementFilter, page, limit int) ([]model.StockMovement, int64, error)
	ExportMovements(ctx context.Context, filter MovementFilter) (*bytes.Buffer, error)
}

type ledgerService struct {
	stockRepo    repository.StockRepository
	movementRepo repository.MovementRepository
	catalogRepo  repository.CatalogRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	events       EventPublisher
	lowStock     decimal.Decimal
	now          func() time.Time
}

func NewLedgerService(
	stockRepo repository.StockRepository,
	movementRepo repository.MovementRepository,
	catalogRepo repository.CatalogRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
	lowStockThreshold decimal.Decimal,
) LedgerService {
	return &ledgerService{
		stockRepo:    stockRepo,
		movementRepo: movementRepo,
		catalogRepo:  catalogRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		events:       publisherOrNoop(events),
		lowStock:     lowStockThreshold,
		now:          time.Now,
	}
}

// ApplyMovement is the single primitive that changes stock. It joins the
// transaction carried by ctx, so a caller batching several movements gets
// all or none of them.
func (s *ledgerService) ApplyMovement(ctx context.Context, in MovementInput) (*MovementResult, error) {
	if !in.ItemClass.Valid() {
		return nil, apperror.ErrInvalidInput.WithMessage("unknown item class %q", in.ItemClass)
	}
	if in.Quantity.IsZero() && in.Kind != model.MovementAdjustment {
		return nil, apperror.ErrInvalidInput.WithMessage("movement quantity must not be zero")
	}

	var result MovementResult
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		exists, active, err := s.catalogRepo.ItemStatus(txCtx, in.ItemClass, in.ItemID)
		if err != nil {
			return fmt.Errorf("failed to check item: %w", err)
		}
		if !exists {
			return apperror.ErrItemNotFound.WithMessage("%s %s not found", in.ItemClass, in.ItemID)
		}
		if !active && !in.AllowInactive {
			return apperror.ErrItemInactive.WithMessage("%s %s is inactive", in.ItemClass, in.ItemID)
		}

		item, err := s.lockItem(txCtx, in.ItemClass, in.ItemID)
		if err != nil {
			return err
		}

		before := item.CurrentStock
		after := before.Add(in.Quantity)
		if (in.ItemClass == model.ItemClassRawMaterial || in.FloorAtZero) && after.IsNegative() {
			after = decimal.Zero
		}
		applied := after.Sub(before)

		item.CurrentStock = after
		switch in.Kind {
		case model.MovementProduction:
			if in.ItemClass == model.ItemClassSubAssembly {
				item.TotalEntries = item.TotalEntries.Add(applied)
			} else {
				item.TotalProduced = item.TotalProduced.Add(applied)
			}
		case model.MovementDelivery:
			item.TotalDelivered = item.TotalDelivered.Sub(applied)
		case model.MovementUsage:
			item.TotalUsed = item.TotalUsed.Sub(applied)
		}
		item.LastUpdated = s.now().UTC()

		if err := s.stockRepo.SaveCounters(txCtx, item); err != nil {
			return fmt.Errorf("failed to update stock: %w", err)
		}

		movement := model.StockMovement{
			StockItemID:     item.ID,
			Kind:            in.Kind,
			Quantity:        in.Quantity,
			AppliedQuantity: applied,
			StockAfter:      after,
			ReferenceKind:   in.RefKind,
			ReferenceID:     in.RefID,
			ActorID:         in.Actor.ref(),
			Notes:           in.Notes,
		}
		if err := s.movementRepo.Record(txCtx, &movement); err != nil {
			return fmt.Errorf("failed to record movement: %w", err)
		}

		result = MovementResult{Movement: movement, StockItem: *item}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !repository.InTx(ctx) {
		s.events.Publish(EventStockChanged, result.StockItem)
	}
	return &result, nil
}

// lockItem returns the ledger row for a catalog item under a write lock,
// creating it with zero stock if the item was never stocked.
func (s *ledgerService) lockItem(ctx context.Context, class model.ItemClass, itemID uuid.UUID) (*model.StockItem, error) {
	item, err := s.stockRepo.FindByItemForUpdate(ctx, class, itemID)
	if err == nil {
		return item, nil
	}
	if !repository.IsNotFound(err) {
		return nil, fmt.Errorf("failed to lock stock item: %w", err)
	}

	fresh := &model.StockItem{ItemClass: class}
	switch class {
	case model.ItemClassFinishedProduct:
		fresh.PBAProductID = &itemID
	case model.ItemClassRawMaterial:
		fresh.MaterialID = &itemID
	case model.ItemClassSubAssembly:
		fresh.ArmatureID = &itemID
	}
	if err := s.stockRepo.Ensure(ctx, fresh); err != nil {
		return nil, fmt.Errorf("failed to create stock item: %w", err)
	}
	item, err = s.stockRepo.FindByItemForUpdate(ctx, class, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to lock stock item: %w", err)
	}
	return item, nil
}

func (s *ledgerService) Adjust(ctx context.Context, actor Actor, req AdjustStockRequest) (*MovementResult, error) {
	class := model.ItemClass(req.ItemClass)
	if !class.Valid() {
		return nil, apperror.ErrInvalidInput.WithMessage("unknown item class %q", req.ItemClass)
	}
	itemID, err := uuid.Parse(req.ItemID)
	if err != nil {
		return nil, apperror.ErrInvalidInput.WithMessage("invalid item id")
	}
	if req.Quantity.IsNegative() {
		return nil, apperror.ErrInvalidInput.WithMessage("quantity must not be negative")
	}
	if req.Mode != AdjustSet && !req.Quantity.IsPositive() {
		return nil, apperror.ErrInvalidInput.WithMessage("quantity must be positive")
	}

	var result *MovementResult
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		in := MovementInput{
			ItemClass: class,
			ItemID:    itemID,
			Kind:      model.MovementAdjustment,
			RefKind:   model.RefManual,
			Actor:     actor,
			Notes:     req.Notes,
		}
		switch req.Mode {
		case AdjustAdd:
			in.Quantity = req.Quantity
		case AdjustRemove:
			in.Quantity = req.Quantity.Neg()
			in.FloorAtZero = true
		case AdjustSet:
			current, err := s.stockRepo.FindByItemForUpdate(txCtx, class, itemID)
			switch {
			case err == nil:
				in.Quantity = req.Quantity.Sub(current.CurrentStock)
			case repository.IsNotFound(err):
				in.Quantity = req.Quantity
			default:
				return fmt.Errorf("failed to lock stock item: %w", err)
			}
		default:
			return apperror.ErrInvalidInput.WithMessage("unknown adjustment mode %q", req.Mode)
		}

		res, err := s.ApplyMovement(txCtx, in)
		if err != nil {
			return err
		}
		result = res

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionStockAdjustment, res.StockItem.ID.String(), string(class), map[string]any{
			"mode":      req.Mode,
			"item_id":   itemID,
			"requested": req.Quantity,
			"applied":   res.Movement.AppliedQuantity,
			"after":     res.Movement.StockAfter,
			"notes":     req.Notes,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Get().WithFields(logrus.Fields{
		"stock_item_id": result.StockItem.ID,
		"mode":          req.Mode,
		"applied":       result.Movement.AppliedQuantity.String(),
		"actor":         actor.ID,
	}).Info("stock adjusted")
	s.events.Publish(EventStockChanged, result.StockItem)
	return result, nil
}

func (s *ledgerService) ListStock(ctx context.Context, class model.ItemClass) ([]model.StockItem, error) {
	f := repository.NewFilter()
	if class != "" {
		if !class.Valid() {
			return nil, apperror.ErrInvalidInput.WithMessage("unknown item class %q", class)
		}
		f.Eq(repository.ColStockItemClass, class)
	}
	return s.stockRepo.List(ctx, f)
}

func (s *ledgerService) Summary(ctx context.Context) (*StockSummary, error) {
	items, err := s.stockRepo.List(ctx, nil)
	if err != nil {
		return nil, err
	}

	order := []model.ItemClass{model.ItemClassFinishedProduct, model.ItemClassRawMaterial, model.ItemClassSubAssembly}
	byClass := make(map[model.ItemClass]*ClassSummary, len(order))
	for _, c := range order {
		byClass[c] = &ClassSummary{ItemClass: c, TotalStock: decimal.Zero}
	}

	summary := &StockSummary{Threshold: s.lowStock, LowStock: []model.StockItem{}}
	for _, item := range items {
		cs, ok := byClass[item.ItemClass]
		if !ok {
			continue
		}
		cs.Items++
		cs.TotalStock = cs.TotalStock.Add(item.CurrentStock)

		if item.ItemClass == model.ItemClassFinishedProduct &&
			item.PBAProduct != nil && item.PBAProduct.IsActive &&
			item.CurrentStock.LessThan(s.lowStock) {
			summary.LowStock = append(summary.LowStock, item)
		}
	}
	for _, c := range order {
		summary.Classes = append(summary.Classes, *byClass[c])
	}
	return summary, nil
}

func (s *ledgerService) History(ctx context.Context, stockItemID uuid.UUID, days int) (*StockHistory, error) {
	if days <= 0 {
		days = defaultHistoryDays
	}
	if days > maxHistoryDays {
		days = maxHistoryDays
	}

	item, err := s.stockRepo.FindByID(ctx, stockItemID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.ErrItemNotFound
		}
		return nil, err
	}

	since := s.now().UTC().AddDate(0, 0, -days)
	movements, err := s.movementRepo.ListByStockItem(ctx, stockItemID, since)
	if err != nil {
		return nil, err
	}
	return &StockHistory{StockItem: *item, Days: days, Movements: movements}, nil
}

func (s *ledgerService) Reconcile(ctx context.Context, stockItemID uuid.UUID) (*Reconciliation, error) {
	var rec *Reconciliation
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		item, err := s.stockRepo.FindByID(txCtx, stockItemID)
		if err != nil {
			if repository.IsNotFound(err) {
				return apperror.ErrItemNotFound
			}
			return err
		}
		movements, err := s.movementRepo.AllForStockItem(txCtx, stockItemID)
		if err != nil {
			return err
		}
		rec = replay(item, movements)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if !rec.Consistent {
		logger.Get().WithFields(logrus.Fields{
			"stock_item_id": rec.StockItemID,
			"cached":        rec.CachedStock.String(),
			"replayed":      rec.ReplayedStock.String(),
		}).Warn("stock ledger drifted from its movements")
	}
	return rec, nil
}

// replay rebuilds current stock as initial stock plus every applied delta.
func replay(item *model.StockItem, movements []model.StockMovement) *Reconciliation {
	replayed := item.InitialStock
	clamped := decimal.Zero
	for _, m := range movements {
		replayed = replayed.Add(m.AppliedQuantity)
		clamped = clamped.Add(m.Quantity.Sub(m.AppliedQuantity))
	}
	return &Reconciliation{
		StockItemID:   item.ID,
		InitialStock:  item.InitialStock,
		CachedStock:   item.CurrentStock,
		ReplayedStock: replayed,
		ClampedDelta:  clamped,
		Movements:     len(movements),
		Consistent:    replayed.Equal(item.CurrentStock),
	}
}

func (s *ledgerService) ListMovements(ctx context.Context, filter MovementFilter, page, limit int) ([]model.StockMovement, int64, error) {
	return s.movementRepo.List(ctx, movementFilter(filter), page, limit)
}

func (s *ledgerService) ExportMovements(ctx context.Context, filter MovementFilter) (*bytes.Buffer, error) {
	movements, err := s.movementRepo.ListForExport(ctx, movementFilter(filter), pagination.MaxExportRows)
	if err != nil {
		return nil, err
	}
	return export.Movements(movements)
}

func movementFilter(filter MovementFilter) *repository.Filter {
	f := repository.NewFilter()
	if filter.StockItemID != nil {
		f.Eq(repository.ColMovementStockItemID, *filter.StockItemID)
	}
	if filter.Kind != "" {
		f.Eq(repository.ColMovementKind, filter.Kind)
	}
	if filter.RefKind != "" {
		f.Eq(repository.ColMovementRefKind, filter.RefKind)
	}
	if filter.RefID != nil {
		f.Eq(repository.ColMovementRefID, *filter.RefID)
	}
	if filter.From != nil {
		f.Gte(repository.ColMovementCreatedAt, filter.From.UTC())
	}
	if filter.To != nil {
		f.Lte(repository.ColMovementCreatedAt, filter.To.UTC())
	}
	return f
}
