package service

import (
	"context"
	"fmt"
	"time"

	"precast-erp/internal/apperror"
	"precast-erp/internal/logger"
	"precast-erp/internal/model"
	"precast-erp/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const dateLayout = "2006-01-02"

// DTOs
type ProductionLineRequest struct {
	PBAProductID string `json:"pba_product_id" binding:"required,uuid"`
	Quantity     int    `json:"quantity" binding:"gte=0"`
}

type MaterialUsageLineRequest struct {
	MaterialID     string          `json:"material_id" binding:"required,uuid"`
	Quantity       decimal.Decimal `json:"quantity" binding:"gte=0"`
	Unit           string          `json:"unit" binding:"omitempty,oneof=kg t g sac barre"`
	AdditionalInfo string          `json:"additional_info"`
}

type ArmatureLineRequest struct {
	ArmatureID string `json:"armature_id" binding:"required,uuid"`
	Quantity   int    `json:"quantity" binding:"gte=0"`
}

type PersonnelLineRequest struct {
	Position  string `json:"position" binding:"required,oneof=production soudeur ferrailleur ouvrier macon manoeuvre"`
	Headcount int    `json:"headcount" binding:"gte=0"`
}

type ReportLinesRequest struct {
	Productions         []ProductionLineRequest    `json:"productions" binding:"dive"`
	MaterialUsages      []MaterialUsageLineRequest `json:"material_usages" binding:"dive"`
	ArmatureProductions []ArmatureLineRequest      `json:"armature_productions" binding:"dive"`
	Personnel           []PersonnelLineRequest     `json:"personnel" binding:"dive"`
}

type CreateReportRequest struct {
	ReportDate   string `json:"report_date" binding:"required"`
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	Observations string `json:"observations"`
	ReportLinesRequest
}

type UpdateReportRequest struct {
	FirstName    string `json:"first_name" binding:"required"`
	LastName     string `json:"last_name" binding:"required"`
	Observations string `json:"observations"`
	ReportLinesRequest
}

type ReportFilter struct {
	UserID *uuid.UUID
	Status model.ReportStatus
	From   *time.Time
	To     *time.Time
}

// SubmissionResult is what a successful submission changed.
type SubmissionResult struct {
	ReportID    uuid.UUID             `json:"report_id"`
	Status      model.ReportStatus    `json:"status"`
	SubmittedAt time.Time             `json:"submitted_at"`
	Movements   []model.StockMovement `json:"movements"`
}

type ReportService interface {
	Create(ctx context.Context, actor Actor, req CreateReportRequest) (*model.DailyReport, error)
	UpdateDraft(ctx context.Context, actor Actor, id uuid.UUID, req UpdateReportRequest) (*model.DailyReport, error)
	DeleteDraft(ctx context.Context, actor Actor, id uuid.UUID) error
	Submit(ctx context.Context, actor Actor, id uuid.UUID) (*SubmissionResult, error)
	Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.DailyReport, error)
	List(ctx context.Context, actor Actor, filter ReportFilter, page, limit int) ([]model.DailyReport, int64, error)
}

type reportService struct {
	reportRepo  repository.ReportRepository
	catalogRepo repository.CatalogRepository
	auditRepo   repository.AuditRepository
	ledger      LedgerService
	txManager   repository.TransactionManager
	events      EventPublisher
	now         func() time.Time
}

func NewReportService(
	reportRepo repository.ReportRepository,
	catalogRepo repository.CatalogRepository,
	auditRepo repository.AuditRepository,
	ledger LedgerService,
	txManager repository.TransactionManager,
	events EventPublisher,
) ReportService {
	return &reportService{
		reportRepo:  reportRepo,
		catalogRepo: catalogRepo,
		auditRepo:   auditRepo,
		ledger:      ledger,
		txManager:   txManager,
		events:      publisherOrNoop(events),
		now:         time.Now,
	}
}

// ParseDate reads a YYYY-MM-DD date as UTC midnight.
func ParseDate(s string) (datatypes.Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return datatypes.Date{}, apperror.ErrInvalidInput.WithMessage("invalid date %q, expected YYYY-MM-DD", s)
	}
	return datatypes.Date(t.UTC()), nil
}

// dateOf truncates t to its UTC calendar day.
func dateOf(t time.Time) datatypes.Date {
	y, m, d := t.UTC().Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func canSee(actor Actor, report *model.DailyReport) bool {
	return actor.Elevated() || report.UserID == actor.ID
}

func (s *reportService) Create(ctx context.Context, actor Actor, req CreateReportRequest) (*model.DailyReport, error) {
	date, err := ParseDate(req.ReportDate)
	if err != nil {
		return nil, err
	}

	report := &model.DailyReport{
		UserID:       actor.ID,
		ReportDate:   date,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Status:       model.ReportDraft,
		Observations: req.Observations,
	}
	if err := s.buildLines(report, req.ReportLinesRequest); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		exists, err := s.reportRepo.ExistsForUserDate(txCtx, actor.ID, date)
		if err != nil {
			return fmt.Errorf("failed to check existing report: %w", err)
		}
		if exists {
			return apperror.ErrReportExists.WithMessage("a report already exists for %s", req.ReportDate)
		}
		if err := s.checkLineItems(txCtx, report); err != nil {
			return err
		}

		if err := s.reportRepo.Create(txCtx, report); err != nil {
			if repository.IsUniqueViolation(err) {
				return apperror.ErrReportExists.WithMessage("a report already exists for %s", req.ReportDate)
			}
			return fmt.Errorf("failed to create report: %w", err)
		}

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionCreateReport, report.ID.String(), req.ReportDate, map[string]any{
			"report_date": req.ReportDate,
			"lines":       lineCounts(report),
		})
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) UpdateDraft(ctx context.Context, actor Actor, id uuid.UUID, req UpdateReportRequest) (*model.DailyReport, error) {
	var report *model.DailyReport
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.lockDraft(txCtx, actor, id)
		if err != nil {
			return err
		}
		r.FirstName = req.FirstName
		r.LastName = req.LastName
		r.Observations = req.Observations
		if err := s.buildLines(r, req.ReportLinesRequest); err != nil {
			return err
		}
		if err := s.checkLineItems(txCtx, r); err != nil {
			return err
		}

		if err := s.reportRepo.UpdateHeader(txCtx, r); err != nil {
			return fmt.Errorf("failed to update report: %w", err)
		}
		if err := s.reportRepo.ReplaceLines(txCtx, r); err != nil {
			return fmt.Errorf("failed to replace report lines: %w", err)
		}
		report = r

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionUpdateReport, r.ID.String(), time.Time(r.ReportDate).Format(dateLayout), map[string]any{
			"lines": lineCounts(r),
		})
	})
	if err != nil {
		return nil, err
	}
	return report, nil
}

func (s *reportService) DeleteDraft(ctx context.Context, actor Actor, id uuid.UUID) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		r, err := s.lockDraft(txCtx, actor, id)
		if err != nil {
			return err
		}
		if err := s.reportRepo.Delete(txCtx, r.ID); err != nil {
			return fmt.Errorf("failed to delete report: %w", err)
		}
		return writeAudit(txCtx, s.auditRepo, actor, model.ActionDeleteReport, r.ID.String(), time.Time(r.ReportDate).Format(dateLayout), map[string]any{
			"deleted": true,
		})
	})
}

// Submit turns every draft line into a ledger movement and freezes the
// report. Either all movements and the status flip commit, or nothing does.
func (s *reportService) Submit(ctx context.Context, actor Actor, id uuid.UUID) (*SubmissionResult, error) {
	var result SubmissionResult
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		report, err := s.lockDraft(txCtx, actor, id)
		if err != nil {
			return err
		}
		if err := s.reportRepo.LoadLines(txCtx, report); err != nil {
			return fmt.Errorf("failed to load report lines: %w", err)
		}

		ref := report.ID
		notes := fmt.Sprintf("Daily report %s", time.Time(report.ReportDate).Format(dateLayout))
		apply := func(class model.ItemClass, itemID uuid.UUID, kind model.MovementKind, qty decimal.Decimal) error {
			res, err := s.ledger.ApplyMovement(txCtx, MovementInput{
				ItemClass: class,
				ItemID:    itemID,
				Kind:      kind,
				Quantity:  qty,
				RefKind:   model.RefReport,
				RefID:     &ref,
				Actor:     actor,
				Notes:     notes,
			})
			if err != nil {
				return referentialError(err)
			}
			result.Movements = append(result.Movements, res.Movement)
			return nil
		}

		for _, line := range report.Productions {
			if line.Quantity <= 0 {
				continue
			}
			if err := apply(model.ItemClassFinishedProduct, line.PBAProductID, model.MovementProduction, decimal.NewFromInt(int64(line.Quantity))); err != nil {
				return err
			}
		}
		for _, line := range report.MaterialUsages {
			if !line.Quantity.IsPositive() {
				continue
			}
			if err := apply(model.ItemClassRawMaterial, line.MaterialID, model.MovementUsage, line.Quantity.Neg()); err != nil {
				return err
			}
		}
		for _, line := range report.ArmatureProductions {
			if line.Quantity <= 0 {
				continue
			}
			if err := apply(model.ItemClassSubAssembly, line.ArmatureID, model.MovementProduction, decimal.NewFromInt(int64(line.Quantity))); err != nil {
				return err
			}
		}

		submittedAt := s.now().UTC()
		n, err := s.reportRepo.MarkSubmitted(txCtx, report.ID, submittedAt)
		if err != nil {
			return fmt.Errorf("failed to mark report submitted: %w", err)
		}
		if n == 0 {
			return apperror.ErrAlreadySubmitted
		}

		result.ReportID = report.ID
		result.Status = model.ReportSubmitted
		result.SubmittedAt = submittedAt

		return writeAudit(txCtx, s.auditRepo, actor, model.ActionSubmitReport, report.ID.String(), time.Time(report.ReportDate).Format(dateLayout), map[string]any{
			"movements": len(result.Movements),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Get().WithFields(logrus.Fields{
		"report_id": result.ReportID,
		"movements": len(result.Movements),
		"actor":     actor.ID,
	}).Info("daily report submitted")
	s.events.Publish(EventReportSubmitted, result)
	return &result, nil
}

func (s *reportService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*model.DailyReport, error) {
	report, err := s.reportRepo.FindByID(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, err
	}
	if !canSee(actor, report) {
		return nil, apperror.ErrReportNotFound
	}
	return report, nil
}

func (s *reportService) List(ctx context.Context, actor Actor, filter ReportFilter, page, limit int) ([]model.DailyReport, int64, error) {
	f := repository.NewFilter()
	switch {
	case !actor.Elevated():
		f.Eq(repository.ColReportUserID, actor.ID)
	case filter.UserID != nil:
		f.Eq(repository.ColReportUserID, *filter.UserID)
	}
	if filter.Status != "" {
		f.Eq(repository.ColReportStatus, filter.Status)
	}
	if filter.From != nil {
		f.Gte(repository.ColReportDate, dateOf(*filter.From))
	}
	if filter.To != nil {
		f.Lte(repository.ColReportDate, dateOf(*filter.To))
	}
	return s.reportRepo.List(ctx, f, page, limit)
}

// lockDraft loads and locks a report the actor may modify.
func (s *reportService) lockDraft(ctx context.Context, actor Actor, id uuid.UUID) (*model.DailyReport, error) {
	report, err := s.reportRepo.FindByIDForUpdate(ctx, id)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperror.ErrReportNotFound
		}
		return nil, fmt.Errorf("failed to load report: %w", err)
	}
	if !canSee(actor, report) {
		return nil, apperror.ErrReportNotFound
	}
	if report.Status != model.ReportDraft {
		return nil, apperror.ErrAlreadySubmitted
	}
	return report, nil
}

// buildLines replaces report's lines with the request's, dropping empty ones.
func (s *reportService) buildLines(report *model.DailyReport, req ReportLinesRequest) error {
	report.Productions = nil
	report.MaterialUsages = nil
	report.ArmatureProductions = nil
	report.Personnel = nil

	for _, l := range req.Productions {
		if l.Quantity <= 0 {
			continue
		}
		id, err := uuid.Parse(l.PBAProductID)
		if err != nil {
			return apperror.ErrInvalidInput.WithMessage("invalid pba_product_id %q", l.PBAProductID)
		}
		report.Productions = append(report.Productions, model.ReportProduction{PBAProductID: id, Quantity: l.Quantity})
	}
	for _, l := range req.MaterialUsages {
		if !l.Quantity.IsPositive() {
			continue
		}
		id, err := uuid.Parse(l.MaterialID)
		if err != nil {
			return apperror.ErrInvalidInput.WithMessage("invalid material_id %q", l.MaterialID)
		}
		if l.Unit != "" && !model.IsValidMaterialUnit(l.Unit) {
			return apperror.ErrInvalidInput.WithMessage("invalid unit %q", l.Unit)
		}
		report.MaterialUsages = append(report.MaterialUsages, model.ReportMaterialUsage{
			MaterialID:     id,
			Quantity:       l.Quantity,
			Unit:           l.Unit,
			AdditionalInfo: l.AdditionalInfo,
		})
	}
	for _, l := range req.ArmatureProductions {
		if l.Quantity <= 0 {
			continue
		}
		id, err := uuid.Parse(l.ArmatureID)
		if err != nil {
			return apperror.ErrInvalidInput.WithMessage("invalid armature_id %q", l.ArmatureID)
		}
		report.ArmatureProductions = append(report.ArmatureProductions, model.ReportArmatureProduction{ArmatureID: id, Quantity: l.Quantity})
	}
	for _, l := range req.Personnel {
		if l.Headcount <= 0 {
			continue
		}
		if !model.IsValidPosition(l.Position) {
			return apperror.ErrInvalidInput.WithMessage("invalid position %q", l.Position)
		}
		report.Personnel = append(report.Personnel, model.ReportPersonnel{Position: l.Position, Headcount: l.Headcount})
	}
	return nil
}

// checkLineItems makes sure every referenced catalog item exists and is active.
func (s *reportService) checkLineItems(ctx context.Context, report *model.DailyReport) error {
	check := func(class model.ItemClass, id uuid.UUID) error {
		exists, active, err := s.catalogRepo.ItemStatus(ctx, class, id)
		if err != nil {
			return fmt.Errorf("failed to check %s %s: %w", class, id, err)
		}
		if !exists {
			return apperror.ErrReferencedItemMissing.WithMessage("%s %s does not exist", class, id)
		}
		if !active {
			return apperror.ErrReferencedItemInactive.WithMessage("%s %s is inactive", class, id)
		}
		return nil
	}
	for _, l := range report.Productions {
		if err := check(model.ItemClassFinishedProduct, l.PBAProductID); err != nil {
			return err
		}
	}
	for _, l := range report.MaterialUsages {
		if err := check(model.ItemClassRawMaterial, l.MaterialID); err != nil {
			return err
		}
	}
	for _, l := range report.ArmatureProductions {
		if err := check(model.ItemClassSubAssembly, l.ArmatureID); err != nil {
			return err
		}
	}
	return nil
}

// referentialError reports ledger lookup failures during submission as
// broken references from the report.
func referentialError(err error) error {
	switch {
	case apperror.CodeOf(err) == apperror.ErrItemNotFound.Code:
		return apperror.ErrReferencedItemMissing.Wrap(err)
	case apperror.CodeOf(err) == apperror.ErrItemInactive.Code:
		return apperror.ErrReferencedItemInactive.Wrap(err)
	}
	return err
}

func lineCounts(r *model.DailyReport) map[string]int {
	return map[string]int{
		"productions":          len(r.Productions),
		"material_usages":      len(r.MaterialUsages),
		"armature_productions": len(r.ArmatureProductions),
		"personnel":            len(r.Personnel),
	}
}
