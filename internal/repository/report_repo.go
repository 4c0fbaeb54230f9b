package repository

import (
	"context"
	"time"

	"precast-erp/internal/model"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReportRepository interface {
	Create(ctx context.Context, report *model.DailyReport) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.DailyReport, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.DailyReport, error)
	LoadLines(ctx context.Context, report *model.DailyReport) error
	ExistsForUserDate(ctx context.Context, userID uuid.UUID, date datatypes.Date) (bool, error)
	UpdateHeader(ctx context.Context, report *model.DailyReport) error
	ReplaceLines(ctx context.Context, report *model.DailyReport) error
	MarkSubmitted(ctx context.Context, id uuid.UUID, at time.Time) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, f *Filter, page, limit int) ([]model.DailyReport, int64, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(ctx context.Context, report *model.DailyReport) error {
	return GetDB(ctx, r.db).Create(report).Error
}

func (r *reportRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DailyReport, error) {
	var report model.DailyReport
	if err := GetDB(ctx, r.db).First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	if err := r.LoadLines(ctx, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.DailyReport, error) {
	var report model.DailyReport
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

// LoadLines fills the four line collections of report, with their catalog rows.
func (r *reportRepository) LoadLines(ctx context.Context, report *model.DailyReport) error {
	db := GetDB(ctx, r.db)
	if err := db.Preload("PBAProduct").Where("report_id = ?", report.ID).
		Find(&report.Productions).Error; err != nil {
		return err
	}
	if err := db.Preload("Material").Where("report_id = ?", report.ID).
		Find(&report.MaterialUsages).Error; err != nil {
		return err
	}
	if err := db.Preload("Armature").Where("report_id = ?", report.ID).
		Find(&report.ArmatureProductions).Error; err != nil {
		return err
	}
	return db.Where("report_id = ?", report.ID).Find(&report.Personnel).Error
}

func (r *reportRepository) ExistsForUserDate(ctx context.Context, userID uuid.UUID, date datatypes.Date) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.DailyReport{}).
		Where("user_id = ? AND report_date = ?", userID, date).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *reportRepository) UpdateHeader(ctx context.Context, report *model.DailyReport) error {
	return GetDB(ctx, r.db).Model(report).
		Select("first_name", "last_name", "observations").
		Updates(report).Error
}

// ReplaceLines deletes every line of the report and inserts the ones
// currently held by report.
func (r *reportRepository) ReplaceLines(ctx context.Context, report *model.DailyReport) error {
	db := GetDB(ctx, r.db)
	if err := deleteLines(db, report.ID); err != nil {
		return err
	}
	for i := range report.Productions {
		report.Productions[i].ReportID = report.ID
	}
	for i := range report.MaterialUsages {
		report.MaterialUsages[i].ReportID = report.ID
	}
	for i := range report.ArmatureProductions {
		report.ArmatureProductions[i].ReportID = report.ID
	}
	for i := range report.Personnel {
		report.Personnel[i].ReportID = report.ID
	}
	if len(report.Productions) > 0 {
		if err := db.Omit(clause.Associations).Create(&report.Productions).Error; err != nil {
			return err
		}
	}
	if len(report.MaterialUsages) > 0 {
		if err := db.Omit(clause.Associations).Create(&report.MaterialUsages).Error; err != nil {
			return err
		}
	}
	if len(report.ArmatureProductions) > 0 {
		if err := db.Omit(clause.Associations).Create(&report.ArmatureProductions).Error; err != nil {
			return err
		}
	}
	if len(report.Personnel) > 0 {
		if err := db.Create(&report.Personnel).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *reportRepository) MarkSubmitted(ctx context.Context, id uuid.UUID, at time.Time) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.DailyReport{}).
		Where("id = ? AND status = ?", id, model.ReportDraft).
		Updates(map[string]any{"status": model.ReportSubmitted, "submitted_at": at})
	return res.RowsAffected, res.Error
}

func (r *reportRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := deleteLines(db, id); err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.DailyReport{}).Error
}

func (r *reportRepository) List(ctx context.Context, f *Filter, page, limit int) ([]model.DailyReport, int64, error) {
	var reports []model.DailyReport
	var total int64

	if err := GetDB(ctx, r.db).Model(&model.DailyReport{}).Scopes(f.Scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := GetDB(ctx, r.db).Scopes(f.Scope).
		Preload("User").
		Order("report_date DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&reports).Error; err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

func deleteLines(db *gorm.DB, reportID uuid.UUID) error {
	for _, line := range []any{
		&model.ReportProduction{},
		&model.ReportMaterialUsage{},
		&model.ReportArmatureProduction{},
		&model.ReportPersonnel{},
	} {
		if err := db.Where("report_id = ?", reportID).Delete(line).Error; err != nil {
			return err
		}
	}
	return nil
}
