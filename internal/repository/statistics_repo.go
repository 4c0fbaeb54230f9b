package repository

import (
	"context"
	"fmt"
	"time"

	"precast-erp/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type StatisticsRepository interface {
	CountActiveUsers(ctx context.Context) (int64, error)
	CountActiveClients(ctx context.Context) (int64, error)
	CountReportsSince(ctx context.Context, since time.Time) (int64, error)
	CountOpenOrders(ctx context.Context) (int64, error)
	DeliveredTotals(ctx context.Context, since time.Time) ([]decimal.Decimal, error)
	GetTopProducts(ctx context.Context, since datatypes.Date, limit int) ([]model.ProductRanking, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) CountActiveUsers(ctx context.Context) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.User{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}

func (r *statisticsRepository) CountActiveClients(ctx context.Context) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Client{}).Where("is_active = ?", true).Count(&n).Error
	return n, err
}

func (r *statisticsRepository) CountReportsSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.DailyReport{}).Where("created_at >= ?", since).Count(&n).Error
	return n, err
}

func (r *statisticsRepository) CountOpenOrders(ctx context.Context) (int64, error) {
	var n int64
	err := GetDB(ctx, r.db).Model(&model.Order{}).
		Where("status NOT IN ?", []model.OrderStatus{model.OrderCancelled, model.OrderDelivered}).
		Count(&n).Error
	return n, err
}

// DeliveredTotals returns the total of each order delivered since the given
// time; callers sum them so money never goes through a float.
func (r *statisticsRepository) DeliveredTotals(ctx context.Context, since time.Time) ([]decimal.Decimal, error) {
	var totals []decimal.Decimal
	if err := GetDB(ctx, r.db).Model(&model.Order{}).
		Where("status = ? AND updated_at >= ?", model.OrderDelivered, since).
		Pluck("total_amount", &totals).Error; err != nil {
		return nil, err
	}
	return totals, nil
}

func (r *statisticsRepository) GetTopProducts(ctx context.Context, since datatypes.Date, limit int) ([]model.ProductRanking, error) {
	var rankings []model.ProductRanking
	if err := GetDB(ctx, r.db).Table("report_productions").
		Select("pba_products.id as product_id, pba_products.code as product_code, pba_products.name as product_name, pba_products.category as category, SUM(report_productions.quantity) as total_produced, COUNT(DISTINCT daily_reports.id) as report_count").
		Joins("JOIN pba_products ON pba_products.id = report_productions.pba_product_id").
		Joins("JOIN daily_reports ON daily_reports.id = report_productions.report_id").
		Where("daily_reports.status = ? AND daily_reports.report_date >= ?", model.ReportSubmitted, since).
		Group("pba_products.id, pba_products.code, pba_products.name, pba_products.category").
		Order("total_produced DESC").
		Limit(limit).
		Scan(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to query top products: %w", err)
	}
	return rankings, nil
}
