package service

import (
	"context"
	"fmt"
	"time"

	"precast-erp/internal/model"
	"precast-erp/internal/repository"

	"github.com/shopspring/decimal"
)

const topProductsLimit = 5

type StatisticsService interface {
	GetOverview(ctx context.Context, startDate, endDate time.Time) (model.DashboardOverview, error)
}

type statisticsService struct {
	repo   repository.StatisticsRepository
	ledger LedgerService
}

func NewStatisticsService(repo repository.StatisticsRepository, ledger LedgerService) StatisticsService {
	return &statisticsService{repo: repo, ledger: ledger}
}

// GetOverview aggregates production and sales activity since startDate.
// endDate is only echoed back; counters run up to now.
func (s *statisticsService) GetOverview(ctx context.Context, startDate, endDate time.Time) (model.DashboardOverview, error) {
	var res model.DashboardOverview
	res.TimeRangeStartDate = startDate
	res.TimeRangeEndDate = endDate

	var err error
	if res.ActiveUsers, err = s.repo.CountActiveUsers(ctx); err != nil {
		return res, fmt.Errorf("failed to count users: %w", err)
	}
	if res.ActiveClients, err = s.repo.CountActiveClients(ctx); err != nil {
		return res, fmt.Errorf("failed to count clients: %w", err)
	}
	if res.ReportsInRange, err = s.repo.CountReportsSince(ctx, startDate); err != nil {
		return res, fmt.Errorf("failed to count reports: %w", err)
	}
	if res.PendingOrders, err = s.repo.CountOpenOrders(ctx); err != nil {
		return res, fmt.Errorf("failed to count orders: %w", err)
	}

	totals, err := s.repo.DeliveredTotals(ctx, startDate)
	if err != nil {
		return res, fmt.Errorf("failed to load delivered orders: %w", err)
	}
	res.DeliveredRevenue = decimal.Sum(decimal.Zero, totals...)

	if res.TopProducts, err = s.repo.GetTopProducts(ctx, dateOf(startDate), topProductsLimit); err != nil {
		return res, err
	}

	summary, err := s.ledger.Summary(ctx)
	if err != nil {
		return res, err
	}
	res.TotalPBAStock = decimal.Zero
	for _, c := range summary.Classes {
		if c.ItemClass == model.ItemClassFinishedProduct {
			res.TotalPBAStock = c.TotalStock
		}
	}
	res.LowStockItems = len(summary.LowStock)

	return res, nil
}
