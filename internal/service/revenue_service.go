package service

import (
	"context"
	"sort"
	"time"

	"precast-erp/internal/apperror"
	"precast-erp/internal/repository"

	"github.com/shopspring/decimal"
)

// --- DTOs ---

type RevenueDataPoint struct {
	Period    string          `json:"period"` // first day of the bucket, YYYY-MM-DD
	Invoiced  decimal.Decimal `json:"invoiced"`
	Collected decimal.Decimal `json:"collected"`
	Invoices  int             `json:"invoices"`
	Payments  int             `json:"payments"`
}

type RevenueFilter struct {
	GroupBy string // week, month, quarter, year
	From    time.Time
	To      time.Time
}

// --- Interface ---

type RevenueService interface {
	GetRevenueStatistics(ctx context.Context, filter RevenueFilter) ([]RevenueDataPoint, error)
}

type revenueService struct {
	repo repository.RevenueRepository
}

func NewRevenueService(repo repository.RevenueRepository) RevenueService {
	return &revenueService{repo: repo}
}

// --- Implementation ---

func (s *revenueService) GetRevenueStatistics(ctx context.Context, filter RevenueFilter) ([]RevenueDataPoint, error) {
	groupBy := filter.GroupBy
	switch groupBy {
	case "week", "month", "quarter", "year":
	case "":
		groupBy = "month"
	default:
		return nil, apperror.ErrInvalidInput.WithMessage("group_by must be week, month, quarter or year")
	}
	if filter.To.Before(filter.From) {
		return nil, apperror.ErrInvalidInput.WithMessage("end date is before start date")
	}

	from, to := dateOf(filter.From), dateOf(filter.To)
	invoices, err := s.repo.InvoicesBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.PaymentsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	buckets := map[string]*RevenueDataPoint{}
	bucket := func(t time.Time) *RevenueDataPoint {
		key := periodStart(groupBy, t).Format(dateLayout)
		p, ok := buckets[key]
		if !ok {
			p = &RevenueDataPoint{Period: key, Invoiced: decimal.Zero, Collected: decimal.Zero}
			buckets[key] = p
		}
		return p
	}
	for _, inv := range invoices {
		p := bucket(time.Time(inv.InvoiceDate))
		p.Invoiced = p.Invoiced.Add(inv.TotalAmount)
		p.Invoices++
	}
	for _, pay := range payments {
		p := bucket(time.Time(pay.PaymentDate))
		p.Collected = p.Collected.Add(pay.Amount)
		p.Payments++
	}

	result := make([]RevenueDataPoint, 0, len(buckets))
	for _, p := range buckets {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Period < result[j].Period })
	return result, nil
}

// periodStart truncates t to the first day of its bucket. Weeks start on Monday.
func periodStart(groupBy string, t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	switch groupBy {
	case "week":
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7
		return day.AddDate(0, 0, -offset)
	case "quarter":
		return time.Date(y, ((m-1)/3)*3+1, 1, 0, 0, 0, 0, time.UTC)
	case "year":
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
	}
}
