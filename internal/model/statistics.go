package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DashboardOverview is the management summary of production and sales
type DashboardOverview struct {
	ActiveUsers        int64            `json:"active_users"`
	ActiveClients      int64            `json:"active_clients"`
	ReportsInRange     int64            `json:"reports_in_range"`
	PendingOrders      int64            `json:"pending_orders"`
	DeliveredRevenue   decimal.Decimal  `json:"delivered_revenue"`
	TotalPBAStock      decimal.Decimal  `json:"total_pba_stock"`
	LowStockItems      int              `json:"low_stock_items"`
	TopProducts        []ProductRanking `json:"top_products"`
	TimeRangeStartDate time.Time        `json:"time_range_start_date"`
	TimeRangeEndDate   time.Time        `json:"time_range_end_date"`
}

// ProductRanking represents a ranked product based on submitted production
type ProductRanking struct {
	ProductID     string `json:"product_id"`
	ProductCode   string `json:"product_code"`
	ProductName   string `json:"product_name"`
	Category      string `json:"category"`
	TotalProduced int64  `json:"total_produced"`
	ReportCount   int64  `json:"report_count"`
}
