package repository

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Column names a filterable column. Only the package-level values below are
// meant to be used, so list queries never interpolate caller text into SQL.
type Column struct {
	Table string
	Name  string
}

func (c Column) clause() clause.Column {
	return clause.Column{Table: c.Table, Name: c.Name}
}

var (
	ColReportUserID = Column{"daily_reports", "user_id"}
	ColReportStatus = Column{"daily_reports", "status"}
	ColReportDate   = Column{"daily_reports", "report_date"}

	ColOrderStatus   = Column{"orders", "status"}
	ColOrderClientID = Column{"orders", "client_id"}
	ColOrderDate     = Column{"orders", "order_date"}
	ColOrderNumber   = Column{"orders", "order_number"}

	ColInvoiceStatus  = Column{"invoices", "status"}
	ColInvoiceOrderID = Column{"invoices", "order_id"}
	ColInvoiceDate    = Column{"invoices", "invoice_date"}
	ColInvoiceDueDate = Column{"invoices", "due_date"}

	ColQuoteStatus  = Column{"quotes", "status"}
	ColQuoteOrderID = Column{"quotes", "order_id"}
	ColQuoteDate    = Column{"quotes", "quote_date"}

	ColStockItemClass = Column{"stock_items", "item_class"}

	ColMovementStockItemID = Column{"stock_movements", "stock_item_id"}
	ColMovementKind        = Column{"stock_movements", "kind"}
	ColMovementRefKind     = Column{"stock_movements", "reference_kind"}
	ColMovementRefID       = Column{"stock_movements", "reference_id"}
	ColMovementCreatedAt   = Column{"stock_movements", "created_at"}

	ColClientName   = Column{"clients", "company_name"}
	ColClientActive = Column{"clients", "is_active"}

	ColAuditAction = Column{"audit_logs", "action"}
	ColAuditUserID = Column{"audit_logs", "user_id"}
	ColAuditEntity = Column{"audit_logs", "entity_id"}
)

// Filter accumulates typed WHERE conditions. The zero value and nil both
// mean "no condition".
type Filter struct {
	exprs []clause.Expression
}

func NewFilter() *Filter { return &Filter{} }

func (f *Filter) add(e clause.Expression) *Filter {
	f.exprs = append(f.exprs, e)
	return f
}

func (f *Filter) Eq(col Column, v any) *Filter {
	return f.add(clause.Eq{Column: col.clause(), Value: v})
}

func (f *Filter) Gte(col Column, v any) *Filter {
	return f.add(clause.Gte{Column: col.clause(), Value: v})
}

func (f *Filter) Lte(col Column, v any) *Filter {
	return f.add(clause.Lte{Column: col.clause(), Value: v})
}

func (f *Filter) Lt(col Column, v any) *Filter {
	return f.add(clause.Lt{Column: col.clause(), Value: v})
}

func (f *Filter) In(col Column, vs ...any) *Filter {
	return f.add(clause.IN{Column: col.clause(), Values: vs})
}

// Contains matches col case-insensitively against a substring.
func (f *Filter) Contains(col Column, s string) *Filter {
	return f.add(clause.Expr{
		SQL:  "LOWER(?) LIKE ?",
		Vars: []any{col.clause(), "%" + strings.ToLower(s) + "%"},
	})
}

// Len is the number of conditions.
func (f *Filter) Len() int {
	if f == nil {
		return 0
	}
	return len(f.exprs)
}

// Scope applies the filter; usable with db.Scopes.
func (f *Filter) Scope(db *gorm.DB) *gorm.DB {
	if f.Len() == 0 {
		return db
	}
	return db.Clauses(clause.Where{Exprs: f.exprs})
}
