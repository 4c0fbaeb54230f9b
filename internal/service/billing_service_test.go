package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"precast-erp/internal/apperror"
	"precast-erp/internal/model"
)

func TestListInvoices(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	open := f.invoiced(t)
	settled := f.invoiced(t)
	if _, err := f.env.orders.RecordPayment(ctx, f.sales, settled.ID, RecordPaymentRequest{Amount: dec("1000"), Method: model.PaymentTransfer}); err != nil {
		t.Fatalf("RecordPayment() error = %v", err)
	}

	count := func(t *testing.T, filter InvoiceFilter) []model.Invoice {
		t.Helper()
		invoices, total, err := f.env.billing.ListInvoices(ctx, filter, 1, 20)
		if err != nil {
			t.Fatalf("ListInvoices(%+v) error = %v", filter, err)
		}
		if int(total) != len(invoices) {
			t.Errorf("total = %d, len = %d", total, len(invoices))
		}
		return invoices
	}

	if got := count(t, InvoiceFilter{}); len(got) != 2 {
		t.Errorf("all invoices = %d, want 2", len(got))
	}
	got := count(t, InvoiceFilter{OrderID: &open.ID})
	if len(got) != 1 || got[0].OrderID != open.ID {
		t.Fatalf("invoices for order = %+v, want the open one", got)
	}
	if got[0].Status != model.InvoiceDraft {
		t.Errorf("status = %s, want draft", got[0].Status)
	}
	if got := count(t, InvoiceFilter{Status: model.InvoicePaid}); len(got) != 1 || got[0].OrderID != settled.ID {
		t.Errorf("paid invoices = %+v, want the settled one", got)
	}

	tomorrow := time.Now().AddDate(0, 0, 1)
	if got := count(t, InvoiceFilter{From: &tomorrow}); len(got) != 0 {
		t.Errorf("invoices from tomorrow = %d, want 0", len(got))
	}

	f.env.billing.now = fixedClock(time.Now().AddDate(0, 0, 40))
	tests := []struct {
		status model.InvoiceStatus
		want   int
	}{
		{model.InvoiceOverdue, 1},
		{model.InvoiceDraft, 0},
		{model.InvoicePaid, 1},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			got := count(t, InvoiceFilter{Status: tt.status})
			if len(got) != tt.want {
				t.Fatalf("invoices = %d, want %d", len(got), tt.want)
			}
			for _, inv := range got {
				if inv.Status != tt.status {
					t.Errorf("status = %s, want %s", inv.Status, tt.status)
				}
			}
		})
	}

	if _, _, err := f.env.billing.ListInvoices(ctx, InvoiceFilter{Status: "unknown"}, 1, 20); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("ListInvoices(unknown) error = %v, want ErrInvalidInput", err)
	}
}

func TestOverdueInvoiceOnOrder(t *testing.T) {
	f := newOrderFixture(t)
	o := f.invoiced(t)

	f.env.orders.now = fixedClock(time.Now().AddDate(0, 0, 31))
	got, err := f.env.orders.Get(context.Background(), o.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Invoice == nil || got.Invoice.Status != model.InvoiceOverdue {
		t.Errorf("invoice = %+v, want overdue", got.Invoice)
	}
	if n := countStored(t, f, model.InvoiceOverdue); n != 0 {
		t.Errorf("stored overdue invoices = %d, want 0", n)
	}
}

func countStored(t *testing.T, f *orderFixture, status model.InvoiceStatus) int64 {
	t.Helper()
	var n int64
	if err := f.env.db.Model(&model.Invoice{}).Where("status = ?", status).Count(&n).Error; err != nil {
		t.Fatalf("count invoices: %v", err)
	}
	return n
}

func TestListQuotes(t *testing.T) {
	f := newOrderFixture(t)
	ctx := context.Background()
	first := f.invoiced(t)
	f.invoiced(t)

	tests := []struct {
		name   string
		filter QuoteFilter
		want   int
	}{
		{"all", QuoteFilter{}, 2},
		{"accepted", QuoteFilter{Status: model.QuoteAccepted}, 2},
		{"pending", QuoteFilter{Status: model.QuotePending}, 0},
		{"by order", QuoteFilter{OrderID: &first.ID}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quotes, total, err := f.env.billing.ListQuotes(ctx, tt.filter, 1, 20)
			if err != nil {
				t.Fatalf("ListQuotes() error = %v", err)
			}
			if len(quotes) != tt.want || total != int64(tt.want) {
				t.Errorf("quotes = %d (total %d), want %d", len(quotes), total, tt.want)
			}
		})
	}

	if _, _, err := f.env.billing.ListQuotes(ctx, QuoteFilter{Status: "lost"}, 1, 20); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Errorf("ListQuotes(lost) error = %v, want ErrInvalidInput", err)
	}
}
