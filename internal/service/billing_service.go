package service

import (
	"context"
	"time"

	"precast-erp/internal/apperror"
	"precast-erp/internal/model"
	"precast-erp/internal/repository"

	"github.com/google/uuid"
)

// InvoiceFilter narrows the invoice listing. Status accepts the derived
// "overdue" value as well as the stored ones.
type InvoiceFilter struct {
	Status  model.InvoiceStatus
	OrderID *uuid.UUID
	From    *time.Time
	To      *time.Time
}

type QuoteFilter struct {
	Status  model.QuoteStatus
	OrderID *uuid.UUID
	From    *time.Time
	To      *time.Time
}

// BillingService lists the quotes and invoices issued by the order workflow.
// Creating them stays on OrderService.
type BillingService interface {
	ListInvoices(ctx context.Context, filter InvoiceFilter, page, limit int) ([]model.Invoice, int64, error)
	ListQuotes(ctx context.Context, filter QuoteFilter, page, limit int) ([]model.Quote, int64, error)
}

type billingService struct {
	invoiceRepo repository.InvoiceRepository
	quoteRepo   repository.QuoteRepository
	now         func() time.Time
}

func NewBillingService(invoiceRepo repository.InvoiceRepository, quoteRepo repository.QuoteRepository) BillingService {
	return &billingService{invoiceRepo: invoiceRepo, quoteRepo: quoteRepo, now: time.Now}
}

func (s *billingService) ListInvoices(ctx context.Context, filter InvoiceFilter, page, limit int) ([]model.Invoice, int64, error) {
	today := dateOf(s.now())
	f := repository.NewFilter()
	switch filter.Status {
	case "":
	case model.InvoiceOverdue:
		f.In(repository.ColInvoiceStatus, model.InvoiceDraft, model.InvoiceSent).
			Lt(repository.ColInvoiceDueDate, today)
	case model.InvoiceDraft, model.InvoiceSent:
		// unpaid invoices past due are listed as overdue instead
		f.Eq(repository.ColInvoiceStatus, filter.Status).
			Gte(repository.ColInvoiceDueDate, today)
	case model.InvoicePaid, model.InvoiceCancelled:
		f.Eq(repository.ColInvoiceStatus, filter.Status)
	default:
		return nil, 0, apperror.ErrInvalidInput.WithMessage("invalid invoice status %q", filter.Status)
	}
	if filter.OrderID != nil {
		f.Eq(repository.ColInvoiceOrderID, *filter.OrderID)
	}
	if filter.From != nil {
		f.Gte(repository.ColInvoiceDate, dateOf(*filter.From))
	}
	if filter.To != nil {
		f.Lte(repository.ColInvoiceDate, dateOf(*filter.To))
	}

	invoices, total, err := s.invoiceRepo.List(ctx, f, page, limit)
	if err != nil {
		return nil, 0, err
	}
	for i := range invoices {
		invoices[i].MarkOverdue(time.Time(today))
	}
	return invoices, total, nil
}

func (s *billingService) ListQuotes(ctx context.Context, filter QuoteFilter, page, limit int) ([]model.Quote, int64, error) {
	f := repository.NewFilter()
	switch filter.Status {
	case "":
	case model.QuotePending, model.QuoteAccepted, model.QuoteRejected, model.QuoteExpired:
		f.Eq(repository.ColQuoteStatus, filter.Status)
	default:
		return nil, 0, apperror.ErrInvalidInput.WithMessage("invalid quote status %q", filter.Status)
	}
	if filter.OrderID != nil {
		f.Eq(repository.ColQuoteOrderID, *filter.OrderID)
	}
	if filter.From != nil {
		f.Gte(repository.ColQuoteDate, dateOf(*filter.From))
	}
	if filter.To != nil {
		f.Lte(repository.ColQuoteDate, dateOf(*filter.To))
	}
	return s.quoteRepo.List(ctx, f, page, limit)
}
