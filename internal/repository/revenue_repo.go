package repository

import (
	"context"
	"fmt"

	"precast-erp/internal/model"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RevenueRepository reads the invoices and payments behind the revenue chart.
type RevenueRepository interface {
	InvoicesBetween(ctx context.Context, from, to datatypes.Date) ([]model.Invoice, error)
	PaymentsBetween(ctx context.Context, from, to datatypes.Date) ([]model.Payment, error)
}

type revenueRepository struct {
	db *gorm.DB
}

func NewRevenueRepository(db *gorm.DB) RevenueRepository {
	return &revenueRepository{db: db}
}

// InvoicesBetween returns non-cancelled invoices dated within [from, to].
func (r *revenueRepository) InvoicesBetween(ctx context.Context, from, to datatypes.Date) ([]model.Invoice, error) {
	var invoices []model.Invoice
	if err := GetDB(ctx, r.db).
		Select("id", "invoice_date", "total_amount", "status").
		Where("invoice_date >= ? AND invoice_date <= ? AND status <> ?", from, to, model.InvoiceCancelled).
		Order("invoice_date").
		Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to query invoices: %w", err)
	}
	return invoices, nil
}

// PaymentsBetween returns payments received within [from, to].
func (r *revenueRepository) PaymentsBetween(ctx context.Context, from, to datatypes.Date) ([]model.Payment, error) {
	var payments []model.Payment
	if err := GetDB(ctx, r.db).
		Select("id", "payment_date", "amount", "method").
		Where("payment_date >= ? AND payment_date <= ?", from, to).
		Order("payment_date").
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to query payments: %w", err)
	}
	return payments, nil
}
