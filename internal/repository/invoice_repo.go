package repository

import (
	"context"

	"precast-erp/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.Invoice) error
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error)
	FindByOrderIDForUpdate(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error)
	UpdatePayment(ctx context.Context, id uuid.UUID, paid decimal.Decimal, status model.InvoiceStatus) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.InvoiceStatus) error
	CreatePayment(ctx context.Context, payment *model.Payment) error
	ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]model.Payment, error)
	List(ctx context.Context, f *Filter, page, limit int) ([]model.Invoice, int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.Invoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).Preload("Payments").First(&invoice, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByOrderIDForUpdate(ctx context.Context, orderID uuid.UUID) (*model.Invoice, error) {
	var invoice model.Invoice
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&invoice, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) UpdatePayment(ctx context.Context, id uuid.UUID, paid decimal.Decimal, status model.InvoiceStatus) error {
	return GetDB(ctx, r.db).Model(&model.Invoice{}).Where("id = ?", id).
		Updates(map[string]any{"paid_amount": paid, "status": status}).Error
}

func (r *invoiceRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.InvoiceStatus) error {
	return GetDB(ctx, r.db).Model(&model.Invoice{}).Where("id = ?", id).Update("status", status).Error
}

func (r *invoiceRepository) CreatePayment(ctx context.Context, payment *model.Payment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}

func (r *invoiceRepository) ListPayments(ctx context.Context, invoiceID uuid.UUID) ([]model.Payment, error) {
	var payments []model.Payment
	if err := GetDB(ctx, r.db).Where("invoice_id = ?", invoiceID).
		Order("created_at").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (r *invoiceRepository) List(ctx context.Context, f *Filter, page, limit int) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64

	if err := GetDB(ctx, r.db).Model(&model.Invoice{}).Scopes(f.Scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := GetDB(ctx, r.db).Scopes(f.Scope).
		Order("invoice_date DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}
