package repository

import (
	"context"

	"precast-erp/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuoteRepository interface {
	Create(ctx context.Context, quote *model.Quote) error
	LatestPendingForUpdate(ctx context.Context, orderID uuid.UUID) (*model.Quote, error)
	CountByStatus(ctx context.Context, orderID uuid.UUID, status model.QuoteStatus) (int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.QuoteStatus) (int64, error)
	List(ctx context.Context, f *Filter, page, limit int) ([]model.Quote, int64, error)
}

type quoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	return GetDB(ctx, r.db).Create(quote).Error
}

func (r *quoteRepository) LatestPendingForUpdate(ctx context.Context, orderID uuid.UUID) (*model.Quote, error) {
	var quote model.Quote
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ? AND status = ?", orderID, model.QuotePending).
		Order("created_at DESC").
		First(&quote).Error; err != nil {
		return nil, err
	}
	return &quote, nil
}

func (r *quoteRepository) CountByStatus(ctx context.Context, orderID uuid.UUID, status model.QuoteStatus) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Quote{}).
		Where("order_id = ? AND status = ?", orderID, status).
		Count(&count).Error
	return count, err
}

func (r *quoteRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.QuoteStatus) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Quote{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return res.RowsAffected, res.Error
}

func (r *quoteRepository) List(ctx context.Context, f *Filter, page, limit int) ([]model.Quote, int64, error) {
	var quotes []model.Quote
	var total int64

	if err := GetDB(ctx, r.db).Model(&model.Quote{}).Scopes(f.Scope).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := GetDB(ctx, r.db).Scopes(f.Scope).
		Order("quote_date DESC, created_at DESC").
		Offset(offset).Limit(limit).
		Find(&quotes).Error; err != nil {
		return nil, 0, err
	}

	return quotes, total, nil
}
