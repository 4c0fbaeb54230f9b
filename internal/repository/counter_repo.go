package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"precast-erp/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CounterRepository backs gapless document numbering.
type CounterRepository interface {
	// Ensure creates the (kind, period) row with seed as its last value,
	// leaving an existing row untouched.
	Ensure(ctx context.Context, kind model.DocumentKind, period string, seed int) error
	// Increment bumps the counter under a row lock and returns the new value.
	Increment(ctx context.Context, kind model.DocumentKind, period string) (int, error)
	// HighestIssued scans already-issued document numbers carrying prefix and
	// returns the largest sequence found, or 0.
	HighestIssued(ctx context.Context, kind model.DocumentKind, prefix string) (int, error)
}

type counterRepository struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) CounterRepository {
	return &counterRepository{db: db}
}

func (r *counterRepository) Ensure(ctx context.Context, kind model.DocumentKind, period string, seed int) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).
		Create(&model.DocumentCounter{Kind: kind, Period: period, LastValue: seed}).Error
}

func (r *counterRepository) Increment(ctx context.Context, kind model.DocumentKind, period string) (int, error) {
	db := GetDB(ctx, r.db)
	var counter model.DocumentCounter
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("kind = ? AND period = ?", kind, period).
		First(&counter).Error; err != nil {
		return 0, err
	}
	next := counter.LastValue + 1
	if err := db.Model(&model.DocumentCounter{}).
		Where("id = ?", counter.ID).
		Update("last_value", next).Error; err != nil {
		return 0, err
	}
	return next, nil
}

func (r *counterRepository) HighestIssued(ctx context.Context, kind model.DocumentKind, prefix string) (int, error) {
	var table, column string
	switch kind {
	case model.DocOrder:
		table, column = "orders", "order_number"
	case model.DocQuote:
		table, column = "quotes", "quote_number"
	case model.DocInvoice:
		table, column = "invoices", "invoice_number"
	default:
		return 0, fmt.Errorf("unknown document kind %q", kind)
	}

	var numbers []string
	if err := GetDB(ctx, r.db).Table(table).
		Where(column+" LIKE ?", prefix+"%").
		Pluck(column, &numbers).Error; err != nil {
		return 0, err
	}

	highest := 0
	for _, n := range numbers {
		seq, err := strconv.Atoi(strings.TrimPrefix(n, prefix))
		if err == nil && seq > highest {
			highest = seq
		}
	}
	return highest, nil
}
