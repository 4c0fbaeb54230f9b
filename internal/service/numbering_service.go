package service

import (
	"context"
	"fmt"
	"time"

	"precast-erp/internal/model"
	"precast-erp/internal/repository"
)

// NumberingService hands out PREFIX-YYYYMM-NNNN document numbers. The
// sequence restarts every month and has no gaps among committed documents,
// because the counter row is bumped inside the caller's transaction.
type NumberingService interface {
	Next(ctx context.Context, kind model.DocumentKind) (string, error)
}

type numberingService struct {
	repo      repository.CounterRepository
	txManager repository.TransactionManager
	now       func() time.Time
}

func NewNumberingService(repo repository.CounterRepository, txManager repository.TransactionManager) NumberingService {
	return &numberingService{repo: repo, txManager: txManager, now: time.Now}
}

func (s *numberingService) Next(ctx context.Context, kind model.DocumentKind) (string, error) {
	switch kind {
	case model.DocOrder, model.DocQuote, model.DocInvoice:
	default:
		return "", fmt.Errorf("unknown document kind %q", kind)
	}

	period := s.now().UTC().Format("200601")
	prefix := fmt.Sprintf("%s-%s-", kind, period)

	var number string
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		seq, err := s.repo.Increment(txCtx, kind, period)
		if repository.IsNotFound(err) {
			// First document of the month: continue after anything already
			// issued under this prefix before the counter row existed.
			seed, scanErr := s.repo.HighestIssued(txCtx, kind, prefix)
			if scanErr != nil {
				return fmt.Errorf("failed to scan issued numbers: %w", scanErr)
			}
			if ensureErr := s.repo.Ensure(txCtx, kind, period, seed); ensureErr != nil {
				return fmt.Errorf("failed to create counter: %w", ensureErr)
			}
			seq, err = s.repo.Increment(txCtx, kind, period)
		}
		if err != nil {
			return fmt.Errorf("failed to increment counter: %w", err)
		}
		number = fmt.Sprintf("%s%04d", prefix, seq)
		return nil
	})
	if err != nil {
		return "", err
	}
	return number, nil
}
