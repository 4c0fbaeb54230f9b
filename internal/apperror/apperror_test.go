package apperror

import (
	"errors"
	"fmt"
	"testing"
)

func TestIsMatchesOnCode(t *testing.T) {
	custom := ErrQuoteExpired.WithMessage("quote DEV-202610-0003 expired on 2026-10-01")
	if !errors.Is(custom, ErrQuoteExpired) {
		t.Error("WithMessage copy should match its sentinel")
	}
	if errors.Is(custom, ErrInvoiceExists) {
		t.Error("different codes must not match")
	}

	wrapped := fmt.Errorf("submit: %w", ErrReferencedItemInactive.Wrap(ErrItemInactive))
	if !errors.Is(wrapped, ErrReferencedItemInactive) {
		t.Error("errors.Is should see through fmt wrapping")
	}
	if !errors.Is(wrapped, ErrItemInactive) {
		t.Error("errors.Is should reach the wrapped cause")
	}
}

func TestKindAndCodeOf(t *testing.T) {
	tests := []struct {
		err  error
		kind Kind
		code string
	}{
		{ErrReportNotFound, KindNotFound, "REPORT_NOT_FOUND"},
		{fmt.Errorf("x: %w", ErrNotConfirmed), KindInvalidState, "NOT_CONFIRMED"},
		{ErrAmountExceedsRemaining.WithMessage("too much"), KindBusinessRule, "AMOUNT_EXCEEDS_REMAINING"},
		{ErrReferencedItemMissing, KindReferentialIntegrity, "REFERENCED_ITEM_MISSING"},
		{errors.New("boom"), KindInternal, ""},
	}
	for _, tt := range tests {
		if got := KindOf(tt.err); got != tt.kind {
			t.Errorf("KindOf(%v) = %s, want %s", tt.err, got, tt.kind)
		}
		if got := CodeOf(tt.err); got != tt.code {
			t.Errorf("CodeOf(%v) = %q, want %q", tt.err, got, tt.code)
		}
	}
}

func TestErrorMessage(t *testing.T) {
	err := ErrInvalidInput.WithMessage("bad date %q", "2026-13-01")
	if got, want := err.Error(), `bad date "2026-13-01"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	if ErrInvalidInput.Message != "invalid input" {
		t.Error("WithMessage must not modify the sentinel")
	}
	cause := errors.New("disk full")
	if got, want := ErrReportExists.Wrap(cause).Error(), "a report already exists for this date: disk full"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
