// Package apperror defines the error taxonomy shared by the production and
// commercial workflows. Every error carries a Kind (what category of failure)
// and a stable Code (which rule failed) so the HTTP layer can map it without
// string matching.
package apperror

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindInvalidState         Kind = "invalid_state"
	KindBusinessRule         Kind = "business_rule"
	KindReferentialIntegrity Kind = "referential_integrity"
	KindValidation           Kind = "validation"
	KindForbidden            Kind = "forbidden"
	KindInternal             Kind = "internal"
)

// Error is a domain failure. Two errors are equal under errors.Is when their
// codes match, so callers may attach a custom message with WithMessage and
// still compare against the package sentinels.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func New(kind Kind, code, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// WithMessage returns a copy of e with a more specific message.
func (e *Error) WithMessage(format string, args ...any) *Error {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// Wrap returns a copy of e carrying cause as its underlying error.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// KindOf reports the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// CodeOf reports the Code of the first *Error in err's chain, or "".
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Not found
var (
	ErrReportNotFound  = New(KindNotFound, "REPORT_NOT_FOUND", "report not found")
	ErrOrderNotFound   = New(KindNotFound, "ORDER_NOT_FOUND", "order not found")
	ErrItemNotFound    = New(KindNotFound, "ITEM_NOT_FOUND", "stock item not found")
	ErrClientNotFound  = New(KindNotFound, "CLIENT_NOT_FOUND", "client not found")
	ErrProductNotFound = New(KindNotFound, "PRODUCT_NOT_FOUND", "product not found")
	ErrUserNotFound    = New(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrNoQuotePending  = New(KindNotFound, "NO_QUOTE_PENDING", "no pending quote for this order")
	ErrNoInvoice       = New(KindNotFound, "NO_INVOICE", "no invoice for this order")
)

// Invalid state
var (
	ErrAlreadySubmitted = New(KindInvalidState, "ALREADY_SUBMITTED", "report already submitted")
	ErrNotDraft         = New(KindInvalidState, "NOT_DRAFT", "order is not a draft")
	ErrNotConfirmed     = New(KindInvalidState, "NOT_CONFIRMED", "order is not confirmed")
	ErrNotQuoted        = New(KindInvalidState, "NOT_QUOTED", "order has no open quote")
	ErrQuoteNotAccepted = New(KindInvalidState, "QUOTE_NOT_ACCEPTED", "quote has not been accepted")
	ErrNotInvoiced      = New(KindInvalidState, "NOT_INVOICED", "order is not invoiced")
	ErrNotCancellable   = New(KindInvalidState, "NOT_CANCELLABLE", "order can no longer be cancelled")
	ErrInvoiceCancelled = New(KindInvalidState, "INVOICE_CANCELLED", "invoice is cancelled")
	ErrStatusConflict   = New(KindInvalidState, "STATUS_CONFLICT", "status changed concurrently")
)

// Business rule violations
var (
	ErrQuoteExpired           = New(KindBusinessRule, "QUOTE_EXPIRED", "quote has expired")
	ErrQuoteAlreadyAccepted   = New(KindBusinessRule, "QUOTE_ALREADY_ACCEPTED", "a quote was already accepted for this order")
	ErrInvoiceExists          = New(KindBusinessRule, "INVOICE_EXISTS", "an invoice already exists for this order")
	ErrAmountExceedsRemaining = New(KindBusinessRule, "AMOUNT_EXCEEDS_REMAINING", "payment exceeds the remaining amount due")
	ErrInvoiceHasPayments     = New(KindBusinessRule, "INVOICE_HAS_PAYMENTS", "invoice already has payments")
	ErrClientInactive         = New(KindBusinessRule, "CLIENT_INACTIVE", "client is inactive")
	ErrProductInactive        = New(KindBusinessRule, "PRODUCT_INACTIVE", "product is inactive")
	ErrReportExists           = New(KindBusinessRule, "REPORT_EXISTS", "a report already exists for this date")
	ErrDuplicateCode          = New(KindBusinessRule, "DUPLICATE_CODE", "code already in use")
)

// Referential integrity
var (
	ErrItemInactive           = New(KindReferentialIntegrity, "ITEM_INACTIVE", "stock item is inactive")
	ErrReferencedItemMissing  = New(KindReferentialIntegrity, "REFERENCED_ITEM_MISSING", "line references an item that no longer exists")
	ErrReferencedItemInactive = New(KindReferentialIntegrity, "REFERENCED_ITEM_INACTIVE", "line references an inactive item")
)

// Validation and access
var (
	ErrInvalidInput       = New(KindValidation, "INVALID_INPUT", "invalid input")
	ErrInvalidAmount      = New(KindValidation, "INVALID_AMOUNT", "amount must be positive")
	ErrInvalidCredentials = New(KindValidation, "INVALID_CREDENTIALS", "invalid username or password")
	ErrForbidden          = New(KindForbidden, "FORBIDDEN", "not allowed")
)
