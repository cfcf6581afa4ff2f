package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

// RoleProducer receives rounding remainder by default.
const RoleProducer = "producer"

// Split is a recipient's configured share of the net amount.
type Split struct {
	RecipientID string `json:"recipient_id"`
	Role        string `json:"role"`
	Percent     int    `json:"percent"`
}

// CaptureRequest is the validated capture (or quote) input. The idempotency
// key travels out-of-band and is not part of the priced payload.
type CaptureRequest struct {
	Amount         decimal.Decimal
	Currency       string
	PaymentMethod  string
	Installments   int
	Splits         []Split
	IdempotencyKey string
}

// Receivable is a priced split. Amounts are rendered once, as exact
// 2-decimal fixed-point strings, by the calculator.
type Receivable struct {
	RecipientID string `json:"recipient_id"`
	Role        string `json:"role"`
	Amount      string `json:"amount"`
}

// CalculationResult satisfies two exact-sum invariants:
// fee + net == gross and the receivables sum to net, both at 2 decimals.
type CalculationResult struct {
	GrossAmount       string       `json:"gross_amount"`
	PlatformFeeAmount string       `json:"platform_fee_amount"`
	NetAmount         string       `json:"net_amount"`
	Receivables       []Receivable `json:"receivables"`
}

// OutboxEventInfo echoes the event written alongside a capture.
type OutboxEventInfo struct {
	Type   string `json:"type"`
	Status string `json:"status"`
}

// CaptureResult is the outcome of a persisted capture. Replayed marks a
// response reconstructed from a prior payment instead of a new write.
type CaptureResult struct {
	PaymentID string
	Status    string
	Result    CalculationResult
	Outbox    *OutboxEventInfo
	Replayed  bool
}

type Service interface {
	// Quote prices a request without persisting anything.
	Quote(ctx context.Context, req CaptureRequest) (CalculationResult, error)
	// Capture prices and durably records a request exactly once per
	// idempotency key.
	Capture(ctx context.Context, req CaptureRequest) (CaptureResult, error)
	// GetByPaymentID reconstructs a prior capture response.
	GetByPaymentID(ctx context.Context, paymentID string) (CaptureResult, error)
}

var (
	ErrInvalidAmount            = errors.New("invalid_amount")
	ErrUnsupportedCurrency      = errors.New("unsupported_currency")
	ErrMethodRequired           = errors.New("payment_method_required")
	ErrIncompatibleInstallments = errors.New("incompatible_installments")
	ErrInstallmentsOutOfRange   = errors.New("installments_out_of_range")
	ErrSplitCountOutOfRange     = errors.New("split_count_out_of_range")
	ErrSplitPercentMismatch     = errors.New("split_percent_mismatch")
	ErrIdempotencyKeyRequired   = errors.New("idempotency_key_required")
	ErrIdempotencyConflict      = errors.New("idempotency_conflict")
	ErrNotFound                 = errors.New("not_found")
)
