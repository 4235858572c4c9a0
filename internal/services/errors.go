package services

import "errors"

// Validation and conflict errors surfaced by the billing services.
// Handlers map these to HTTP statuses; each violated rule gets its own
// sentinel so callers can tell them apart.
var (
	ErrInvoiceNotFound   = errors.New("invoice not found")
	ErrStudentNotFound   = errors.New("student not found")
	ErrInvalidAmount     = errors.New("payment amount must be positive")
	ErrInvalidMode       = errors.New("unsupported payment mode")
	ErrOverpayment       = errors.New("payment exceeds invoice balance")
	ErrInvoiceConflict   = errors.New("invoice was modified concurrently")
	ErrSessionSettled    = errors.New("payment already made for this invoice")
	ErrFractionalBalance = errors.New("online checkout requires a whole-rupee balance")
	ErrGenerationRunning = errors.New("an invoice generation run for this period is already in progress")
	ErrInvalidDiscount   = errors.New("discount must not exceed assigned amount")
	ErrInvalidStructure  = errors.New("invalid fee structure")
)
