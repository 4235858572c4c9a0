package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/almirah2204/edify-pakistan-sub000/internal/models"
	"github.com/almirah2204/edify-pakistan-sub000/internal/services"
)

// PaymentHandler records payments against invoices
type PaymentHandler struct {
	payments *services.PaymentService
}

func NewPaymentHandler(payments *services.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

// RecordPaymentRequest is one payment to apply to an invoice
type RecordPaymentRequest struct {
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Date       string  `json:"date"` // YYYY-MM-DD, defaults to today
	Mode       string  `json:"mode" validate:"required,oneof=cash bank_transfer cheque gateway"`
	Reference  string  `json:"reference" validate:"max=100"`
	ReceivedBy string  `json:"received_by" validate:"max=255"`
	Notes      string  `json:"notes"`
}

// RecordPayment appends a payment to the invoice's ledger. Overpayment
// and non-positive amounts are rejected before anything is written.
func (h *PaymentHandler) RecordPayment(c echo.Context) error {
	invoiceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid invoice ID")
	}

	var req RecordPaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var date time.Time
	if req.Date != "" {
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid date (use YYYY-MM-DD)")
		}
	}

	receivedBy := req.ReceivedBy
	if receivedBy == "" {
		receivedBy = getStringFromContext(c, "userName")
	}

	payment, err := h.payments.RecordPayment(c.Request().Context(), services.RecordPaymentInput{
		InvoiceID:  uint(invoiceID),
		Amount:     req.Amount,
		Date:       date,
		Mode:       models.PaymentMode(req.Mode),
		Reference:  req.Reference,
		ReceivedBy: receivedBy,
		Notes:      req.Notes,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, payment)
}

// ListPayments returns an invoice's payment history
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	invoiceID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid invoice ID")
	}

	payments, err := h.payments.ListForInvoice(c.Request().Context(), uint(invoiceID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, payments)
}
