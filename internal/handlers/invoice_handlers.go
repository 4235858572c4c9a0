package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/almirah2204/edify-pakistan-sub000/internal/models"
	"github.com/almirah2204/edify-pakistan-sub000/internal/services"
)

// InvoiceHandler exposes invoice generation and listing
type InvoiceHandler struct {
	invoices *services.InvoiceService
}

func NewInvoiceHandler(invoices *services.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

// GenerateRequest starts a billing run
type GenerateRequest struct {
	Period     string `json:"period" validate:"required"`
	ClassName  string `json:"class_name"`
	StudentIDs []uint `json:"student_ids"`
	AsOf       string `json:"as_of"` // YYYY-MM-DD, defaults to today
}

// GenerateInvoices runs invoice generation for one billing period.
// Students who already have an invoice for the period come back under
// "skipped"; re-running the same request creates nothing new.
func (h *InvoiceHandler) GenerateInvoices(c echo.Context) error {
	var req GenerateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	period, err := models.ParsePeriod(req.Period)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	asOf := time.Now()
	if req.AsOf != "" {
		asOf, err = time.Parse("2006-01-02", req.AsOf)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid as_of (use YYYY-MM-DD)")
		}
	}

	result, err := h.invoices.Generate(c.Request().Context(), period, services.GenerateFilter{
		ClassName:  req.ClassName,
		StudentIDs: req.StudentIDs,
	}, asOf)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, result)
}

// ListInvoices lists invoices filtered by status, period and student
func (h *InvoiceHandler) ListInvoices(c echo.Context) error {
	filter := services.ListFilter{
		Status: models.InvoiceStatus(c.QueryParam("status")),
		Period: c.QueryParam("period"),
	}
	if studentStr := c.QueryParam("student"); studentStr != "" {
		id, err := strconv.ParseUint(studentStr, 10, 32)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid student filter")
		}
		filter.StudentID = uint(id)
	}

	invoices, err := h.invoices.List(c.Request().Context(), filter)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoices)
}

// ListPendingInvoices lists every invoice still awaiting full payment
func (h *InvoiceHandler) ListPendingInvoices(c echo.Context) error {
	invoices, err := h.invoices.List(c.Request().Context(), services.ListFilter{Unpaid: true})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoices)
}

// GetInvoice returns one invoice with its items and payments
func (h *InvoiceHandler) GetInvoice(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid invoice ID")
	}

	invoice, err := h.invoices.Get(c.Request().Context(), uint(id))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoice)
}
