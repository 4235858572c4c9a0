package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/almirah2204/edify-pakistan-sub000/internal/services"
)

// ReportHandler exposes collection and defaulter reports
type ReportHandler struct {
	reports *services.ReportService
}

func NewReportHandler(reports *services.ReportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// ListDefaulters returns overdue invoices with open balances, largest
// balance first
func (h *ReportHandler) ListDefaulters(c echo.Context) error {
	invoices, err := h.reports.Defaulters(c.Request().Context(), time.Now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, invoices)
}

// MonthlyReport returns the twelve-month collection report for a year
func (h *ReportHandler) MonthlyReport(c echo.Context) error {
	yearStr := c.QueryParam("year")
	year := time.Now().Year()
	if yearStr != "" {
		parsed, err := strconv.Atoi(yearStr)
		if err != nil || parsed < 2000 || parsed > 2100 {
			return echo.NewHTTPError(http.StatusBadRequest, "Invalid year")
		}
		year = parsed
	}

	rows, err := h.reports.MonthlyReport(c.Request().Context(), year)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rows)
}

// StudentLedger returns one student's invoices, payments and balance
func (h *ReportHandler) StudentLedger(c echo.Context) error {
	studentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid student ID")
	}

	ledger, err := h.reports.Ledger(c.Request().Context(), uint(studentID))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ledger)
}

// Summary returns the current period's collection aggregate for the
// dashboard
func (h *ReportHandler) Summary(c echo.Context) error {
	summary, err := h.reports.Summary(c.Request().Context(), time.Now())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summary)
}
