package handlers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/almirah2204/edify-pakistan-sub000/internal/models"
	"github.com/almirah2204/edify-pakistan-sub000/internal/services"
)

// SettingsHandler reads and updates billing configuration. Updates are
// validated server-side regardless of what the client checked.
type SettingsHandler struct {
	settings *services.SettingsService
}

func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetLateFineConfig returns the active late fine policy
func (h *SettingsHandler) GetLateFineConfig(c echo.Context) error {
	cfg, err := h.settings.LateFineConfig(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cfg)
}

// UpdateLateFineConfig replaces the late fine policy
func (h *SettingsHandler) UpdateLateFineConfig(c echo.Context) error {
	var cfg models.LateFineConfig
	if err := c.Bind(&cfg); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := h.settings.SaveLateFineConfig(c.Request().Context(), cfg); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, cfg)
}

// GetBillingConfig returns invoice generation defaults
func (h *SettingsHandler) GetBillingConfig(c echo.Context) error {
	cfg, err := h.settings.BillingConfig(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, billingConfigResponse(cfg))
}

// BillingConfigRequest carries billing defaults; the month is its
// calendar number to keep the JSON shape obvious
type BillingConfigRequest struct {
	DueDay         int `json:"due_day"`
	YearStartMonth int `json:"year_start_month"`
}

// UpdateBillingConfig replaces invoice generation defaults
func (h *SettingsHandler) UpdateBillingConfig(c echo.Context) error {
	var req BillingConfigRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	cfg := models.BillingConfig{
		DueDay:         req.DueDay,
		YearStartMonth: time.Month(req.YearStartMonth),
	}
	if err := h.settings.SaveBillingConfig(c.Request().Context(), cfg); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, billingConfigResponse(cfg))
}

func billingConfigResponse(cfg models.BillingConfig) map[string]interface{} {
	return map[string]interface{}{
		"due_day":          cfg.DueDay,
		"year_start_month": int(cfg.YearStartMonth),
	}
}
