package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/almirah2204/edify-pakistan-sub000/internal/models"
)

// FeeStructureHandler manages the fee catalog
type FeeStructureHandler struct {
	db *gorm.DB
}

func NewFeeStructureHandler(db *gorm.DB) *FeeStructureHandler {
	return &FeeStructureHandler{db: db}
}

// FeeStructureRequest is the create/update payload for a fee head
type FeeStructureRequest struct {
	Name              string   `json:"name" validate:"required,max=255"`
	Amount            float64  `json:"amount" validate:"gte=0"`
	Frequency         string   `json:"frequency" validate:"required,oneof=onetime monthly quarterly yearly"`
	Category          string   `json:"category" validate:"max=100"`
	ApplicableClasses []string `json:"applicable_classes"`
}

// ListFeeStructures returns the whole fee catalog
func (h *FeeStructureHandler) ListFeeStructures(c echo.Context) error {
	var structures []models.FeeStructure
	if err := h.db.Order("name asc").Find(&structures).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch fee structures")
	}
	return c.JSON(http.StatusOK, structures)
}

// GetFeeStructure returns one fee head
func (h *FeeStructureHandler) GetFeeStructure(c echo.Context) error {
	structure, err := h.find(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, structure)
}

// CreateFeeStructure adds a fee head to the catalog
func (h *FeeStructureHandler) CreateFeeStructure(c echo.Context) error {
	var req FeeStructureRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	structure := models.FeeStructure{
		Name:              req.Name,
		Amount:            req.Amount,
		Frequency:         models.FeeFrequency(req.Frequency),
		Category:          req.Category,
		ApplicableClasses: req.ApplicableClasses,
	}
	if err := h.db.Create(&structure).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create fee structure")
	}
	return c.JSON(http.StatusCreated, structure)
}

// UpdateFeeStructure edits a fee head. Existing invoices keep the
// amounts they were generated with; only future runs see the change.
func (h *FeeStructureHandler) UpdateFeeStructure(c echo.Context) error {
	structure, err := h.find(c)
	if err != nil {
		return err
	}

	var req FeeStructureRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	structure.Name = req.Name
	structure.Amount = req.Amount
	structure.Frequency = models.FeeFrequency(req.Frequency)
	structure.Category = req.Category
	structure.ApplicableClasses = req.ApplicableClasses

	if err := h.db.Save(structure).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update fee structure")
	}
	return c.JSON(http.StatusOK, structure)
}

// DeleteFeeStructure soft-deletes a fee head so future runs skip it
func (h *FeeStructureHandler) DeleteFeeStructure(c echo.Context) error {
	structure, err := h.find(c)
	if err != nil {
		return err
	}
	if err := h.db.Delete(structure).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete fee structure")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *FeeStructureHandler) find(c echo.Context) (*models.FeeStructure, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid fee structure ID")
	}
	var structure models.FeeStructure
	if err := h.db.First(&structure, uint(id)).Error; err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "Fee structure not found")
	}
	return &structure, nil
}
