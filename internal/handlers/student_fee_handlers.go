package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/almirah2204/edify-pakistan-sub000/internal/models"
	"github.com/almirah2204/edify-pakistan-sub000/internal/services"
)

// StudentFeeHandler manages per-student fee assignments and overrides
type StudentFeeHandler struct {
	db *gorm.DB
}

func NewStudentFeeHandler(db *gorm.DB) *StudentFeeHandler {
	return &StudentFeeHandler{db: db}
}

// StudentFeeRequest assigns or updates a fee for a student
type StudentFeeRequest struct {
	FeeStructureID uint    `json:"fee_structure_id" validate:"required"`
	AssignedAmount float64 `json:"assigned_amount" validate:"gte=0"`
	DiscountType   string  `json:"discount_type" validate:"omitempty,oneof=none percent fixed"`
	DiscountValue  float64 `json:"discount_value" validate:"gte=0"`
	DiscountReason string  `json:"discount_reason" validate:"max=255"`
}

// ListStudentFees returns a student's fee assignments
func (h *StudentFeeHandler) ListStudentFees(c echo.Context) error {
	studentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid student ID")
	}

	var fees []models.StudentFee
	if err := h.db.Preload("FeeStructure").Where("student_id = ?", uint(studentID)).Find(&fees).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch student fees")
	}
	return c.JSON(http.StatusOK, fees)
}

// AssignStudentFee links a student to a fee structure with an optional
// override amount and discount
func (h *StudentFeeHandler) AssignStudentFee(c echo.Context) error {
	studentID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid student ID")
	}

	var req StudentFeeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	var student models.Student
	if err := h.db.First(&student, uint(studentID)).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Student not found")
	}
	var structure models.FeeStructure
	if err := h.db.First(&structure, req.FeeStructureID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Fee structure not found")
	}

	fee := models.StudentFee{
		StudentID:      student.ID,
		FeeStructureID: structure.ID,
		AssignedAmount: req.AssignedAmount,
		DiscountType:   discountTypeOrNone(req.DiscountType),
		DiscountValue:  req.DiscountValue,
		DiscountReason: req.DiscountReason,
	}
	if fee.AssignedAmount == 0 {
		fee.AssignedAmount = structure.Amount
	}
	if err := validateAssignment(fee); err != nil {
		return err
	}

	if err := h.db.Create(&fee).Error; err != nil {
		return echo.NewHTTPError(http.StatusConflict, "Student already has this fee assigned")
	}
	return c.JSON(http.StatusCreated, fee)
}

// UpdateStudentFee edits an assignment's amount or discount
func (h *StudentFeeHandler) UpdateStudentFee(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid assignment ID")
	}

	var fee models.StudentFee
	if err := h.db.First(&fee, uint(id)).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Fee assignment not found")
	}

	var req StudentFeeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	fee.AssignedAmount = req.AssignedAmount
	fee.DiscountType = discountTypeOrNone(req.DiscountType)
	fee.DiscountValue = req.DiscountValue
	fee.DiscountReason = req.DiscountReason
	if err := validateAssignment(fee); err != nil {
		return err
	}

	if err := h.db.Save(&fee).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update fee assignment")
	}
	return c.JSON(http.StatusOK, fee)
}

// DeleteStudentFee removes an assignment; future invoices fall back to
// the catalog amount
func (h *StudentFeeHandler) DeleteStudentFee(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid assignment ID")
	}

	if err := h.db.Delete(&models.StudentFee{}, uint(id)).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to delete fee assignment")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "deleted"})
}

func discountTypeOrNone(t string) models.DiscountType {
	if t == "" {
		return models.DiscountTypeNone
	}
	return models.DiscountType(t)
}

// validateAssignment enforces that the discount never pushes the final
// amount below zero
func validateAssignment(fee models.StudentFee) error {
	if fee.DiscountType == models.DiscountTypePercent && fee.DiscountValue > 100 {
		return services.ErrInvalidDiscount
	}
	if fee.DiscountAmount() > fee.AssignedAmount {
		return services.ErrInvalidDiscount
	}
	return nil
}
