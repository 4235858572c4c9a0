package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/almirah2204/edify-pakistan-sub000/internal/models"
)

// Skip reasons reported by Generate
const (
	SkipReasonDuplicate     = "duplicate"
	SkipReasonNothingToBill = "nothing to bill"
	SkipReasonError         = "internal error"
)

// generationLockTTL bounds how long a crashed run can hold the
// per-period lock before another run may proceed
const generationLockTTL = 10 * time.Minute

// GenerateFilter selects which students a billing run covers.
// Zero value selects every active student.
type GenerateFilter struct {
	ClassName  string
	StudentIDs []uint
}

// SkippedStudent reports a student the generator passed over and why
type SkippedStudent struct {
	StudentID uint   `json:"student_id"`
	Reason    string `json:"reason"`
}

// GenerateResult is the outcome of one billing run
type GenerateResult struct {
	Created []uint           `json:"created"`
	Skipped []SkippedStudent `json:"skipped"`
}

// InvoiceService builds invoices from the fee catalog, per-student
// assignments, carried-forward arrears and the late fine policy
type InvoiceService struct {
	db       *gorm.DB
	cache    *RedisCache
	settings *SettingsService
}

func NewInvoiceService(db *gorm.DB, cache *RedisCache, settings *SettingsService) *InvoiceService {
	return &InvoiceService{db: db, cache: cache, settings: settings}
}

// Generate creates one invoice per selected student for the given period.
// A student who already has an invoice for the period is reported under
// Skipped with reason "duplicate" and the batch continues; re-running the
// same arguments therefore creates nothing new. Duplicates are detected
// by the unique (student, period) index, not pre-checked, so two
// concurrent runs for the same period cannot both insert.
func (s *InvoiceService) Generate(ctx context.Context, period models.Period, filter GenerateFilter, asOf time.Time) (*GenerateResult, error) {
	lockKey := "billing:generate:" + period.String()
	acquired, err := s.cache.SetNX(ctx, lockKey, "1", generationLockTTL)
	if err != nil {
		log.Printf("Failed to acquire generation lock for %s: %v", period, err)
	} else if !acquired {
		return nil, ErrGenerationRunning
	}
	defer func() {
		if err := s.cache.Delete(ctx, lockKey); err != nil {
			log.Printf("Failed to release generation lock for %s: %v", period, err)
		}
	}()

	lateCfg, err := s.settings.LateFineConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load late fine config: %w", err)
	}
	billCfg, err := s.settings.BillingConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load billing config: %w", err)
	}

	students, err := s.selectStudents(ctx, filter)
	if err != nil {
		return nil, err
	}

	var structures []models.FeeStructure
	if err := s.db.WithContext(ctx).Find(&structures).Error; err != nil {
		return nil, fmt.Errorf("failed to load fee catalog: %w", err)
	}

	result := &GenerateResult{Created: []uint{}, Skipped: []SkippedStudent{}}

	for _, student := range students {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}

		invoiceID, err := s.generateForStudent(ctx, student, structures, period, asOf, lateCfg, billCfg)
		if err != nil {
			// Only the duplicate case is actionable for the caller;
			// anything else stays in the logs rather than the response.
			reason := SkipReasonError
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				reason = SkipReasonDuplicate
			} else {
				log.Printf("Invoice generation failed for student %d in %s: %v", student.ID, period, err)
			}
			result.Skipped = append(result.Skipped, SkippedStudent{StudentID: student.ID, Reason: reason})
			continue
		}
		if invoiceID == 0 {
			result.Skipped = append(result.Skipped, SkippedStudent{StudentID: student.ID, Reason: SkipReasonNothingToBill})
			continue
		}
		result.Created = append(result.Created, invoiceID)
	}

	if err := s.cache.DeletePrefix(ctx, reportCachePrefix); err != nil {
		log.Printf("Failed to invalidate report cache: %v", err)
	}

	return result, nil
}

func (s *InvoiceService) selectStudents(ctx context.Context, filter GenerateFilter) ([]models.Student, error) {
	query := s.db.WithContext(ctx).Where("is_active = ?", true)
	if filter.ClassName != "" {
		query = query.Where("class_name = ?", filter.ClassName)
	}
	if len(filter.StudentIDs) > 0 {
		query = query.Where("id IN ?", filter.StudentIDs)
	}

	var students []models.Student
	if err := query.Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to select students: %w", err)
	}
	return students, nil
}

// generateForStudent builds and persists a single invoice. Returns 0 when
// the student has nothing to bill for the period.
func (s *InvoiceService) generateForStudent(ctx context.Context, student models.Student, structures []models.FeeStructure, period models.Period, asOf time.Time, lateCfg models.LateFineConfig, billCfg models.BillingConfig) (uint, error) {
	assignments, err := s.assignmentsFor(ctx, student.ID)
	if err != nil {
		return 0, err
	}

	items, err := s.buildItems(ctx, student, structures, period, billCfg, assignments)
	if err != nil {
		return 0, err
	}

	arrears, err := s.arrearsFor(ctx, student.ID, period)
	if err != nil {
		return 0, err
	}

	if len(items) == 0 && arrears == 0 {
		return 0, nil
	}

	// A fresh invoice carries no fine of its own; the fine covers the
	// arrears, counted from the previous period's due date.
	var lateFine float64
	if arrears > 0 {
		lateFine = LateFine(period.Prev().DueDate(billCfg.DueDay), asOf, lateCfg)
	}

	var base, discount float64
	for _, item := range items {
		base += item.Amount
		discount += item.Discount
	}

	invoice := models.Invoice{
		UUID:       uuid.New().String(),
		StudentID:  student.ID,
		Period:     period,
		BaseAmount: base,
		Arrears:    arrears,
		LateFine:   lateFine,
		Discount:   discount,
		TotalDue:   base + arrears + lateFine - discount,
		DueDate:    period.DueDate(billCfg.DueDay),
	}
	invoice.Status = invoice.DeriveStatus(asOf)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&invoice).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = invoice.ID
		}
		if len(items) > 0 {
			if err := tx.Create(&items).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return invoice.ID, nil
}

func (s *InvoiceService) assignmentsFor(ctx context.Context, studentID uint) (map[uint]models.StudentFee, error) {
	var rows []models.StudentFee
	if err := s.db.WithContext(ctx).Where("student_id = ?", studentID).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load fee assignments: %w", err)
	}
	byStructure := make(map[uint]models.StudentFee, len(rows))
	for _, row := range rows {
		byStructure[row.FeeStructureID] = row
	}
	return byStructure, nil
}

// buildItems resolves the fee lines for one student and period. Recurring
// fees match by frequency and class; one-time fees are included only if
// they have never appeared on any of the student's invoices.
func (s *InvoiceService) buildItems(ctx context.Context, student models.Student, structures []models.FeeStructure, period models.Period, billCfg models.BillingConfig, assignments map[uint]models.StudentFee) ([]models.InvoiceItem, error) {
	var items []models.InvoiceItem
	for _, structure := range structures {
		if !structure.AppliesToClass(student.ClassName) {
			continue
		}

		if structure.Frequency == models.FeeFrequencyOneTime {
			billed, err := s.alreadyBilled(ctx, student.ID, structure.ID)
			if err != nil {
				return nil, err
			}
			if billed {
				continue
			}
		} else if !structure.BillsIn(period, billCfg.YearStartMonth) {
			continue
		}

		amount := structure.Amount
		var discount float64
		if assignment, ok := assignments[structure.ID]; ok {
			amount = assignment.AssignedAmount
			discount = assignment.DiscountAmount()
			if discount > amount {
				discount = amount
			}
		}

		items = append(items, models.InvoiceItem{
			FeeStructureID: structure.ID,
			Label:          structure.Name,
			Amount:         amount,
			Discount:       discount,
		})
	}
	return items, nil
}

func (s *InvoiceService) alreadyBilled(ctx context.Context, studentID, structureID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&models.InvoiceItem{}).
		Joins("JOIN fee_invoices ON fee_invoices.id = fee_invoice_items.invoice_id").
		Where("fee_invoices.student_id = ? AND fee_invoice_items.fee_structure_id = ?", studentID, structureID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check one-time fee history: %w", err)
	}
	return count > 0, nil
}

// arrearsFor sums the outstanding balances of the student's invoices from
// strictly earlier periods
func (s *InvoiceService) arrearsFor(ctx context.Context, studentID uint, period models.Period) (float64, error) {
	var arrears float64
	err := s.db.WithContext(ctx).
		Model(&models.Invoice{}).
		Select("COALESCE(SUM(total_due - amount_paid), 0)").
		Where("student_id = ? AND period < ? AND status <> ?", studentID, period.String(), models.InvoiceStatusPaid).
		Scan(&arrears).Error
	if err != nil {
		return 0, fmt.Errorf("failed to compute arrears: %w", err)
	}
	return arrears, nil
}

// ListFilter narrows invoice listings
type ListFilter struct {
	Status    models.InvoiceStatus
	Period    string
	StudentID uint
	Unpaid    bool
}

// List returns invoices matching the filter, newest period first
func (s *InvoiceService) List(ctx context.Context, filter ListFilter) ([]models.Invoice, error) {
	query := s.db.WithContext(ctx).Preload("Student")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Period != "" {
		query = query.Where("period = ?", filter.Period)
	}
	if filter.StudentID > 0 {
		query = query.Where("student_id = ?", filter.StudentID)
	}
	if filter.Unpaid {
		query = query.Where("status <> ?", models.InvoiceStatusPaid)
	}

	var invoices []models.Invoice
	if err := query.Order("period desc").Order("id desc").Find(&invoices).Error; err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// Get loads one invoice with its items, payments and student
func (s *InvoiceService) Get(ctx context.Context, id uint) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Student").Preload("Items").Preload("Payments").
		First(&invoice, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// GetByUUID loads one invoice by its public reference
func (s *InvoiceService) GetByUUID(ctx context.Context, publicID string) (*models.Invoice, error) {
	var invoice models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Student").Preload("Items").Preload("Payments").
		Where("uuid = ?", publicID).First(&invoice).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvoiceNotFound
		}
		return nil, err
	}
	return &invoice, nil
}
