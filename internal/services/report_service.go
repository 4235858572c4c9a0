package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/almirah2204/edify-pakistan-sub000/internal/models"
)

// reportCachePrefix namespaces every cached report key; writers
// invalidate the whole prefix
const reportCachePrefix = "reports:"

const reportCacheTTL = 5 * time.Minute

// ReportService derives collection and defaulter views over invoices and
// payments. All reads, no locking; results may trail concurrent writers
// by up to the cache TTL.
type ReportService struct {
	db    *gorm.DB
	cache *RedisCache
}

func NewReportService(db *gorm.DB, cache *RedisCache) *ReportService {
	return &ReportService{db: db, cache: cache}
}

// Defaulters returns invoices past their due date that still carry a
// balance, largest balance first, oldest due date breaking ties
func (s *ReportService) Defaulters(ctx context.Context, now time.Time) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Preload("Student").
		Where("status IN ? AND due_date < ? AND total_due - amount_paid > 0",
			[]models.InvoiceStatus{models.InvoiceStatusPending, models.InvoiceStatusPartial, models.InvoiceStatusOverdue}, now).
		Order("(total_due - amount_paid) desc").
		Order("due_date asc").
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to fetch defaulters: %w", err)
	}
	return invoices, nil
}

// MonthlyRow is one month of the collection report. Due is summed over
// invoices by billing period; Collected is summed over payments by
// payment date. The two columns key on different dates on purpose: a
// payment made in March against a January invoice counts toward
// January's due and March's collected.
type MonthlyRow struct {
	Month     time.Month `json:"month"`
	Due       float64    `json:"due"`
	Collected float64    `json:"collected"`
	Rate      float64    `json:"rate"`
}

// MonthlyReport returns the twelve-month collection report for a year
func (s *ReportService) MonthlyReport(ctx context.Context, year int) ([]MonthlyRow, error) {
	key := fmt.Sprintf("%smonthly:%d", reportCachePrefix, year)
	return GetOrSet(s.cache, ctx, key, reportCacheTTL, func() ([]MonthlyRow, error) {
		return s.monthlyReport(ctx, year)
	})
}

func (s *ReportService) monthlyReport(ctx context.Context, year int) ([]MonthlyRow, error) {
	rows := make([]MonthlyRow, 12)
	for i := range rows {
		rows[i].Month = time.Month(i + 1)
	}

	var invoices []models.Invoice
	err := s.db.WithContext(ctx).
		Where("period >= ? AND period <= ?",
			models.Period{Year: year, Month: time.January}.String(),
			models.Period{Year: year, Month: time.December}.String()).
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load invoices for report: %w", err)
	}
	for _, invoice := range invoices {
		rows[int(invoice.Period.Month)-1].Due += invoice.TotalDue
	}

	yearStart := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	var payments []models.Payment
	err = s.db.WithContext(ctx).
		Where("payment_date >= ? AND payment_date < ?", yearStart, yearStart.AddDate(1, 0, 0)).
		Find(&payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load payments for report: %w", err)
	}
	for _, payment := range payments {
		rows[int(payment.PaymentDate.Month())-1].Collected += payment.Amount
	}

	for i := range rows {
		if rows[i].Due > 0 {
			rows[i].Rate = rows[i].Collected / rows[i].Due
		}
	}
	return rows, nil
}

// StudentLedger is the full billing history of one student
type StudentLedger struct {
	Student   models.Student   `json:"student"`
	Invoices  []models.Invoice `json:"invoices"`
	Payments  []models.Payment `json:"payments"`
	TotalDue  float64          `json:"total_due"`
	TotalPaid float64          `json:"total_paid"`
	Balance   float64          `json:"balance"`
}

// Ledger returns a student's invoices, payments and overall balance
func (s *ReportService) Ledger(ctx context.Context, studentID uint) (*StudentLedger, error) {
	var student models.Student
	if err := s.db.WithContext(ctx).First(&student, studentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}

	ledger := &StudentLedger{Student: student}

	err := s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("period asc").Order("id asc").
		Find(&ledger.Invoices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load student invoices: %w", err)
	}

	err = s.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("payment_date asc").Order("id asc").
		Find(&ledger.Payments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load student payments: %w", err)
	}

	for _, invoice := range ledger.Invoices {
		ledger.TotalDue += invoice.TotalDue
	}
	for _, payment := range ledger.Payments {
		ledger.TotalPaid += payment.Amount
	}
	ledger.Balance = ledger.TotalDue - ledger.TotalPaid

	return ledger, nil
}

// CollectionSummary is the dashboard aggregate for the current period
type CollectionSummary struct {
	Period         string  `json:"period"`
	Due            float64 `json:"due"`
	Collected      float64 `json:"collected"`
	Outstanding    float64 `json:"outstanding"`
	DefaulterCount int64   `json:"defaulter_count"`
}

// Summary aggregates the current period's collections for the dashboard
func (s *ReportService) Summary(ctx context.Context, now time.Time) (*CollectionSummary, error) {
	period := models.PeriodOf(now)
	key := fmt.Sprintf("%ssummary:%s", reportCachePrefix, period.String())
	return GetOrSet(s.cache, ctx, key, reportCacheTTL, func() (*CollectionSummary, error) {
		summary := &CollectionSummary{Period: period.String()}

		err := s.db.WithContext(ctx).
			Model(&models.Invoice{}).
			Select("COALESCE(SUM(total_due), 0) AS due, COALESCE(SUM(amount_paid), 0) AS collected").
			Where("period = ?", period.String()).
			Row().Scan(&summary.Due, &summary.Collected)
		if err != nil {
			return nil, fmt.Errorf("failed to aggregate current period: %w", err)
		}
		summary.Outstanding = summary.Due - summary.Collected

		err = s.db.WithContext(ctx).
			Model(&models.Invoice{}).
			Distinct("student_id").
			Where("status IN ? AND due_date < ? AND total_due - amount_paid > 0",
				[]models.InvoiceStatus{models.InvoiceStatusPending, models.InvoiceStatusPartial, models.InvoiceStatusOverdue}, now).
			Count(&summary.DefaulterCount).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count defaulters: %w", err)
		}

		return summary, nil
	})
}
