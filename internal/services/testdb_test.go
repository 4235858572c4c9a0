package services

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/almirah2204/edify-pakistan-sub000/internal/models"
)

// setupTestDB opens an in-memory database with the same error
// translation the real connection uses, so duplicate-key detection
// behaves like production.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A second pooled connection would see a different empty :memory:
	// database, so pin the pool to one.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createStudent(t *testing.T, db *gorm.DB, name, admissionNo, class string) models.Student {
	t.Helper()
	student := models.Student{
		Name:        name,
		AdmissionNo: admissionNo,
		ClassName:   class,
		IsActive:    true,
	}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("failed to create student %s: %v", name, err)
	}
	return student
}

func createStructure(t *testing.T, db *gorm.DB, name string, amount float64, frequency models.FeeFrequency, classes ...string) models.FeeStructure {
	t.Helper()
	structure := models.FeeStructure{
		Name:              name,
		Amount:            amount,
		Frequency:         frequency,
		ApplicableClasses: classes,
	}
	if err := db.Create(&structure).Error; err != nil {
		t.Fatalf("failed to create fee structure %s: %v", name, err)
	}
	return structure
}

func createInvoice(t *testing.T, db *gorm.DB, studentID uint, period models.Period, totalDue, amountPaid float64, dueDate time.Time, status models.InvoiceStatus) models.Invoice {
	t.Helper()
	invoice := models.Invoice{
		UUID:       uuid.New().String(),
		StudentID:  studentID,
		Period:     period,
		BaseAmount: totalDue,
		TotalDue:   totalDue,
		AmountPaid: amountPaid,
		DueDate:    dueDate,
		Status:     status,
	}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatalf("failed to create invoice: %v", err)
	}
	return invoice
}
