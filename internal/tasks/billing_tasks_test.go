package tasks

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/almirah2204/edify-pakistan-sub000/internal/models"
	"github.com/almirah2204/edify-pakistan-sub000/internal/services"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to access sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := services.AutoMigrate(db); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func TestGenerateInvoicesTask(t *testing.T) {
	db := setupTestDB(t)

	structure := models.FeeStructure{Name: "Tuition Fee", Amount: 5000, Frequency: models.FeeFrequencyMonthly}
	if err := db.Create(&structure).Error; err != nil {
		t.Fatalf("failed to seed structure: %v", err)
	}
	student := models.Student{Name: "Alia Khan", AdmissionNo: "ADM-001", ClassName: "Grade 5", IsActive: true}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("failed to seed student: %v", err)
	}

	result, err := GenerateInvoicesTask.HandleExecution(context.Background(), db, map[string]interface{}{
		"period": "2024-04",
	})
	if err != nil {
		t.Fatalf("HandleExecution failed: %v", err)
	}
	if result["created_count"] != 1 {
		t.Errorf("created_count = %v; want 1", result["created_count"])
	}
	if result["period"] != "2024-04" {
		t.Errorf("period = %v; want 2024-04", result["period"])
	}

	// Re-running the same period only reports duplicates
	result, err = GenerateInvoicesTask.HandleExecution(context.Background(), db, map[string]interface{}{
		"period": "2024-04",
	})
	if err != nil {
		t.Fatalf("second HandleExecution failed: %v", err)
	}
	if result["created_count"] != 0 {
		t.Errorf("created_count = %v; want 0", result["created_count"])
	}
	if result["duplicates"] != 1 {
		t.Errorf("duplicates = %v; want 1", result["duplicates"])
	}
}

func TestGenerateInvoicesTaskBadPeriod(t *testing.T) {
	db := setupTestDB(t)

	if _, err := GenerateInvoicesTask.HandleExecution(context.Background(), db, map[string]interface{}{
		"period": "april",
	}); err == nil {
		t.Fatal("expected an error for a malformed period")
	}
}

func TestOverdueSweepTask(t *testing.T) {
	db := setupTestDB(t)

	student := models.Student{Name: "Alia Khan", AdmissionNo: "ADM-001", ClassName: "Grade 5", IsActive: true}
	if err := db.Create(&student).Error; err != nil {
		t.Fatalf("failed to seed student: %v", err)
	}
	invoice := models.Invoice{
		UUID:      uuid.New().String(),
		StudentID: student.ID,
		Period:    models.Period{Year: 2024, Month: time.January},
		TotalDue:  5000,
		DueDate:   time.Now().AddDate(0, 0, -30),
		Status:    models.InvoiceStatusPending,
	}
	if err := db.Create(&invoice).Error; err != nil {
		t.Fatalf("failed to seed invoice: %v", err)
	}

	result, err := OverdueSweepTask.HandleExecution(context.Background(), db, map[string]interface{}{})
	if err != nil {
		t.Fatalf("HandleExecution failed: %v", err)
	}
	if result["marked_count"] != int64(1) {
		t.Errorf("marked_count = %v; want 1", result["marked_count"])
	}

	var reloaded models.Invoice
	if err := db.First(&reloaded, invoice.ID).Error; err != nil {
		t.Fatalf("failed to reload invoice: %v", err)
	}
	if reloaded.Status != models.InvoiceStatusOverdue {
		t.Errorf("status = %q; want overdue", reloaded.Status)
	}
}

func TestDefineTasksRegistersHandlers(t *testing.T) {
	DefineTasks()

	for _, name := range []string{"generate_invoices", "overdue_sweep", "send_fee_reminder"} {
		if _, ok := GetHandler(name); !ok {
			t.Errorf("handler %q not registered", name)
		}
	}
}

func TestRenderReminder(t *testing.T) {
	student := models.Student{
		Name:         "Alia Khan",
		ClassName:    "Grade 5",
		GuardianName: "Mrs. Khan",
	}
	invoice := models.Invoice{
		UUID:    "abc-123",
		Period:  models.Period{Year: 2024, Month: time.April},
		DueDate: time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC),
	}

	msg := renderReminder(defaultReminderTemplate, student, invoice, 5400, "https://fees.example.edu.pk")

	for _, want := range []string{
		"Mrs. Khan",
		"Alia Khan",
		"Grade 5",
		"5400.00",
		"10 Apr 2024",
		"https://fees.example.edu.pk/p/invoices/abc-123",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("message missing %q: %s", want, msg)
		}
	}

	// Without a base URL the link is simply omitted
	msg = renderReminder(defaultReminderTemplate, student, invoice, 5400, "")
	if strings.Contains(msg, "$payment_link") {
		t.Error("placeholder left unreplaced")
	}
	if strings.Contains(msg, "/p/invoices/") {
		t.Error("link should be omitted without a base URL")
	}
}
