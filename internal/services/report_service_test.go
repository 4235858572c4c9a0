package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/almirah2204/edify-pakistan-sub000/internal/models"
)

func TestDefaultersOrdering(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewReportService(db, nil)

	alia := createStudent(t, db, "Alia Khan", "ADM-001", "Grade 5")
	bilal := createStudent(t, db, "Bilal Ahmed", "ADM-002", "Grade 6")
	sara := createStudent(t, db, "Sara Iqbal", "ADM-003", "Grade 7")

	now := time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)
	past := time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC)
	future := time.Date(2024, time.April, 20, 0, 0, 0, 0, time.UTC)

	createInvoice(t, db, alia.ID, models.Period{Year: 2024, Month: time.March}, 3000, 0, past, models.InvoiceStatusOverdue)
	createInvoice(t, db, bilal.ID, models.Period{Year: 2024, Month: time.March}, 6000, 1000, past, models.InvoiceStatusPartial)
	createInvoice(t, db, sara.ID, models.Period{Year: 2024, Month: time.March}, 1000, 0, past, models.InvoiceStatusPending)
	// Settled and not-yet-due invoices are not defaults
	createInvoice(t, db, alia.ID, models.Period{Year: 2024, Month: time.February}, 4000, 4000, past, models.InvoiceStatusPaid)
	createInvoice(t, db, sara.ID, models.Period{Year: 2024, Month: time.April}, 9000, 0, future, models.InvoiceStatusPending)

	defaulters, err := svc.Defaulters(ctx, now)
	if err != nil {
		t.Fatalf("Defaulters failed: %v", err)
	}
	if len(defaulters) != 3 {
		t.Fatalf("expected 3 defaulters, got %d", len(defaulters))
	}

	// Largest outstanding balance first
	wantOrder := []uint{bilal.ID, alia.ID, sara.ID}
	for i, want := range wantOrder {
		if defaulters[i].StudentID != want {
			t.Errorf("position %d: student %d; want %d", i, defaulters[i].StudentID, want)
		}
	}

	if defaulters[0].Student.Name != "Bilal Ahmed" {
		t.Errorf("student not preloaded, got %q", defaulters[0].Student.Name)
	}
}

func TestMonthlyReportMixedKeys(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewReportService(db, nil)

	alia := createStudent(t, db, "Alia Khan", "ADM-001", "Grade 5")
	janDue := time.Date(2024, time.January, 10, 0, 0, 0, 0, time.UTC)
	invoice := createInvoice(t, db, alia.ID, models.Period{Year: 2024, Month: time.January}, 5000, 0, janDue, models.InvoiceStatusOverdue)

	// Paid in March against January's invoice
	payment := models.Payment{
		InvoiceID:   invoice.ID,
		StudentID:   alia.ID,
		Amount:      2000,
		PaymentDate: time.Date(2024, time.March, 5, 0, 0, 0, 0, time.UTC),
		Mode:        models.PaymentModeCash,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("failed to create payment: %v", err)
	}

	rows, err := svc.MonthlyReport(ctx, 2024)
	if err != nil {
		t.Fatalf("MonthlyReport failed: %v", err)
	}
	if len(rows) != 12 {
		t.Fatalf("expected 12 rows, got %d", len(rows))
	}

	jan := rows[0]
	if jan.Due != 5000 || jan.Collected != 0 {
		t.Errorf("january: due=%v collected=%v; want 5000/0", jan.Due, jan.Collected)
	}

	// March has no invoices, but the payment lands there
	mar := rows[2]
	if mar.Due != 0 || mar.Collected != 2000 {
		t.Errorf("march: due=%v collected=%v; want 0/2000", mar.Due, mar.Collected)
	}
	if mar.Rate != 0 {
		t.Errorf("march rate = %v; want 0 when nothing was due", mar.Rate)
	}

	// Payments from another year stay out
	other := models.Payment{
		InvoiceID:   invoice.ID,
		StudentID:   alia.ID,
		Amount:      500,
		PaymentDate: time.Date(2023, time.December, 31, 0, 0, 0, 0, time.UTC),
		Mode:        models.PaymentModeCash,
	}
	if err := db.Create(&other).Error; err != nil {
		t.Fatalf("failed to create payment: %v", err)
	}
	rows, err = svc.MonthlyReport(ctx, 2024)
	if err != nil {
		t.Fatalf("MonthlyReport failed: %v", err)
	}
	if rows[11].Collected != 0 {
		t.Errorf("december collected = %v; want 0", rows[11].Collected)
	}
}

func TestMonthlyReportRate(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewReportService(db, nil)

	alia := createStudent(t, db, "Alia Khan", "ADM-001", "Grade 5")
	aprDue := time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC)
	invoice := createInvoice(t, db, alia.ID, models.Period{Year: 2024, Month: time.April}, 8000, 0, aprDue, models.InvoiceStatusPending)

	payment := models.Payment{
		InvoiceID:   invoice.ID,
		StudentID:   alia.ID,
		Amount:      2000,
		PaymentDate: time.Date(2024, time.April, 12, 0, 0, 0, 0, time.UTC),
		Mode:        models.PaymentModeCash,
	}
	if err := db.Create(&payment).Error; err != nil {
		t.Fatalf("failed to create payment: %v", err)
	}

	rows, err := svc.MonthlyReport(ctx, 2024)
	if err != nil {
		t.Fatalf("MonthlyReport failed: %v", err)
	}
	apr := rows[3]
	if apr.Rate != 0.25 {
		t.Errorf("april rate = %v; want 0.25", apr.Rate)
	}
}

func TestLedger(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewReportService(db, nil)

	alia := createStudent(t, db, "Alia Khan", "ADM-001", "Grade 5")
	due := time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC)
	first := createInvoice(t, db, alia.ID, models.Period{Year: 2024, Month: time.March}, 5000, 5000, due.AddDate(0, -1, 0), models.InvoiceStatusPaid)
	second := createInvoice(t, db, alia.ID, models.Period{Year: 2024, Month: time.April}, 5400, 2000, due, models.InvoiceStatusPartial)

	for _, p := range []models.Payment{
		{InvoiceID: first.ID, StudentID: alia.ID, Amount: 5000, PaymentDate: due.AddDate(0, -1, 2), Mode: models.PaymentModeCash},
		{InvoiceID: second.ID, StudentID: alia.ID, Amount: 2000, PaymentDate: due.AddDate(0, 0, 2), Mode: models.PaymentModeCash},
	} {
		payment := p
		if err := db.Create(&payment).Error; err != nil {
			t.Fatalf("failed to create payment: %v", err)
		}
	}

	ledger, err := svc.Ledger(ctx, alia.ID)
	if err != nil {
		t.Fatalf("Ledger failed: %v", err)
	}
	if len(ledger.Invoices) != 2 {
		t.Errorf("expected 2 invoices, got %d", len(ledger.Invoices))
	}
	if len(ledger.Payments) != 2 {
		t.Errorf("expected 2 payments, got %d", len(ledger.Payments))
	}
	if ledger.TotalDue != 10400 {
		t.Errorf("TotalDue = %v; want 10400", ledger.TotalDue)
	}
	if ledger.TotalPaid != 7000 {
		t.Errorf("TotalPaid = %v; want 7000", ledger.TotalPaid)
	}
	if ledger.Balance != 3400 {
		t.Errorf("Balance = %v; want 3400", ledger.Balance)
	}

	// Invoices come back in period order
	if !ledger.Invoices[0].Period.Before(ledger.Invoices[1].Period) {
		t.Error("invoices not ordered by period")
	}

	if _, err := svc.Ledger(ctx, 9999); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("unknown student: expected ErrStudentNotFound, got %v", err)
	}
}

func TestSummary(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewReportService(db, nil)

	alia := createStudent(t, db, "Alia Khan", "ADM-001", "Grade 5")
	bilal := createStudent(t, db, "Bilal Ahmed", "ADM-002", "Grade 6")

	now := time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)
	aprDue := time.Date(2024, time.April, 10, 0, 0, 0, 0, time.UTC)
	marDue := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	createInvoice(t, db, alia.ID, models.Period{Year: 2024, Month: time.April}, 5000, 2000, aprDue, models.InvoiceStatusOverdue)
	createInvoice(t, db, bilal.ID, models.Period{Year: 2024, Month: time.April}, 6000, 6000, aprDue, models.InvoiceStatusPaid)
	// An older unpaid invoice counts toward defaulters but not the
	// current period's due
	createInvoice(t, db, alia.ID, models.Period{Year: 2024, Month: time.March}, 4000, 0, marDue, models.InvoiceStatusOverdue)

	summary, err := svc.Summary(ctx, now)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Period != "2024-04" {
		t.Errorf("Period = %q; want 2024-04", summary.Period)
	}
	if summary.Due != 11000 {
		t.Errorf("Due = %v; want 11000", summary.Due)
	}
	if summary.Collected != 8000 {
		t.Errorf("Collected = %v; want 8000", summary.Collected)
	}
	if summary.Outstanding != 3000 {
		t.Errorf("Outstanding = %v; want 3000", summary.Outstanding)
	}
	// Alia has two unpaid invoices but counts once
	if summary.DefaulterCount != 1 {
		t.Errorf("DefaulterCount = %d; want 1", summary.DefaulterCount)
	}
}
