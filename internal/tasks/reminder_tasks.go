package tasks

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/almirah2204/edify-pakistan-sub000/internal/models"
	"github.com/almirah2204/edify-pakistan-sub000/internal/services"
)

// FeeReminderArgs defines the arguments for a fee reminder batch
type FeeReminderArgs struct {
	// StudentIDs restricts the batch. Empty means every current defaulter.
	StudentIDs   []uint `json:"student_ids"`
	Template     string `json:"template"`
	Subject      string `json:"subject"`
	AttemptCount int    `json:"attempt_count"`
}

const defaultReminderTemplate = "Dear $guardian, the fee balance for $name ($class) is Rs. $balance, " +
	"due since $due_date. Please pay at your earliest convenience. $payment_link"

// FeeReminderTaskDef sends payment reminders to guardians of defaulters.
// WhatsApp is the primary channel, email the fallback when no phone is
// on record.
type FeeReminderTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *FeeReminderTaskDef) TaskID() string {
	return "send_fee_reminder"
}

// CreateTask builds a ScheduledTask record for this task
func (t *FeeReminderTaskDef) CreateTask(args FeeReminderArgs, due time.Time, recurringInterval *string) (*models.ScheduledTask, error) {
	taskType := models.ScheduledTaskTypeOneTime
	if recurringInterval != nil {
		taskType = models.ScheduledTaskTypeRecurring
	}
	return BuildScheduledTask(t.TaskID(), args, due, recurringInterval, taskType, 3)
}

// HandleExecution sends one reminder per defaulter. Failed sends are
// re-scheduled as a new one-time task until the attempt limit is hit.
func (t *FeeReminderTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, args map[string]interface{}) (map[string]interface{}, error) {
	var parsedArgs FeeReminderArgs
	if err := decodeArgs(args, &parsedArgs); err != nil {
		return nil, err
	}

	maxAttempt := 3
	if val, ok := args["max_attempt"].(float64); ok && val > 0 {
		maxAttempt = int(val)
	}

	reportService := services.NewReportService(db, nil)
	defaulters, err := reportService.Defaulters(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	if len(parsedArgs.StudentIDs) > 0 {
		wanted := make(map[uint]bool, len(parsedArgs.StudentIDs))
		for _, id := range parsedArgs.StudentIDs {
			wanted[id] = true
		}
		filtered := defaulters[:0]
		for _, inv := range defaulters {
			if wanted[inv.StudentID] {
				filtered = append(filtered, inv)
			}
		}
		defaulters = filtered
	}

	if len(defaulters) == 0 {
		return map[string]interface{}{"status": "skipped", "message": "no defaulters"}, nil
	}

	template := parsedArgs.Template
	if template == "" {
		template = defaultReminderTemplate
	}
	subject := parsedArgs.Subject
	if subject == "" {
		subject = "Fee payment reminder"
	}

	waha := services.NewWahaService()
	email := services.NewEmailService()
	baseURL := strings.TrimRight(os.Getenv("APP_BASE_URL"), "/")

	// One reminder per student even when several invoices are unpaid.
	// Defaulters come back largest balance first, so the first invoice
	// seen carries the headline amount and the balance sums the rest.
	type pending struct {
		invoice models.Invoice
		balance float64
	}
	byStudent := make(map[uint]*pending)
	var order []uint
	for _, inv := range defaulters {
		if entry, ok := byStudent[inv.StudentID]; ok {
			entry.balance += inv.Balance()
			continue
		}
		byStudent[inv.StudentID] = &pending{invoice: inv, balance: inv.Balance()}
		order = append(order, inv.StudentID)
	}

	sent := 0
	var failed []uint
	for _, studentID := range order {
		entry := byStudent[studentID]
		student := entry.invoice.Student
		if student.ID == 0 {
			log.Printf("Defaulter invoice %d has no student record, skipping", entry.invoice.ID)
			continue
		}

		body := renderReminder(template, student, entry.invoice, entry.balance, baseURL)

		var sendErr error
		switch {
		case student.GuardianPhone != "":
			sendErr = waha.SendMessage(student.GuardianPhone, body)
		case student.GuardianEmail != "":
			sendErr = email.SendEmail([]string{student.GuardianEmail}, subject, body)
		default:
			log.Printf("Student %d has no guardian contact, skipping reminder", studentID)
			continue
		}

		if sendErr != nil {
			log.Printf("Failed to send reminder for student %d: %v", studentID, sendErr)
			failed = append(failed, studentID)
			continue
		}
		sent++
	}

	if len(failed) > 0 && parsedArgs.AttemptCount+1 < maxAttempt {
		retryArgs := FeeReminderArgs{
			StudentIDs:   failed,
			Template:     parsedArgs.Template,
			Subject:      parsedArgs.Subject,
			AttemptCount: parsedArgs.AttemptCount + 1,
		}
		retryTask, err := BuildScheduledTask(t.TaskID(), retryArgs, time.Now().Add(5*time.Minute), nil, models.ScheduledTaskTypeOneTime, maxAttempt)
		if err != nil {
			return nil, fmt.Errorf("failed to build retry task: %w", err)
		}
		if err := db.Create(retryTask).Error; err != nil {
			return nil, fmt.Errorf("failed to schedule retry task: %w", err)
		}
		log.Printf("Scheduled reminder retry for %d students (attempt %d)", len(failed), retryArgs.AttemptCount+1)
	}

	return map[string]interface{}{
		"status":       "success",
		"sent_count":   sent,
		"failed_count": len(failed),
	}, nil
}

func renderReminder(template string, student models.Student, invoice models.Invoice, balance float64, baseURL string) string {
	paymentLink := ""
	if baseURL != "" {
		paymentLink = fmt.Sprintf("%s/p/invoices/%s", baseURL, invoice.UUID)
	}

	guardian := student.GuardianName
	if guardian == "" {
		guardian = "Guardian"
	}

	return strings.NewReplacer(
		"$guardian", guardian,
		"$name", student.Name,
		"$class", student.ClassName,
		"$period", invoice.Period.String(),
		"$balance", fmt.Sprintf("%.2f", balance),
		"$due_date", invoice.DueDate.Format("02 Jan 2006"),
		"$payment_link", paymentLink,
	).Replace(template)
}
