package tasks

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/almirah2204/edify-pakistan-sub000/internal/models"
	"github.com/almirah2204/edify-pakistan-sub000/internal/services"
)

// GenerateInvoicesArgs defines the arguments for an invoice generation run
type GenerateInvoicesArgs struct {
	// Period in "YYYY-MM" form. Empty means the period the run executes in.
	Period    string `json:"period"`
	ClassName string `json:"class_name"`
}

// GenerateInvoicesTaskDef runs a billing cycle for one period
type GenerateInvoicesTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *GenerateInvoicesTaskDef) TaskID() string {
	return "generate_invoices"
}

// CreateTask builds a recurring ScheduledTask for monthly billing runs
func (t *GenerateInvoicesTaskDef) CreateTask(args GenerateInvoicesArgs, due time.Time, recurringInterval *string) (*models.ScheduledTask, error) {
	taskType := models.ScheduledTaskTypeOneTime
	if recurringInterval != nil {
		taskType = models.ScheduledTaskTypeRecurring
	}
	return BuildScheduledTask(t.TaskID(), args, due, recurringInterval, taskType, 3)
}

// HandleExecution generates invoices for the requested period
func (t *GenerateInvoicesTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, args map[string]interface{}) (map[string]interface{}, error) {
	var parsedArgs GenerateInvoicesArgs
	if err := decodeArgs(args, &parsedArgs); err != nil {
		return nil, err
	}

	now := time.Now()
	period := models.PeriodOf(now)
	if parsedArgs.Period != "" {
		var err error
		period, err = models.ParsePeriod(parsedArgs.Period)
		if err != nil {
			return nil, fmt.Errorf("invalid period %q: %w", parsedArgs.Period, err)
		}
	}

	invoiceService := services.NewInvoiceService(db, nil, services.NewSettingsService(db))
	result, err := invoiceService.Generate(ctx, period, services.GenerateFilter{ClassName: parsedArgs.ClassName}, now)
	if err != nil {
		return nil, err
	}

	duplicates := 0
	for _, skipped := range result.Skipped {
		if skipped.Reason == services.SkipReasonDuplicate {
			duplicates++
		}
	}

	return map[string]interface{}{
		"status":        "success",
		"period":        period.String(),
		"created_count": len(result.Created),
		"skipped_count": len(result.Skipped),
		"duplicates":    duplicates,
	}, nil
}

// OverdueSweepTaskDef flips unpaid invoices past their due date to overdue
type OverdueSweepTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *OverdueSweepTaskDef) TaskID() string {
	return "overdue_sweep"
}

// CreateTask builds a recurring ScheduledTask for the daily sweep
func (t *OverdueSweepTaskDef) CreateTask(due time.Time, recurringInterval *string) (*models.ScheduledTask, error) {
	taskType := models.ScheduledTaskTypeOneTime
	if recurringInterval != nil {
		taskType = models.ScheduledTaskTypeRecurring
	}
	return BuildScheduledTask(t.TaskID(), map[string]interface{}{}, due, recurringInterval, taskType, 3)
}

// HandleExecution marks overdue invoices
func (t *OverdueSweepTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, args map[string]interface{}) (map[string]interface{}, error) {
	paymentService := services.NewPaymentService(db, nil, nil)
	affected, err := paymentService.SweepOverdue(ctx, time.Now())
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"status":       "success",
		"marked_count": affected,
	}, nil
}
