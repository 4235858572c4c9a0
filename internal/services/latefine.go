package services

import (
	"time"

	"github.com/almirah2204/edify-pakistan-sub000/internal/models"
)

// LateFine computes the penalty owed on a bill that was due on dueDate
// and is still unpaid as of asOf. Days past the due date beyond the
// grace period are charged per day, capped at the configured maximum.
// The result is non-decreasing in asOf and zero when fines are disabled.
func LateFine(dueDate, asOf time.Time, cfg models.LateFineConfig) float64 {
	if !cfg.Enabled {
		return 0
	}

	daysLate := daysBetween(dueDate, asOf)
	if daysLate < 0 {
		daysLate = 0
	}

	chargeableDays := daysLate - cfg.GraceDays
	if chargeableDays < 0 {
		chargeableDays = 0
	}

	raw := float64(chargeableDays) * cfg.PerDayAmount
	if raw > cfg.MaxCap {
		return cfg.MaxCap
	}
	return raw
}

// daysBetween counts whole calendar days from one date to another,
// ignoring the time of day
func daysBetween(from, to time.Time) int {
	f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	t := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(t.Sub(f).Hours() / 24)
}
