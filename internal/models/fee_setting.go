package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Setting keys in the fee_settings table
const (
	SettingKeyLateFine = "late_fine"
	SettingKeyBilling  = "billing"
)

// FeeSetting is a key/value configuration row. Values are JSON blobs of
// the typed config structs below; they are validated before being saved
// and decoded into a struct once per operation, never re-read mid-run.
type FeeSetting struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	Key       string          `gorm:"type:varchar(50);uniqueIndex" json:"key"`
	Value     json.RawMessage `gorm:"type:jsonb" json:"value"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	DeletedAt gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}

// LateFineConfig is the late fine policy applied when an invoice stays
// unpaid past its due date plus the grace period
type LateFineConfig struct {
	Enabled      bool    `json:"enabled"`
	PerDayAmount float64 `json:"per_day_amount"`
	GraceDays    int     `json:"grace_days"`
	MaxCap       float64 `json:"max_cap"`
}

// Validate rejects configurations that could produce negative or
// unbounded fines
func (c LateFineConfig) Validate() error {
	if c.PerDayAmount < 0 {
		return fmt.Errorf("per_day_amount must not be negative")
	}
	if c.GraceDays < 0 {
		return fmt.Errorf("grace_days must not be negative")
	}
	if c.MaxCap < 0 {
		return fmt.Errorf("max_cap must not be negative")
	}
	if c.PerDayAmount > c.MaxCap {
		return fmt.Errorf("per_day_amount (%.2f) must not exceed max_cap (%.2f)", c.PerDayAmount, c.MaxCap)
	}
	return nil
}

// BillingConfig holds invoice generation defaults: the day of the billed
// month payments fall due, and the first month of the academic year,
// which anchors quarterly and yearly fee frequencies.
type BillingConfig struct {
	DueDay         int        `json:"due_day"`
	YearStartMonth time.Month `json:"year_start_month"`
}

// Validate keeps the due day inside every month and the year start a real month
func (c BillingConfig) Validate() error {
	if c.DueDay < 1 || c.DueDay > 28 {
		return fmt.Errorf("due_day must be between 1 and 28")
	}
	if c.YearStartMonth < time.January || c.YearStartMonth > time.December {
		return fmt.Errorf("year_start_month must be a valid month")
	}
	return nil
}

// DefaultBillingConfig is used until an administrator saves one
func DefaultBillingConfig() BillingConfig {
	return BillingConfig{DueDay: 10, YearStartMonth: time.April}
}

// DefaultLateFineConfig starts with fines disabled
func DefaultLateFineConfig() LateFineConfig {
	return LateFineConfig{Enabled: false}
}
