package services

import (
	"context"
	"testing"
	"time"

	"github.com/almirah2204/edify-pakistan-sub000/internal/models"
)

func TestSettingsDefaults(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewSettingsService(db)

	lateCfg, err := svc.LateFineConfig(ctx)
	if err != nil {
		t.Fatalf("LateFineConfig failed: %v", err)
	}
	if lateCfg.Enabled {
		t.Error("late fines should default to disabled")
	}

	billCfg, err := svc.BillingConfig(ctx)
	if err != nil {
		t.Fatalf("BillingConfig failed: %v", err)
	}
	if billCfg.DueDay != 10 {
		t.Errorf("DueDay = %d; want 10", billCfg.DueDay)
	}
	if billCfg.YearStartMonth != time.April {
		t.Errorf("YearStartMonth = %v; want April", billCfg.YearStartMonth)
	}
}

func TestSettingsSaveAndReload(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewSettingsService(db)

	want := models.LateFineConfig{Enabled: true, PerDayAmount: 50, GraceDays: 7, MaxCap: 500}
	if err := svc.SaveLateFineConfig(ctx, want); err != nil {
		t.Fatalf("SaveLateFineConfig failed: %v", err)
	}

	got, err := svc.LateFineConfig(ctx)
	if err != nil {
		t.Fatalf("LateFineConfig failed: %v", err)
	}
	if got != want {
		t.Errorf("reloaded config = %+v; want %+v", got, want)
	}

	// Saving again overwrites the same row
	want.GraceDays = 3
	if err := svc.SaveLateFineConfig(ctx, want); err != nil {
		t.Fatalf("second save failed: %v", err)
	}
	got, err = svc.LateFineConfig(ctx)
	if err != nil {
		t.Fatalf("LateFineConfig failed: %v", err)
	}
	if got.GraceDays != 3 {
		t.Errorf("GraceDays = %d; want 3", got.GraceDays)
	}

	var count int64
	db.Model(&models.FeeSetting{}).Where("key = ?", models.SettingKeyLateFine).Count(&count)
	if count != 1 {
		t.Errorf("setting rows = %d; want 1", count)
	}
}

func TestSettingsValidation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	svc := NewSettingsService(db)

	bad := []models.LateFineConfig{
		{Enabled: true, PerDayAmount: -1, MaxCap: 100},
		{Enabled: true, PerDayAmount: 10, GraceDays: -1, MaxCap: 100},
		{Enabled: true, PerDayAmount: 10, MaxCap: -5},
		{Enabled: true, PerDayAmount: 200, MaxCap: 100},
	}
	for _, cfg := range bad {
		if err := svc.SaveLateFineConfig(ctx, cfg); err == nil {
			t.Errorf("config %+v should have been rejected", cfg)
		}
	}

	badBilling := []models.BillingConfig{
		{DueDay: 0, YearStartMonth: time.April},
		{DueDay: 29, YearStartMonth: time.April},
		{DueDay: 10, YearStartMonth: 0},
		{DueDay: 10, YearStartMonth: 13},
	}
	for _, cfg := range badBilling {
		if err := svc.SaveBillingConfig(ctx, cfg); err == nil {
			t.Errorf("config %+v should have been rejected", cfg)
		}
	}

	// Rejected saves must not leave a row behind
	var count int64
	db.Model(&models.FeeSetting{}).Count(&count)
	if count != 0 {
		t.Errorf("setting rows = %d; want 0", count)
	}
}
