package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/almirah2204/edify-pakistan-sub000/internal/models"
)

// SettingsService reads and writes the typed configuration stored in
// fee_settings. Configs are validated before saving and decoded once per
// operation; callers pass the loaded struct around instead of re-reading.
type SettingsService struct {
	db *gorm.DB
}

func NewSettingsService(db *gorm.DB) *SettingsService {
	return &SettingsService{db: db}
}

// LateFineConfig loads the late fine policy, falling back to the
// (disabled) default when none has been saved yet
func (s *SettingsService) LateFineConfig(ctx context.Context) (models.LateFineConfig, error) {
	cfg := models.DefaultLateFineConfig()
	if err := s.load(ctx, models.SettingKeyLateFine, &cfg); err != nil {
		return models.LateFineConfig{}, err
	}
	return cfg, nil
}

// SaveLateFineConfig validates and persists the late fine policy
func (s *SettingsService) SaveLateFineConfig(ctx context.Context, cfg models.LateFineConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid late fine config: %w", err)
	}
	return s.save(ctx, models.SettingKeyLateFine, cfg)
}

// BillingConfig loads invoice generation defaults
func (s *SettingsService) BillingConfig(ctx context.Context) (models.BillingConfig, error) {
	cfg := models.DefaultBillingConfig()
	if err := s.load(ctx, models.SettingKeyBilling, &cfg); err != nil {
		return models.BillingConfig{}, err
	}
	return cfg, nil
}

// SaveBillingConfig validates and persists invoice generation defaults
func (s *SettingsService) SaveBillingConfig(ctx context.Context, cfg models.BillingConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid billing config: %w", err)
	}
	return s.save(ctx, models.SettingKeyBilling, cfg)
}

func (s *SettingsService) load(ctx context.Context, key string, dest interface{}) error {
	var setting models.FeeSetting
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil // keep defaults
		}
		return err
	}
	return json.Unmarshal(setting.Value, dest)
}

func (s *SettingsService) save(ctx context.Context, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	setting := models.FeeSetting{Key: key, Value: data}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
}
