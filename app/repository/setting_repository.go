package repository

import (
	"encoding/json"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
	"gorm.io/gorm"
)

// settingRepository implements the SettingRepository interface
type settingRepository struct {
	db *gorm.DB
}

// NewSettingRepository creates a new setting repository instance
func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

// GetPublic returns stored settings merged over the compiled-in defaults
func (r *settingRepository) GetPublic() (map[string]json.RawMessage, error) {
	return models.LoadPublicSettings(r.db)
}

// GetValue retrieves a specific setting value by key
func (r *settingRepository) GetValue(key string) (string, error) {
	var setting models.SiteSetting
	// Correct column is `setting_key` (see gorm tag in models.SiteSetting)
	err := r.db.Where("setting_key = ?", key).First(&setting).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return "", nil // Return empty string for non-existent settings
		}
		return "", err
	}
	return setting.Value, nil
}

// SetValue upserts a setting by key, tagging its category from the fixed lookup
func (r *settingRepository) SetValue(key, value string) error {
	var setting models.SiteSetting
	err := r.db.Where("setting_key = ?", key).First(&setting).Error

	if err == gorm.ErrRecordNotFound {
		setting = models.SiteSetting{
			Key:      key,
			Value:    value,
			Category: models.SettingCategory(key),
		}
		return r.db.Create(&setting).Error
	} else if err != nil {
		return err
	}

	setting.Value = value
	setting.Category = models.SettingCategory(key)
	return r.db.Save(&setting).Error
}

// ListByCategory returns all stored settings tagged with a category
func (r *settingRepository) ListByCategory(category string) ([]models.SiteSetting, error) {
	var rows []models.SiteSetting
	err := r.db.Where("category = ?", category).Order("setting_key ASC").Find(&rows).Error
	return rows, err
}
