package models

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// SiteSetting is one key-value row of landing-page/CMS content. Values are
// arbitrary JSON, commonly a bilingual {"fr": ..., "en": ...} pair.
type SiteSetting struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"column:setting_key;size:255;not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	Category  string    `gorm:"size:50;not null;default:'general'" json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// settingCategories is the fixed key -> category lookup used when upserting.
var settingCategories = map[string]string{
	"hero_title":        "landing",
	"hero_subtitle":     "landing",
	"hero_cta":          "landing",
	"features_title":    "landing",
	"pricing_title":     "landing",
	"footer_text":       "landing",
	"support_email":     "contact",
	"discord_url":       "contact",
	"trial_days":        "billing",
	"maintenance_mode":  "system",
	"signup_enabled":    "system",
	"announcement_text": "announcement",
}

// defaultSiteSettings is the compiled-in bilingual copy merged under stored
// rows when a key is absent from the database.
var defaultSiteSettings = map[string]json.RawMessage{
	"hero_title":       json.RawMessage(`{"fr":"Gestion du Risque Intelligente","en":"Smart Risk Management"}`),
	"hero_subtitle":    json.RawMessage(`{"fr":"Dimensionnez vos positions sur les contrats à terme avec précision","en":"Size your futures positions with precision"}`),
	"hero_cta":         json.RawMessage(`{"fr":"Commencer","en":"Get Started"}`),
	"features_title":   json.RawMessage(`{"fr":"Fonctionnalités","en":"Features"}`),
	"pricing_title":    json.RawMessage(`{"fr":"Tarifs","en":"Pricing"}`),
	"footer_text":      json.RawMessage(`{"fr":"Tradez de manière responsable.","en":"Trade responsibly."}`),
	"support_email":    json.RawMessage(`"support@smartrisk.app"`),
	"trial_days":       json.RawMessage(`7`),
	"maintenance_mode": json.RawMessage(`false`),
	"signup_enabled":   json.RawMessage(`true`),
}

// SettingCategory resolves the category tag for a key, defaulting to general.
func SettingCategory(key string) string {
	if cat, ok := settingCategories[key]; ok {
		return cat
	}
	return "general"
}

// LoadPublicSettings returns all stored settings merged over the compiled-in
// defaults as one object keyed by setting key.
func LoadPublicSettings(db *gorm.DB) (map[string]json.RawMessage, error) {
	merged := make(map[string]json.RawMessage, len(defaultSiteSettings))
	for k, v := range defaultSiteSettings {
		merged[k] = v
	}

	var rows []SiteSetting
	if err := db.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load site settings: %w", err)
	}
	for _, row := range rows {
		if json.Valid([]byte(row.Value)) {
			merged[row.Key] = json.RawMessage(row.Value)
			continue
		}
		// Tolerate legacy plain-string rows written before values were JSON.
		encoded, err := json.Marshal(row.Value)
		if err != nil {
			continue
		}
		merged[row.Key] = encoded
	}
	return merged, nil
}
