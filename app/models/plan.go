package models

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	PlanIntervalMonth = "month"
	PlanIntervalYear  = "year"
)

// SubscriptionPlan is an admin-managed pricing plan. Features are stored as
// an ordered JSON array of display strings.
type SubscriptionPlan struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Name          string    `gorm:"type:varchar(100);not null" json:"name" validate:"required,min=2,max=100"`
	Slug          string    `gorm:"type:varchar(100);not null;uniqueIndex" json:"slug" validate:"required,min=2,max=100"`
	PriceCents    int64     `gorm:"not null" json:"price_cents" validate:"gte=0"`
	Currency      string    `gorm:"type:varchar(8);not null;default:'usd'" json:"currency"`
	Interval      string    `gorm:"type:varchar(16);not null;default:'month'" json:"interval" validate:"oneof=month year"`
	FeaturesJSON  string    `gorm:"type:text" json:"-"`
	StripePriceID string    `gorm:"type:varchar(191);default:''" json:"stripe_price_id"`
	IsActive      bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (p *SubscriptionPlan) Validate() error {
	v := validator.New()
	return v.Struct(p)
}

// Price returns the plan price in major currency units.
func (p *SubscriptionPlan) Price() float64 {
	return float64(p.PriceCents) / 100
}

// Features decodes the ordered feature list. A broken or empty payload
// yields an empty list rather than an error.
func (p *SubscriptionPlan) Features() []string {
	if p.FeaturesJSON == "" {
		return []string{}
	}
	var out []string
	if err := json.Unmarshal([]byte(p.FeaturesJSON), &out); err != nil {
		return []string{}
	}
	return out
}

// SetFeatures encodes the ordered feature list.
func (p *SubscriptionPlan) SetFeatures(features []string) error {
	b, err := json.Marshal(features)
	if err != nil {
		return err
	}
	p.FeaturesJSON = string(b)
	return nil
}
