package models

import "time"

const (
	PaymentStatusSucceeded = "succeeded"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// Payment is an append-only record of a completed, failed or refunded charge.
// Rows are never updated after creation except for refund/dispute metadata.
type Payment struct {
	ID                  uint      `gorm:"primaryKey" json:"id"`
	UserID              uint      `gorm:"not null;index" json:"user_id"`
	PlanID              *uint     `gorm:"default:null;index" json:"plan_id,omitempty"`
	AmountCents         int64     `gorm:"not null" json:"amount_cents"`
	Currency            string    `gorm:"type:varchar(8);not null;default:'usd'" json:"currency"`
	Status              string    `gorm:"type:varchar(20);not null;index" json:"status"`
	StripeTransactionID string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"stripe_transaction_id"`
	StripeCustomerID    string    `gorm:"type:varchar(191);default:'';index" json:"stripe_customer_id"`
	Description         string    `gorm:"type:varchar(255);default:''" json:"description"`
	RefundedAt          *time.Time `gorm:"type:timestamp;default:null" json:"refunded_at,omitempty"`
	RefundReason        string    `gorm:"type:varchar(255);default:''" json:"refund_reason"`
	CreatedAt           time.Time `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// Amount returns the charge amount in major currency units.
func (p *Payment) Amount() float64 {
	return float64(p.AmountCents) / 100
}
