package repository

import (
	"time"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// paymentRepository implements the PaymentRepository interface
type paymentRepository struct {
	db *gorm.DB
}

// NewPaymentRepository creates a new payment repository instance
func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

// CreateIfNotExists appends a payment row unless the transaction id is
// already recorded. Returns whether a new row was written.
func (r *paymentRepository) CreateIfNotExists(payment *models.Payment) (bool, error) {
	tx := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_transaction_id"}},
		DoNothing: true,
	}).Create(payment)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

// GetByTransactionID retrieves a payment by its external transaction id
func (r *paymentRepository) GetByTransactionID(txID string) (*models.Payment, error) {
	var p models.Payment
	err := r.db.Where("stripe_transaction_id = ?", txID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByUserID retrieves a user's payments newest first
func (r *paymentRepository) ListByUserID(userID uint, offset, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Offset(offset).Limit(limit).Find(&payments).Error
	return payments, err
}

// List retrieves payments newest first
func (r *paymentRepository) List(offset, limit int) ([]models.Payment, error) {
	var payments []models.Payment
	err := r.db.Order("created_at DESC").Offset(offset).Limit(limit).Find(&payments).Error
	return payments, err
}

// Count returns the total number of payment rows
func (r *paymentRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&models.Payment{}).Count(&count).Error
	return count, err
}

// CountByStatus returns the number of payment rows in one status
func (r *paymentRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Payment{}).Where("status = ?", status).Count(&count).Error
	return count, err
}

// SumAmountCents sums payment amounts for a status since the given time
func (r *paymentRepository) SumAmountCents(status string, since time.Time) (int64, error) {
	var sum int64
	err := r.db.Model(&models.Payment{}).
		Where("status = ? AND created_at >= ?", status, since).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&sum).Error
	return sum, err
}

// MarkRefunded stamps refund metadata onto an existing payment row
func (r *paymentRepository) MarkRefunded(txID, reason string) error {
	now := time.Now()
	return r.db.Model(&models.Payment{}).
		Where("stripe_transaction_id = ?", txID).
		Updates(map[string]interface{}{
			"status":        models.PaymentStatusRefunded,
			"refunded_at":   &now,
			"refund_reason": reason,
		}).Error
}
