package billing

import (
	"context"
	"time"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository provides DB operations used by the billing service. Every call
// carries the caller's context so bounded waits (the checkout-return
// activation window, webhook deadlines) cancel the underlying queries.
type Repository interface {
	GetProfileByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	GetProfileByCustomerID(ctx context.Context, customerID string) (*models.Profile, error)
	CreateProfile(ctx context.Context, profile *models.Profile) error
	SaveProfile(ctx context.Context, profile *models.Profile) error
	RawActivateProfile(ctx context.Context, userID uint, email, fullName string) error
	CreatePaymentIfNotExists(ctx context.Context, payment *models.Payment) (bool, error)
	CreateWebhookEventIfNotExists(ctx context.Context, event *models.WebhookEvent) (bool, *models.WebhookEvent, error)
	MarkWebhookProcessed(ctx context.Context, id uint, processingError string) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewRepository creates a billing repository backed by GORM.
func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) GetProfileByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) GetProfileByCustomerID(ctx context.Context, customerID string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) CreateProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Create(profile).Error
}

func (r *gormRepository) SaveProfile(ctx context.Context, profile *models.Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// RawActivateProfile is the privileged fallback write path: a direct upsert
// keyed on user_id that bypasses model hooks and soft-delete scopes. Used
// only after both regular activation strategies failed.
func (r *gormRepository) RawActivateProfile(ctx context.Context, userID uint, email, fullName string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO profiles (user_id, email, full_name, role, subscribed, subscription_status, created_at, updated_at)
		 VALUES (?, ?, ?, 'user', 1, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE subscribed = 1, subscription_status = VALUES(subscription_status), updated_at = VALUES(updated_at)`,
		userID, email, fullName, models.SubscriptionStatusActive, now, now,
	).Error
}

func (r *gormRepository) CreatePaymentIfNotExists(ctx context.Context, payment *models.Payment) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_transaction_id"}},
		DoNothing: true,
	}).Create(payment)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *gormRepository) CreateWebhookEventIfNotExists(ctx context.Context, event *models.WebhookEvent) (bool, *models.WebhookEvent, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "provider"},
			{Name: "provider_event_id"},
		},
		DoNothing: true,
	}).Create(event)
	if tx.Error != nil {
		return false, nil, tx.Error
	}

	created := tx.RowsAffected > 0
	var stored models.WebhookEvent
	if err := r.db.WithContext(ctx).Where("provider = ? AND provider_event_id = ?", event.Provider, event.ProviderEventID).
		First(&stored).Error; err != nil {
		return false, nil, err
	}
	return created, &stored, nil
}

func (r *gormRepository) MarkWebhookProcessed(ctx context.Context, id uint, processingError string) error {
	now := time.Now()
	updates := map[string]interface{}{
		"processed_at":     &now,
		"processing_error": processingError,
	}
	return r.db.WithContext(ctx).Model(&models.WebhookEvent{}).Where("id = ?", id).Updates(updates).Error
}
