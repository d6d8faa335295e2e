package repository

import (
	"strings"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
	"gorm.io/gorm"
)

// profileRepository implements the ProfileRepository interface
type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository instance
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// GetByUserID retrieves the profile row keyed by the stable user identifier
func (r *profileRepository) GetByUserID(userID uint) (*models.Profile, error) {
	var p models.Profile
	err := r.db.Where("user_id = ?", userID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByStripeCustomerID retrieves a profile by its billing-customer id
func (r *profileRepository) GetByStripeCustomerID(customerID string) (*models.Profile, error) {
	var p models.Profile
	err := r.db.Where("stripe_customer_id = ?", customerID).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetByAPIKeyHash resolves an active API key hash to its profile.
func (r *profileRepository) GetByAPIKeyHash(hash string) (*models.Profile, error) {
	trimmed := strings.TrimSpace(hash)
	if trimmed == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var p models.Profile
	err := r.db.Where("api_key_hash = ? AND api_key_hash <> '' AND api_key_revoked_at IS NULL", trimmed).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetOrCreate returns the existing profile or creates a default row
func (r *profileRepository) GetOrCreate(userID uint) (*models.Profile, error) {
	return models.GetOrCreateProfile(r.db, userID)
}

// Create inserts a new profile row
func (r *profileRepository) Create(profile *models.Profile) error {
	return r.db.Create(profile).Error
}

// Update saves profile changes
func (r *profileRepository) Update(profile *models.Profile) error {
	return r.db.Save(profile).Error
}

// Delete soft deletes the profile belonging to a user
func (r *profileRepository) Delete(userID uint) error {
	return r.db.Where("user_id = ?", userID).Delete(&models.Profile{}).Error
}

// CountSubscribed returns the number of currently subscribed profiles
func (r *profileRepository) CountSubscribed() (int64, error) {
	var count int64
	err := r.db.Model(&models.Profile{}).Where("subscribed = ?", true).Count(&count).Error
	return count, err
}

// CountByStatus returns the number of profiles in one subscription status
func (r *profileRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Profile{}).Where("subscription_status = ?", status).Count(&count).Error
	return count, err
}

// ListSubscribed returns all subscribed profiles
func (r *profileRepository) ListSubscribed() ([]models.Profile, error) {
	var profiles []models.Profile
	err := r.db.Where("subscribed = ?", true).Find(&profiles).Error
	return profiles, err
}
