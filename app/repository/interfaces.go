package repository

import (
	"encoding/json"
	"time"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user-related database operations
type UserRepository interface {
	Create(user *models.User) error
	GetByID(id uint) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	GetByResetToken(token string) (*models.User, error)
	Update(user *models.User) error
	Delete(id uint) error
	List(offset, limit int) ([]models.User, error)
	Count() (int64, error)
	CountCreatedBetween(start, end time.Time) (int64, error)
	Search(query string) ([]models.User, error)
	GetDailyStats(startDate, endDate time.Time) ([]models.DailyStats, error)
}

// ProfileRepository defines the interface for profile rows keyed by user id
type ProfileRepository interface {
	GetByUserID(userID uint) (*models.Profile, error)
	GetByStripeCustomerID(customerID string) (*models.Profile, error)
	GetByAPIKeyHash(hash string) (*models.Profile, error)
	GetOrCreate(userID uint) (*models.Profile, error)
	Create(profile *models.Profile) error
	Update(profile *models.Profile) error
	Delete(userID uint) error
	CountSubscribed() (int64, error)
	CountByStatus(status string) (int64, error)
	ListSubscribed() ([]models.Profile, error)
}

// PaymentRepository defines the interface for append-only payment records
type PaymentRepository interface {
	CreateIfNotExists(payment *models.Payment) (bool, error)
	GetByTransactionID(txID string) (*models.Payment, error)
	ListByUserID(userID uint, offset, limit int) ([]models.Payment, error)
	List(offset, limit int) ([]models.Payment, error)
	Count() (int64, error)
	CountByStatus(status string) (int64, error)
	SumAmountCents(status string, since time.Time) (int64, error)
	MarkRefunded(txID, reason string) error
}

// PlanRepository defines the interface for subscription plan CRUD
type PlanRepository interface {
	Create(plan *models.SubscriptionPlan) error
	GetByID(id uint) (*models.SubscriptionPlan, error)
	GetBySlug(slug string) (*models.SubscriptionPlan, error)
	GetActive() ([]models.SubscriptionPlan, error)
	GetAll() ([]models.SubscriptionPlan, error)
	Update(plan *models.SubscriptionPlan) error
	Delete(id uint) error
	Count() (int64, error)
}

// SettingRepository defines the interface for the site settings store
type SettingRepository interface {
	GetPublic() (map[string]json.RawMessage, error)
	GetValue(key string) (string, error)
	SetValue(key, value string) error
	ListByCategory(category string) ([]models.SiteSetting, error)
}

// Repositories struct holds all repository instances
type Repositories struct {
	User    UserRepository
	Profile ProfileRepository
	Payment PaymentRepository
	Plan    PlanRepository
	Setting SettingRepository
}

// NewRepositories creates a new instance of all repositories
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:    NewUserRepository(db),
		Profile: NewProfileRepository(db),
		Payment: NewPaymentRepository(db),
		Plan:    NewPlanRepository(db),
		Setting: NewSettingRepository(db),
	}
}
