package controllers

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
)

// In-memory repositories for handler tests, installed via
// repository.SetRepositories. Only the methods a test exercises carry real
// behavior; the rest return empty results.

type fakeUserRepo struct {
	users map[string]*models.User // keyed by email
}

func (f *fakeUserRepo) Create(u *models.User) error {
	u.ID = uint(len(f.users) + 1)
	f.users[u.Email] = u
	return nil
}

func (f *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(email string) (*models.User, error) {
	if u, ok := f.users[email]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByResetToken(token string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Update(u *models.User) error {
	f.users[u.Email] = u
	return nil
}

func (f *fakeUserRepo) Delete(id uint) error { return nil }

func (f *fakeUserRepo) List(_, _ int) ([]models.User, error) { return nil, nil }

func (f *fakeUserRepo) Count() (int64, error) { return int64(len(f.users)), nil }

func (f *fakeUserRepo) CountCreatedBetween(_, _ time.Time) (int64, error) { return 0, nil }

func (f *fakeUserRepo) Search(_ string) ([]models.User, error) { return nil, nil }

func (f *fakeUserRepo) GetDailyStats(_, _ time.Time) ([]models.DailyStats, error) {
	return nil, nil
}

type fakeProfileRepo struct {
	byHash map[string]*models.Profile // keyed by api key hash
}

func (f *fakeProfileRepo) GetByAPIKeyHash(hash string) (*models.Profile, error) {
	if p, ok := f.byHash[hash]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProfileRepo) GetByUserID(userID uint) (*models.Profile, error) {
	for _, p := range f.byHash {
		if p.UserID == userID {
			copied := *p
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProfileRepo) GetByStripeCustomerID(_ string) (*models.Profile, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProfileRepo) GetOrCreate(userID uint) (*models.Profile, error) {
	return &models.Profile{UserID: userID, Role: models.ROLE_USER}, nil
}

func (f *fakeProfileRepo) Create(_ *models.Profile) error { return nil }

func (f *fakeProfileRepo) Update(_ *models.Profile) error { return nil }

func (f *fakeProfileRepo) Delete(_ uint) error { return nil }

func (f *fakeProfileRepo) CountSubscribed() (int64, error) { return 0, nil }

func (f *fakeProfileRepo) CountByStatus(_ string) (int64, error) { return 0, nil }

func (f *fakeProfileRepo) ListSubscribed() ([]models.Profile, error) { return nil, nil }

type fakeSettingRepo struct {
	values map[string]string
}

func (f *fakeSettingRepo) GetPublic() (map[string]json.RawMessage, error) {
	out := make(map[string]json.RawMessage, len(f.values))
	for k, v := range f.values {
		out[k] = json.RawMessage(v)
	}
	return out, nil
}

func (f *fakeSettingRepo) GetValue(key string) (string, error) {
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return "", gorm.ErrRecordNotFound
}

func (f *fakeSettingRepo) SetValue(key, value string) error {
	f.values[key] = value
	return nil
}

func (f *fakeSettingRepo) ListByCategory(_ string) ([]models.SiteSetting, error) {
	return nil, nil
}

type fakePaymentRepo struct {
	payments map[string]*models.Payment // keyed by transaction id
}

func (f *fakePaymentRepo) CreateIfNotExists(p *models.Payment) (bool, error) {
	if _, exists := f.payments[p.StripeTransactionID]; exists {
		return false, nil
	}
	copied := *p
	f.payments[p.StripeTransactionID] = &copied
	return true, nil
}

func (f *fakePaymentRepo) GetByTransactionID(txID string) (*models.Payment, error) {
	if p, ok := f.payments[txID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakePaymentRepo) ListByUserID(_ uint, _, _ int) ([]models.Payment, error) {
	return nil, nil
}

func (f *fakePaymentRepo) List(_, _ int) ([]models.Payment, error) { return nil, nil }

func (f *fakePaymentRepo) Count() (int64, error) { return int64(len(f.payments)), nil }

func (f *fakePaymentRepo) CountByStatus(_ string) (int64, error) { return 0, nil }

func (f *fakePaymentRepo) SumAmountCents(_ string, _ time.Time) (int64, error) { return 0, nil }

func (f *fakePaymentRepo) MarkRefunded(txID, reason string) error {
	p, ok := f.payments[txID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	now := time.Now()
	p.Status = models.PaymentStatusRefunded
	p.RefundedAt = &now
	p.RefundReason = reason
	return nil
}
