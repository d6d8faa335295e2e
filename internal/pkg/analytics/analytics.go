package analytics

import (
	"context"
	"encoding/json"
	"log"
	"math"
	"sync"
	"time"

	"github.com/SmartRiskHQ/SmartRisk/app/models"
	"github.com/SmartRiskHQ/SmartRisk/app/repository"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/billing"
	"github.com/SmartRiskHQ/SmartRisk/internal/pkg/cache"
)

const (
	CacheKeyDashboard = "analytics:dashboard"
	CacheKeyAnalytics = "analytics:metrics"
	CacheExpiration   = 30 * time.Minute

	// MRRSourceStripe marks a live figure, MRRSourceFallback the computed
	// subscriber_count * plan_price substitute.
	MRRSourceStripe   = "stripe"
	MRRSourceFallback = "fallback"
)

// DashboardData is the admin dashboard aggregate.
type DashboardData struct {
	TotalUsers        int64               `json:"total_users"`
	NewUsersThisMonth int64               `json:"new_users_this_month"`
	UserGrowthPercent float64             `json:"user_growth_percent"`
	SubscribedUsers   int64               `json:"subscribed_users"`
	ConversionRate    float64             `json:"conversion_rate"`
	TotalPayments     int64               `json:"total_payments"`
	RevenueCents      int64               `json:"revenue_cents"`
	MRR               float64             `json:"mrr"`
	MRRSource         string              `json:"mrr_source"`
	ARPU              float64             `json:"arpu"`
	DailySignups      []models.DailyStats `json:"daily_signups"`
	GeneratedAt       time.Time           `json:"generated_at"`
}

// MetricsData mirrors the provider-reporting view: churn, retention,
// payment success rate and trial count for the admin analytics screen.
type MetricsData struct {
	MRR                float64   `json:"mrr"`
	MRRSource          string    `json:"mrr_source"`
	ChurnRatePercent   float64   `json:"churn_rate_percent"`
	RetentionPercent   float64   `json:"retention_percent"`
	PaymentSuccessRate float64   `json:"payment_success_rate"`
	TrialCount         int64     `json:"trial_count"`
	GeneratedAt        time.Time `json:"generated_at"`
}

// PaymentStats summarizes the payment table for the admin payments view.
type PaymentStats struct {
	TotalCount         int64   `json:"total_count"`
	SucceededCount     int64   `json:"succeeded_count"`
	FailedCount        int64   `json:"failed_count"`
	RefundedCount      int64   `json:"refunded_count"`
	TotalAmountCents   int64   `json:"total_amount_cents"`
	SuccessRatePercent float64 `json:"success_rate_percent"`
}

// Service computes admin aggregates over the repositories, preferring live
// provider figures and falling back to local computation when unreachable.
type Service struct {
	repos  *repository.Repositories
	stripe *billing.StripeClient

	refreshMu       sync.Mutex
	lastRefresh     time.Time
	refreshInterval time.Duration
}

// NewService creates an analytics service. The stripe client may be nil, in
// which case every revenue figure uses the deterministic fallback.
func NewService(repos *repository.Repositories, stripe *billing.StripeClient) *Service {
	return &Service{
		repos:           repos,
		stripe:          stripe,
		refreshInterval: 5 * time.Minute,
	}
}

// GrowthPercent computes (current - previous) / previous * 100. A zero
// previous value yields 100 for any growth and 0 for no change, never a
// division-by-zero artifact.
func GrowthPercent(previous, current float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return round2((current - previous) / previous * 100)
}

// ConversionRate computes subscribers / users * 100.
func ConversionRate(subscribers, users int64) float64 {
	if users == 0 {
		return 0
	}
	return round2(float64(subscribers) / float64(users) * 100)
}

// FallbackMRR is the deterministic substitute used when the provider's
// reporting endpoint is unreachable: subscriber count times plan price.
func FallbackMRR(subscriberCount int64, planPrice float64) float64 {
	return round2(float64(subscriberCount) * planPrice)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// MonthlyRecurringRevenue prefers the live provider figure; on any error it
// logs the failure and returns the fallback so the number stays explainable.
func (s *Service) MonthlyRecurringRevenue(ctx context.Context) (float64, string) {
	if s.stripe != nil {
		cents, err := s.stripe.MonthlyRecurringRevenueCents(ctx)
		if err == nil {
			return round2(float64(cents) / 100), MRRSourceStripe
		}
		log.Printf("stripe MRR unavailable, using fallback: %v", err)
	}

	subscribers, err := s.repos.Profile.CountSubscribed()
	if err != nil {
		log.Printf("error counting subscribers for MRR fallback: %v", err)
		return 0, MRRSourceFallback
	}

	price := s.activePlanPrice()
	mrr := FallbackMRR(subscribers, price)
	log.Printf("MRR fallback: %d subscribers x %.2f = %.2f", subscribers, price, mrr)
	return mrr, MRRSourceFallback
}

// activePlanPrice returns the cheapest active monthly plan price, or 0 when
// no plan is configured.
func (s *Service) activePlanPrice() float64 {
	plans, err := s.repos.Plan.GetActive()
	if err != nil {
		log.Printf("error loading active plans: %v", err)
		return 0
	}
	var price float64
	for _, plan := range plans {
		if plan.Interval != models.PlanIntervalMonth {
			continue
		}
		if price == 0 || plan.Price() < price {
			price = plan.Price()
		}
	}
	return price
}

// GetDashboardData assembles the dashboard aggregate, from cache when fresh.
func (s *Service) GetDashboardData(ctx context.Context) (*DashboardData, error) {
	if cached, err := cache.Get(CacheKeyDashboard); err == nil {
		var data DashboardData
		if json.Unmarshal([]byte(cached), &data) == nil {
			return &data, nil
		}
	}
	return s.refreshDashboard(ctx)
}

func (s *Service) refreshDashboard(ctx context.Context) (*DashboardData, error) {
	totalUsers, err := s.repos.User.Count()
	if err != nil {
		return nil, err
	}
	subscribed, err := s.repos.Profile.CountSubscribed()
	if err != nil {
		return nil, err
	}
	totalPayments, err := s.repos.Payment.Count()
	if err != nil {
		return nil, err
	}
	revenueCents, err := s.repos.Payment.SumAmountCents(models.PaymentStatusSucceeded, time.Time{})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	prevMonthStart := monthStart.AddDate(0, -1, 0)

	currentSignups, err := s.repos.User.CountCreatedBetween(monthStart, now)
	if err != nil {
		return nil, err
	}
	previousSignups, err := s.repos.User.CountCreatedBetween(prevMonthStart, monthStart)
	if err != nil {
		return nil, err
	}

	dailySignups, err := s.repos.User.GetDailyStats(now.AddDate(0, 0, -30), now)
	if err != nil {
		return nil, err
	}

	mrr, mrrSource := s.MonthlyRecurringRevenue(ctx)

	arpu := 0.0
	if totalUsers > 0 {
		arpu = round2(float64(revenueCents) / 100 / float64(totalUsers))
	}

	data := &DashboardData{
		TotalUsers:        totalUsers,
		NewUsersThisMonth: currentSignups,
		UserGrowthPercent: GrowthPercent(float64(previousSignups), float64(currentSignups)),
		SubscribedUsers:   subscribed,
		ConversionRate:    ConversionRate(subscribed, totalUsers),
		TotalPayments:     totalPayments,
		RevenueCents:      revenueCents,
		MRR:               mrr,
		MRRSource:         mrrSource,
		ARPU:              arpu,
		DailySignups:      dailySignups,
		GeneratedAt:       now,
	}

	if encoded, err := json.Marshal(data); err == nil {
		if err := cache.Set(CacheKeyDashboard, string(encoded), CacheExpiration); err != nil {
			log.Printf("error caching dashboard data: %v", err)
		}
	}
	return data, nil
}

// GetMetricsData assembles churn/retention/success-rate figures.
func (s *Service) GetMetricsData(ctx context.Context) (*MetricsData, error) {
	if cached, err := cache.Get(CacheKeyAnalytics); err == nil {
		var data MetricsData
		if json.Unmarshal([]byte(cached), &data) == nil {
			return &data, nil
		}
	}

	subscribed, err := s.repos.Profile.CountSubscribed()
	if err != nil {
		return nil, err
	}
	canceled, err := s.repos.Profile.CountByStatus(models.SubscriptionStatusCanceled)
	if err != nil {
		return nil, err
	}
	trialing, err := s.repos.Profile.CountByStatus(models.SubscriptionStatusTrialing)
	if err != nil {
		return nil, err
	}
	succeeded, err := s.repos.Payment.CountByStatus(models.PaymentStatusSucceeded)
	if err != nil {
		return nil, err
	}
	failed, err := s.repos.Payment.CountByStatus(models.PaymentStatusFailed)
	if err != nil {
		return nil, err
	}

	churn := 0.0
	if subscribed+canceled > 0 {
		churn = round2(float64(canceled) / float64(subscribed+canceled) * 100)
	}
	successRate := 0.0
	if succeeded+failed > 0 {
		successRate = round2(float64(succeeded) / float64(succeeded+failed) * 100)
	}

	mrr, mrrSource := s.MonthlyRecurringRevenue(ctx)

	data := &MetricsData{
		MRR:                mrr,
		MRRSource:          mrrSource,
		ChurnRatePercent:   churn,
		RetentionPercent:   round2(100 - churn),
		PaymentSuccessRate: successRate,
		TrialCount:         trialing,
		GeneratedAt:        time.Now(),
	}

	if encoded, err := json.Marshal(data); err == nil {
		if err := cache.Set(CacheKeyAnalytics, string(encoded), CacheExpiration); err != nil {
			log.Printf("error caching analytics data: %v", err)
		}
	}
	return data, nil
}

// GetPaymentStats summarizes the local payment table.
func (s *Service) GetPaymentStats() (*PaymentStats, error) {
	total, err := s.repos.Payment.Count()
	if err != nil {
		return nil, err
	}
	succeeded, err := s.repos.Payment.CountByStatus(models.PaymentStatusSucceeded)
	if err != nil {
		return nil, err
	}
	failed, err := s.repos.Payment.CountByStatus(models.PaymentStatusFailed)
	if err != nil {
		return nil, err
	}
	refunded, err := s.repos.Payment.CountByStatus(models.PaymentStatusRefunded)
	if err != nil {
		return nil, err
	}
	amount, err := s.repos.Payment.SumAmountCents(models.PaymentStatusSucceeded, time.Time{})
	if err != nil {
		return nil, err
	}

	successRate := 0.0
	if succeeded+failed > 0 {
		successRate = round2(float64(succeeded) / float64(succeeded+failed) * 100)
	}
	return &PaymentStats{
		TotalCount:         total,
		SucceededCount:     succeeded,
		FailedCount:        failed,
		RefundedCount:      refunded,
		TotalAmountCents:   amount,
		SuccessRatePercent: successRate,
	}, nil
}

// RefreshIfStale refreshes the cached aggregates when the interval elapsed.
func (s *Service) RefreshIfStale(ctx context.Context) {
	s.refreshMu.Lock()
	stale := time.Since(s.lastRefresh) > s.refreshInterval
	s.refreshMu.Unlock()
	if !stale {
		return
	}

	if _, err := s.refreshDashboard(ctx); err != nil {
		log.Printf("error refreshing dashboard cache: %v", err)
		return
	}

	s.refreshMu.Lock()
	s.lastRefresh = time.Now()
	s.refreshMu.Unlock()
}

// StartPeriodicRefresh runs the cache refresh on a ticker until the context
// is canceled. The returned channel closes when the loop has stopped.
func (s *Service) StartPeriodicRefresh(ctx context.Context, interval time.Duration) <-chan struct{} {
	if interval <= 0 {
		interval = s.refreshInterval
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.RefreshIfStale(ctx)
			}
		}
	}()
	return done
}
