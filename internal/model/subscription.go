package model

import "time"

type SubscriptionStatus string

const (
	SubscriptionStatusTrial   SubscriptionStatus = "trial"
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

type SubscriptionPlan string

const (
	SubscriptionPlanFree    SubscriptionPlan = "free"
	SubscriptionPlanMonthly SubscriptionPlan = "monthly"
	SubscriptionPlanYearly  SubscriptionPlan = "yearly"
)

const (
	TrialDays       = 14
	MonthlyPlanDays = 30
	YearlyPlanDays  = 365
)

// SellerSubscription is the seller's listing-creation window. One row
// per seller; an upgrade replaces the window wholesale rather than
// extending it. The stored Status can go stale once EndDate passes,
// so callers must gate on the dates, not the flag.
type SellerSubscription struct {
	ID        uint64             `gorm:"primaryKey;autoIncrement"`
	SellerUID string             `gorm:"column:seller_uid;size:128;uniqueIndex;not null"`
	Status    SubscriptionStatus `gorm:"column:status;size:16;not null"`
	Plan      SubscriptionPlan   `gorm:"column:plan;size:16;not null"`
	StartDate time.Time          `gorm:"column:start_date;not null"`
	EndDate   time.Time          `gorm:"column:end_date;not null"`
	CreatedAt time.Time          `gorm:"autoCreateTime"`
	UpdatedAt time.Time          `gorm:"autoUpdateTime"`
}

func (SellerSubscription) TableName() string {
	return "seller_subscriptions"
}

// WindowOpen reports whether the subscription still permits listing
// creation at the given instant. The date comparison is authoritative.
func (s *SellerSubscription) WindowOpen(now time.Time) bool {
	return !now.After(s.EndDate)
}

// EffectiveStatus re-derives the status from the window instead of
// trusting the stored flag.
func (s *SellerSubscription) EffectiveStatus(now time.Time) SubscriptionStatus {
	if !s.WindowOpen(now) {
		return SubscriptionStatusExpired
	}
	return s.Status
}

// DaysRemaining is shown on the seller dashboard; never negative.
func (s *SellerSubscription) DaysRemaining(now time.Time) int {
	if !s.WindowOpen(now) {
		return 0
	}
	return int(s.EndDate.Sub(now).Hours() / 24)
}
