package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rusample/sample-market/internal/model"
	"github.com/rusample/sample-market/internal/repository"
	"gorm.io/gorm"
)

type SubscriptionService interface {
	// InitializeTrial opens the 14-day free window for a new seller.
	// Calling it again for the same seller changes nothing.
	InitializeTrial(ctx context.Context, sellerUID string) (*model.SellerSubscription, error)
	Get(ctx context.Context, sellerUID string) (*model.SellerSubscription, error)
	// Upgrade replaces the window wholesale; any remainder of a still
	// open window is discarded.
	Upgrade(ctx context.Context, sellerUID string, plan model.SubscriptionPlan) (*model.SellerSubscription, error)
}

type subscriptionService struct {
	repo repository.SubscriptionRepository
	now  func() time.Time
}

func NewSubscriptionService(repo repository.SubscriptionRepository) SubscriptionService {
	return &subscriptionService{repo: repo, now: time.Now}
}

func (s *subscriptionService) InitializeTrial(ctx context.Context, sellerUID string) (*model.SellerSubscription, error) {
	now := s.now()
	sub := &model.SellerSubscription{
		SellerUID: sellerUID,
		Status:    model.SubscriptionStatusTrial,
		Plan:      model.SubscriptionPlanFree,
		StartDate: now,
		EndDate:   now.AddDate(0, 0, model.TrialDays),
	}
	if err := s.repo.CreateIfAbsent(ctx, sub); err != nil {
		return nil, err
	}
	return s.repo.FindBySeller(ctx, sellerUID)
}

func (s *subscriptionService) Get(ctx context.Context, sellerUID string) (*model.SellerSubscription, error) {
	sub, err := s.repo.FindBySeller(ctx, sellerUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sub, nil
}

func (s *subscriptionService) Upgrade(ctx context.Context, sellerUID string, plan model.SubscriptionPlan) (*model.SellerSubscription, error) {
	var days int
	switch plan {
	case model.SubscriptionPlanMonthly:
		days = model.MonthlyPlanDays
	case model.SubscriptionPlanYearly:
		days = model.YearlyPlanDays
	default:
		return nil, fmt.Errorf("%w: unknown plan %q", ErrValidation, plan)
	}

	if _, err := s.repo.FindBySeller(ctx, sellerUID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	now := s.now()
	sub := &model.SellerSubscription{
		SellerUID: sellerUID,
		Status:    model.SubscriptionStatusActive,
		Plan:      plan,
		StartDate: now,
		EndDate:   now.AddDate(0, 0, days),
	}
	if err := s.repo.Replace(ctx, sub); err != nil {
		return nil, err
	}
	return s.repo.FindBySeller(ctx, sellerUID)
}
