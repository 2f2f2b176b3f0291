package repository

import (
	"context"

	"github.com/rusample/sample-market/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository interface {
	// CreateIfAbsent inserts the seller's initial subscription; a
	// second call for the same seller is a no-op.
	CreateIfAbsent(ctx context.Context, s *model.SellerSubscription) error
	FindBySeller(ctx context.Context, sellerUID string) (*model.SellerSubscription, error)
	// Replace overwrites the window wholesale (upgrade semantics).
	Replace(ctx context.Context, s *model.SellerSubscription) error
}

type subscriptionRepository struct {
	db *gorm.DB
}

func NewSubscriptionRepository(db *gorm.DB) SubscriptionRepository {
	return &subscriptionRepository{db: db}
}

func (r *subscriptionRepository) CreateIfAbsent(ctx context.Context, s *model.SellerSubscription) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "seller_uid"}},
			DoNothing: true,
		}).
		Create(s).Error
}

func (r *subscriptionRepository) FindBySeller(ctx context.Context, sellerUID string) (*model.SellerSubscription, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var s model.SellerSubscription
	if err := r.db.WithContext(ctx).First(&s, "seller_uid = ?", sellerUID).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *subscriptionRepository) Replace(ctx context.Context, s *model.SellerSubscription) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).
		Model(&model.SellerSubscription{}).
		Where("seller_uid = ?", s.SellerUID).
		Updates(map[string]interface{}{
			"status":     s.Status,
			"plan":       s.Plan,
			"start_date": s.StartDate,
			"end_date":   s.EndDate,
		}).Error
}
