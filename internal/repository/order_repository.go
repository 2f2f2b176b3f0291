package repository

import (
	"context"
	"errors"
	"time"

	"github.com/rusample/sample-market/internal/model"
	"gorm.io/gorm"
)

var (
	// ErrOverdueReview aborts order creation when the buyer has any
	// order sitting past its review deadline.
	ErrOverdueReview = errors.New("buyer has overdue review")
	// ErrStockExhausted aborts order creation when the listing has no
	// unclaimed units left (or is not active).
	ErrStockExhausted = errors.New("listing stock exhausted")
	// ErrStatusConflict means a guarded update matched no row: the
	// order was not in the expected prior status.
	ErrStatusConflict = errors.New("order not in expected status")
)

type OrderRepository interface {
	// CreateClaimingStock runs the overdue-review scan, the guarded
	// stock claim and the order insert as one transaction.
	CreateClaimingStock(ctx context.Context, o *model.Order, now time.Time) error
	FindByID(ctx context.Context, id uint64) (*model.Order, error)
	// Transition is a compare-and-set status update; it reports the
	// number of rows matched by the status guard.
	Transition(ctx context.Context, id uint64, from, to model.OrderStatus, updates map[string]interface{}) (int64, error)
	// CompleteWithReview moves review_pending -> completed and inserts
	// the review in one transaction.
	CompleteWithReview(ctx context.Context, orderID uint64, rev *model.Review) error
	// CancelReleasingStock moves pending -> cancelled and returns the
	// claimed unit to the listing in one transaction.
	CancelReleasingStock(ctx context.Context, orderID, listingID uint64) error
	HasOverdueReview(ctx context.Context, buyerUID string, now time.Time) (bool, error)
	ListByBuyer(ctx context.Context, buyerUID string) ([]model.Order, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]model.Order, error)
	FindReviewByOrder(ctx context.Context, orderID uint64) (*model.Review, error)
	ListReviewsByListing(ctx context.Context, listingID uint64) ([]model.Review, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) CreateClaimingStock(ctx context.Context, o *model.Order, now time.Time) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var overdue int64
		if err := tx.Model(&model.Order{}).
			Where("buyer_uid = ? AND status = ? AND review_deadline < ?",
				o.BuyerUID, model.OrderStatusReviewPending, now).
			Count(&overdue).Error; err != nil {
			return err
		}
		if overdue > 0 {
			return ErrOverdueReview
		}

		res := tx.Model(&model.Listing{}).
			Where("id = ? AND status = ? AND stock_taken < stock", o.ListingID, model.ListingStatusActive).
			UpdateColumn("stock_taken", gorm.Expr("stock_taken + 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var l model.Listing
			if err := tx.First(&l, o.ListingID).Error; err != nil {
				return err
			}
			return ErrStockExhausted
		}

		return tx.Create(o).Error
	})
}

func (r *orderRepository) FindByID(ctx context.Context, id uint64) (*model.Order, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var o model.Order
	if err := r.db.WithContext(ctx).First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Transition(ctx context.Context, id uint64, from, to model.OrderStatus, updates map[string]interface{}) (int64, error) {
	if r.db == nil {
		return 0, ErrDBNotReady
	}
	fields := map[string]interface{}{"status": to}
	for k, v := range updates {
		fields[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&model.Order{}).
		Where("id = ? AND status = ?", id, from).
		Updates(fields)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *orderRepository) CompleteWithReview(ctx context.Context, orderID uint64, rev *model.Review) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", orderID, model.OrderStatusReviewPending).
			Update("status", model.OrderStatusCompleted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}
		return tx.Create(rev).Error
	})
}

func (r *orderRepository) CancelReleasingStock(ctx context.Context, orderID, listingID uint64) error {
	if r.db == nil {
		return ErrDBNotReady
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).
			Where("id = ? AND status = ?", orderID, model.OrderStatusPending).
			Update("status", model.OrderStatusCancelled)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStatusConflict
		}
		return tx.Model(&model.Listing{}).
			Where("id = ? AND stock_taken > 0", listingID).
			UpdateColumn("stock_taken", gorm.Expr("stock_taken - 1")).Error
	})
}

func (r *orderRepository) HasOverdueReview(ctx context.Context, buyerUID string, now time.Time) (bool, error) {
	if r.db == nil {
		return false, ErrDBNotReady
	}
	var cnt int64
	if err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("buyer_uid = ? AND status = ? AND review_deadline < ?",
			buyerUID, model.OrderStatusReviewPending, now).
		Count(&cnt).Error; err != nil {
		return false, err
	}
	return cnt > 0, nil
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerUID string) ([]model.Order, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Where("buyer_uid = ?", buyerUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) ListBySeller(ctx context.Context, sellerUID string) ([]model.Order, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Order
	if err := r.db.WithContext(ctx).
		Where("seller_uid = ?", sellerUID).
		Order("id DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *orderRepository) FindReviewByOrder(ctx context.Context, orderID uint64) (*model.Review, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var rev model.Review
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		First(&rev).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &rev, nil
}

func (r *orderRepository) ListReviewsByListing(ctx context.Context, listingID uint64) ([]model.Review, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var list []model.Review
	if err := r.db.WithContext(ctx).
		Joins("JOIN orders ON orders.id = reviews.order_id").
		Where("orders.listing_id = ?", listingID).
		Order("reviews.submitted_at DESC").
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}
