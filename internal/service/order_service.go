package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rusample/sample-market/internal/model"
	"github.com/rusample/sample-market/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrForbidden            = errors.New("forbidden")
	ErrValidation           = errors.New("validation_error")
	ErrBlockedOverdueReview = errors.New("blocked_overdue_review")
	ErrOutOfStock           = errors.New("out_of_stock")
	ErrInvalidTransition    = errors.New("invalid_transition")
)

const (
	shippingDeadlineDays = 5
	reviewDeadlineDays   = 7
)

type OrderService interface {
	// PlaceOrder creates a pending order and claims one unit of
	// stock. A single overdue review anywhere in the buyer's history
	// blocks the request, whatever listing it targets.
	PlaceOrder(ctx context.Context, listingID uint64, buyerUID string) (*model.Order, error)
	MarkShipped(ctx context.Context, orderID uint64, sellerUID string) (*model.Order, error)
	ConfirmDelivery(ctx context.Context, orderID uint64, buyerUID string) (*model.Order, error)
	SubmitReview(ctx context.Context, orderID uint64, buyerUID string, rating int, content string) (*model.Order, error)
	Cancel(ctx context.Context, orderID uint64, buyerUID string) (*model.Order, error)
	Get(ctx context.Context, orderID uint64, uid string) (*OrderDetail, error)
	ListByBuyer(ctx context.Context, buyerUID string) ([]OrderDetail, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]OrderDetail, error)
	ListingReviews(ctx context.Context, listingID uint64) ([]model.Review, error)
}

type OrderDetail struct {
	Order   model.Order
	Listing *model.Listing
	Review  *model.Review
}

type orderService struct {
	orderRepo   repository.OrderRepository
	listingRepo repository.ListingRepository
	accountRepo repository.AccountRepository
	notify      NotificationService
	now         func() time.Time
}

func NewOrderService(orderRepo repository.OrderRepository, listingRepo repository.ListingRepository, accountRepo repository.AccountRepository, notify NotificationService) OrderService {
	return &orderService{
		orderRepo:   orderRepo,
		listingRepo: listingRepo,
		accountRepo: accountRepo,
		notify:      notify,
		now:         time.Now,
	}
}

func (s *orderService) PlaceOrder(ctx context.Context, listingID uint64, buyerUID string) (*model.Order, error) {
	if buyerUID == "" {
		return nil, errors.New("buyer is required")
	}
	acct, err := s.accountRepo.FindByUID(ctx, buyerUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if acct.Role != model.AccountRoleBuyer {
		return nil, ErrForbidden
	}

	l, err := s.listingRepo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if l.SellerUID == buyerUID {
		return nil, fmt.Errorf("%w: cannot request your own listing", ErrValidation)
	}

	now := s.now()
	o := &model.Order{
		Ref:              uuid.NewString(),
		ListingID:        l.ID,
		BuyerUID:         buyerUID,
		SellerUID:        l.SellerUID,
		Status:           model.OrderStatusPending,
		CreatedAt:        now,
		ShippingDeadline: now.AddDate(0, 0, shippingDeadlineDays),
	}
	if err := s.orderRepo.CreateClaimingStock(ctx, o, now); err != nil {
		switch {
		case errors.Is(err, repository.ErrOverdueReview):
			return nil, ErrBlockedOverdueReview
		case errors.Is(err, repository.ErrStockExhausted):
			return nil, ErrOutOfStock
		case errors.Is(err, gorm.ErrRecordNotFound):
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *orderService) MarkShipped(ctx context.Context, orderID uint64, sellerUID string) (*model.Order, error) {
	o, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.SellerUID != sellerUID {
		return nil, ErrForbidden
	}

	now := s.now()
	rows, err := s.orderRepo.Transition(ctx, orderID, model.OrderStatusPending, model.OrderStatusShipped,
		map[string]interface{}{"shipped_at": now})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrInvalidTransition
	}
	o.Status = model.OrderStatusShipped
	o.ShippedAt = &now

	title := "your sample"
	if l, err := s.listingRepo.FindByID(ctx, o.ListingID); err == nil {
		title = l.Title
	}
	s.notify.Notify(ctx, o.BuyerUID, model.NotificationKindShipment,
		"Order Shipped!",
		fmt.Sprintf("Your sample request for %s has been shipped.", title),
		&o.ListingID, &o.ID)
	return o, nil
}

func (s *orderService) ConfirmDelivery(ctx context.Context, orderID uint64, buyerUID string) (*model.Order, error) {
	o, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerUID != buyerUID {
		return nil, ErrForbidden
	}

	now := s.now()
	reviewDeadline := now.AddDate(0, 0, reviewDeadlineDays)
	rows, err := s.orderRepo.Transition(ctx, orderID, model.OrderStatusShipped, model.OrderStatusReviewPending,
		map[string]interface{}{"delivered_at": now, "review_deadline": reviewDeadline})
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, ErrInvalidTransition
	}
	o.Status = model.OrderStatusReviewPending
	o.DeliveredAt = &now
	o.ReviewDeadline = &reviewDeadline

	s.notify.Notify(ctx, o.BuyerUID, model.NotificationKindReviewReminder,
		"Delivery Confirmed",
		"You have 7 days to complete your review. Overdue reviews will block new sample requests.",
		&o.ListingID, &o.ID)
	return o, nil
}

func (s *orderService) SubmitReview(ctx context.Context, orderID uint64, buyerUID string, rating int, content string) (*model.Order, error) {
	o, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerUID != buyerUID {
		return nil, ErrForbidden
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: review content is required", ErrValidation)
	}
	if rating < 1 || rating > 5 {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrValidation)
	}

	author := "Shopper"
	if acct, err := s.accountRepo.FindByUID(ctx, buyerUID); err == nil {
		author = acct.DisplayName
	}
	rev := &model.Review{
		OrderID:     orderID,
		AuthorName:  author,
		Rating:      rating,
		Content:     content,
		SubmittedAt: s.now(),
	}
	if err := s.orderRepo.CompleteWithReview(ctx, orderID, rev); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	o.Status = model.OrderStatusCompleted
	return o, nil
}

func (s *orderService) Cancel(ctx context.Context, orderID uint64, buyerUID string) (*model.Order, error) {
	o, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerUID != buyerUID {
		return nil, ErrForbidden
	}
	if err := s.orderRepo.CancelReleasingStock(ctx, orderID, o.ListingID); err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}
	o.Status = model.OrderStatusCancelled
	return o, nil
}

func (s *orderService) Get(ctx context.Context, orderID uint64, uid string) (*OrderDetail, error) {
	o, err := s.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if uid != "" && uid != o.BuyerUID && uid != o.SellerUID {
		return nil, ErrForbidden
	}
	return s.detail(ctx, *o), nil
}

func (s *orderService) ListByBuyer(ctx context.Context, buyerUID string) ([]OrderDetail, error) {
	if buyerUID == "" {
		return nil, errors.New("buyer is required")
	}
	orders, err := s.orderRepo.ListByBuyer(ctx, buyerUID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, orders), nil
}

func (s *orderService) ListBySeller(ctx context.Context, sellerUID string) ([]OrderDetail, error) {
	if sellerUID == "" {
		return nil, errors.New("seller is required")
	}
	orders, err := s.orderRepo.ListBySeller(ctx, sellerUID)
	if err != nil {
		return nil, err
	}
	return s.details(ctx, orders), nil
}

func (s *orderService) ListingReviews(ctx context.Context, listingID uint64) ([]model.Review, error) {
	if _, err := s.listingRepo.FindByID(ctx, listingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return s.orderRepo.ListReviewsByListing(ctx, listingID)
}

func (s *orderService) findOrder(ctx context.Context, orderID uint64) (*model.Order, error) {
	o, err := s.orderRepo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return o, nil
}

func (s *orderService) detail(ctx context.Context, o model.Order) *OrderDetail {
	d := &OrderDetail{Order: o}
	if l, err := s.listingRepo.FindByID(ctx, o.ListingID); err == nil {
		d.Listing = l
	}
	if o.Status == model.OrderStatusCompleted {
		if rev, err := s.orderRepo.FindReviewByOrder(ctx, o.ID); err == nil {
			d.Review = rev
		}
	}
	return d
}

func (s *orderService) details(ctx context.Context, orders []model.Order) []OrderDetail {
	out := make([]OrderDetail, 0, len(orders))
	for _, o := range orders {
		out = append(out, *s.detail(ctx, o))
	}
	return out
}
