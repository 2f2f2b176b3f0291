package model

import "time"

type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "pending"
	OrderStatusShipped       OrderStatus = "shipped"
	OrderStatusReviewPending OrderStatus = "review_pending"
	OrderStatusCompleted     OrderStatus = "completed"
	OrderStatusCancelled     OrderStatus = "cancelled"
)

// orderFlow is the only legal forward path. Cancellation is a side
// exit from pending; completed and cancelled are terminal.
var orderFlow = map[OrderStatus]map[OrderStatus]bool{
	OrderStatusPending:       {OrderStatusShipped: true, OrderStatusCancelled: true},
	OrderStatusShipped:       {OrderStatusReviewPending: true},
	OrderStatusReviewPending: {OrderStatusCompleted: true},
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	return orderFlow[s][next]
}

// Order is a buyer's sample request against a listing. SellerUID is
// denormalized from the listing so dashboards can query without a
// join. Deadlines are written exactly once, at the transition that
// produces them.
type Order struct {
	ID               uint64      `gorm:"primaryKey;autoIncrement"`
	Ref              string      `gorm:"column:ref;size:36;uniqueIndex;not null"`
	ListingID        uint64      `gorm:"column:listing_id;index;not null"`
	BuyerUID         string      `gorm:"column:buyer_uid;size:128;index;not null"`
	SellerUID        string      `gorm:"column:seller_uid;size:128;index;not null"`
	Status           OrderStatus `gorm:"column:status;size:32;index;not null"`
	ShippingDeadline time.Time   `gorm:"column:shipping_deadline;not null"`
	ShippedAt        *time.Time  `gorm:"column:shipped_at"`
	DeliveredAt      *time.Time  `gorm:"column:delivered_at"`
	ReviewDeadline   *time.Time  `gorm:"column:review_deadline;index"`
	CreatedAt        time.Time   `gorm:"autoCreateTime"`
	UpdatedAt        time.Time   `gorm:"autoUpdateTime"`
}

func (Order) TableName() string {
	return "orders"
}

// ReviewOverdue reports whether the order is sitting in
// review_pending past its review deadline. One overdue order blocks
// all new sample requests for the buyer.
func (o *Order) ReviewOverdue(now time.Time) bool {
	return o.Status == OrderStatusReviewPending &&
		o.ReviewDeadline != nil &&
		now.After(*o.ReviewDeadline)
}
