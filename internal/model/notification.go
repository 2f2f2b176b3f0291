package model

import "time"

type NotificationKind string

const (
	NotificationKindShipment       NotificationKind = "SHIPMENT"
	NotificationKindReviewReminder NotificationKind = "REVIEW_REMINDER"
	NotificationKindSystem         NotificationKind = "SYSTEM"
)

type Notification struct {
	ID        uint64           `gorm:"primaryKey;autoIncrement"`
	UserUID   string           `gorm:"column:user_uid;size:128;index;not null"`
	Kind      NotificationKind `gorm:"column:kind;size:32;not null"`
	Title     string           `gorm:"column:title;size:255"`
	Message   string           `gorm:"column:message;type:text"`
	ListingID *uint64          `gorm:"column:listing_id;index"`
	OrderID   *uint64          `gorm:"column:order_id;index"`
	ReadAt    *time.Time       `gorm:"column:read_at"`
	CreatedAt time.Time        `gorm:"autoCreateTime"`
}

func (Notification) TableName() string {
	return "notifications"
}
