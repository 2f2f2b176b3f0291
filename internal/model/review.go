package model

import "time"

// Review is written once per order, at the review_pending->completed
// transition.
type Review struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement"`
	OrderID     uint64    `gorm:"column:order_id;uniqueIndex;not null"`
	AuthorName  string    `gorm:"column:author_name;size:120;not null"`
	Rating      int       `gorm:"column:rating;not null"`
	Content     string    `gorm:"type:text;not null"`
	SubmittedAt time.Time `gorm:"column:submitted_at;not null"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
}

func (Review) TableName() string {
	return "reviews"
}
