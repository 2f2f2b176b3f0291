package model

import "time"

type ListingStatus string

const (
	ListingStatusActive ListingStatus = "active"
	ListingStatusDraft  ListingStatus = "draft"
	ListingStatusPaused ListingStatus = "paused"
)

// Listing is a seller's product entry eligible for sample requests.
// StockTaken counts claimed units; 0 <= StockTaken <= Stock is
// enforced by the guarded claim update in the order repository.
type Listing struct {
	ID           uint64        `gorm:"primaryKey;autoIncrement"`
	SellerUID    string        `gorm:"column:seller_uid;size:128;index;not null"`
	Title        string        `gorm:"size:120;not null"`
	Description  string        `gorm:"type:text;not null"`
	CategorySlug string        `gorm:"column:category_slug;size:64;index;not null"`
	ImageURL     *string       `gorm:"column:image_url;size:512"`
	OzonURL      string        `gorm:"column:ozon_url;size:512"`
	WBURL        string        `gorm:"column:wb_url;size:512"`
	RequirePhoto bool          `gorm:"column:require_photo;not null;default:false"`
	RequireVideo bool          `gorm:"column:require_video;not null;default:false"`
	Stock        uint          `gorm:"column:stock;not null"`
	StockTaken   uint          `gorm:"column:stock_taken;not null;default:0"`
	Status       ListingStatus `gorm:"column:status;size:16;not null"`
	CreatedAt    time.Time     `gorm:"autoCreateTime"`
	UpdatedAt    time.Time     `gorm:"autoUpdateTime"`
}

func (Listing) TableName() string {
	return "listings"
}

func (l *Listing) StockLeft() uint {
	if l.StockTaken >= l.Stock {
		return 0
	}
	return l.Stock - l.StockTaken
}
