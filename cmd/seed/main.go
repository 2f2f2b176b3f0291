package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rusample/sample-market/internal/config"
	"github.com/rusample/sample-market/internal/db"
	"github.com/rusample/sample-market/internal/model"
	"gorm.io/gorm"
)

const demoSellerUID = "demo_seller"

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := gdb.AutoMigrate(
		&model.Account{},
		&model.Category{},
		&model.Listing{},
		&model.Order{},
		&model.Review{},
		&model.Notification{},
		&model.SellerSubscription{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	canSeed, err := shouldSeed(ctx, gdb)
	if err != nil {
		return err
	}
	if !canSeed {
		log.Printf("listings already exist; skipping seed (set FORCE_SEED=true to override)")
		return nil
	}

	return gdb.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now()

		seller := model.Account{
			UID:         demoSellerUID,
			Role:        model.AccountRoleSeller,
			DisplayName: "Demo Seller",
		}
		if err := tx.Where("uid = ?", seller.UID).FirstOrCreate(&seller).Error; err != nil {
			return fmt.Errorf("seed seller: %w", err)
		}
		sub := model.SellerSubscription{
			SellerUID: demoSellerUID,
			Status:    model.SubscriptionStatusTrial,
			Plan:      model.SubscriptionPlanFree,
			StartDate: now,
			EndDate:   now.AddDate(0, 0, model.TrialDays),
		}
		if err := tx.Where("seller_uid = ?", sub.SellerUID).FirstOrCreate(&sub).Error; err != nil {
			return fmt.Errorf("seed subscription: %w", err)
		}

		for _, c := range buildCategories() {
			if err := tx.Where("slug = ?", c.Slug).FirstOrCreate(&c).Error; err != nil {
				return fmt.Errorf("seed category %q: %w", c.Slug, err)
			}
		}

		listings := buildListings()
		for i := range listings {
			if err := tx.Create(&listings[i]).Error; err != nil {
				return fmt.Errorf("seed listing %q: %w", listings[i].Title, err)
			}
		}
		log.Printf("seeded %d listings", len(listings))
		return nil
	})
}

func buildCategories() []model.Category {
	names := map[string]string{
		"beauty":      "Beauty & Care",
		"electronics": "Electronics",
		"home":        "Home & Living",
		"fashion":     "Fashion",
		"sports":      "Sports & Outdoor",
		"kids":        "Baby & Kids",
		"pets":        "Pets",
		"food":        "Food & Drink",
	}
	cats := make([]model.Category, 0, len(names))
	for slug, name := range names {
		cats = append(cats, model.Category{Slug: slug, Name: name})
	}
	return cats
}

func buildListings() []model.Listing {
	type seed struct {
		Title        string
		Description  string
		CategorySlug string
		Stock        uint
		RequirePhoto bool
		RequireVideo bool
	}
	seeds := []seed{
		{Title: "Aloe Vera Soothing Gel", Description: "Natural soothing gel for all skin types.", CategorySlug: "beauty", Stock: 50, RequirePhoto: true},
		{Title: "Wireless Earbuds Pro", Description: "High fidelity audio with noise cancellation.", CategorySlug: "electronics", Stock: 20, RequirePhoto: true, RequireVideo: true},
		{Title: "Ceramic Frying Pan 24cm", Description: "Non-stick ceramic coating, oven safe.", CategorySlug: "home", Stock: 30},
		{Title: "Organic Cotton T-Shirt", Description: "Relaxed fit tee made from certified cotton.", CategorySlug: "fashion", Stock: 40, RequirePhoto: true},
		{Title: "Stainless Travel Bottle", Description: "Keeps drinks cold for 24 hours.", CategorySlug: "sports", Stock: 25},
	}
	listings := make([]model.Listing, 0, len(seeds))
	for i, sd := range seeds {
		img := picsumURL(sd.CategorySlug, i+1)
		listings = append(listings, model.Listing{
			SellerUID:    demoSellerUID,
			Title:        sd.Title,
			Description:  sd.Description,
			CategorySlug: sd.CategorySlug,
			ImageURL:     &img,
			RequirePhoto: sd.RequirePhoto,
			RequireVideo: sd.RequireVideo,
			Stock:        sd.Stock,
			StockTaken:   0,
			Status:       model.ListingStatusActive,
		})
	}
	return listings
}

func shouldSeed(ctx context.Context, gdb *gorm.DB) (bool, error) {
	var cnt int64
	if err := gdb.WithContext(ctx).Model(&model.Listing{}).Count(&cnt).Error; err != nil {
		return false, fmt.Errorf("count listings: %w", err)
	}
	if cnt == 0 {
		return true, nil
	}
	return strings.EqualFold(os.Getenv("FORCE_SEED"), "true"), nil
}

func picsumURL(slug string, idx int) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s-%d/600/600", slug, idx)
}
