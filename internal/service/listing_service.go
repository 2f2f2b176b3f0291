package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rusample/sample-market/internal/model"
	"github.com/rusample/sample-market/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrSubscriptionExpired = errors.New("subscription_expired")
	ErrListingInUse        = errors.New("listing_in_use")
)

type CreateListingInput struct {
	Title        string
	Description  string
	CategorySlug string
	ImageURL     *string
	OzonURL      string
	WBURL        string
	RequirePhoto bool
	RequireVideo bool
	Stock        uint
}

type ListingService interface {
	Create(ctx context.Context, sellerUID string, in CreateListingInput) (*model.Listing, error)
	Get(ctx context.Context, id uint64) (*model.Listing, error)
	List(ctx context.Context, limit, offset int, categorySlug string) ([]model.Listing, int64, error)
	ListBySeller(ctx context.Context, sellerUID string) ([]model.Listing, error)
	Delete(ctx context.Context, id uint64, sellerUID string) error
	Categories(ctx context.Context) ([]model.Category, error)
}

type listingService struct {
	repo        repository.ListingRepository
	accountRepo repository.AccountRepository
	subRepo     repository.SubscriptionRepository
	now         func() time.Time
}

func NewListingService(repo repository.ListingRepository, accountRepo repository.AccountRepository, subRepo repository.SubscriptionRepository) ListingService {
	return &listingService{repo: repo, accountRepo: accountRepo, subRepo: subRepo, now: time.Now}
}

func (s *listingService) Create(ctx context.Context, sellerUID string, in CreateListingInput) (*model.Listing, error) {
	acct, err := s.accountRepo.FindByUID(ctx, sellerUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}
	if acct.Role != model.AccountRoleSeller {
		return nil, ErrForbidden
	}

	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	categorySlug := strings.TrimSpace(in.CategorySlug)
	if title == "" || len(title) > 120 {
		return nil, fmt.Errorf("%w: invalid title", ErrValidation)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrValidation)
	}
	if categorySlug == "" {
		return nil, fmt.Errorf("%w: category is required", ErrValidation)
	}
	if in.Stock == 0 {
		return nil, fmt.Errorf("%w: stock must be at least 1", ErrValidation)
	}
	if in.ImageURL != nil && strings.HasPrefix(strings.TrimSpace(*in.ImageURL), "data:") {
		return nil, fmt.Errorf("%w: imageUrl must be a URL, not data URI", ErrValidation)
	}

	// The date comparison is the gate; the stored status flag is not
	// consulted. A seller without a subscription row never had a
	// trial opened and is treated as expired.
	sub, err := s.subRepo.FindBySeller(ctx, sellerUID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubscriptionExpired
		}
		return nil, err
	}
	if !sub.WindowOpen(s.now()) {
		return nil, ErrSubscriptionExpired
	}

	l := &model.Listing{
		SellerUID:    sellerUID,
		Title:        title,
		Description:  description,
		CategorySlug: categorySlug,
		ImageURL:     in.ImageURL,
		OzonURL:      strings.TrimSpace(in.OzonURL),
		WBURL:        strings.TrimSpace(in.WBURL),
		RequirePhoto: in.RequirePhoto,
		RequireVideo: in.RequireVideo,
		Stock:        in.Stock,
		StockTaken:   0,
		Status:       model.ListingStatusActive,
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *listingService) Get(ctx context.Context, id uint64) (*model.Listing, error) {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (s *listingService) List(ctx context.Context, limit, offset int, categorySlug string) ([]model.Listing, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, limit, offset, strings.TrimSpace(categorySlug))
}

func (s *listingService) ListBySeller(ctx context.Context, sellerUID string) ([]model.Listing, error) {
	if sellerUID == "" {
		return nil, errors.New("seller is required")
	}
	return s.repo.ListBySeller(ctx, sellerUID)
}

func (s *listingService) Delete(ctx context.Context, id uint64, sellerUID string) error {
	l, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if l.SellerUID != sellerUID {
		return ErrForbidden
	}
	if err := s.repo.DeleteIfUnreferenced(ctx, id); err != nil {
		switch {
		case errors.Is(err, repository.ErrListingInUse):
			return ErrListingInUse
		case errors.Is(err, gorm.ErrRecordNotFound):
			return ErrNotFound
		}
		return err
	}
	return nil
}

func (s *listingService) Categories(ctx context.Context) ([]model.Category, error) {
	return s.repo.ListCategories(ctx)
}
