package service

import (
	"context"
	"sort"
	"time"

	"github.com/rusample/sample-market/internal/model"
	"github.com/rusample/sample-market/internal/repository"
	"gorm.io/gorm"
)

// In-memory repositories mirroring the store-level semantics,
// including the guarded stock claim and status compare-and-set.

type fakeAccountRepo struct {
	accounts map[string]*model.Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{accounts: map[string]*model.Account{}}
}

func (r *fakeAccountRepo) Create(_ context.Context, a *model.Account) error {
	cp := *a
	r.accounts[a.UID] = &cp
	return nil
}

func (r *fakeAccountRepo) FindByUID(_ context.Context, uid string) (*model.Account, error) {
	a, ok := r.accounts[uid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *a
	return &cp, nil
}

type fakeListingRepo struct {
	listings  map[uint64]*model.Listing
	orderRefs map[uint64]int64 // listingID -> referencing order count
	nextID    uint64
}

func newFakeListingRepo() *fakeListingRepo {
	return &fakeListingRepo{listings: map[uint64]*model.Listing{}, orderRefs: map[uint64]int64{}, nextID: 1}
}

func (r *fakeListingRepo) Create(_ context.Context, l *model.Listing) error {
	l.ID = r.nextID
	r.nextID++
	cp := *l
	r.listings[l.ID] = &cp
	return nil
}

func (r *fakeListingRepo) FindByID(_ context.Context, id uint64) (*model.Listing, error) {
	l, ok := r.listings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *l
	return &cp, nil
}

func (r *fakeListingRepo) List(_ context.Context, limit, offset int, categorySlug string) ([]model.Listing, int64, error) {
	var out []model.Listing
	for _, l := range r.listings {
		if l.Status != model.ListingStatusActive {
			continue
		}
		if categorySlug != "" && l.CategorySlug != categorySlug {
			continue
		}
		out = append(out, *l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, int64(len(out)), nil
}

func (r *fakeListingRepo) ListBySeller(_ context.Context, sellerUID string) ([]model.Listing, error) {
	var out []model.Listing
	for _, l := range r.listings {
		if l.SellerUID == sellerUID {
			out = append(out, *l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeListingRepo) DeleteIfUnreferenced(_ context.Context, id uint64) error {
	if _, ok := r.listings[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	if r.orderRefs[id] > 0 {
		return repository.ErrListingInUse
	}
	delete(r.listings, id)
	return nil
}

func (r *fakeListingRepo) ListCategories(_ context.Context) ([]model.Category, error) {
	return nil, nil
}

type fakeOrderRepo struct {
	listings *fakeListingRepo
	orders   map[uint64]*model.Order
	reviews  map[uint64]*model.Review // keyed by order id
	nextID   uint64
}

func newFakeOrderRepo(listings *fakeListingRepo) *fakeOrderRepo {
	return &fakeOrderRepo{
		listings: listings,
		orders:   map[uint64]*model.Order{},
		reviews:  map[uint64]*model.Review{},
		nextID:   1,
	}
}

func (r *fakeOrderRepo) CreateClaimingStock(_ context.Context, o *model.Order, now time.Time) error {
	for _, existing := range r.orders {
		if existing.BuyerUID == o.BuyerUID && existing.ReviewOverdue(now) {
			return repository.ErrOverdueReview
		}
	}
	l, ok := r.listings.listings[o.ListingID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if l.Status != model.ListingStatusActive || l.StockTaken >= l.Stock {
		return repository.ErrStockExhausted
	}
	l.StockTaken++
	o.ID = r.nextID
	r.nextID++
	cp := *o
	r.orders[o.ID] = &cp
	r.listings.orderRefs[o.ListingID]++
	return nil
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uint64) (*model.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *o
	return &cp, nil
}

func (r *fakeOrderRepo) Transition(_ context.Context, id uint64, from, to model.OrderStatus, updates map[string]interface{}) (int64, error) {
	o, ok := r.orders[id]
	if !ok || o.Status != from {
		return 0, nil
	}
	o.Status = to
	for k, v := range updates {
		switch k {
		case "shipped_at":
			t := v.(time.Time)
			o.ShippedAt = &t
		case "delivered_at":
			t := v.(time.Time)
			o.DeliveredAt = &t
		case "review_deadline":
			t := v.(time.Time)
			o.ReviewDeadline = &t
		}
	}
	return 1, nil
}

func (r *fakeOrderRepo) CompleteWithReview(_ context.Context, orderID uint64, rev *model.Review) error {
	o, ok := r.orders[orderID]
	if !ok || o.Status != model.OrderStatusReviewPending {
		return repository.ErrStatusConflict
	}
	o.Status = model.OrderStatusCompleted
	rev.ID = uint64(len(r.reviews) + 1)
	cp := *rev
	r.reviews[orderID] = &cp
	return nil
}

func (r *fakeOrderRepo) CancelReleasingStock(_ context.Context, orderID, listingID uint64) error {
	o, ok := r.orders[orderID]
	if !ok || o.Status != model.OrderStatusPending {
		return repository.ErrStatusConflict
	}
	o.Status = model.OrderStatusCancelled
	if l, ok := r.listings.listings[listingID]; ok && l.StockTaken > 0 {
		l.StockTaken--
	}
	return nil
}

func (r *fakeOrderRepo) HasOverdueReview(_ context.Context, buyerUID string, now time.Time) (bool, error) {
	for _, o := range r.orders {
		if o.BuyerUID == buyerUID && o.ReviewOverdue(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeOrderRepo) ListByBuyer(_ context.Context, buyerUID string) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.orders {
		if o.BuyerUID == buyerUID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeOrderRepo) ListBySeller(_ context.Context, sellerUID string) ([]model.Order, error) {
	var out []model.Order
	for _, o := range r.orders {
		if o.SellerUID == sellerUID {
			out = append(out, *o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeOrderRepo) FindReviewByOrder(_ context.Context, orderID uint64) (*model.Review, error) {
	rev, ok := r.reviews[orderID]
	if !ok {
		return nil, nil
	}
	cp := *rev
	return &cp, nil
}

func (r *fakeOrderRepo) ListReviewsByListing(_ context.Context, listingID uint64) ([]model.Review, error) {
	var out []model.Review
	for orderID, rev := range r.reviews {
		if o, ok := r.orders[orderID]; ok && o.ListingID == listingID {
			out = append(out, *rev)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

type fakeNotificationRepo struct {
	notifications []*model.Notification
	nextID        uint64
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{nextID: 1}
}

func (r *fakeNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	n.ID = r.nextID
	r.nextID++
	cp := *n
	r.notifications = append(r.notifications, &cp)
	return nil
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userUID string, unreadOnly bool, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	var out []model.Notification
	for i := len(r.notifications) - 1; i >= 0 && len(out) < limit; i-- {
		n := r.notifications[i]
		if n.UserUID != userUID {
			continue
		}
		if unreadOnly && n.ReadAt != nil {
			continue
		}
		out = append(out, *n)
	}
	return out, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id uint64, userUID string) (int64, error) {
	for _, n := range r.notifications {
		if n.ID == id && n.UserUID == userUID && n.ReadAt == nil {
			now := time.Now()
			n.ReadAt = &now
			return 1, nil
		}
	}
	return 0, nil
}

func (r *fakeNotificationRepo) Exists(_ context.Context, id uint64, userUID string) (bool, error) {
	for _, n := range r.notifications {
		if n.ID == id && n.UserUID == userUID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeNotificationRepo) MarkAllRead(_ context.Context, userUID string) error {
	now := time.Now()
	for _, n := range r.notifications {
		if n.UserUID == userUID && n.ReadAt == nil {
			n.ReadAt = &now
		}
	}
	return nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userUID string) (int64, error) {
	var cnt int64
	for _, n := range r.notifications {
		if n.UserUID == userUID && n.ReadAt == nil {
			cnt++
		}
	}
	return cnt, nil
}

type fakeSubscriptionRepo struct {
	subs map[string]*model.SellerSubscription
}

func newFakeSubscriptionRepo() *fakeSubscriptionRepo {
	return &fakeSubscriptionRepo{subs: map[string]*model.SellerSubscription{}}
}

func (r *fakeSubscriptionRepo) CreateIfAbsent(_ context.Context, s *model.SellerSubscription) error {
	if _, ok := r.subs[s.SellerUID]; ok {
		return nil
	}
	s.ID = uint64(len(r.subs) + 1)
	cp := *s
	r.subs[s.SellerUID] = &cp
	return nil
}

func (r *fakeSubscriptionRepo) FindBySeller(_ context.Context, sellerUID string) (*model.SellerSubscription, error) {
	s, ok := r.subs[sellerUID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeSubscriptionRepo) Replace(_ context.Context, s *model.SellerSubscription) error {
	existing, ok := r.subs[s.SellerUID]
	if !ok {
		return nil
	}
	existing.Status = s.Status
	existing.Plan = s.Plan
	existing.StartDate = s.StartDate
	existing.EndDate = s.EndDate
	return nil
}
