package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rusample/sample-market/internal/model"
)

type ledgerFixture struct {
	accounts  *fakeAccountRepo
	listings  *fakeListingRepo
	orders    *fakeOrderRepo
	notifs    *fakeNotificationRepo
	svc       *orderService
	listingID uint64
	clock     time.Time
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	f := &ledgerFixture{
		accounts: newFakeAccountRepo(),
		listings: newFakeListingRepo(),
		clock:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	f.orders = newFakeOrderRepo(f.listings)
	f.notifs = newFakeNotificationRepo()

	ctx := context.Background()
	_ = f.accounts.Create(ctx, &model.Account{UID: "buyer-1", Role: model.AccountRoleBuyer, DisplayName: "Alice"})
	_ = f.accounts.Create(ctx, &model.Account{UID: "buyer-2", Role: model.AccountRoleBuyer, DisplayName: "Bob"})
	_ = f.accounts.Create(ctx, &model.Account{UID: "seller-1", Role: model.AccountRoleSeller, DisplayName: "Demo Seller"})

	l := &model.Listing{
		SellerUID:    "seller-1",
		Title:        "Aloe Vera Soothing Gel",
		Description:  "Natural soothing gel for all skin types.",
		CategorySlug: "beauty",
		Stock:        10,
		Status:       model.ListingStatusActive,
	}
	_ = f.listings.Create(ctx, l)
	f.listingID = l.ID

	notifSvc := NewNotificationService(f.notifs, nil)
	f.svc = NewOrderService(f.orders, f.listings, f.accounts, notifSvc).(*orderService)
	f.svc.now = func() time.Time { return f.clock }
	return f
}

func (f *ledgerFixture) advance(d time.Duration) {
	f.clock = f.clock.Add(d)
}

func (f *ledgerFixture) mustPlace(t *testing.T, buyerUID string) *model.Order {
	t.Helper()
	o, err := f.svc.PlaceOrder(context.Background(), f.listingID, buyerUID)
	if err != nil {
		t.Fatalf("PlaceOrder: %v", err)
	}
	return o
}

func TestPlaceOrder(t *testing.T) {
	f := newLedgerFixture(t)
	t0 := f.clock

	o := f.mustPlace(t, "buyer-1")

	if o.Status != model.OrderStatusPending {
		t.Fatalf("status=%s want pending", o.Status)
	}
	if want := t0.AddDate(0, 0, 5); !o.ShippingDeadline.Equal(want) {
		t.Fatalf("shippingDeadline=%v want %v", o.ShippingDeadline, want)
	}
	if o.Ref == "" {
		t.Fatalf("order ref not assigned")
	}
	l, _ := f.listings.FindByID(context.Background(), f.listingID)
	if l.StockTaken != 1 {
		t.Fatalf("stockTaken=%d want 1", l.StockTaken)
	}
}

func TestPlaceOrderRequiresBuyerRole(t *testing.T) {
	f := newLedgerFixture(t)
	if _, err := f.svc.PlaceOrder(context.Background(), f.listingID, "seller-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err=%v want ErrForbidden", err)
	}
}

func TestPlaceOrderUnknownListing(t *testing.T) {
	f := newLedgerFixture(t)
	if _, err := f.svc.PlaceOrder(context.Background(), 9999, "buyer-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}

func TestPlaceOrderOutOfStock(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	l := &model.Listing{
		SellerUID: "seller-1", Title: "Last Unit", Description: "d", CategorySlug: "home",
		Stock: 1, Status: model.ListingStatusActive,
	}
	_ = f.listings.Create(ctx, l)

	if _, err := f.svc.PlaceOrder(ctx, l.ID, "buyer-1"); err != nil {
		t.Fatalf("first order: %v", err)
	}
	if _, err := f.svc.PlaceOrder(ctx, l.ID, "buyer-2"); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("err=%v want ErrOutOfStock", err)
	}
	got, _ := f.listings.FindByID(ctx, l.ID)
	if got.StockTaken != got.Stock {
		t.Fatalf("stockTaken=%d want %d", got.StockTaken, got.Stock)
	}
}

func TestPlaceOrderBlockedByOverdueReview(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	o := f.mustPlace(t, "buyer-1")
	if _, err := f.svc.MarkShipped(ctx, o.ID, "seller-1"); err != nil {
		t.Fatalf("MarkShipped: %v", err)
	}
	if _, err := f.svc.ConfirmDelivery(ctx, o.ID, "buyer-1"); err != nil {
		t.Fatalf("ConfirmDelivery: %v", err)
	}

	// Past the review deadline without a review: every new request for
	// this buyer is blocked, whatever the listing.
	f.advance(8 * 24 * time.Hour)
	other := &model.Listing{
		SellerUID: "seller-1", Title: "Other", Description: "d", CategorySlug: "home",
		Stock: 5, Status: model.ListingStatusActive,
	}
	_ = f.listings.Create(ctx, other)
	if _, err := f.svc.PlaceOrder(ctx, other.ID, "buyer-1"); !errors.Is(err, ErrBlockedOverdueReview) {
		t.Fatalf("err=%v want ErrBlockedOverdueReview", err)
	}
	l, _ := f.listings.FindByID(ctx, other.ID)
	if l.StockTaken != 0 {
		t.Fatalf("blocked order must not claim stock; stockTaken=%d", l.StockTaken)
	}

	// Another buyer is unaffected.
	if _, err := f.svc.PlaceOrder(ctx, other.ID, "buyer-2"); err != nil {
		t.Fatalf("other buyer blocked: %v", err)
	}
}

func TestMarkShipped(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	o := f.mustPlace(t, "buyer-1")

	f.advance(24 * time.Hour)
	shipTime := f.clock
	got, err := f.svc.MarkShipped(ctx, o.ID, "seller-1")
	if err != nil {
		t.Fatalf("MarkShipped: %v", err)
	}
	if got.Status != model.OrderStatusShipped {
		t.Fatalf("status=%s want shipped", got.Status)
	}
	if got.ShippedAt == nil || !got.ShippedAt.Equal(shipTime) {
		t.Fatalf("shippedAt=%v want %v", got.ShippedAt, shipTime)
	}

	list, _ := f.notifs.ListByUser(ctx, "buyer-1", false, 10)
	if len(list) != 1 {
		t.Fatalf("notifications=%d want 1", len(list))
	}
	n := list[0]
	if n.Kind != model.NotificationKindShipment {
		t.Fatalf("kind=%s want SHIPMENT", n.Kind)
	}
	if n.ReadAt != nil {
		t.Fatalf("notification should start unread")
	}
}

func TestMarkShippedGuards(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	o := f.mustPlace(t, "buyer-1")

	if _, err := f.svc.MarkShipped(ctx, o.ID, "buyer-1"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign uid: err=%v want ErrForbidden", err)
	}
	if _, err := f.svc.MarkShipped(ctx, o.ID, "seller-1"); err != nil {
		t.Fatalf("MarkShipped: %v", err)
	}
	// Re-shipping is a stale or duplicated request, never a silent
	// overwrite.
	if _, err := f.svc.MarkShipped(ctx, o.ID, "seller-1"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("second ship: err=%v want ErrInvalidTransition", err)
	}
}

func TestConfirmDelivery(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	o := f.mustPlace(t, "buyer-1")
	if _, err := f.svc.MarkShipped(ctx, o.ID, "seller-1"); err != nil {
		t.Fatalf("MarkShipped: %v", err)
	}

	f.advance(48 * time.Hour)
	t1 := f.clock
	got, err := f.svc.ConfirmDelivery(ctx, o.ID, "buyer-1")
	if err != nil {
		t.Fatalf("ConfirmDelivery: %v", err)
	}
	if got.Status != model.OrderStatusReviewPending {
		t.Fatalf("status=%s want review_pending", got.Status)
	}
	if got.DeliveredAt == nil || !got.DeliveredAt.Equal(t1) {
		t.Fatalf("deliveredAt=%v want %v", got.DeliveredAt, t1)
	}
	if want := t1.AddDate(0, 0, 7); got.ReviewDeadline == nil || !got.ReviewDeadline.Equal(want) {
		t.Fatalf("reviewDeadline=%v want %v", got.ReviewDeadline, want)
	}

	list, _ := f.notifs.ListByUser(ctx, "buyer-1", false, 10)
	if len(list) != 2 {
		t.Fatalf("notifications=%d want 2", len(list))
	}
	if list[0].Kind != model.NotificationKindReviewReminder {
		t.Fatalf("kind=%s want REVIEW_REMINDER", list[0].Kind)
	}
}

func TestConfirmDeliveryRequiresShipped(t *testing.T) {
	f := newLedgerFixture(t)
	o := f.mustPlace(t, "buyer-1")
	if _, err := f.svc.ConfirmDelivery(context.Background(), o.ID, "buyer-1"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err=%v want ErrInvalidTransition", err)
	}
}

func TestSubmitReview(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	o := f.mustPlace(t, "buyer-1")
	_, _ = f.svc.MarkShipped(ctx, o.ID, "seller-1")
	_, _ = f.svc.ConfirmDelivery(ctx, o.ID, "buyer-1")

	got, err := f.svc.SubmitReview(ctx, o.ID, "buyer-1", 4, "Good")
	if err != nil {
		t.Fatalf("SubmitReview: %v", err)
	}
	if got.Status != model.OrderStatusCompleted {
		t.Fatalf("status=%s want completed", got.Status)
	}
	rev, _ := f.orders.FindReviewByOrder(ctx, o.ID)
	if rev == nil || rev.Rating != 4 || rev.Content != "Good" {
		t.Fatalf("review=%+v want rating 4 content Good", rev)
	}
	if rev.AuthorName != "Alice" {
		t.Fatalf("authorName=%q want account display name", rev.AuthorName)
	}
}

func TestSubmitReviewValidation(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	o := f.mustPlace(t, "buyer-1")
	_, _ = f.svc.MarkShipped(ctx, o.ID, "seller-1")
	_, _ = f.svc.ConfirmDelivery(ctx, o.ID, "buyer-1")

	tests := []struct {
		name    string
		rating  int
		content string
	}{
		{"empty content", 4, ""},
		{"whitespace content", 4, "   "},
		{"rating too low", 0, "fine"},
		{"rating too high", 6, "fine"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := f.svc.SubmitReview(ctx, o.ID, "buyer-1", tt.rating, tt.content); !errors.Is(err, ErrValidation) {
				t.Fatalf("err=%v want ErrValidation", err)
			}
		})
	}

	// Rejected input must leave the order open for a later review.
	got, _ := f.orders.FindByID(ctx, o.ID)
	if got.Status != model.OrderStatusReviewPending {
		t.Fatalf("status=%s want review_pending", got.Status)
	}
}

func TestSubmitReviewRequiresReviewPending(t *testing.T) {
	f := newLedgerFixture(t)
	o := f.mustPlace(t, "buyer-1")
	if _, err := f.svc.SubmitReview(context.Background(), o.ID, "buyer-1", 5, "great"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err=%v want ErrInvalidTransition", err)
	}
}

func TestCancelReleasesStock(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	o := f.mustPlace(t, "buyer-1")

	got, err := f.svc.Cancel(ctx, o.ID, "buyer-1")
	if err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	if got.Status != model.OrderStatusCancelled {
		t.Fatalf("status=%s want cancelled", got.Status)
	}
	l, _ := f.listings.FindByID(ctx, f.listingID)
	if l.StockTaken != 0 {
		t.Fatalf("stockTaken=%d want 0 after cancel", l.StockTaken)
	}
}

func TestCancelAfterShipmentRejected(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	o := f.mustPlace(t, "buyer-1")
	_, _ = f.svc.MarkShipped(ctx, o.ID, "seller-1")

	if _, err := f.svc.Cancel(ctx, o.ID, "buyer-1"); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("err=%v want ErrInvalidTransition", err)
	}
	if _, err := f.svc.Cancel(ctx, o.ID, "buyer-2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign buyer: err=%v want ErrForbidden", err)
	}
}

func TestListByBuyerAttachesListingAndReview(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	o := f.mustPlace(t, "buyer-1")
	_, _ = f.svc.MarkShipped(ctx, o.ID, "seller-1")
	_, _ = f.svc.ConfirmDelivery(ctx, o.ID, "buyer-1")
	_, _ = f.svc.SubmitReview(ctx, o.ID, "buyer-1", 5, "Amazing product!")

	list, err := f.svc.ListByBuyer(ctx, "buyer-1")
	if err != nil {
		t.Fatalf("ListByBuyer: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("orders=%d want 1", len(list))
	}
	d := list[0]
	if d.Listing == nil || d.Listing.ID != f.listingID {
		t.Fatalf("listing not attached")
	}
	if d.Review == nil || d.Review.Rating != 5 {
		t.Fatalf("review not attached: %+v", d.Review)
	}
}

func TestListingReviews(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()
	o := f.mustPlace(t, "buyer-1")
	_, _ = f.svc.MarkShipped(ctx, o.ID, "seller-1")
	_, _ = f.svc.ConfirmDelivery(ctx, o.ID, "buyer-1")
	_, _ = f.svc.SubmitReview(ctx, o.ID, "buyer-1", 4, "Good quality")

	reviews, err := f.svc.ListingReviews(ctx, f.listingID)
	if err != nil {
		t.Fatalf("ListingReviews: %v", err)
	}
	if len(reviews) != 1 || reviews[0].Rating != 4 {
		t.Fatalf("reviews=%+v want one rating-4 review", reviews)
	}
	if _, err := f.svc.ListingReviews(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err=%v want ErrNotFound", err)
	}
}
