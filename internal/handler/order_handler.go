package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rusample/sample-market/internal/model"
	"github.com/rusample/sample-market/internal/service"
)

type OrderHandler struct {
	svc service.OrderService
}

func NewOrderHandler(svc service.OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type ReviewResponse struct {
	ID          uint64 `json:"id"`
	OrderID     uint64 `json:"orderId"`
	AuthorName  string `json:"authorName"`
	Rating      int    `json:"rating"`
	Content     string `json:"content"`
	SubmittedAt string `json:"submittedAt"`
}

func toReviewResponse(r *model.Review) ReviewResponse {
	return ReviewResponse{
		ID:          r.ID,
		OrderID:     r.OrderID,
		AuthorName:  r.AuthorName,
		Rating:      r.Rating,
		Content:     r.Content,
		SubmittedAt: r.SubmittedAt.Format(time.RFC3339),
	}
}

type OrderResponse struct {
	ID               uint64  `json:"id"`
	Ref              string  `json:"ref"`
	ListingID        uint64  `json:"listingId"`
	BuyerUID         string  `json:"buyerUid"`
	SellerUID        string  `json:"sellerUid"`
	Status           string  `json:"status"`
	ShippingDeadline string  `json:"shippingDeadline"`
	ShippedAt        *string `json:"shippedAt,omitempty"`
	DeliveredAt      *string `json:"deliveredAt,omitempty"`
	ReviewDeadline   *string `json:"reviewDeadline,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

func toOrderResponse(o *model.Order) OrderResponse {
	fmtTime := func(t *time.Time) *string {
		if t == nil {
			return nil
		}
		val := t.Format(time.RFC3339)
		return &val
	}
	return OrderResponse{
		ID:               o.ID,
		Ref:              o.Ref,
		ListingID:        o.ListingID,
		BuyerUID:         o.BuyerUID,
		SellerUID:        o.SellerUID,
		Status:           string(o.Status),
		ShippingDeadline: o.ShippingDeadline.Format(time.RFC3339),
		ShippedAt:        fmtTime(o.ShippedAt),
		DeliveredAt:      fmtTime(o.DeliveredAt),
		ReviewDeadline:   fmtTime(o.ReviewDeadline),
		CreatedAt:        o.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        o.UpdatedAt.Format(time.RFC3339),
	}
}

type OrderDetailResponse struct {
	Order   OrderResponse    `json:"order"`
	Listing *ListingResponse `json:"listing,omitempty"`
	Review  *ReviewResponse  `json:"review,omitempty"`
}

func toOrderDetailResponse(d *service.OrderDetail) OrderDetailResponse {
	resp := OrderDetailResponse{Order: toOrderResponse(&d.Order)}
	if d.Listing != nil {
		lr := toListingResponse(d.Listing)
		resp.Listing = &lr
	}
	if d.Review != nil {
		rr := toReviewResponse(d.Review)
		resp.Review = &rr
	}
	return resp
}

func orderErrorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "order not found"))
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
	case errors.Is(err, service.ErrBlockedOverdueReview):
		return c.JSON(http.StatusConflict, NewErrorResponse("blocked_overdue_review", "finish your pending review before requesting more samples"))
	case errors.Is(err, service.ErrOutOfStock):
		return c.JSON(http.StatusConflict, NewErrorResponse("out_of_stock", "no sample units left"))
	case errors.Is(err, service.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, NewErrorResponse("invalid_transition", "order is not in the required state"))
	case errors.Is(err, service.ErrValidation):
		return c.JSON(http.StatusBadRequest, NewErrorResponse("validation_error", err.Error()))
	default:
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
	}
}

func (h *OrderHandler) PlaceOrder(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing id"))
	}
	o, err := h.svc.PlaceOrder(c.Request().Context(), listingID, uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "listing not found"))
		}
		return orderErrorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, toOrderResponse(o))
}

func (h *OrderHandler) MarkShipped(c echo.Context) error {
	return h.transition(c, h.svc.MarkShipped)
}

func (h *OrderHandler) ConfirmDelivery(c echo.Context) error {
	return h.transition(c, h.svc.ConfirmDelivery)
}

func (h *OrderHandler) Cancel(c echo.Context) error {
	return h.transition(c, h.svc.Cancel)
}

func (h *OrderHandler) transition(c echo.Context, op func(ctx context.Context, orderID uint64, uid string) (*model.Order, error)) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	o, err := op(c.Request().Context(), orderID, uid)
	if err != nil {
		return orderErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

type SubmitReviewRequest struct {
	Rating  int    `json:"rating"`
	Content string `json:"content"`
}

func (h *OrderHandler) SubmitReview(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	var req SubmitReviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	o, err := h.svc.SubmitReview(c.Request().Context(), orderID, uid, req.Rating, req.Content)
	if err != nil {
		return orderErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *OrderHandler) Get(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid order id"))
	}
	d, err := h.svc.Get(c.Request().Context(), orderID, uid)
	if err != nil {
		return orderErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, toOrderDetailResponse(d))
}

func (h *OrderHandler) ListMine(c echo.Context) error {
	return h.list(c, h.svc.ListByBuyer)
}

func (h *OrderHandler) ListSales(c echo.Context) error {
	return h.list(c, h.svc.ListBySeller)
}

func (h *OrderHandler) list(c echo.Context, op func(ctx context.Context, uid string) ([]service.OrderDetail, error)) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	list, err := op(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch orders"))
	}
	resp := make([]OrderDetailResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toOrderDetailResponse(&list[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *OrderHandler) ListingReviews(c echo.Context) error {
	listingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid listing id"))
	}
	reviews, err := h.svc.ListingReviews(c.Request().Context(), listingID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "listing not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch reviews"))
	}
	resp := make([]ReviewResponse, 0, len(reviews))
	for i := range reviews {
		resp = append(resp, toReviewResponse(&reviews[i]))
	}
	return c.JSON(http.StatusOK, resp)
}
