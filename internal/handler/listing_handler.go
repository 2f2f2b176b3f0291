package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rusample/sample-market/internal/model"
	"github.com/rusample/sample-market/internal/service"
)

type ListingHandler struct {
	svc service.ListingService
}

func NewListingHandler(svc service.ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

type ListingResponse struct {
	ID           uint64  `json:"id"`
	SellerUID    string  `json:"sellerUid"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	CategorySlug string  `json:"categorySlug"`
	ImageURL     *string `json:"imageUrl,omitempty"`
	OzonURL      string  `json:"ozonUrl,omitempty"`
	WBURL        string  `json:"wbUrl,omitempty"`
	RequirePhoto bool    `json:"requirePhoto"`
	RequireVideo bool    `json:"requireVideo"`
	Stock        uint    `json:"stock"`
	StockTaken   uint    `json:"stockTaken"`
	StockLeft    uint    `json:"stockLeft"`
	Status       string  `json:"status"`
	CreatedAt    string  `json:"createdAt"`
	UpdatedAt    string  `json:"updatedAt"`
}

type ListingListResponse struct {
	Listings []ListingResponse `json:"listings"`
	Total    int64             `json:"total"`
}

type CreateListingRequest struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	CategorySlug string  `json:"categorySlug"`
	ImageURL     *string `json:"imageUrl"`
	OzonURL      string  `json:"ozonUrl"`
	WBURL        string  `json:"wbUrl"`
	RequirePhoto bool    `json:"requirePhoto"`
	RequireVideo bool    `json:"requireVideo"`
	Stock        uint    `json:"stock"`
}

func toListingResponse(l *model.Listing) ListingResponse {
	return ListingResponse{
		ID:           l.ID,
		SellerUID:    l.SellerUID,
		Title:        l.Title,
		Description:  l.Description,
		CategorySlug: l.CategorySlug,
		ImageURL:     l.ImageURL,
		OzonURL:      l.OzonURL,
		WBURL:        l.WBURL,
		RequirePhoto: l.RequirePhoto,
		RequireVideo: l.RequireVideo,
		Stock:        l.Stock,
		StockTaken:   l.StockTaken,
		StockLeft:    l.StockLeft(),
		Status:       string(l.Status),
		CreatedAt:    l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    l.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *ListingHandler) Create(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req CreateListingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	l, err := h.svc.Create(c.Request().Context(), uid, service.CreateListingInput{
		Title:        req.Title,
		Description:  req.Description,
		CategorySlug: req.CategorySlug,
		ImageURL:     req.ImageURL,
		OzonURL:      req.OzonURL,
		WBURL:        req.WBURL,
		RequirePhoto: req.RequirePhoto,
		RequireVideo: req.RequireVideo,
		Stock:        req.Stock,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSubscriptionExpired):
			return c.JSON(http.StatusPaymentRequired, NewErrorResponse("subscription_expired", "subscription expired; renew to create listings"))
		case errors.Is(err, service.ErrForbidden):
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "seller account required"))
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("validation_error", err.Error()))
		default:
			return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", err.Error()))
		}
	}
	return c.JSON(http.StatusCreated, toListingResponse(l))
}

func (h *ListingHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	l, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "listing not found"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch listing"))
	}
	return c.JSON(http.StatusOK, toListingResponse(l))
}

func (h *ListingHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	listings, total, err := h.svc.List(c.Request().Context(), limit, offset, c.QueryParam("category"))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch listings"))
	}
	resp := ListingListResponse{
		Listings: make([]ListingResponse, 0, len(listings)),
		Total:    total,
	}
	for i := range listings {
		resp.Listings = append(resp.Listings, toListingResponse(&listings[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) ListMine(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	listings, err := h.svc.ListBySeller(c.Request().Context(), uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch listings"))
	}
	resp := make([]ListingResponse, 0, len(listings))
	for i := range listings {
		resp = append(resp, toListingResponse(&listings[i]))
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) Delete(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid id"))
	}
	if err := h.svc.Delete(c.Request().Context(), id, uid); err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "listing not found"))
		case errors.Is(err, service.ErrForbidden):
			return c.JSON(http.StatusForbidden, NewErrorResponse("forbidden", "not allowed"))
		case errors.Is(err, service.ErrListingInUse):
			return c.JSON(http.StatusConflict, NewErrorResponse("listing_in_use", "listing has orders and cannot be deleted"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to delete listing"))
		}
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

type CategoryResponse struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

func (h *ListingHandler) Categories(c echo.Context) error {
	cats, err := h.svc.Categories(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch categories"))
	}
	resp := make([]CategoryResponse, 0, len(cats))
	for _, cat := range cats {
		resp = append(resp, CategoryResponse{Slug: cat.Slug, Name: cat.Name})
	}
	return c.JSON(http.StatusOK, resp)
}
