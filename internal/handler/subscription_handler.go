package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rusample/sample-market/internal/model"
	"github.com/rusample/sample-market/internal/service"
)

type SubscriptionHandler struct {
	svc service.SubscriptionService
	now func() time.Time
}

func NewSubscriptionHandler(svc service.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{svc: svc, now: time.Now}
}

type SubscriptionResponse struct {
	Status        string `json:"status"`
	Plan          string `json:"plan"`
	StartDate     string `json:"startDate"`
	EndDate       string `json:"endDate"`
	DaysRemaining int    `json:"daysRemaining"`
	CanList       bool   `json:"canList"`
}

func (h *SubscriptionHandler) toResponse(s *model.SellerSubscription) SubscriptionResponse {
	now := h.now()
	return SubscriptionResponse{
		Status:        string(s.EffectiveStatus(now)),
		Plan:          string(s.Plan),
		StartDate:     s.StartDate.Format(time.RFC3339),
		EndDate:       s.EndDate.Format(time.RFC3339),
		DaysRemaining: s.DaysRemaining(now),
		CanList:       s.WindowOpen(now),
	}
}

func (h *SubscriptionHandler) Get(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	sub, err := h.svc.Get(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "no subscription for this account"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch subscription"))
	}
	return c.JSON(http.StatusOK, h.toResponse(sub))
}

type UpgradeRequest struct {
	Plan string `json:"plan"`
}

func (h *SubscriptionHandler) Upgrade(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req UpgradeRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	sub, err := h.svc.Upgrade(c.Request().Context(), uid, model.SubscriptionPlan(req.Plan))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("validation_error", err.Error()))
		case errors.Is(err, service.ErrNotFound):
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "no subscription for this account"))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to upgrade"))
		}
	}
	return c.JSON(http.StatusOK, h.toResponse(sub))
}
