package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rusample/sample-market/internal/model"
	"github.com/rusample/sample-market/internal/service"
)

type UserHandler struct {
	svc service.AccountService
}

func NewUserHandler(svc service.AccountService) *UserHandler {
	return &UserHandler{svc: svc}
}

type AccountResponse struct {
	UID         string `json:"uid"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

func toAccountResponse(a *model.Account) AccountResponse {
	return AccountResponse{
		UID:         a.UID,
		Role:        string(a.Role),
		DisplayName: a.DisplayName,
		Email:       a.Email,
		CreatedAt:   a.CreatedAt.Format(time.RFC3339),
	}
}

type SignupRequest struct {
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
}

func (h *UserHandler) Signup(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, NewErrorResponse("bad_request", "invalid json"))
	}
	a, err := h.svc.Signup(c.Request().Context(), uid, model.AccountRole(req.Role), req.DisplayName, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyRegistered):
			return c.JSON(http.StatusConflict, NewErrorResponse("already_registered", "account already exists"))
		case errors.Is(err, service.ErrValidation):
			return c.JSON(http.StatusBadRequest, NewErrorResponse("validation_error", err.Error()))
		default:
			return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to create account"))
		}
	}
	return c.JSON(http.StatusCreated, toAccountResponse(a))
}

func (h *UserHandler) Me(c echo.Context) error {
	uid, _ := c.Get("uid").(string)
	if uid == "" {
		return c.JSON(http.StatusUnauthorized, NewErrorResponse("unauthorized", "missing uid"))
	}
	a, err := h.svc.Get(c.Request().Context(), uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return c.JSON(http.StatusNotFound, NewErrorResponse("not_found", "account not found; sign up first"))
		}
		return c.JSON(http.StatusInternalServerError, NewErrorResponse("internal_error", "failed to fetch account"))
	}
	return c.JSON(http.StatusOK, toAccountResponse(a))
}
