package server

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rusample/sample-market/internal/handler"
	appmw "github.com/rusample/sample-market/internal/middleware"
	"github.com/rusample/sample-market/internal/repository"
	"github.com/rusample/sample-market/internal/service"
	"gorm.io/gorm"
)

type Server struct {
	e     *echo.Echo
	sha   string
	build string
}

func New(db *gorm.DB, rdb *redis.Client, sha, buildTime string) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) (bool, error) {
			low := strings.ToLower(origin)
			if strings.HasPrefix(low, "http://localhost:") || strings.HasPrefix(low, "http://127.0.0.1:") ||
				strings.HasPrefix(low, "https://localhost:") || strings.HasPrefix(low, "https://127.0.0.1:") {
				return true, nil
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false, nil
			}
			if u.Scheme != "http" && u.Scheme != "https" {
				return false, nil
			}
			if strings.HasSuffix(u.Hostname(), "vercel.app") {
				return true, nil
			}
			return false, nil
		},
	}))

	accountRepo := repository.NewAccountRepository(db)
	listingRepo := repository.NewListingRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)

	notifSvc := service.NewNotificationService(notifRepo, rdb)
	subSvc := service.NewSubscriptionService(subRepo)
	accountSvc := service.NewAccountService(accountRepo, subSvc)
	listingSvc := service.NewListingService(listingRepo, accountRepo, subRepo)
	orderSvc := service.NewOrderService(orderRepo, listingRepo, accountRepo, notifSvc)

	userHandler := handler.NewUserHandler(accountSvc)
	listingHandler := handler.NewListingHandler(listingSvc)
	orderHandler := handler.NewOrderHandler(orderSvc)
	notifHandler := handler.NewNotificationHandler(notifSvc)
	subHandler := handler.NewSubscriptionHandler(subSvc)

	authMw, err := appmw.NewAuthMiddleware(context.Background())
	if err != nil {
		e.Logger.Fatalf("failed to init firebase auth: %v", err)
	}

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"ok":         "true",
			"git_sha":    sha,
			"build_time": buildTime,
		})
	})

	api := e.Group("/api")
	api.GET("/listings", listingHandler.List)
	api.GET("/listings/:id", listingHandler.Get)
	api.GET("/listings/:id/reviews", orderHandler.ListingReviews)
	api.GET("/categories", listingHandler.Categories)

	api.POST("/signup", userHandler.Signup, authMw.RequireAuth)
	api.GET("/me", userHandler.Me, authMw.RequireAuth)
	api.POST("/listings", listingHandler.Create, authMw.RequireAuth)
	api.DELETE("/listings/:id", listingHandler.Delete, authMw.RequireAuth)
	api.GET("/me/listings", listingHandler.ListMine, authMw.RequireAuth)
	api.POST("/listings/:id/orders", orderHandler.PlaceOrder, authMw.RequireAuth)
	api.GET("/me/orders", orderHandler.ListMine, authMw.RequireAuth)
	api.GET("/me/sales", orderHandler.ListSales, authMw.RequireAuth)
	api.GET("/orders/:id", orderHandler.Get, authMw.RequireAuth)
	api.POST("/orders/:id/ship", orderHandler.MarkShipped, authMw.RequireAuth)
	api.POST("/orders/:id/deliver", orderHandler.ConfirmDelivery, authMw.RequireAuth)
	api.POST("/orders/:id/review", orderHandler.SubmitReview, authMw.RequireAuth)
	api.POST("/orders/:id/cancel", orderHandler.Cancel, authMw.RequireAuth)
	api.GET("/me/subscription", subHandler.Get, authMw.RequireAuth)
	api.POST("/me/subscription/upgrade", subHandler.Upgrade, authMw.RequireAuth)
	api.GET("/notifications", notifHandler.List, authMw.RequireAuth)
	api.POST("/notifications/:id/read", notifHandler.MarkRead, authMw.RequireAuth)
	api.POST("/notifications/read-all", notifHandler.MarkAllRead, authMw.RequireAuth)

	return &Server{e: e, sha: sha, build: buildTime}
}

func (s *Server) Start(addr string) error {
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.e.Shutdown(ctx)
}
