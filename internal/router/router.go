package router

import (
	"github.com/Saloni021-kashyap/Tripkart/internal/middleware"
	"github.com/wb-go/wbf/ginext"
)

type Handler interface {
	Health(c *ginext.Context)

	Register(c *ginext.Context)
	RegisterAdmin(c *ginext.Context)
	Login(c *ginext.Context)
	Me(c *ginext.Context)

	ListListings(c *ginext.Context)
	GetListing(c *ginext.Context)
	CreateListing(c *ginext.Context)
	UpdateListing(c *ginext.Context)
	DeleteListing(c *ginext.Context)

	CreateBooking(c *ginext.Context)
	MyBookings(c *ginext.Context)
	RequestCancel(c *ginext.Context)
	ListBookings(c *ginext.Context)
	ConfirmBooking(c *ginext.Context)
	CancelBooking(c *ginext.Context)

	AdminDashboard(c *ginext.Context)
	UserDashboard(c *ginext.Context)
}

func InitRouter(mode string, h Handler, tokens middleware.TokenParser, mw ...ginext.HandlerFunc) *ginext.Engine {
	router := ginext.New(mode)
	router.Use(mw...)

	router.GET("/health", h.Health)

	api := router.Group("/api")
	api.Use(middleware.Authenticate(tokens))

	user := middleware.RequireUser()
	admin := middleware.RequireAdmin()

	// Auth
	api.POST("/auth/register", h.Register)
	api.POST("/auth/admin/register", h.RegisterAdmin)
	api.POST("/auth/login", h.Login)
	api.GET("/auth/me", user, h.Me)

	// Listings
	api.GET("/listings", h.ListListings)
	api.GET("/listings/:id", h.GetListing)
	api.POST("/listings", admin, h.CreateListing)
	api.PUT("/listings/:id", admin, h.UpdateListing)
	api.DELETE("/listings/:id", admin, h.DeleteListing)

	// Bookings
	api.POST("/listings/:id/bookings", h.CreateBooking)
	api.GET("/my-bookings", user, h.MyBookings)
	api.POST("/bookings/:id/cancel-request", user, h.RequestCancel)
	api.GET("/bookings", admin, h.ListBookings)
	api.PUT("/bookings/:id/confirm", admin, h.ConfirmBooking)
	api.PUT("/bookings/:id/cancel", admin, h.CancelBooking)

	// Dashboards
	api.GET("/admin/dashboard", admin, h.AdminDashboard)
	api.GET("/user/dashboard", user, h.UserDashboard)

	return router
}
