package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/Saloni021-kashyap/Tripkart/internal/handler/dto"
	"github.com/Saloni021-kashyap/Tripkart/internal/middleware"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
)

type ListingSvc interface {
	Create(ctx context.Context, input domain.ListingInput) (*domain.Listing, error)
	Get(ctx context.Context, id string) (*domain.Listing, error)
	List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error)
	Update(ctx context.Context, id string, input domain.ListingInput) (*domain.Listing, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
}

type BookingSvc interface {
	Create(ctx context.Context, listingID string, input domain.CreateBookingInput, requester *domain.Identity) (*domain.Booking, error)
	Confirm(ctx context.Context, bookingID string) (*domain.Booking, error)
	Cancel(ctx context.Context, bookingID string) (*domain.Booking, error)
	RequestCancel(ctx context.Context, bookingID string, requester *domain.Identity, reason string) (*domain.Booking, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error)
	ListAll(ctx context.Context) ([]*domain.BookingDetails, error)
	Stats(ctx context.Context, userID *string) (*domain.BookingStats, error)
}

type UserSvc interface {
	Register(ctx context.Context, input domain.RegisterInput) (*domain.User, string, error)
	RegisterAdmin(ctx context.Context, input domain.RegisterInput, secret string) (*domain.User, string, error)
	Login(ctx context.Context, username, password string) (*domain.User, string, error)
	Get(ctx context.Context, id string) (*domain.User, error)
}

type Handler struct {
	listingService ListingSvc
	bookingService BookingSvc
	userService    UserSvc
}

func NewHandler(listingService ListingSvc, bookingService BookingSvc, userService UserSvc) *Handler {
	return &Handler{
		listingService: listingService,
		bookingService: bookingService,
		userService:    userService,
	}
}

func (h *Handler) Health(c *ginext.Context) {
	c.JSON(http.StatusOK, ginext.H{"status": "ok"})
}

// pathID reads a uuid path parameter and answers 400 when it is malformed.
func pathID(c *ginext.Context, name, what string) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		c.Set("error", "invalid "+what+" id")
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid " + what + " id"})
		return "", false
	}
	return id, true
}

func badRequest(c *ginext.Context, err error) {
	c.Set("error", err.Error())
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
}

// identity returns the caller set by the auth middleware or nil for guests.
func identity(c *ginext.Context) *domain.Identity {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return nil
	}
	return id
}

func (h *Handler) handleError(c *ginext.Context, err error) {
	c.Set("error", err.Error())

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrConcurrentUpdate),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrListingHasActiveBookings),
		errors.Is(err, domain.ErrUsernameTaken):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: err.Error()})

	case errors.Is(err, domain.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: err.Error()})

	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal server error"})
	}
}
