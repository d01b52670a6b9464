package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/Saloni021-kashyap/Tripkart/internal/handler/dto"
	"github.com/wb-go/wbf/ginext"
)

func (h *Handler) CreateBooking(c *ginext.Context) {
	listingID, ok := pathID(c, "id", "listing")
	if !ok {
		return
	}

	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	travelDate, err := parseTravelDate(req.TravelDate)
	if err != nil {
		badRequest(c, errors.New("invalid travel_date format, expected YYYY-MM-DD or RFC3339"))
		return
	}

	input := domain.CreateBookingInput{
		CustomerName: req.CustomerName,
		Phone:        req.Phone,
		Persons:      req.Persons,
		TravelDate:   travelDate,
	}

	booking, err := h.bookingService.Create(c.Request.Context(), listingID, input, identity(c))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *Handler) MyBookings(c *ginext.Context) {
	caller := identity(c)
	if caller == nil {
		h.handleError(c, domain.ErrUnauthorized)
		return
	}

	bookings, err := h.bookingService.ListByUser(c.Request.Context(), caller.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := make([]dto.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, dto.ToBookingResponse(b))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) RequestCancel(c *ginext.Context) {
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}

	var req dto.CancelRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	booking, err := h.bookingService.RequestCancel(c.Request.Context(), bookingID, identity(c), req.Reason)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *Handler) ListBookings(c *ginext.Context) {
	bookings, err := h.bookingService.ListAll(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := make([]dto.BookingDetailsResponse, 0, len(bookings))
	for _, b := range bookings {
		resp = append(resp, dto.ToBookingDetailsResponse(b))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) ConfirmBooking(c *ginext.Context) {
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}

	booking, err := h.bookingService.Confirm(c.Request.Context(), bookingID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// CancelBooking retries once when the booking moved underneath the first
// attempt; a second conflict is reported to the caller.
func (h *Handler) CancelBooking(c *ginext.Context) {
	bookingID, ok := pathID(c, "id", "booking")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	booking, err := h.bookingService.Cancel(ctx, bookingID)
	if errors.Is(err, domain.ErrConcurrentUpdate) {
		booking, err = h.bookingService.Cancel(ctx, bookingID)
	}
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func parseTravelDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
