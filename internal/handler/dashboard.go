package handler

import (
	"net/http"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/Saloni021-kashyap/Tripkart/internal/handler/dto"
	"github.com/wb-go/wbf/ginext"
)

func (h *Handler) AdminDashboard(c *ginext.Context) {
	ctx := c.Request.Context()

	listings, err := h.listingService.Count(ctx)
	if err != nil {
		h.handleError(c, err)
		return
	}

	stats, err := h.bookingService.Stats(ctx, nil)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AdminDashboardResponse{
		Listings: listings,
		Bookings: dto.ToStatsResponse(stats),
	})
}

func (h *Handler) UserDashboard(c *ginext.Context) {
	caller := identity(c)
	if caller == nil {
		h.handleError(c, domain.ErrUnauthorized)
		return
	}

	stats, err := h.bookingService.Stats(c.Request.Context(), &caller.UserID)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.UserDashboardResponse{Bookings: dto.ToStatsResponse(stats)})
}
