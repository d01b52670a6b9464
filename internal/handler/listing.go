package handler

import (
	"net/http"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/Saloni021-kashyap/Tripkart/internal/handler/dto"
	"github.com/wb-go/wbf/ginext"
)

func (h *Handler) CreateListing(c *ginext.Context) {
	var req dto.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	listing, err := h.listingService.Create(c.Request.Context(), toListingInput(req))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToListingResponse(listing))
}

func (h *Handler) GetListing(c *ginext.Context) {
	id, ok := pathID(c, "id", "listing")
	if !ok {
		return
	}

	listing, err := h.listingService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListingResponse(listing))
}

func (h *Handler) ListListings(c *ginext.Context) {
	filter := domain.ListingFilter{Search: c.Query("search")}

	listings, err := h.listingService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	resp := make([]dto.ListingResponse, 0, len(listings))
	for _, l := range listings {
		resp = append(resp, dto.ToListingResponse(l))
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) UpdateListing(c *ginext.Context) {
	id, ok := pathID(c, "id", "listing")
	if !ok {
		return
	}

	var req dto.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	listing, err := h.listingService.Update(c.Request.Context(), id, toListingInput(req))
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToListingResponse(listing))
}

func (h *Handler) DeleteListing(c *ginext.Context) {
	id, ok := pathID(c, "id", "listing")
	if !ok {
		return
	}

	if err := h.listingService.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func toListingInput(req dto.ListingRequest) domain.ListingInput {
	images := make([]domain.Image, 0, len(req.Images))
	for _, img := range req.Images {
		images = append(images, domain.Image{URL: img.URL, Filename: img.Filename})
	}

	return domain.ListingInput{
		Title:          req.Title,
		Destination:    req.Destination,
		Description:    req.Description,
		Images:         images,
		Price:          req.Price,
		StartLocation:  req.StartLocation,
		EndLocation:    req.EndLocation,
		TravelMode:     domain.TravelMode(req.TravelMode),
		Category:       domain.Category(req.Category),
		Facilities:     req.Facilities,
		TotalSeats:     req.TotalSeats,
		AvailableSeats: req.AvailableSeats,
		IsActive:       req.IsActive,
		Country:        req.Country,
	}
}
