package dto

import (
	"time"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
)

type ImageResponse struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

type ListingResponse struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Destination    string          `json:"destination"`
	Description    string          `json:"description"`
	Images         []ImageResponse `json:"images"`
	Price          float64         `json:"price"`
	StartLocation  string          `json:"start_location"`
	EndLocation    string          `json:"end_location"`
	TravelMode     string          `json:"travel_mode"`
	Category       string          `json:"category"`
	Facilities     []string        `json:"facilities"`
	TotalSeats     int             `json:"total_seats"`
	AvailableSeats int             `json:"available_seats"`
	IsActive       bool            `json:"is_active"`
	Country        string          `json:"country"`
	CreatedAt      string          `json:"created_at"`
	UpdatedAt      string          `json:"updated_at"`
}

type BookingResponse struct {
	ID           string  `json:"id"`
	ListingID    string  `json:"listing_id"`
	UserID       *string `json:"user_id,omitempty"`
	CustomerName string  `json:"customer_name"`
	Phone        string  `json:"phone"`
	Persons      int     `json:"persons"`
	TravelDate   string  `json:"travel_date"`
	Status       string  `json:"status"`
	CancelReason string  `json:"cancel_reason,omitempty"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

type BookingDetailsResponse struct {
	BookingResponse
	Listing *ListingResponse `json:"listing"`
	User    *UserResponse    `json:"user"`
}

type UserResponse struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Role           string `json:"role"`
	TelegramChatID *int64 `json:"telegram_chat_id,omitempty"`
	CreatedAt      string `json:"created_at"`
}

type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}

type StatsResponse struct {
	Total           int `json:"total"`
	Pending         int `json:"pending"`
	Confirmed       int `json:"confirmed"`
	CancelRequested int `json:"cancel_requested"`
	Cancelled       int `json:"cancelled"`
}

type AdminDashboardResponse struct {
	Listings int           `json:"listings"`
	Bookings StatsResponse `json:"bookings"`
}

type UserDashboardResponse struct {
	Bookings StatsResponse `json:"bookings"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func ToListingResponse(l *domain.Listing) ListingResponse {
	images := make([]ImageResponse, 0, len(l.Images))
	for _, img := range l.Images {
		images = append(images, ImageResponse{URL: img.URL, Filename: img.Filename})
	}

	facilities := l.Facilities
	if facilities == nil {
		facilities = []string{}
	}

	return ListingResponse{
		ID:             l.ID,
		Title:          l.Title,
		Destination:    l.Destination,
		Description:    l.Description,
		Images:         images,
		Price:          l.Price,
		StartLocation:  l.StartLocation,
		EndLocation:    l.EndLocation,
		TravelMode:     string(l.TravelMode),
		Category:       string(l.Category),
		Facilities:     facilities,
		TotalSeats:     l.TotalSeats,
		AvailableSeats: l.AvailableSeats,
		IsActive:       l.IsActive,
		Country:        l.Country,
		CreatedAt:      l.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      l.UpdatedAt.Format(time.RFC3339),
	}
}

func ToBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:           b.ID,
		ListingID:    b.ListingID,
		UserID:       b.UserID,
		CustomerName: b.CustomerName,
		Phone:        b.Phone,
		Persons:      b.Persons,
		TravelDate:   b.TravelDate.Format(time.DateOnly),
		Status:       string(b.Status),
		CancelReason: b.CancelReason,
		CreatedAt:    b.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    b.UpdatedAt.Format(time.RFC3339),
	}
}

func ToBookingDetailsResponse(d *domain.BookingDetails) BookingDetailsResponse {
	resp := BookingDetailsResponse{BookingResponse: ToBookingResponse(&d.Booking)}
	if d.Listing != nil {
		l := ToListingResponse(d.Listing)
		resp.Listing = &l
	}
	if d.User != nil {
		u := ToUserResponse(d.User)
		resp.User = &u
	}
	return resp
}

func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Email:          u.Email,
		Role:           string(u.Role),
		TelegramChatID: u.TelegramChatID,
		CreatedAt:      u.CreatedAt.Format(time.RFC3339),
	}
}

func ToStatsResponse(s *domain.BookingStats) StatsResponse {
	return StatsResponse{
		Total:           s.Total,
		Pending:         s.Count(domain.BookingStatusPending),
		Confirmed:       s.Count(domain.BookingStatusConfirmed),
		CancelRequested: s.Count(domain.BookingStatusCancelRequested),
		Cancelled:       s.Count(domain.BookingStatusCancelled),
	}
}
