package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

type BookingStatus string

const (
	BookingStatusPending         BookingStatus = "pending"
	BookingStatusConfirmed       BookingStatus = "confirmed"
	BookingStatusCancelRequested BookingStatus = "cancel_requested"
	BookingStatusCancelled       BookingStatus = "cancelled"
)

// ActiveStatuses are the statuses that still hold a claim on a listing.
var ActiveStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCancelRequested,
}

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:         {BookingStatusConfirmed, BookingStatusCancelRequested, BookingStatusCancelled},
	BookingStatusConfirmed:       {BookingStatusCancelRequested, BookingStatusCancelled},
	BookingStatusCancelRequested: {BookingStatusCancelled},
	BookingStatusCancelled:       {},
}

func (s BookingStatus) IsValid() bool {
	_, ok := bookingTransitions[s]
	return ok
}

func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, t := range bookingTransitions[s] {
		if t == target {
			return true
		}
	}
	return false
}

func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// StatusesLeadingTo lists every status that may move to target.
func StatusesLeadingTo(target BookingStatus) []BookingStatus {
	var res []BookingStatus
	for _, s := range []BookingStatus{
		BookingStatusPending,
		BookingStatusConfirmed,
		BookingStatusCancelRequested,
		BookingStatusCancelled,
	} {
		if s.CanTransitionTo(target) {
			res = append(res, s)
		}
	}
	return res
}

type Booking struct {
	ID           string        `json:"id" bson:"_id"`
	ListingID    string        `json:"listing_id" bson:"listing_id"`
	UserID       *string       `json:"user_id,omitempty" bson:"user_id"`
	CustomerName string        `json:"customer_name" bson:"customer_name"`
	Phone        string        `json:"phone" bson:"phone"`
	Persons      int           `json:"persons" bson:"persons"`
	TravelDate   time.Time     `json:"travel_date" bson:"travel_date"`
	Status       BookingStatus `json:"status" bson:"status"`
	CancelReason string        `json:"cancel_reason,omitempty" bson:"cancel_reason"`
	CreatedAt    time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at" bson:"updated_at"`
}

func (b *Booking) IsGuest() bool {
	return b.UserID == nil
}

func (b *Booking) OwnedBy(userID string) bool {
	return b.UserID != nil && *b.UserID == userID
}

type CreateBookingInput struct {
	CustomerName string    `validate:"required,min=3"`
	Phone        string    `validate:"required,len=10,numeric"`
	Persons      int       `validate:"gte=1"`
	TravelDate   time.Time `validate:"required"`
}

// NewBooking validates the input and builds a pending booking for the
// listing. userID is nil for guest bookings.
func NewBooking(listingID string, userID *string, input CreateBookingInput) (*Booking, error) {
	input.CustomerName = strings.TrimSpace(input.CustomerName)
	input.Phone = strings.TrimSpace(input.Phone)
	if err := validateStruct(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Booking{
		ID:           uuid.New().String(),
		ListingID:    listingID,
		UserID:       userID,
		CustomerName: input.CustomerName,
		Phone:        input.Phone,
		Persons:      input.Persons,
		TravelDate:   input.TravelDate.UTC(),
		Status:       BookingStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// BookingDetails is a booking with its listing and owner resolved. Either
// may be nil when the referenced record no longer exists or for guests.
type BookingDetails struct {
	Booking Booking  `json:"booking"`
	Listing *Listing `json:"listing,omitempty"`
	User    *User    `json:"user,omitempty"`
}

type BookingStats struct {
	Total    int                   `json:"total"`
	ByStatus map[BookingStatus]int `json:"by_status"`
}

func (s BookingStats) Count(status BookingStatus) int {
	return s.ByStatus[status]
}
