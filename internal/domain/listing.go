package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type TravelMode string

const (
	TravelModeBus    TravelMode = "Bus"
	TravelModeTrain  TravelMode = "Train"
	TravelModeFlight TravelMode = "Flight"
)

type Category string

const (
	CategoryPilgrimage Category = "Pilgrimage"
	CategoryWinter     Category = "Winter"
	CategoryBeach      Category = "Beach"
	CategoryAdventure  Category = "Adventure"
	CategoryCity       Category = "City"
	CategoryFamily     Category = "Family"
)

const defaultCountry = "India"

type Image struct {
	URL      string `json:"url" bson:"url"`
	Filename string `json:"filename" bson:"filename"`
}

type Listing struct {
	ID             string     `json:"id" bson:"_id"`
	Title          string     `json:"title" bson:"title"`
	Destination    string     `json:"destination" bson:"destination"`
	Description    string     `json:"description" bson:"description"`
	Images         []Image    `json:"images" bson:"images"`
	Price          float64    `json:"price" bson:"price"`
	StartLocation  string     `json:"start_location" bson:"start_location"`
	EndLocation    string     `json:"end_location" bson:"end_location"`
	TravelMode     TravelMode `json:"travel_mode" bson:"travel_mode"`
	Category       Category   `json:"category" bson:"category"`
	Facilities     []string   `json:"facilities" bson:"facilities"`
	TotalSeats     int        `json:"total_seats" bson:"total_seats"`
	AvailableSeats int        `json:"available_seats" bson:"available_seats"`
	IsActive       bool       `json:"is_active" bson:"is_active"`
	Country        string     `json:"country" bson:"country"`
	CreatedAt      time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" bson:"updated_at"`
}

// SeatsInRange reports whether 0 <= AvailableSeats <= TotalSeats.
func (l *Listing) SeatsInRange() bool {
	return l.AvailableSeats >= 0 && l.AvailableSeats <= l.TotalSeats
}

// ClampSeats forces AvailableSeats back into [0, TotalSeats] and reports
// whether anything changed.
func (l *Listing) ClampSeats() bool {
	switch {
	case l.AvailableSeats < 0:
		l.AvailableSeats = 0
	case l.AvailableSeats > l.TotalSeats:
		l.AvailableSeats = l.TotalSeats
	default:
		return false
	}
	return true
}

type ListingInput struct {
	Title          string     `validate:"required,min=3"`
	Destination    string     `validate:"required"`
	Description    string     `validate:"required,min=10"`
	Images         []Image    `validate:"dive"`
	Price          float64    `validate:"gte=0"`
	StartLocation  string     `validate:"required"`
	EndLocation    string     `validate:"required"`
	TravelMode     TravelMode `validate:"omitempty,oneof=Bus Train Flight"`
	Category       Category   `validate:"omitempty,oneof=Pilgrimage Winter Beach Adventure City Family"`
	Facilities     []string
	TotalSeats     int  `validate:"gte=1"`
	AvailableSeats *int `validate:"omitempty,gte=0"`
	IsActive       *bool
	Country        string
}

type ListingFilter struct {
	Search string
}

// NewListing validates the input and builds a listing. Missing optional
// fields take the catalogue defaults; AvailableSeats defaults to TotalSeats.
func NewListing(input ListingInput) (*Listing, error) {
	l := &Listing{ID: uuid.New().String()}
	if err := l.apply(input, input.TotalSeats); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now
	return l, nil
}

// Apply replaces the editable fields of l with input. Without an explicit
// AvailableSeats the current value is kept, capped at the new TotalSeats.
func (l *Listing) Apply(input ListingInput) error {
	if err := l.apply(input, min(l.AvailableSeats, input.TotalSeats)); err != nil {
		return err
	}
	l.UpdatedAt = time.Now().UTC()
	return nil
}

func (l *Listing) apply(input ListingInput, defaultAvailable int) error {
	input.Title = strings.TrimSpace(input.Title)
	input.Destination = strings.TrimSpace(input.Destination)
	input.Description = strings.TrimSpace(input.Description)
	input.StartLocation = strings.TrimSpace(input.StartLocation)
	input.EndLocation = strings.TrimSpace(input.EndLocation)

	if err := validateStruct(input); err != nil {
		return err
	}

	available := max(defaultAvailable, 0)
	if input.AvailableSeats != nil {
		available = *input.AvailableSeats
	}
	if available > input.TotalSeats {
		return fmt.Errorf("%w: available_seats %d exceeds total_seats %d",
			ErrValidation, available, input.TotalSeats)
	}

	l.Title = input.Title
	l.Destination = input.Destination
	l.Description = input.Description
	l.Images = input.Images
	if l.Images == nil {
		l.Images = []Image{}
	}
	l.Price = input.Price
	l.StartLocation = input.StartLocation
	l.EndLocation = input.EndLocation
	l.TravelMode = input.TravelMode
	if l.TravelMode == "" {
		l.TravelMode = TravelModeBus
	}
	l.Category = input.Category
	if l.Category == "" {
		l.Category = CategoryPilgrimage
	}
	l.Facilities = normalizeFacilities(input.Facilities)
	l.TotalSeats = input.TotalSeats
	l.AvailableSeats = available
	l.IsActive = true
	if input.IsActive != nil {
		l.IsActive = *input.IsActive
	}
	l.Country = strings.TrimSpace(input.Country)
	if l.Country == "" {
		l.Country = defaultCountry
	}

	return nil
}

// normalizeFacilities trims entries and splits comma separated values, so
// both ["wifi", "meals"] and ["wifi, meals"] end up the same.
func normalizeFacilities(in []string) []string {
	res := make([]string, 0, len(in))
	for _, item := range in {
		for _, f := range strings.Split(item, ",") {
			if f = strings.TrimSpace(f); f != "" {
				res = append(res, f)
			}
		}
	}
	return res
}
