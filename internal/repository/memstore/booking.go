package memstore

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
)

type BookingRepo struct {
	mu       sync.RWMutex
	bookings map[string]*domain.Booking
}

func NewBookingRepo() *BookingRepo {
	return &BookingRepo{bookings: make(map[string]*domain.Booking)}
}

func (r *BookingRepo) Create(_ context.Context, b *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.bookings[b.ID] = cloneBooking(b)
	return nil
}

func (r *BookingRepo) GetByID(_ context.Context, id string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	return cloneBooking(b), nil
}

func (r *BookingRepo) Transition(
	_ context.Context,
	id string,
	from []domain.BookingStatus,
	to domain.BookingStatus,
	reason string,
) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.bookings[id]
	if !ok {
		return nil, domain.ErrBookingNotFound
	}
	if !slices.Contains(from, b.Status) {
		return nil, domain.ErrStatusConflict
	}

	b.Status = to
	if reason != "" {
		b.CancelReason = reason
	}
	b.UpdatedAt = time.Now().UTC()

	return cloneBooking(b), nil
}

func (r *BookingRepo) ListByUser(_ context.Context, userID string) ([]*domain.Booking, error) {
	return r.filter(func(b *domain.Booking) bool { return b.OwnedBy(userID) }), nil
}

func (r *BookingRepo) ListAll(_ context.Context) ([]*domain.Booking, error) {
	return r.filter(func(*domain.Booking) bool { return true }), nil
}

func (r *BookingRepo) ListActiveByListing(_ context.Context, listingID string) ([]*domain.Booking, error) {
	return r.filter(func(b *domain.Booking) bool {
		return b.ListingID == listingID && slices.Contains(domain.ActiveStatuses, b.Status)
	}), nil
}

func (r *BookingRepo) CountByStatus(_ context.Context, userID *string) (map[domain.BookingStatus]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.BookingStatus]int)
	for _, b := range r.bookings {
		if userID != nil && !b.OwnedBy(*userID) {
			continue
		}
		counts[b.Status]++
	}
	return counts, nil
}

// filter returns matching bookings, newest first.
func (r *BookingRepo) filter(keep func(*domain.Booking) bool) []*domain.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]*domain.Booking, 0)
	for _, b := range r.bookings {
		if keep(b) {
			res = append(res, cloneBooking(b))
		}
	}

	slices.SortFunc(res, func(a, b *domain.Booking) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return res
}

func cloneBooking(b *domain.Booking) *domain.Booking {
	c := *b
	if b.UserID != nil {
		id := *b.UserID
		c.UserID = &id
	}
	return &c
}
