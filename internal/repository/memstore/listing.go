// Package memstore keeps listings, bookings and users in process memory.
// It backs the "memory" storage driver and the service-level tests.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
)

type ListingRepo struct {
	mu       sync.RWMutex
	listings map[string]*domain.Listing
}

func NewListingRepo() *ListingRepo {
	return &ListingRepo{listings: make(map[string]*domain.Listing)}
}

func (r *ListingRepo) Create(_ context.Context, l *domain.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.listings[l.ID] = cloneListing(l)
	return nil
}

func (r *ListingRepo) GetByID(_ context.Context, id string) (*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, ok := r.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	return cloneListing(l), nil
}

func (r *ListingRepo) Update(_ context.Context, l *domain.Listing, setAvailable bool) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.listings[l.ID]
	if !ok {
		return nil, domain.ErrListingNotFound
	}

	next := cloneListing(l)
	next.CreatedAt = stored.CreatedAt
	if !setAvailable {
		next.AvailableSeats = min(stored.AvailableSeats, next.TotalSeats)
	}
	r.listings[l.ID] = next
	return cloneListing(next), nil
}

func (r *ListingRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.listings[id]; !ok {
		return domain.ErrListingNotFound
	}
	delete(r.listings, id)
	return nil
}

func (r *ListingRepo) List(_ context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	res := make([]*domain.Listing, 0, len(r.listings))
	for _, l := range r.listings {
		if search != "" && !matches(l, search) {
			continue
		}
		res = append(res, cloneListing(l))
	}

	slices.SortFunc(res, func(a, b *domain.Listing) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return res, nil
}

func (r *ListingRepo) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.listings), nil
}

func (r *ListingRepo) RestoreSeats(_ context.Context, id string, count int) (*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	l, ok := r.listings[id]
	if !ok {
		return nil, domain.ErrListingNotFound
	}
	l.AvailableSeats = min(l.TotalSeats, l.AvailableSeats+count)
	l.UpdatedAt = time.Now().UTC()

	return cloneListing(l), nil
}

func (r *ListingRepo) ClampSeats(_ context.Context) ([]*domain.Listing, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var repaired []*domain.Listing
	for _, l := range r.listings {
		if l.ClampSeats() {
			l.UpdatedAt = time.Now().UTC()
			repaired = append(repaired, cloneListing(l))
		}
	}
	return repaired, nil
}

func matches(l *domain.Listing, search string) bool {
	return strings.Contains(strings.ToLower(l.Title), search) ||
		strings.Contains(strings.ToLower(l.Destination), search) ||
		strings.Contains(strings.ToLower(string(l.Category)), search)
}

func cloneListing(l *domain.Listing) *domain.Listing {
	c := *l
	c.Images = slices.Clone(l.Images)
	c.Facilities = slices.Clone(l.Facilities)
	return &c
}
