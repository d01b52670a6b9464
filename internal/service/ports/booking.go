package ports

import (
	"context"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
)

type BookingRepo interface {
	Create(ctx context.Context, b *domain.Booking) error
	GetByID(ctx context.Context, id string) (*domain.Booking, error)

	// Transition moves the booking to status `to` only if its current
	// status is one of `from`. It returns domain.ErrStatusConflict when the
	// booking exists but is in another status.
	Transition(ctx context.Context, id string, from []domain.BookingStatus, to domain.BookingStatus, reason string) (*domain.Booking, error)

	ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error)
	ListAll(ctx context.Context) ([]*domain.Booking, error)
	ListActiveByListing(ctx context.Context, listingID string) ([]*domain.Booking, error)
	CountByStatus(ctx context.Context, userID *string) (map[domain.BookingStatus]int, error)
}
