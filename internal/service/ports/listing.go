package ports

import (
	"context"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
)

type ListingRepo interface {
	Create(ctx context.Context, l *domain.Listing) error
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	// Update writes the editable fields of l and returns the stored row.
	// available_seats is taken from l only when setAvailable is true;
	// otherwise the stored value is kept, capped at the new total_seats.
	Update(ctx context.Context, l *domain.Listing, setAvailable bool) (*domain.Listing, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error)
	Count(ctx context.Context) (int, error)

	// RestoreSeats atomically sets available_seats to
	// min(total_seats, available_seats+count) and returns the result.
	RestoreSeats(ctx context.Context, id string, count int) (*domain.Listing, error)
	// ClampSeats brings every listing back into [0, total_seats] and
	// returns the listings it had to repair.
	ClampSeats(ctx context.Context) ([]*domain.Listing, error)
}
