package ports

import (
	"context"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
)

type BookingNotifier interface {
	NotifyBookingCreated(ctx context.Context, user *domain.User, listing *domain.Listing, booking *domain.Booking)
	NotifyBookingConfirmed(ctx context.Context, user *domain.User, listing *domain.Listing, booking *domain.Booking)
	NotifyBookingCancelled(ctx context.Context, user *domain.User, listing *domain.Listing, booking *domain.Booking)
}
