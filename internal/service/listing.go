package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/Saloni021-kashyap/Tripkart/internal/service/ports"
	"github.com/wb-go/wbf/logger"
)

// DeletePolicy decides what happens to bookings of a listing being deleted.
type DeletePolicy string

const (
	DeleteRejectIfActive DeletePolicy = "reject-if-active-bookings"
	DeleteCascadeCancel  DeletePolicy = "cascade-cancel"
	DeleteAllowOrphan    DeletePolicy = "allow-orphan"
)

const cascadeCancelReason = "listing removed"

type ListingService struct {
	repo        ports.ListingRepo
	bookingRepo ports.BookingRepo
	onDelete    DeletePolicy
	logger      logger.Logger
}

func NewListingService(
	repo ports.ListingRepo,
	bookingRepo ports.BookingRepo,
	onDelete DeletePolicy,
	logger logger.Logger,
) *ListingService {
	if onDelete == "" {
		onDelete = DeleteRejectIfActive
	}
	return &ListingService{
		repo:        repo,
		bookingRepo: bookingRepo,
		onDelete:    onDelete,
		logger:      logger,
	}
}

func (s *ListingService) Create(ctx context.Context, input domain.ListingInput) (*domain.Listing, error) {
	listing, err := domain.NewListing(input)
	if err != nil {
		return nil, err
	}

	if err = s.repo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	s.logger.Info("listing created",
		logger.String("listing_id", listing.ID),
		logger.Int("total_seats", listing.TotalSeats),
	)

	return listing, nil
}

func (s *ListingService) Get(ctx context.Context, id string) (*domain.Listing, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *ListingService) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	return s.repo.List(ctx, filter)
}

func (s *ListingService) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *ListingService) Update(ctx context.Context, id string, input domain.ListingInput) (*domain.Listing, error) {
	listing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}

	if err = listing.Apply(input); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, listing, input.AvailableSeats != nil)
	if err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}

	return updated, nil
}

// Delete removes a listing according to the configured DeletePolicy.
func (s *ListingService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return fmt.Errorf("get listing: %w", err)
	}

	switch s.onDelete {
	case DeleteAllowOrphan:
	case DeleteCascadeCancel:
		if err := s.cancelActive(ctx, id); err != nil {
			return err
		}
	default:
		active, err := s.bookingRepo.ListActiveByListing(ctx, id)
		if err != nil {
			return fmt.Errorf("list active bookings: %w", err)
		}
		if len(active) > 0 {
			return fmt.Errorf("%w: %d active", domain.ErrListingHasActiveBookings, len(active))
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	// bookings created between the check above and the delete
	if s.onDelete != DeleteAllowOrphan {
		if err := s.cancelActive(ctx, id); err != nil {
			return err
		}
	}

	s.logger.Info("listing deleted",
		logger.String("listing_id", id),
		logger.String("policy", string(s.onDelete)),
	)

	return nil
}

// AuditSeats repairs listings whose available seats left [0, total].
func (s *ListingService) AuditSeats(ctx context.Context) ([]*domain.Listing, error) {
	repaired, err := s.repo.ClampSeats(ctx)
	if err != nil {
		return nil, fmt.Errorf("clamp seats: %w", err)
	}
	return repaired, nil
}

// cancelActive cancels the active bookings of a listing without touching
// its seats, since the listing is about to disappear.
func (s *ListingService) cancelActive(ctx context.Context, listingID string) error {
	active, err := s.bookingRepo.ListActiveByListing(ctx, listingID)
	if err != nil {
		return fmt.Errorf("list active bookings: %w", err)
	}

	for _, b := range active {
		_, err = s.bookingRepo.Transition(ctx, b.ID,
			domain.StatusesLeadingTo(domain.BookingStatusCancelled),
			domain.BookingStatusCancelled, cascadeCancelReason,
		)
		if err != nil && !errors.Is(err, domain.ErrStatusConflict) {
			return fmt.Errorf("cancel booking %s: %w", b.ID, err)
		}
	}

	if len(active) > 0 {
		s.logger.Info("bookings cancelled with listing",
			logger.String("listing_id", listingID),
			logger.Int("count", len(active)),
		)
	}

	return nil
}
