package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/Saloni021-kashyap/Tripkart/internal/service/ports"
	"github.com/wb-go/wbf/logger"
)

type BookingPolicy struct {
	// AllowGuest accepts bookings from callers without an identity.
	AllowGuest bool
}

type notifyFunc func(ctx context.Context, user *domain.User, listing *domain.Listing, booking *domain.Booking)

// BookingService owns the booking state machine and the seat
// reconciliation it triggers on listings.
type BookingService struct {
	bookingRepo ports.BookingRepo
	listingRepo ports.ListingRepo
	userRepo    ports.UserRepo
	notifier    ports.BookingNotifier
	policy      BookingPolicy
	logger      logger.Logger
}

func NewBookingService(
	bookingRepo ports.BookingRepo,
	listingRepo ports.ListingRepo,
	userRepo ports.UserRepo,
	notifier ports.BookingNotifier,
	policy BookingPolicy,
	logger logger.Logger,
) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		listingRepo: listingRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		policy:      policy,
		logger:      logger,
	}
}

// Create stores a new pending booking. Seats are not deducted here: the
// listing's availability stays advisory until an admin acts on the booking.
func (s *BookingService) Create(
	ctx context.Context,
	listingID string,
	input domain.CreateBookingInput,
	requester *domain.Identity,
) (*domain.Booking, error) {
	var userID *string
	if requester != nil {
		id := requester.UserID
		userID = &id
	} else if !s.policy.AllowGuest {
		return nil, fmt.Errorf("%w: guest bookings are disabled", domain.ErrUnauthorized)
	}

	booking, err := domain.NewBooking(listingID, userID, input)
	if err != nil {
		return nil, err
	}

	listing, err := s.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("check listing: %w", err)
	}

	if err = s.bookingRepo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if err = s.recheckListing(ctx, booking); err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		logger.String("booking_id", booking.ID),
		logger.String("listing_id", listingID),
		logger.Int("persons", booking.Persons),
		logger.Any("guest", booking.IsGuest()),
	)

	s.notify(ctx, booking, listing, s.notifier.NotifyBookingCreated)

	return booking, nil
}

// recheckListing looks the listing up again once the booking is stored. A
// listing deleted in between is either swept by ListingService.Delete or
// caught here, so no active booking outlives its listing.
func (s *BookingService) recheckListing(ctx context.Context, b *domain.Booking) error {
	_, err := s.listingRepo.GetByID(ctx, b.ListingID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrListingNotFound) {
		s.logger.Warn("listing recheck failed",
			logger.String("booking_id", b.ID),
			logger.String("error", err.Error()),
		)
		return nil
	}

	_, tErr := s.bookingRepo.Transition(ctx, b.ID,
		domain.StatusesLeadingTo(domain.BookingStatusCancelled),
		domain.BookingStatusCancelled, cascadeCancelReason,
	)
	if tErr != nil && !errors.Is(tErr, domain.ErrStatusConflict) {
		return errors.Join(fmt.Errorf("check listing: %w", err), fmt.Errorf("cancel booking: %w", tErr))
	}
	return fmt.Errorf("check listing: %w", err)
}

// Confirm moves a pending booking to confirmed. Confirming an already
// confirmed booking is a no-op.
func (s *BookingService) Confirm(ctx context.Context, bookingID string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	if booking.Status == domain.BookingStatusConfirmed {
		return booking, nil
	}
	if !booking.Status.CanTransitionTo(domain.BookingStatusConfirmed) {
		return nil, fmt.Errorf("%w: %s -> %s",
			domain.ErrInvalidTransition, booking.Status, domain.BookingStatusConfirmed)
	}

	updated, err := s.bookingRepo.Transition(ctx, bookingID,
		domain.StatusesLeadingTo(domain.BookingStatusConfirmed),
		domain.BookingStatusConfirmed, "",
	)
	if errors.Is(err, domain.ErrStatusConflict) {
		return s.settled(ctx, bookingID, domain.BookingStatusConfirmed)
	}
	if err != nil {
		return nil, fmt.Errorf("confirm booking: %w", err)
	}

	s.logger.Info("booking confirmed",
		logger.String("booking_id", updated.ID),
		logger.String("listing_id", updated.ListingID),
	)

	s.notifyWithListing(ctx, updated, s.notifier.NotifyBookingConfirmed)

	return updated, nil
}

// Cancel moves a booking to cancelled and gives its seats back to the
// listing. Seats are restored only by the call that actually performed the
// transition, so cancelling twice never restores twice. A missing listing
// skips the restoration without failing the cancellation.
func (s *BookingService) Cancel(ctx context.Context, bookingID string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	if booking.Status == domain.BookingStatusCancelled {
		return booking, nil
	}

	updated, err := s.bookingRepo.Transition(ctx, bookingID,
		domain.StatusesLeadingTo(domain.BookingStatusCancelled),
		domain.BookingStatusCancelled, "",
	)
	if errors.Is(err, domain.ErrStatusConflict) {
		return s.settled(ctx, bookingID, domain.BookingStatusCancelled)
	}
	if err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	listing, err := s.restoreSeats(ctx, updated)
	if err != nil {
		// put the booking back so a retry performs the restoration
		if _, revertErr := s.bookingRepo.Transition(ctx, bookingID,
			[]domain.BookingStatus{domain.BookingStatusCancelled}, booking.Status, "",
		); revertErr != nil {
			return nil, errors.Join(
				fmt.Errorf("restore seats: %w", err),
				fmt.Errorf("revert cancellation: %w", revertErr),
			)
		}
		return nil, fmt.Errorf("restore seats: %w", err)
	}

	s.logger.Info("booking cancelled",
		logger.String("booking_id", updated.ID),
		logger.String("listing_id", updated.ListingID),
		logger.Int("persons", updated.Persons),
		logger.Any("seats_restored", listing != nil),
	)

	s.notify(ctx, updated, listing, s.notifier.NotifyBookingCancelled)

	return updated, nil
}

// RequestCancel lets the owner of a booking ask for its cancellation. The
// seats stay claimed until an admin cancels the booking.
func (s *BookingService) RequestCancel(
	ctx context.Context,
	bookingID string,
	requester *domain.Identity,
	reason string,
) (*domain.Booking, error) {
	if requester == nil {
		return nil, domain.ErrUnauthorized
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	if !booking.OwnedBy(requester.UserID) {
		return nil, fmt.Errorf("%w: booking belongs to another user", domain.ErrForbidden)
	}

	if booking.Status == domain.BookingStatusCancelRequested {
		return booking, nil
	}
	if !booking.Status.CanTransitionTo(domain.BookingStatusCancelRequested) {
		return nil, fmt.Errorf("%w: %s -> %s",
			domain.ErrInvalidTransition, booking.Status, domain.BookingStatusCancelRequested)
	}

	updated, err := s.bookingRepo.Transition(ctx, bookingID,
		domain.StatusesLeadingTo(domain.BookingStatusCancelRequested),
		domain.BookingStatusCancelRequested, strings.TrimSpace(reason),
	)
	if errors.Is(err, domain.ErrStatusConflict) {
		return s.settled(ctx, bookingID, domain.BookingStatusCancelRequested)
	}
	if err != nil {
		return nil, fmt.Errorf("request cancellation: %w", err)
	}

	s.logger.Info("booking cancellation requested",
		logger.String("booking_id", updated.ID),
		logger.String("user_id", requester.UserID),
	)

	return updated, nil
}

func (s *BookingService) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	return s.bookingRepo.ListByUser(ctx, userID)
}

// ListAll returns every booking, newest first, with its listing and owner
// resolved.
func (s *BookingService) ListAll(ctx context.Context) ([]*domain.BookingDetails, error) {
	bookings, err := s.bookingRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookings: %w", err)
	}

	listings := make(map[string]*domain.Listing)
	users := make(map[string]*domain.User)

	res := make([]*domain.BookingDetails, 0, len(bookings))
	for _, b := range bookings {
		d := &domain.BookingDetails{Booking: *b}

		l, ok := listings[b.ListingID]
		if !ok {
			l, err = s.listingRepo.GetByID(ctx, b.ListingID)
			if err != nil && !errors.Is(err, domain.ErrListingNotFound) {
				return nil, fmt.Errorf("resolve listing %s: %w", b.ListingID, err)
			}
			listings[b.ListingID] = l
		}
		d.Listing = l

		if b.UserID != nil {
			u, ok := users[*b.UserID]
			if !ok {
				u, err = s.userRepo.GetByID(ctx, *b.UserID)
				if err != nil && !errors.Is(err, domain.ErrUserNotFound) {
					return nil, fmt.Errorf("resolve user %s: %w", *b.UserID, err)
				}
				users[*b.UserID] = u
			}
			d.User = u
		}

		res = append(res, d)
	}

	return res, nil
}

// Stats counts bookings per status, for one user or for everyone when
// userID is nil.
func (s *BookingService) Stats(ctx context.Context, userID *string) (*domain.BookingStats, error) {
	counts, err := s.bookingRepo.CountByStatus(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	stats := &domain.BookingStats{ByStatus: make(map[domain.BookingStatus]int, len(counts))}
	for status, n := range counts {
		stats.ByStatus[status] = n
		stats.Total += n
	}

	return stats, nil
}

func (s *BookingService) restoreSeats(ctx context.Context, b *domain.Booking) (*domain.Listing, error) {
	listing, err := s.listingRepo.RestoreSeats(ctx, b.ListingID, b.Persons)
	if errors.Is(err, domain.ErrListingNotFound) {
		s.logger.Warn("seat restoration skipped, listing no longer exists",
			logger.String("booking_id", b.ID),
			logger.String("listing_id", b.ListingID),
		)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return listing, nil
}

// settled resolves a lost conditional update: if another caller already
// moved the booking to want the result is the same, otherwise the caller
// raced with a different transition. For cancellations the winner may still
// revert when its seat restore fails, so a success reported here is only as
// durable as the winner's restore.
func (s *BookingService) settled(ctx context.Context, bookingID string, want domain.BookingStatus) (*domain.Booking, error) {
	current, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if current.Status == want {
		return current, nil
	}

	return nil, fmt.Errorf("%w: booking %s is now %s", domain.ErrConcurrentUpdate, bookingID, current.Status)
}

func (s *BookingService) notifyWithListing(ctx context.Context, b *domain.Booking, fn notifyFunc) {
	if b.IsGuest() {
		return
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		listing, err := s.listingRepo.GetByID(bg, b.ListingID)
		if err != nil && !errors.Is(err, domain.ErrListingNotFound) {
			s.logger.Error("failed to get listing for notification",
				logger.String("listing_id", b.ListingID),
				logger.String("error", err.Error()),
			)
			return
		}
		s.send(bg, b, listing, fn)
	}()
}

func (s *BookingService) notify(ctx context.Context, b *domain.Booking, listing *domain.Listing, fn notifyFunc) {
	if b.IsGuest() {
		return
	}

	bg := context.WithoutCancel(ctx)
	go s.send(bg, b, listing, fn)
}

func (s *BookingService) send(ctx context.Context, b *domain.Booking, listing *domain.Listing, fn notifyFunc) {
	user, err := s.userRepo.GetByID(ctx, *b.UserID)
	if err != nil {
		s.logger.Error("failed to get user for notification",
			logger.String("user_id", *b.UserID),
			logger.String("error", err.Error()),
		)
		return
	}

	fn(ctx, user, listing, b)
}
