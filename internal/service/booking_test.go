package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/Saloni021-kashyap/Tripkart/internal/service/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/logger"
)

func newTestLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.InitLogger("slog", "test", "test", logger.WithLevel(logger.ErrorLevel))
	if err != nil {
		t.Fatalf("init test logger: %v", err)
	}
	return log
}

type bookingDeps struct {
	bookingRepo *mocks.MockBookingRepo
	listingRepo *mocks.MockListingRepo
	userRepo    *mocks.MockUserRepo
	notifier    *mocks.MockBookingNotifier
	svc         *BookingService
}

func newBookingDeps(t *testing.T, policy BookingPolicy) bookingDeps {
	t.Helper()
	d := bookingDeps{
		bookingRepo: mocks.NewMockBookingRepo(t),
		listingRepo: mocks.NewMockListingRepo(t),
		userRepo:    mocks.NewMockUserRepo(t),
		notifier:    mocks.NewMockBookingNotifier(t),
	}
	d.svc = NewBookingService(d.bookingRepo, d.listingRepo, d.userRepo, d.notifier, policy, newTestLogger(t))
	return d
}

func validBookingInput() domain.CreateBookingInput {
	return domain.CreateBookingInput{
		CustomerName: "Asha Verma",
		Phone:        "9876543210",
		Persons:      2,
		TravelDate:   time.Now().Add(72 * time.Hour),
	}
}

func strPtr(s string) *string { return &s }

func TestBookingService_Create_ForUser(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{AllowGuest: true})

	listing := &domain.Listing{ID: "l1", TotalSeats: 20, AvailableSeats: 5}
	user := &domain.User{ID: "u1", Username: "asha"}

	d.listingRepo.EXPECT().GetByID(mock.Anything, "l1").Return(listing, nil)
	d.bookingRepo.EXPECT().Create(mock.Anything, mock.Anything).Return(nil)
	d.userRepo.EXPECT().GetByID(mock.Anything, "u1").Return(user, nil)
	d.notifier.EXPECT().NotifyBookingCreated(mock.Anything, user, listing, mock.Anything).Return()

	booking, err := d.svc.Create(context.Background(), "l1", validBookingInput(),
		&domain.Identity{UserID: "u1", Role: domain.RoleUser})

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusPending, booking.Status)
	assert.Equal(t, "l1", booking.ListingID)
	require.NotNil(t, booking.UserID)
	assert.Equal(t, "u1", *booking.UserID)
	assert.NotEmpty(t, booking.ID)

	time.Sleep(50 * time.Millisecond) // goroutine notify
}

func TestBookingService_Create_Guest(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{AllowGuest: true})

	d.listingRepo.EXPECT().GetByID(mock.Anything, "l1").Return(&domain.Listing{ID: "l1"}, nil)
	d.bookingRepo.EXPECT().Create(mock.Anything, mock.Anything).Return(nil)

	booking, err := d.svc.Create(context.Background(), "l1", validBookingInput(), nil)

	require.NoError(t, err)
	assert.True(t, booking.IsGuest())
}

func TestBookingService_Create_GuestDisabled(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{AllowGuest: false})

	_, err := d.svc.Create(context.Background(), "l1", validBookingInput(), nil)

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestBookingService_Create_ListingNotFound(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{AllowGuest: true})

	d.listingRepo.EXPECT().GetByID(mock.Anything, "missing").Return(nil, domain.ErrListingNotFound)

	_, err := d.svc.Create(context.Background(), "missing", validBookingInput(), nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	d.bookingRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestBookingService_Create_ValidationBeforeIO(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{AllowGuest: true})

	tests := []struct {
		name  string
		input func(in *domain.CreateBookingInput)
	}{
		{"zero persons", func(in *domain.CreateBookingInput) { in.Persons = 0 }},
		{"short name", func(in *domain.CreateBookingInput) { in.CustomerName = "Al" }},
		{"short phone", func(in *domain.CreateBookingInput) { in.Phone = "12345" }},
		{"letters in phone", func(in *domain.CreateBookingInput) { in.Phone = "98765abcde" }},
		{"no travel date", func(in *domain.CreateBookingInput) { in.TravelDate = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validBookingInput()
			tt.input(&in)

			_, err := d.svc.Create(context.Background(), "l1", in, nil)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestBookingService_Create_RepoError(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{AllowGuest: true})

	d.listingRepo.EXPECT().GetByID(mock.Anything, "l1").Return(&domain.Listing{ID: "l1"}, nil)
	d.bookingRepo.EXPECT().Create(mock.Anything, mock.Anything).Return(errors.New("db error"))

	_, err := d.svc.Create(context.Background(), "l1", validBookingInput(), nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestBookingService_Create_ListingDeletedDuringCreate(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{AllowGuest: true})

	d.listingRepo.EXPECT().GetByID(mock.Anything, "l1").Return(&domain.Listing{ID: "l1"}, nil).Once()
	d.bookingRepo.EXPECT().Create(mock.Anything, mock.Anything).Return(nil)
	d.listingRepo.EXPECT().GetByID(mock.Anything, "l1").Return(nil, domain.ErrListingNotFound).Once()
	d.bookingRepo.EXPECT().
		Transition(mock.Anything, mock.Anything, domain.ActiveStatuses, domain.BookingStatusCancelled, cascadeCancelReason).
		Return(&domain.Booking{Status: domain.BookingStatusCancelled}, nil)

	_, err := d.svc.Create(context.Background(), "l1", validBookingInput(), nil)

	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestBookingService_Confirm_Success(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{})

	pending := &domain.Booking{ID: "b1", ListingID: "l1", Status: domain.BookingStatusPending}
	confirmed := &domain.Booking{ID: "b1", ListingID: "l1", Status: domain.BookingStatusConfirmed}

	d.bookingRepo.EXPECT().GetByID(mock.Anything, "b1").Return(pending, nil)
	d.bookingRepo.EXPECT().
		Transition(mock.Anything, "b1", []domain.BookingStatus{domain.BookingStatusPending}, domain.BookingStatusConfirmed, "").
		Return(confirmed, nil)

	booking, err := d.svc.Confirm(context.Background(), "b1")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, booking.Status)
}

func TestBookingService_Confirm_NotifiesOwner(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{})

	listing := &domain.Listing{ID: "l1"}
	user := &domain.User{ID: "u1"}
	pending := &domain.Booking{ID: "b1", ListingID: "l1", UserID: strPtr("u1"), Status: domain.BookingStatusPending}
	confirmed := &domain.Booking{ID: "b1", ListingID: "l1", UserID: strPtr("u1"), Status: domain.BookingStatusConfirmed}

	d.bookingRepo.EXPECT().GetByID(mock.Anything, "b1").Return(pending, nil)
	d.bookingRepo.EXPECT().Transition(mock.Anything, "b1", mock.Anything, domain.BookingStatusConfirmed, "").Return(confirmed, nil)
	d.listingRepo.EXPECT().GetByID(mock.Anything, "l1").Return(listing, nil)
	d.userRepo.EXPECT().GetByID(mock.Anything, "u1").Return(user, nil)
	d.notifier.EXPECT().NotifyBookingConfirmed(mock.Anything, user, listing, confirmed).Return()

	_, err := d.svc.Confirm(context.Background(), "b1")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)
}

func TestBookingService_Confirm_AlreadyConfirmed(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{})

	confirmed := &domain.Booking{ID: "b1", Status: domain.BookingStatusConfirmed}
	d.bookingRepo.EXPECT().GetByID(mock.Anything, "b1").Return(confirmed, nil)

	booking, err := d.svc.Confirm(context.Background(), "b1")

	require.NoError(t, err)
	assert.Same(t, confirmed, booking)
}

func TestBookingService_Confirm_InvalidTransition(t *testing.T) {
	for _, status := range []domain.BookingStatus{domain.BookingStatusCancelled, domain.BookingStatusCancelRequested} {
		t.Run(string(status), func(t *testing.T) {
			d := newBookingDeps(t, BookingPolicy{})
			d.bookingRepo.EXPECT().GetByID(mock.Anything, "b1").Return(&domain.Booking{ID: "b1", Status: status}, nil)

			_, err := d.svc.Confirm(context.Background(), "b1")

			assert.ErrorIs(t, err, domain.ErrInvalidTransition)
		})
	}
}

func TestBookingService_Confirm_BookingNotFound(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{})

	d.bookingRepo.EXPECT().GetByID(mock.Anything, "missing").Return(nil, domain.ErrBookingNotFound)

	_, err := d.svc.Confirm(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestBookingService_Confirm_LostRaceToCancel(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{})

	d.bookingRepo.EXPECT().GetByID(mock.Anything, "b1").
		Return(&domain.Booking{ID: "b1", Status: domain.BookingStatusPending}, nil).Once()
	d.bookingRepo.EXPECT().Transition(mock.Anything, "b1", mock.Anything, domain.BookingStatusConfirmed, "").
		Return(nil, domain.ErrStatusConflict)
	d.bookingRepo.EXPECT().GetByID(mock.Anything, "b1").
		Return(&domain.Booking{ID: "b1", Status: domain.BookingStatusCancelled}, nil).Once()

	_, err := d.svc.Confirm(context.Background(), "b1")

	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
}

func TestBookingService_Cancel_RestoresSeats(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{})

	confirmed := &domain.Booking{ID: "b1", ListingID: "l1", Persons: 2, Status: domain.BookingStatusConfirmed}
	cancelled := &domain.Booking{ID: "b1", ListingID: "l1", Persons: 2, Status: domain.BookingStatusCancelled}

	d.bookingRepo.EXPECT().GetByID(mock.Anything, "b1").Return(confirmed, nil)
	d.bookingRepo.EXPECT().
		Transition(mock.Anything, "b1", domain.ActiveStatuses, domain.BookingStatusCancelled, "").
		Return(cancelled, nil)
	d.listingRepo.EXPECT().RestoreSeats(mock.Anything, "l1", 2).
		Return(&domain.Listing{ID: "l1", TotalSeats: 20, AvailableSeats: 7}, nil)

	booking, err := d.svc.Cancel(context.Background(), "b1")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
}

func TestBookingService_Cancel_AlreadyCancelled(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{})

	d.bookingRepo.EXPECT().GetByID(mock.Anything, "b1").
		Return(&domain.Booking{ID: "b1", ListingID: "l1", Persons: 2, Status: domain.BookingStatusCancelled}, nil)

	booking, err := d.svc.Cancel(context.Background(), "b1")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
	d.listingRepo.AssertNotCalled(t, "RestoreSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_Cancel_LostRaceToAnotherCancel(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{})

	d.bookingRepo.EXPECT().GetByID(mock.Anything, "b1").
		Return(&domain.Booking{ID: "b1", Status: domain.BookingStatusPending}, nil).Once()
	d.bookingRepo.EXPECT().Transition(mock.Anything, "b1", mock.Anything, domain.BookingStatusCancelled, "").
		Return(nil, domain.ErrStatusConflict)
	d.bookingRepo.EXPECT().GetByID(mock.Anything, "b1").
		Return(&domain.Booking{ID: "b1", Status: domain.BookingStatusCancelled}, nil).Once()

	booking, err := d.svc.Cancel(context.Background(), "b1")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
	d.listingRepo.AssertNotCalled(t, "RestoreSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestBookingService_Cancel_ListingGone(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{})

	cancelled := &domain.Booking{ID: "b1", ListingID: "l1", Persons: 2, Status: domain.BookingStatusCancelled}

	d.bookingRepo.EXPECT().GetByID(mock.Anything, "b1").
		Return(&domain.Booking{ID: "b1", ListingID: "l1", Persons: 2, Status: domain.BookingStatusPending}, nil)
	d.bookingRepo.EXPECT().Transition(mock.Anything, "b1", mock.Anything, domain.BookingStatusCancelled, "").
		Return(cancelled, nil)
	d.listingRepo.EXPECT().RestoreSeats(mock.Anything, "l1", 2).Return(nil, domain.ErrListingNotFound)

	booking, err := d.svc.Cancel(context.Background(), "b1")

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, booking.Status)
}

func TestBookingService_Cancel_RestoreConflictReverts(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{})

	cancelled := &domain.Booking{ID: "b1", ListingID: "l1", Persons: 2, Status: domain.BookingStatusCancelled}

	d.bookingRepo.EXPECT().GetByID(mock.Anything, "b1").
		Return(&domain.Booking{ID: "b1", ListingID: "l1", Persons: 2, Status: domain.BookingStatusConfirmed}, nil)
	d.bookingRepo.EXPECT().Transition(mock.Anything, "b1", mock.Anything, domain.BookingStatusCancelled, "").
		Return(cancelled, nil)
	d.listingRepo.EXPECT().RestoreSeats(mock.Anything, "l1", 2).Return(nil, domain.ErrConcurrentUpdate)
	d.bookingRepo.EXPECT().
		Transition(mock.Anything, "b1", []domain.BookingStatus{domain.BookingStatusCancelled}, domain.BookingStatusConfirmed, "").
		Return(&domain.Booking{ID: "b1", Status: domain.BookingStatusConfirmed}, nil)

	_, err := d.svc.Cancel(context.Background(), "b1")

	assert.ErrorIs(t, err, domain.ErrConcurrentUpdate)
}

func TestBookingService_RequestCancel(t *testing.T) {
	owner := &domain.Identity{UserID: "u1", Role: domain.RoleUser}

	t.Run("owner", func(t *testing.T) {
		d := newBookingDeps(t, BookingPolicy{})
		d.bookingRepo.EXPECT().GetByID(mock.Anything, "b1").
			Return(&domain.Booking{ID: "b1", UserID: strPtr("u1"), Status: domain.BookingStatusConfirmed}, nil)
		d.bookingRepo.EXPECT().
			Transition(mock.Anything, "b1", mock.Anything, domain.BookingStatusCancelRequested, "plans changed").
			Return(&domain.Booking{ID: "b1", Status: domain.BookingStatusCancelRequested, CancelReason: "plans changed"}, nil)

		b, err := d.svc.RequestCancel(context.Background(), "b1", owner, "  plans changed ")

		require.NoError(t, err)
		assert.Equal(t, domain.BookingStatusCancelRequested, b.Status)
		assert.Equal(t, "plans changed", b.CancelReason)
	})

	t.Run("not the owner", func(t *testing.T) {
		d := newBookingDeps(t, BookingPolicy{})
		d.bookingRepo.EXPECT().GetByID(mock.Anything, "b1").
			Return(&domain.Booking{ID: "b1", UserID: strPtr("u2"), Status: domain.BookingStatusConfirmed}, nil)

		_, err := d.svc.RequestCancel(context.Background(), "b1", owner, "")

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("guest booking", func(t *testing.T) {
		d := newBookingDeps(t, BookingPolicy{})
		d.bookingRepo.EXPECT().GetByID(mock.Anything, "b1").
			Return(&domain.Booking{ID: "b1", Status: domain.BookingStatusPending}, nil)

		_, err := d.svc.RequestCancel(context.Background(), "b1", owner, "")

		assert.ErrorIs(t, err, domain.ErrForbidden)
	})

	t.Run("already cancelled", func(t *testing.T) {
		d := newBookingDeps(t, BookingPolicy{})
		d.bookingRepo.EXPECT().GetByID(mock.Anything, "b1").
			Return(&domain.Booking{ID: "b1", UserID: strPtr("u1"), Status: domain.BookingStatusCancelled}, nil)

		_, err := d.svc.RequestCancel(context.Background(), "b1", owner, "")

		assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	})

	t.Run("anonymous", func(t *testing.T) {
		d := newBookingDeps(t, BookingPolicy{})

		_, err := d.svc.RequestCancel(context.Background(), "b1", nil, "")

		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	})
}

func TestBookingService_ListAll_ResolvesReferences(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{})

	listing := &domain.Listing{ID: "l1", Title: "Goa Weekend"}
	user := &domain.User{ID: "u1", Username: "asha"}

	d.bookingRepo.EXPECT().ListAll(mock.Anything).Return([]*domain.Booking{
		{ID: "b3", ListingID: "gone"},
		{ID: "b2", ListingID: "l1", UserID: strPtr("u1")},
		{ID: "b1", ListingID: "l1", UserID: strPtr("u1")},
	}, nil)
	d.listingRepo.EXPECT().GetByID(mock.Anything, "gone").Return(nil, domain.ErrListingNotFound).Once()
	d.listingRepo.EXPECT().GetByID(mock.Anything, "l1").Return(listing, nil).Once()
	d.userRepo.EXPECT().GetByID(mock.Anything, "u1").Return(user, nil).Once()

	details, err := d.svc.ListAll(context.Background())

	require.NoError(t, err)
	require.Len(t, details, 3)
	assert.Nil(t, details[0].Listing)
	assert.Nil(t, details[0].User)
	assert.Equal(t, listing, details[1].Listing)
	assert.Equal(t, user, details[2].User)
}

func TestBookingService_Stats(t *testing.T) {
	d := newBookingDeps(t, BookingPolicy{})

	d.bookingRepo.EXPECT().CountByStatus(mock.Anything, (*string)(nil)).Return(map[domain.BookingStatus]int{
		domain.BookingStatusPending:   3,
		domain.BookingStatusCancelled: 1,
	}, nil)

	stats, err := d.svc.Stats(context.Background(), nil)

	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Count(domain.BookingStatusPending))
	assert.Zero(t, stats.Count(domain.BookingStatusConfirmed))
}
