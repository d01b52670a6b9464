package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/Saloni021-kashyap/Tripkart/internal/service/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func validListingInput() domain.ListingInput {
	return domain.ListingInput{
		Title:         "Char Dham Yatra",
		Destination:   "Uttarakhand",
		Description:   "Twelve day guided pilgrimage circuit",
		Price:         24999,
		StartLocation: "Haridwar",
		EndLocation:   "Haridwar",
		Facilities:    []string{"Meals, Stay", "Guide"},
		TotalSeats:    30,
	}
}

func TestListingService_Create_Defaults(t *testing.T) {
	repo := mocks.NewMockListingRepo(t)
	svc := NewListingService(repo, mocks.NewMockBookingRepo(t), "", newTestLogger(t))

	repo.EXPECT().Create(mock.Anything, mock.Anything).Return(nil)

	l, err := svc.Create(context.Background(), validListingInput())

	require.NoError(t, err)
	assert.NotEmpty(t, l.ID)
	assert.Equal(t, 30, l.AvailableSeats)
	assert.Equal(t, domain.TravelModeBus, l.TravelMode)
	assert.Equal(t, domain.CategoryPilgrimage, l.Category)
	assert.True(t, l.IsActive)
	assert.Equal(t, "India", l.Country)
	assert.Equal(t, []string{"Meals", "Stay", "Guide"}, l.Facilities)
}

func TestListingService_Create_Validation(t *testing.T) {
	svc := NewListingService(mocks.NewMockListingRepo(t), mocks.NewMockBookingRepo(t), "", newTestLogger(t))

	tooMany := 31
	tests := []struct {
		name  string
		input func(in *domain.ListingInput)
	}{
		{"short title", func(in *domain.ListingInput) { in.Title = "Go" }},
		{"zero seats", func(in *domain.ListingInput) { in.TotalSeats = 0 }},
		{"available above total", func(in *domain.ListingInput) { in.AvailableSeats = &tooMany }},
		{"unknown travel mode", func(in *domain.ListingInput) { in.TravelMode = "Boat" }},
		{"negative price", func(in *domain.ListingInput) { in.Price = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validListingInput()
			tt.input(&in)

			_, err := svc.Create(context.Background(), in)

			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestListingService_Update_KeepsSeatBound(t *testing.T) {
	repo := mocks.NewMockListingRepo(t)
	svc := NewListingService(repo, mocks.NewMockBookingRepo(t), "", newTestLogger(t))

	existing, err := domain.NewListing(validListingInput())
	require.NoError(t, err)
	existing.AvailableSeats = 12

	repo.EXPECT().GetByID(mock.Anything, existing.ID).Return(existing, nil)
	repo.EXPECT().
		Update(mock.Anything, mock.MatchedBy(func(l *domain.Listing) bool {
			return l.TotalSeats == 10 && l.AvailableSeats == 10
		}), false).
		RunAndReturn(func(_ context.Context, l *domain.Listing, _ bool) (*domain.Listing, error) {
			return l, nil
		})

	in := validListingInput()
	in.TotalSeats = 10

	l, err := svc.Update(context.Background(), existing.ID, in)

	require.NoError(t, err)
	assert.Equal(t, 10, l.TotalSeats)
	assert.Equal(t, 10, l.AvailableSeats)
}

func TestListingService_Update_ExplicitSeats(t *testing.T) {
	repo := mocks.NewMockListingRepo(t)
	svc := NewListingService(repo, mocks.NewMockBookingRepo(t), "", newTestLogger(t))

	existing, err := domain.NewListing(validListingInput())
	require.NoError(t, err)

	stored := *existing
	stored.AvailableSeats = 3
	repo.EXPECT().GetByID(mock.Anything, existing.ID).Return(existing, nil)
	repo.EXPECT().Update(mock.Anything, mock.Anything, true).Return(&stored, nil)

	in := validListingInput()
	seats := 3
	in.AvailableSeats = &seats

	l, err := svc.Update(context.Background(), existing.ID, in)

	require.NoError(t, err)
	assert.Same(t, &stored, l)
}

func TestListingService_Update_NotFound(t *testing.T) {
	repo := mocks.NewMockListingRepo(t)
	svc := NewListingService(repo, mocks.NewMockBookingRepo(t), "", newTestLogger(t))

	repo.EXPECT().GetByID(mock.Anything, "missing").Return(nil, domain.ErrListingNotFound)

	_, err := svc.Update(context.Background(), "missing", validListingInput())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListingService_Delete_RejectsActiveBookings(t *testing.T) {
	repo := mocks.NewMockListingRepo(t)
	bookings := mocks.NewMockBookingRepo(t)
	svc := NewListingService(repo, bookings, DeleteRejectIfActive, newTestLogger(t))

	repo.EXPECT().GetByID(mock.Anything, "l1").Return(&domain.Listing{ID: "l1"}, nil)
	bookings.EXPECT().ListActiveByListing(mock.Anything, "l1").
		Return([]*domain.Booking{{ID: "b1", Status: domain.BookingStatusPending}}, nil)

	err := svc.Delete(context.Background(), "l1")

	assert.ErrorIs(t, err, domain.ErrListingHasActiveBookings)
	repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestListingService_Delete_NoActiveBookings(t *testing.T) {
	repo := mocks.NewMockListingRepo(t)
	bookings := mocks.NewMockBookingRepo(t)
	svc := NewListingService(repo, bookings, DeleteRejectIfActive, newTestLogger(t))

	repo.EXPECT().GetByID(mock.Anything, "l1").Return(&domain.Listing{ID: "l1"}, nil)
	bookings.EXPECT().ListActiveByListing(mock.Anything, "l1").Return(nil, nil).Twice()
	repo.EXPECT().Delete(mock.Anything, "l1").Return(nil)

	require.NoError(t, svc.Delete(context.Background(), "l1"))
}

func TestListingService_Delete_CancelsBookingsCreatedDuringDelete(t *testing.T) {
	repo := mocks.NewMockListingRepo(t)
	bookings := mocks.NewMockBookingRepo(t)
	svc := NewListingService(repo, bookings, DeleteRejectIfActive, newTestLogger(t))

	repo.EXPECT().GetByID(mock.Anything, "l1").Return(&domain.Listing{ID: "l1"}, nil)
	bookings.EXPECT().ListActiveByListing(mock.Anything, "l1").Return(nil, nil).Once()
	repo.EXPECT().Delete(mock.Anything, "l1").Return(nil)
	bookings.EXPECT().ListActiveByListing(mock.Anything, "l1").
		Return([]*domain.Booking{{ID: "late", Status: domain.BookingStatusPending}}, nil).Once()
	bookings.EXPECT().Transition(mock.Anything, "late", domain.ActiveStatuses, domain.BookingStatusCancelled, cascadeCancelReason).
		Return(&domain.Booking{ID: "late", Status: domain.BookingStatusCancelled}, nil)

	require.NoError(t, svc.Delete(context.Background(), "l1"))
}

func TestListingService_Delete_CascadeCancel(t *testing.T) {
	repo := mocks.NewMockListingRepo(t)
	bookings := mocks.NewMockBookingRepo(t)
	svc := NewListingService(repo, bookings, DeleteCascadeCancel, newTestLogger(t))

	repo.EXPECT().GetByID(mock.Anything, "l1").Return(&domain.Listing{ID: "l1"}, nil)
	bookings.EXPECT().ListActiveByListing(mock.Anything, "l1").Return([]*domain.Booking{
		{ID: "b1", Status: domain.BookingStatusPending},
		{ID: "b2", Status: domain.BookingStatusConfirmed},
	}, nil).Once()
	bookings.EXPECT().ListActiveByListing(mock.Anything, "l1").Return(nil, nil).Once()
	bookings.EXPECT().Transition(mock.Anything, "b1", domain.ActiveStatuses, domain.BookingStatusCancelled, cascadeCancelReason).
		Return(&domain.Booking{ID: "b1", Status: domain.BookingStatusCancelled}, nil)
	bookings.EXPECT().Transition(mock.Anything, "b2", domain.ActiveStatuses, domain.BookingStatusCancelled, cascadeCancelReason).
		Return(nil, domain.ErrStatusConflict)
	repo.EXPECT().Delete(mock.Anything, "l1").Return(nil)

	require.NoError(t, svc.Delete(context.Background(), "l1"))
	repo.AssertNotCalled(t, "RestoreSeats", mock.Anything, mock.Anything, mock.Anything)
}

func TestListingService_Delete_AllowOrphan(t *testing.T) {
	repo := mocks.NewMockListingRepo(t)
	svc := NewListingService(repo, mocks.NewMockBookingRepo(t), DeleteAllowOrphan, newTestLogger(t))

	repo.EXPECT().GetByID(mock.Anything, "l1").Return(&domain.Listing{ID: "l1"}, nil)
	repo.EXPECT().Delete(mock.Anything, "l1").Return(nil)

	require.NoError(t, svc.Delete(context.Background(), "l1"))
}

func TestListingService_AuditSeats(t *testing.T) {
	repo := mocks.NewMockListingRepo(t)
	svc := NewListingService(repo, mocks.NewMockBookingRepo(t), "", newTestLogger(t))

	repo.EXPECT().ClampSeats(mock.Anything).Return(nil, errors.New("db error"))

	_, err := svc.AuditSeats(context.Background())

	assert.Error(t, err)
}
