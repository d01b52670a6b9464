package mongostore

import (
	"context"
	"testing"
	"time"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func listingDoc(available int) bson.D {
	return bson.D{
		{Key: "_id", Value: "l1"},
		{Key: "title", Value: "Goa Weekend"},
		{Key: "total_seats", Value: 20},
		{Key: "available_seats", Value: available},
		{Key: "created_at", Value: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)},
	}
}

func TestListingRepo(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get by id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "tripkart.listings", mtest.FirstBatch, listingDoc(5)))

		l, err := NewListingRepo(mt.DB).GetByID(context.Background(), "l1")

		require.NoError(mt, err)
		assert.Equal(mt, 5, l.AvailableSeats)
		assert.Equal(mt, "Goa Weekend", l.Title)
	})

	mt.Run("get by id not found", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "tripkart.listings", mtest.FirstBatch))

		_, err := NewListingRepo(mt.DB).GetByID(context.Background(), "missing")

		assert.ErrorIs(mt, err, domain.ErrListingNotFound)
	})

	mt.Run("restore seats", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: listingDoc(7)}))

		l, err := NewListingRepo(mt.DB).RestoreSeats(context.Background(), "l1", 2)

		require.NoError(mt, err)
		assert.Equal(mt, 7, l.AvailableSeats)
	})

	mt.Run("restore seats on missing listing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := NewListingRepo(mt.DB).RestoreSeats(context.Background(), "missing", 2)

		assert.ErrorIs(mt, err, domain.ErrListingNotFound)
	})

	mt.Run("restore seats write conflict", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code:    codeWriteConflict,
			Name:    "WriteConflict",
			Message: "write conflict",
		}))

		_, err := NewListingRepo(mt.DB).RestoreSeats(context.Background(), "l1", 2)

		assert.ErrorIs(mt, err, domain.ErrConcurrentUpdate)
	})
}

func TestBookingRepo_Transition(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	pending := []domain.BookingStatus{domain.BookingStatusPending}

	mt.Run("applied", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
			{Key: "_id", Value: "b1"},
			{Key: "status", Value: "confirmed"},
		}}))

		b, err := NewBookingRepo(mt.DB).Transition(context.Background(), "b1", pending, domain.BookingStatusConfirmed, "")

		require.NoError(mt, err)
		assert.Equal(mt, domain.BookingStatusConfirmed, b.Status)
	})

	mt.Run("status changed", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, "tripkart.bookings", mtest.FirstBatch, bson.D{{Key: "n", Value: 1}}),
		)

		_, err := NewBookingRepo(mt.DB).Transition(context.Background(), "b1", pending, domain.BookingStatusConfirmed, "")

		assert.ErrorIs(mt, err, domain.ErrStatusConflict)
	})

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}),
			mtest.CreateCursorResponse(0, "tripkart.bookings", mtest.FirstBatch),
		)

		_, err := NewBookingRepo(mt.DB).Transition(context.Background(), "b1", pending, domain.BookingStatusConfirmed, "")

		assert.ErrorIs(mt, err, domain.ErrBookingNotFound)
	})
}

func TestUserRepo_Create_Duplicate(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := NewUserRepo(mt.DB).Create(context.Background(), &domain.User{ID: "u1", Username: "asha"})

		assert.ErrorIs(mt, err, domain.ErrUsernameTaken)
	})
}
