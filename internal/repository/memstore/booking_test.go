package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestBookingRepo_Transition(t *testing.T) {
	r := NewBookingRepo()
	require.NoError(t, r.Create(context.Background(), &domain.Booking{
		ID: "b1", ListingID: "l1", Status: domain.BookingStatusPending,
	}))

	b, err := r.Transition(context.Background(), "b1",
		[]domain.BookingStatus{domain.BookingStatusPending},
		domain.BookingStatusCancelRequested, "plans changed",
	)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelRequested, b.Status)
	assert.Equal(t, "plans changed", b.CancelReason)

	_, err = r.Transition(context.Background(), "b1",
		[]domain.BookingStatus{domain.BookingStatusPending},
		domain.BookingStatusConfirmed, "",
	)
	assert.ErrorIs(t, err, domain.ErrStatusConflict)

	_, err = r.Transition(context.Background(), "missing",
		[]domain.BookingStatus{domain.BookingStatusPending},
		domain.BookingStatusConfirmed, "",
	)
	assert.ErrorIs(t, err, domain.ErrBookingNotFound)
}

func TestBookingRepo_ListsAndCounts(t *testing.T) {
	r := NewBookingRepo()
	now := time.Now()
	for _, b := range []*domain.Booking{
		{ID: "b1", ListingID: "l1", UserID: strPtr("u1"), Status: domain.BookingStatusPending, CreatedAt: now},
		{ID: "b2", ListingID: "l1", UserID: strPtr("u1"), Status: domain.BookingStatusCancelled, CreatedAt: now.Add(time.Second)},
		{ID: "b3", ListingID: "l2", Status: domain.BookingStatusConfirmed, CreatedAt: now.Add(2 * time.Second)},
	} {
		require.NoError(t, r.Create(context.Background(), b))
	}

	mine, err := r.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "b2", mine[0].ID)

	all, err := r.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "b3", all[0].ID)

	active, err := r.ListActiveByListing(context.Background(), "l1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "b1", active[0].ID)

	counts, err := r.CountByStatus(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[domain.BookingStatusPending])
	assert.Equal(t, 1, counts[domain.BookingStatusConfirmed])
	assert.Equal(t, 1, counts[domain.BookingStatusCancelled])

	userCounts, err := r.CountByStatus(context.Background(), strPtr("u1"))
	require.NoError(t, err)
	assert.Zero(t, userCounts[domain.BookingStatusConfirmed])
	assert.Equal(t, 1, userCounts[domain.BookingStatusPending])
}

func TestUserRepo_UniqueUsername(t *testing.T) {
	r := NewUserRepo()
	require.NoError(t, r.Create(context.Background(), &domain.User{ID: "u1", Username: "alice", Email: "a@x.io"}))

	err := r.Create(context.Background(), &domain.User{ID: "u2", Username: "alice", Email: "b@x.io"})
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)

	u, err := r.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "u1", u.ID)

	_, err = r.GetByID(context.Background(), "u2")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}
