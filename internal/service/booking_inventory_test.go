package service

import (
	"context"
	"sync"
	"testing"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/Saloni021-kashyap/Tripkart/internal/repository/memstore"
	"github.com/Saloni021-kashyap/Tripkart/internal/service/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type inventory struct {
	listings *memstore.ListingRepo
	bookings *memstore.BookingRepo
	svc      *BookingService
}

// newInventory wires the booking service to in-memory stores. Bookings are
// made as guests so no notification is sent.
func newInventory(t *testing.T) inventory {
	t.Helper()
	inv := inventory{
		listings: memstore.NewListingRepo(),
		bookings: memstore.NewBookingRepo(),
	}
	inv.svc = NewBookingService(inv.bookings, inv.listings, memstore.NewUserRepo(),
		mocks.NewMockBookingNotifier(t), BookingPolicy{AllowGuest: true}, newTestLogger(t))
	return inv
}

func (inv inventory) seed(t *testing.T, total, available int) string {
	t.Helper()
	l := &domain.Listing{ID: "l-" + t.Name(), TotalSeats: total, AvailableSeats: available}
	require.NoError(t, inv.listings.Create(context.Background(), l))
	return l.ID
}

func (inv inventory) book(t *testing.T, listingID string, persons int) *domain.Booking {
	t.Helper()
	in := validBookingInput()
	in.Persons = persons
	b, err := inv.svc.Create(context.Background(), listingID, in, nil)
	require.NoError(t, err)
	return b
}

func (inv inventory) available(t *testing.T, listingID string) int {
	t.Helper()
	l, err := inv.listings.GetByID(context.Background(), listingID)
	require.NoError(t, err)
	require.True(t, l.SeatsInRange(), "seats out of range: %d/%d", l.AvailableSeats, l.TotalSeats)
	return l.AvailableSeats
}

func TestInventory_CreateConfirmCancel(t *testing.T) {
	inv := newInventory(t)
	ctx := context.Background()
	listingID := inv.seed(t, 20, 5)

	b := inv.book(t, listingID, 2)
	assert.Equal(t, domain.BookingStatusPending, b.Status)
	assert.Equal(t, 5, inv.available(t, listingID))

	b, err := inv.svc.Confirm(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusConfirmed, b.Status)
	assert.Equal(t, 5, inv.available(t, listingID))

	b, err = inv.svc.Cancel(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, b.Status)
	assert.Equal(t, 7, inv.available(t, listingID))

	_, err = inv.svc.Cancel(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, inv.available(t, listingID))

	_, err = inv.svc.Confirm(ctx, b.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
}

func TestInventory_CreateAgainstMissingListing(t *testing.T) {
	inv := newInventory(t)

	_, err := inv.svc.Create(context.Background(), "missing", validBookingInput(), nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	all, err := inv.bookings.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestInventory_ConfirmMissingBooking(t *testing.T) {
	inv := newInventory(t)

	_, err := inv.svc.Confirm(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInventory_ConcurrentCancelOfDistinctBookings(t *testing.T) {
	for range 100 {
		inv := newInventory(t)
		listingID := inv.seed(t, 20, 10)
		b1 := inv.book(t, listingID, 2)
		b2 := inv.book(t, listingID, 3)

		var wg sync.WaitGroup
		for _, id := range []string{b1.ID, b2.ID} {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := inv.svc.Cancel(context.Background(), id)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		require.Equal(t, 15, inv.available(t, listingID))
	}
}

func TestInventory_ConcurrentCancelOfSameBookingRestoresOnce(t *testing.T) {
	inv := newInventory(t)
	listingID := inv.seed(t, 20, 10)
	b := inv.book(t, listingID, 4)

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := inv.svc.Cancel(context.Background(), b.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 14, inv.available(t, listingID))
}

func TestInventory_RestoreNeverExceedsTotal(t *testing.T) {
	inv := newInventory(t)
	listingID := inv.seed(t, 10, 9)
	b := inv.book(t, listingID, 4)

	_, err := inv.svc.Cancel(context.Background(), b.ID)
	require.NoError(t, err)

	assert.Equal(t, 10, inv.available(t, listingID))
}

func TestInventory_CancelAfterListingDeleted(t *testing.T) {
	inv := newInventory(t)
	listingID := inv.seed(t, 10, 5)
	b := inv.book(t, listingID, 2)
	require.NoError(t, inv.listings.Delete(context.Background(), listingID))

	cancelled, err := inv.svc.Cancel(context.Background(), b.ID)

	require.NoError(t, err)
	assert.Equal(t, domain.BookingStatusCancelled, cancelled.Status)
}

// An unguarded read-modify-write cancellation restores seats on every call
// and breaks the seat bound; the service must not.
func TestInventory_UnguardedDoubleRestoreBreaksBound(t *testing.T) {
	ctx := context.Background()

	naive := newInventory(t)
	listingID := naive.seed(t, 10, 8)
	b := naive.book(t, listingID, 2)

	naiveCancel := func() {
		booking, err := naive.bookings.GetByID(ctx, b.ID)
		require.NoError(t, err)
		listing, err := naive.listings.GetByID(ctx, booking.ListingID)
		require.NoError(t, err)
		listing.AvailableSeats += booking.Persons
		_, err = naive.listings.Update(ctx, listing, true)
		require.NoError(t, err)
	}
	naiveCancel()
	naiveCancel()

	l, err := naive.listings.GetByID(ctx, listingID)
	require.NoError(t, err)
	assert.False(t, l.SeatsInRange(), "unguarded restore should overshoot: %d/%d", l.AvailableSeats, l.TotalSeats)

	guarded := newInventory(t)
	listingID = guarded.seed(t, 10, 8)
	b = guarded.book(t, listingID, 2)
	for range 2 {
		_, err = guarded.svc.Cancel(ctx, b.ID)
		require.NoError(t, err)
	}
	assert.Equal(t, 10, guarded.available(t, listingID))
}

// readHook runs fn once, right after the first GetByID of a listing returns.
type readHook struct {
	*memstore.ListingRepo
	once sync.Once
	fn   func()
}

func (h *readHook) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	l, err := h.ListingRepo.GetByID(ctx, id)
	h.once.Do(h.fn)
	return l, err
}

func TestInventory_AdminEditDoesNotLoseRestoredSeats(t *testing.T) {
	inv := newInventory(t)
	ctx := context.Background()
	listingID := inv.seed(t, 20, 5)
	b := inv.book(t, listingID, 2)

	hooked := &readHook{ListingRepo: inv.listings, fn: func() {
		_, err := inv.svc.Cancel(ctx, b.ID)
		require.NoError(t, err)
	}}
	listings := NewListingService(hooked, inv.bookings, "", newTestLogger(t))

	in := validListingInput()
	in.Title = "Renamed while a cancellation lands"
	in.TotalSeats = 20

	updated, err := listings.Update(ctx, listingID, in)

	require.NoError(t, err)
	assert.Equal(t, 7, updated.AvailableSeats)
	assert.Equal(t, 7, inv.available(t, listingID))
}
