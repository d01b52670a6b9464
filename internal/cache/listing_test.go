package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/Saloni021-kashyap/Tripkart/internal/service/ports/mocks"
	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/logger"
)

const ttl = 5 * time.Minute

func newTestLogger(t *testing.T) logger.Logger {
	t.Helper()
	log, err := logger.InitLogger("slog", "test", "test", logger.WithLevel(logger.ErrorLevel))
	if err != nil {
		t.Fatalf("init test logger: %v", err)
	}
	return log
}

func setup(t *testing.T) (*ListingRepo, *mocks.MockListingRepo, redismock.ClientMock) {
	t.Helper()
	db, rmock := redismock.NewClientMock()
	next := mocks.NewMockListingRepo(t)
	t.Cleanup(func() { assert.NoError(t, rmock.ExpectationsWereMet()) })
	return NewListingRepo(next, db, ttl, newTestLogger(t)), next, rmock
}

func listing() *domain.Listing {
	return &domain.Listing{
		ID:             "l1",
		Title:          "Goa Weekend",
		TotalSeats:     20,
		AvailableSeats: 5,
		CreatedAt:      time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestListingCache_GetByID_Hit(t *testing.T) {
	repo, _, rmock := setup(t)

	raw, err := json.Marshal(listing())
	require.NoError(t, err)
	rmock.ExpectGet("tripkart:listing:l1").SetVal(string(raw))

	l, err := repo.GetByID(context.Background(), "l1")

	require.NoError(t, err)
	assert.Equal(t, listing(), l)
}

func TestListingCache_GetByID_MissLoadsAndStores(t *testing.T) {
	repo, next, rmock := setup(t)

	raw, err := json.Marshal(listing())
	require.NoError(t, err)
	rmock.ExpectGet("tripkart:listing:l1").RedisNil()
	next.EXPECT().GetByID(mock.Anything, "l1").Return(listing(), nil)
	rmock.ExpectSet("tripkart:listing:l1", raw, ttl).SetVal("OK")

	l, err := repo.GetByID(context.Background(), "l1")

	require.NoError(t, err)
	assert.Equal(t, 5, l.AvailableSeats)
}

func TestListingCache_GetByID_NotFoundIsNotCached(t *testing.T) {
	repo, next, rmock := setup(t)

	rmock.ExpectGet("tripkart:listing:missing").RedisNil()
	next.EXPECT().GetByID(mock.Anything, "missing").Return(nil, domain.ErrListingNotFound)

	_, err := repo.GetByID(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrListingNotFound)
}

func TestListingCache_GetByID_RedisDownFallsThrough(t *testing.T) {
	repo, next, rmock := setup(t)

	raw, err := json.Marshal(listing())
	require.NoError(t, err)
	rmock.ExpectGet("tripkart:listing:l1").SetErr(errors.New("connection refused"))
	next.EXPECT().GetByID(mock.Anything, "l1").Return(listing(), nil)
	rmock.ExpectSet("tripkart:listing:l1", raw, ttl).SetErr(errors.New("connection refused"))

	l, err := repo.GetByID(context.Background(), "l1")

	require.NoError(t, err)
	assert.Equal(t, "l1", l.ID)
}

func TestListingCache_RestoreSeats_Evicts(t *testing.T) {
	repo, next, rmock := setup(t)

	restored := listing()
	restored.AvailableSeats = 7
	next.EXPECT().RestoreSeats(mock.Anything, "l1", 2).Return(restored, nil)
	rmock.ExpectDel("tripkart:listing:l1").SetVal(1)

	l, err := repo.RestoreSeats(context.Background(), "l1", 2)

	require.NoError(t, err)
	assert.Equal(t, 7, l.AvailableSeats)
}

func TestListingCache_UpdateAndDelete_Evict(t *testing.T) {
	repo, next, rmock := setup(t)

	next.EXPECT().Update(mock.Anything, mock.Anything, false).Return(listing(), nil)
	rmock.ExpectDel("tripkart:listing:l1").SetVal(1)
	next.EXPECT().Delete(mock.Anything, "l1").Return(nil)
	rmock.ExpectDel("tripkart:listing:l1").SetVal(0)

	_, err := repo.Update(context.Background(), listing(), false)
	require.NoError(t, err)
	require.NoError(t, repo.Delete(context.Background(), "l1"))
}

func TestListingCache_ClampSeats_EvictsRepaired(t *testing.T) {
	repo, next, rmock := setup(t)

	next.EXPECT().ClampSeats(mock.Anything).Return([]*domain.Listing{{ID: "a"}, {ID: "b"}}, nil)
	rmock.ExpectDel("tripkart:listing:a", "tripkart:listing:b").SetVal(2)

	repaired, err := repo.ClampSeats(context.Background())

	require.NoError(t, err)
	assert.Len(t, repaired, 2)
}

func TestListingCache_ClampSeats_NothingToEvict(t *testing.T) {
	repo, next, _ := setup(t)

	next.EXPECT().ClampSeats(mock.Anything).Return(nil, nil)

	repaired, err := repo.ClampSeats(context.Background())

	require.NoError(t, err)
	assert.Empty(t, repaired)
}
