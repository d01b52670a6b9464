package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

const bookingColumns = `id, listing_id, user_id, customer_name, phone, persons, travel_date,
	status, cancel_reason, created_at, updated_at`

type BookingRepository struct {
	db       *dbpg.DB
	strategy retry.Strategy
}

func NewBookingRepo(db *dbpg.DB) *BookingRepository {
	return &BookingRepository{
		db: db,
		strategy: retry.Strategy{
			Attempts: 3,
			Delay:    500 * time.Millisecond,
			Backoff:  2,
		},
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	query := `INSERT INTO bookings (` + bookingColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.db.ExecWithRetry(
		ctx, r.strategy, query,
		b.ID, b.ListingID, b.UserID, b.CustomerName, b.Phone, b.Persons, b.TravelDate,
		b.Status, b.CancelReason, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}

	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	row, err := r.db.QueryRowWithRetry(ctx, r.strategy, query, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}

	b, err := scanBooking(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan booking: %w", err)
	}

	return b, nil
}

// Transition is a single conditional UPDATE, so of several concurrent
// callers moving the same booking only one gets the row back. It is not
// retried: a replay after a lost reply would report a conflict for an
// update that actually happened.
func (r *BookingRepository) Transition(
	ctx context.Context,
	id string,
	from []domain.BookingStatus,
	to domain.BookingStatus,
	reason string,
) (*domain.Booking, error) {
	query := `UPDATE bookings
			  SET status = $3,
			      cancel_reason = COALESCE(NULLIF($4, ''), cancel_reason),
			      updated_at = now()
			  WHERE id = $1 AND status = ANY($2)
			  RETURNING ` + bookingColumns

	b, err := scanBooking(r.db.Master.QueryRowContext(ctx, query, id, pq.Array(from), to, reason))
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, conflictOr("update booking status", err)
	}

	var exists bool
	row, err := r.db.QueryRowWithRetry(ctx, r.strategy, `SELECT EXISTS (SELECT 1 FROM bookings WHERE id = $1)`, id)
	if err != nil {
		return nil, fmt.Errorf("check booking: %w", err)
	}
	if err = row.Scan(&exists); err != nil {
		return nil, fmt.Errorf("scan booking existence: %w", err)
	}
	if !exists {
		return nil, domain.ErrBookingNotFound
	}

	return nil, domain.ErrStatusConflict
}

func (r *BookingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
			  FROM bookings
			  WHERE user_id = $1
			  ORDER BY created_at DESC`

	return r.list(ctx, "list bookings by user", query, userID)
}

func (r *BookingRepository) ListAll(ctx context.Context) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
			  FROM bookings
			  ORDER BY created_at DESC`

	return r.list(ctx, "list bookings", query)
}

func (r *BookingRepository) ListActiveByListing(ctx context.Context, listingID string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + `
			  FROM bookings
			  WHERE listing_id = $1 AND status = ANY($2)
			  ORDER BY created_at DESC`

	return r.list(ctx, "list active bookings", query, listingID, pq.Array(domain.ActiveStatuses))
}

func (r *BookingRepository) CountByStatus(ctx context.Context, userID *string) (map[domain.BookingStatus]int, error) {
	query := `SELECT status, COUNT(*)
			  FROM bookings
			  WHERE $1::uuid IS NULL OR user_id = $1::uuid
			  GROUP BY status`

	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query, userID)
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.BookingStatus]int)
	for rows.Next() {
		var (
			status domain.BookingStatus
			n      int
		)
		if err = rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[status] = n
	}

	return counts, rows.Err()
}

func (r *BookingRepository) list(ctx context.Context, op, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var res []*domain.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		res = append(res, b)
	}

	return res, rows.Err()
}

func scanBooking(s scanner) (*domain.Booking, error) {
	var b domain.Booking
	err := s.Scan(
		&b.ID, &b.ListingID, &b.UserID, &b.CustomerName, &b.Phone, &b.Persons, &b.TravelDate,
		&b.Status, &b.CancelReason, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}
