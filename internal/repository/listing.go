package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/lib/pq"
	"github.com/wb-go/wbf/dbpg"
	"github.com/wb-go/wbf/retry"
)

const listingColumns = `id, title, destination, description, images, price, start_location, end_location,
	travel_mode, category, facilities, total_seats, available_seats, is_active, country, created_at, updated_at`

type ListingRepository struct {
	db       *dbpg.DB
	strategy retry.Strategy
}

func NewListingRepo(db *dbpg.DB) *ListingRepository {
	return &ListingRepository{
		db: db,
		strategy: retry.Strategy{
			Attempts: 3,
			Delay:    500 * time.Millisecond,
			Backoff:  2,
		},
	}
}

func (r *ListingRepository) Create(ctx context.Context, l *domain.Listing) error {
	images, err := json.Marshal(l.Images)
	if err != nil {
		return fmt.Errorf("encode images: %w", err)
	}

	query := `INSERT INTO listings (` + listingColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err = r.db.ExecWithRetry(
		ctx, r.strategy, query,
		l.ID, l.Title, l.Destination, l.Description, images, l.Price, l.StartLocation, l.EndLocation,
		l.TravelMode, l.Category, pq.Array(l.Facilities), l.TotalSeats, l.AvailableSeats, l.IsActive,
		l.Country, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}

	return nil
}

func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	query := `SELECT ` + listingColumns + ` FROM listings WHERE id = $1`

	row, err := r.db.QueryRowWithRetry(ctx, r.strategy, query, id)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}

	l, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan listing: %w", err)
	}

	return l, nil
}

// Update never writes back an available_seats value it read earlier unless
// the caller asked for it, so a concurrent RestoreSeats is not lost.
func (r *ListingRepository) Update(ctx context.Context, l *domain.Listing, setAvailable bool) (*domain.Listing, error) {
	images, err := json.Marshal(l.Images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}

	query := `UPDATE listings
			  SET title = $2, destination = $3, description = $4, images = $5, price = $6,
			      start_location = $7, end_location = $8, travel_mode = $9, category = $10,
			      facilities = $11, total_seats = $12::int,
			      available_seats = CASE WHEN $17::boolean THEN $13::int
			                             ELSE LEAST(available_seats, $12::int) END,
			      is_active = $14, country = $15, updated_at = $16
			  WHERE id = $1
			  RETURNING ` + listingColumns
	row, err := r.db.QueryRowWithRetry(
		ctx, r.strategy, query,
		l.ID, l.Title, l.Destination, l.Description, images, l.Price, l.StartLocation, l.EndLocation,
		l.TravelMode, l.Category, pq.Array(l.Facilities), l.TotalSeats, l.AvailableSeats, l.IsActive,
		l.Country, l.UpdatedAt, setAvailable,
	)
	if err != nil {
		return nil, conflictOr("update listing", err)
	}

	updated, err := scanListing(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		return nil, conflictOr("update listing", err)
	}

	return updated, nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecWithRetry(ctx, r.strategy, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}

	return expectAffected(res, domain.ErrListingNotFound)
}

func (r *ListingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	query := `SELECT ` + listingColumns + `
			  FROM listings
			  WHERE $1::text = ''
			     OR title ILIKE '%' || $1 || '%'
			     OR destination ILIKE '%' || $1 || '%'
			     OR category ILIKE '%' || $1 || '%'
			  ORDER BY created_at DESC`

	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query, escapeLike(strings.TrimSpace(filter.Search)))
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

func (r *ListingRepository) Count(ctx context.Context) (int, error) {
	row, err := r.db.QueryRowWithRetry(ctx, r.strategy, `SELECT COUNT(*) FROM listings`)
	if err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}

	var n int
	if err = row.Scan(&n); err != nil {
		return 0, fmt.Errorf("scan count: %w", err)
	}
	return n, nil
}

// RestoreSeats runs on the master connection without the retry helper: the
// increment is not idempotent and must not be replayed after an ambiguous
// failure.
func (r *ListingRepository) RestoreSeats(ctx context.Context, id string, count int) (*domain.Listing, error) {
	query := `UPDATE listings
			  SET available_seats = LEAST(total_seats, available_seats + $2), updated_at = now()
			  WHERE id = $1
			  RETURNING ` + listingColumns

	l, err := scanListing(r.db.Master.QueryRowContext(ctx, query, id, count))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		return nil, conflictOr("restore seats", err)
	}

	return l, nil
}

func (r *ListingRepository) ClampSeats(ctx context.Context) ([]*domain.Listing, error) {
	query := `UPDATE listings
			  SET available_seats = LEAST(GREATEST(available_seats, 0), total_seats), updated_at = now()
			  WHERE available_seats < 0 OR available_seats > total_seats
			  RETURNING ` + listingColumns

	rows, err := r.db.QueryWithRetry(ctx, r.strategy, query)
	if err != nil {
		return nil, conflictOr("clamp seats", err)
	}
	defer rows.Close()

	return collectListings(rows)
}

func collectListings(rows *sql.Rows) ([]*domain.Listing, error) {
	var res []*domain.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		res = append(res, l)
	}

	return res, rows.Err()
}

func scanListing(s scanner) (*domain.Listing, error) {
	var (
		l      domain.Listing
		images []byte
	)
	err := s.Scan(
		&l.ID, &l.Title, &l.Destination, &l.Description, &images, &l.Price, &l.StartLocation,
		&l.EndLocation, &l.TravelMode, &l.Category, pq.Array(&l.Facilities), &l.TotalSeats,
		&l.AvailableSeats, &l.IsActive, &l.Country, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err = json.Unmarshal(images, &l.Images); err != nil {
		return nil, fmt.Errorf("decode images: %w", err)
	}

	return &l, nil
}

func expectAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
