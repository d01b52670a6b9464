package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"github.com/Saloni021-kashyap/Tripkart/internal/service/ports"
	"github.com/redis/go-redis/v9"
	"github.com/wb-go/wbf/logger"
)

const keyPrefix = "tripkart:listing:"

// ListingRepo is a read-through Redis cache in front of another
// ports.ListingRepo. Only single listings are cached; every write evicts
// the affected keys so seat counts are never served stale after a change.
type ListingRepo struct {
	ports.ListingRepo

	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewListingRepo(next ports.ListingRepo, rdb *redis.Client, ttl time.Duration, logger logger.Logger) *ListingRepo {
	return &ListingRepo{
		ListingRepo: next,
		rdb:         rdb,
		ttl:         ttl,
		logger:      logger,
	}
}

func (r *ListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	raw, err := r.rdb.Get(ctx, key(id)).Bytes()
	switch {
	case err == nil:
		var l domain.Listing
		if err = json.Unmarshal(raw, &l); err == nil {
			return &l, nil
		}
		r.logger.Warn("drop undecodable cached listing",
			logger.String("listing_id", id),
			logger.String("error", err.Error()),
		)
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("listing cache read failed",
			logger.String("listing_id", id),
			logger.String("error", err.Error()),
		)
	}

	l, err := r.ListingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	r.store(ctx, l)
	return l, nil
}

func (r *ListingRepo) Update(ctx context.Context, l *domain.Listing, setAvailable bool) (*domain.Listing, error) {
	defer r.evict(ctx, l.ID)
	return r.ListingRepo.Update(ctx, l, setAvailable)
}

func (r *ListingRepo) Delete(ctx context.Context, id string) error {
	defer r.evict(ctx, id)
	return r.ListingRepo.Delete(ctx, id)
}

func (r *ListingRepo) RestoreSeats(ctx context.Context, id string, count int) (*domain.Listing, error) {
	defer r.evict(ctx, id)
	return r.ListingRepo.RestoreSeats(ctx, id, count)
}

func (r *ListingRepo) ClampSeats(ctx context.Context) ([]*domain.Listing, error) {
	repaired, err := r.ListingRepo.ClampSeats(ctx)
	ids := make([]string, 0, len(repaired))
	for _, l := range repaired {
		ids = append(ids, l.ID)
	}
	r.evict(ctx, ids...)
	return repaired, err
}

func (r *ListingRepo) store(ctx context.Context, l *domain.Listing) {
	raw, err := json.Marshal(l)
	if err != nil {
		return
	}
	if err = r.rdb.Set(ctx, key(l.ID), raw, r.ttl).Err(); err != nil {
		r.logger.Warn("listing cache write failed",
			logger.String("listing_id", l.ID),
			logger.String("error", err.Error()),
		)
	}
}

func (r *ListingRepo) evict(ctx context.Context, ids ...string) {
	if len(ids) == 0 {
		return
	}
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, key(id))
	}
	if err := r.rdb.Del(context.WithoutCancel(ctx), keys...).Err(); err != nil {
		r.logger.Warn("listing cache eviction failed",
			logger.Any("keys", keys),
			logger.String("error", err.Error()),
		)
	}
}

func key(id string) string {
	return keyPrefix + id
}
