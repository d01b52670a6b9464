package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type BookingRepo struct {
	coll *mongo.Collection
}

func NewBookingRepo(db *mongo.Database) *BookingRepo {
	return &BookingRepo{coll: db.Collection(bookingsCollection)}
}

func (r *BookingRepo) Create(ctx context.Context, b *domain.Booking) error {
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("insert booking: %w", err)
	}
	return nil
}

func (r *BookingRepo) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	var b domain.Booking
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return &b, nil
}

func (r *BookingRepo) Transition(
	ctx context.Context,
	id string,
	from []domain.BookingStatus,
	to domain.BookingStatus,
	reason string,
) (*domain.Booking, error) {
	set := bson.M{"status": to, "updated_at": time.Now().UTC()}
	if reason != "" {
		set["cancel_reason"] = reason
	}

	var b domain.Booking
	err := r.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": bson.M{"$in": from}},
		bson.M{"$set": set},
		returnAfter,
	).Decode(&b)
	if err == nil {
		return &b, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, conflictOr("update booking status", err)
	}

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, fmt.Errorf("check booking: %w", err)
	}
	if n == 0 {
		return nil, domain.ErrBookingNotFound
	}
	return nil, domain.ErrStatusConflict
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID string) ([]*domain.Booking, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *BookingRepo) ListAll(ctx context.Context) ([]*domain.Booking, error) {
	return r.find(ctx, bson.M{})
}

func (r *BookingRepo) ListActiveByListing(ctx context.Context, listingID string) ([]*domain.Booking, error) {
	return r.find(ctx, bson.M{
		"listing_id": listingID,
		"status":     bson.M{"$in": domain.ActiveStatuses},
	})
}

func (r *BookingRepo) CountByStatus(ctx context.Context, userID *string) (map[domain.BookingStatus]int, error) {
	match := bson.M{}
	if userID != nil {
		match["user_id"] = *userID
	}

	cursor, err := r.coll.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$group", Value: bson.M{"_id": "$status", "n": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, fmt.Errorf("count bookings: %w", err)
	}

	var groups []struct {
		Status domain.BookingStatus `bson:"_id"`
		N      int                  `bson:"n"`
	}
	if err = cursor.All(ctx, &groups); err != nil {
		return nil, fmt.Errorf("decode counts: %w", err)
	}

	counts := make(map[domain.BookingStatus]int, len(groups))
	for _, g := range groups {
		counts[g.Status] = g.N
	}
	return counts, nil
}

func (r *BookingRepo) find(ctx context.Context, filter bson.M) ([]*domain.Booking, error) {
	cursor, err := r.coll.Find(ctx, filter, newest)
	if err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}

	res := make([]*domain.Booking, 0)
	if err = cursor.All(ctx, &res); err != nil {
		return nil, fmt.Errorf("decode bookings: %w", err)
	}
	return res, nil
}
