package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/Saloni021-kashyap/Tripkart/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// outOfRange matches listings whose available seats left [0, total].
var outOfRange = bson.M{"$expr": bson.M{"$or": bson.A{
	bson.M{"$lt": bson.A{"$available_seats", 0}},
	bson.M{"$gt": bson.A{"$available_seats", "$total_seats"}},
}}}

type ListingRepo struct {
	coll *mongo.Collection
}

func NewListingRepo(db *mongo.Database) *ListingRepo {
	return &ListingRepo{coll: db.Collection(listingsCollection)}
}

func (r *ListingRepo) Create(ctx context.Context, l *domain.Listing) error {
	if _, err := r.coll.InsertOne(ctx, l); err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (r *ListingRepo) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	var l domain.Listing
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return &l, nil
}

// Update sets the editable fields. Without setAvailable the stored
// available_seats is only lowered to the new total via $min.
func (r *ListingRepo) Update(ctx context.Context, l *domain.Listing, setAvailable bool) (*domain.Listing, error) {
	set := bson.M{
		"title":          l.Title,
		"destination":    l.Destination,
		"description":    l.Description,
		"images":         l.Images,
		"price":          l.Price,
		"start_location": l.StartLocation,
		"end_location":   l.EndLocation,
		"travel_mode":    l.TravelMode,
		"category":       l.Category,
		"facilities":     l.Facilities,
		"total_seats":    l.TotalSeats,
		"is_active":      l.IsActive,
		"country":        l.Country,
		"updated_at":     l.UpdatedAt,
	}
	update := bson.M{"$set": set}
	if setAvailable {
		set["available_seats"] = l.AvailableSeats
	} else {
		update["$min"] = bson.M{"available_seats": l.TotalSeats}
	}

	var updated domain.Listing
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": l.ID}, update, returnAfter).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		return nil, conflictOr("update listing", err)
	}
	return &updated, nil
}

func (r *ListingRepo) Delete(ctx context.Context, id string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepo) List(ctx context.Context, filter domain.ListingFilter) ([]*domain.Listing, error) {
	query := bson.M{}
	if search := strings.TrimSpace(filter.Search); search != "" {
		re := primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": re},
			bson.M{"destination": re},
			bson.M{"category": re},
		}
	}

	cursor, err := r.coll.Find(ctx, query, newest)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}

	res := make([]*domain.Listing, 0)
	if err = cursor.All(ctx, &res); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}
	return res, nil
}

func (r *ListingRepo) Count(ctx context.Context) (int, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}
	return int(n), nil
}

// RestoreSeats applies the capped increment as one pipeline update on the
// listing document.
func (r *ListingRepo) RestoreSeats(ctx context.Context, id string, count int) (*domain.Listing, error) {
	update := mongo.Pipeline{{{Key: "$set", Value: bson.D{
		{Key: "available_seats", Value: bson.M{"$min": bson.A{
			"$total_seats",
			bson.M{"$add": bson.A{"$available_seats", count}},
		}}},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}}

	var l domain.Listing
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, returnAfter).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, domain.ErrListingNotFound
	}
	if err != nil {
		return nil, conflictOr("restore seats", err)
	}
	return &l, nil
}

func (r *ListingRepo) ClampSeats(ctx context.Context) ([]*domain.Listing, error) {
	cursor, err := r.coll.Find(ctx, outOfRange)
	if err != nil {
		return nil, fmt.Errorf("find out of range listings: %w", err)
	}

	var candidates []*domain.Listing
	if err = cursor.All(ctx, &candidates); err != nil {
		return nil, fmt.Errorf("decode listings: %w", err)
	}

	update := mongo.Pipeline{{{Key: "$set", Value: bson.D{
		{Key: "available_seats", Value: bson.M{"$min": bson.A{
			bson.M{"$max": bson.A{"$available_seats", 0}},
			"$total_seats",
		}}},
		{Key: "updated_at", Value: time.Now().UTC()},
	}}}}

	var repaired []*domain.Listing
	for _, c := range candidates {
		filter := bson.M{"_id": c.ID, "$expr": outOfRange["$expr"]}

		var l domain.Listing
		err = r.coll.FindOneAndUpdate(ctx, filter, update, returnAfter).Decode(&l)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return repaired, conflictOr("clamp seats", err)
		}
		repaired = append(repaired, &l)
	}

	return repaired, nil
}
