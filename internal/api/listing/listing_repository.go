package listing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/homefindr/estate-api/app/observability/metrics"
	"github.com/homefindr/estate-api/internal/types"
)

var _ ListingRepo = (*MongoListingRepo)(nil)

// ListingRepo defines the contract for listing data persistence. Writes are
// atomic per document; concurrent owner updates are last-write-wins.
type ListingRepo interface {
	CreateListing(ctx context.Context, listing *types.Listing) (*types.Listing, error)

	// GetListingByID returns types.ErrNotFound if the id doesn't resolve.
	GetListingByID(ctx context.Context, listingID string) (*types.Listing, error)

	// UpdateListing replaces the mutable fields and returns the updated
	// document. The user_ref field is never part of the $set document.
	UpdateListing(ctx context.Context, listingID string, set bson.M) (*types.Listing, error)

	// DeleteListing returns types.ErrNotFound if the id doesn't resolve.
	DeleteListing(ctx context.Context, listingID string) error

	// GetListingsByUser returns all listings owned by userRef, natural
	// storage order.
	GetListingsByUser(ctx context.Context, userRef string) ([]types.Listing, error)

	// SearchListings runs the public search query.
	SearchListings(ctx context.Context, params types.SearchListingsParams) ([]types.Listing, error)
}

type MongoListingRepo struct {
	logger   *slog.Logger
	listings *mongo.Collection
}

func NewMongoListingRepo(db *mongo.Database, logger *slog.Logger) *MongoListingRepo {
	return &MongoListingRepo{
		logger:   logger,
		listings: db.Collection("listings"),
	}
}

func (r *MongoListingRepo) CreateListing(ctx context.Context, listing *types.Listing) (*types.Listing, error) {
	now := time.Now()
	listing.CreatedAt = now
	listing.UpdatedAt = now

	start := time.Now()
	res, err := r.listings.InsertOne(ctx, listing)
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("failed to insert listing: %w", err)
	}

	listing.ID = res.InsertedID.(primitive.ObjectID)
	return listing, nil
}

func (r *MongoListingRepo) GetListingByID(ctx context.Context, listingID string) (*types.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid listing id", types.ErrNotFound)
	}

	var listing types.Listing
	err = r.listings.FindOne(ctx, bson.M{"_id": oid}).Decode(&listing)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch listing: %w", err)
	}
	return &listing, nil
}

func (r *MongoListingRepo) UpdateListing(ctx context.Context, listingID string, set bson.M) (*types.Listing, error) {
	oid, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid listing id", types.ErrNotFound)
	}

	set["updated_at"] = time.Now()

	start := time.Now()
	var updated types.Listing
	err = r.listings.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, types.ErrNotFound
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("failed to update listing: %w", err)
	}
	return &updated, nil
}

func (r *MongoListingRepo) DeleteListing(ctx context.Context, listingID string) error {
	oid, err := primitive.ObjectIDFromHex(listingID)
	if err != nil {
		return fmt.Errorf("%w: invalid listing id", types.ErrNotFound)
	}

	res, err := r.listings.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *MongoListingRepo) GetListingsByUser(ctx context.Context, userRef string) ([]types.Listing, error) {
	cursor, err := r.listings.Find(ctx, bson.M{"user_ref": userRef})
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer cursor.Close(ctx)

	listings := []types.Listing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, nil
}

// searchFilter maps the public search params onto a Mongo filter document.
// Nil booleans and type "all" mean the corresponding field is not filtered.
func searchFilter(params types.SearchListingsParams) bson.M {
	filter := bson.M{}

	if params.SearchTerm != "" {
		filter["name"] = bson.M{"$regex": params.SearchTerm, "$options": "i"}
	}
	if params.Offer != nil {
		filter["offer"] = *params.Offer
	}
	if params.Furnished != nil {
		filter["furnished"] = *params.Furnished
	}
	if params.Parking != nil {
		filter["parking"] = *params.Parking
	}
	if params.Type != "" && params.Type != "all" {
		filter["type"] = params.Type
	}
	return filter
}

// searchFindOptions applies the sort/pagination defaults: newest first,
// nine results per page.
func searchFindOptions(params types.SearchListingsParams) *options.FindOptions {
	sortField := params.Sort
	if sortField == "" {
		sortField = "created_at"
	}
	sortDir := -1
	if params.Order == "asc" {
		sortDir = 1
	}

	limit := params.Limit
	if limit <= 0 {
		limit = 9
	}

	return options.Find().
		SetSort(bson.D{{Key: sortField, Value: sortDir}}).
		SetSkip(params.StartIndex).
		SetLimit(limit)
}

func (r *MongoListingRepo) SearchListings(ctx context.Context, params types.SearchListingsParams) ([]types.Listing, error) {
	filter := searchFilter(params)
	opts := searchFindOptions(params)

	start := time.Now()
	cursor, err := r.listings.Find(ctx, filter, opts)
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("failed to search listings: %w", err)
	}
	defer cursor.Close(ctx)

	listings := []types.Listing{}
	if err := cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, nil
}
