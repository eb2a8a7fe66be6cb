package user

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

var _ UserRepo = (*MongoUserRepo)(nil)

// UserRepo defines the contract for user data persistence.
type UserRepo interface {
	// GetUserByID retrieves a user document by its hex id.
	// Returns types.ErrNotFound if the user doesn't exist.
	GetUserByID(ctx context.Context, userID string) (*types.User, error)

	// UpdateProfile applies a partial $set update and returns the updated
	// document. Fields already hashed/filtered by the service layer.
	// Returns types.ErrNotFound if the user doesn't exist.
	UpdateProfile(ctx context.Context, userID string, set bson.M) (*types.User, error)

	// DeleteUser removes the user document.
	// Returns types.ErrNotFound if the user doesn't exist.
	DeleteUser(ctx context.Context, userID string) error
}

type MongoUserRepo struct {
	logger *slog.Logger
	users  *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database, logger *slog.Logger) *MongoUserRepo {
	return &MongoUserRepo{
		logger: logger,
		users:  db.Collection("users"),
	}
}

func (r *MongoUserRepo) GetUserByID(ctx context.Context, userID string) (*types.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", types.ErrNotFound)
	}

	var user types.User
	err = r.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (r *MongoUserRepo) UpdateProfile(ctx context.Context, userID string, set bson.M) (*types.User, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", types.ErrNotFound)
	}

	set["updated_at"] = time.Now()

	start := time.Now()
	var updated types.User
	err = r.users.FindOneAndUpdate(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	metrics.Get().DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, types.ErrNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: username or email already taken", types.ErrConflict)
		}
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &updated, nil
}

func (r *MongoUserRepo) DeleteUser(ctx context.Context, userID string) error {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return fmt.Errorf("%w: invalid user id", types.ErrNotFound)
	}

	res, err := r.users.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		metrics.Get().DbQueryErrorsTotal.Add(ctx, 1)
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return types.ErrNotFound
	}
	return nil
}
