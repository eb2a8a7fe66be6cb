package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/homefindr/estate-api/internal/types"
)

var _ AuthRepo = (*MongoAuthRepo)(nil)

// AuthRepo defines the account persistence needed by the auth service.
type AuthRepo interface {
	// CreateUser inserts a new account. Returns types.ErrConflict when the
	// username or email is already taken.
	CreateUser(ctx context.Context, user *types.User) (*types.User, error)

	// GetUserByEmail returns types.ErrNotFound when no account matches.
	GetUserByEmail(ctx context.Context, email string) (*types.User, error)

	// GetUserByID returns types.ErrNotFound when no account matches.
	GetUserByID(ctx context.Context, id string) (*types.User, error)
}

type MongoAuthRepo struct {
	logger *slog.Logger
	users  *mongo.Collection
}

func NewMongoAuthRepo(db *mongo.Database, logger *slog.Logger) *MongoAuthRepo {
	return &MongoAuthRepo{
		logger: logger,
		users:  db.Collection("users"),
	}
}

func (r *MongoAuthRepo) CreateUser(ctx context.Context, user *types.User) (*types.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := r.users.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, fmt.Errorf("%w: username or email already taken", types.ErrConflict)
		}
		return nil, fmt.Errorf("failed to insert user: %w", err)
	}

	user.ID = res.InsertedID.(primitive.ObjectID)
	return user, nil
}

func (r *MongoAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.User, error) {
	var user types.User
	err := r.users.FindOne(ctx, bson.M{"email": email}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user by email: %w", err)
	}
	return &user, nil
}

func (r *MongoAuthRepo) GetUserByID(ctx context.Context, id string) (*types.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid user id", types.ErrNotFound)
	}

	var user types.User
	err = r.users.FindOne(ctx, bson.M{"_id": oid}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, types.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user by id: %w", err)
	}
	return &user, nil
}
