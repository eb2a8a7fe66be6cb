package user

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/homefindr/estate-api/internal/api/auth"
	"github.com/homefindr/estate-api/internal/types"
)

// Ensure implementation satisfies the interface
var _ UserService = (*UserServiceImpl)(nil)

// UserService defines the business logic contract for user operations.
// Every mutation checks that the acting identity owns the target account.
type UserService interface {
	GetUser(ctx context.Context, userID string) (*types.User, error)
	UpdateProfile(ctx context.Context, targetID, callerID string, params types.UpdateProfileParams) (*types.User, error)
	DeleteUser(ctx context.Context, targetID, callerID string) error
}

type UserServiceImpl struct {
	logger *slog.Logger
	repo   UserRepo
}

// NewUserService creates a new user service instance.
func NewUserService(repo UserRepo, logger *slog.Logger) *UserServiceImpl {
	return &UserServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

// GetUser retrieves a user by ID. The password hash never leaves the JSON
// boundary (json:"-" on the field).
func (s *UserServiceImpl) GetUser(ctx context.Context, userID string) (*types.User, error) {
	l := s.logger.With(slog.String("method", "GetUser"), slog.String("userID", userID))
	l.DebugContext(ctx, "Fetching user")

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch user", slog.Any("error", err))
		return nil, err
	}
	return user, nil
}

// UpdateProfile applies a partial update to the caller's own account.
// Only non-empty fields are written (selective merge); a provided password
// is replaced by its bcrypt hash before persistence.
func (s *UserServiceImpl) UpdateProfile(ctx context.Context, targetID, callerID string, params types.UpdateProfileParams) (*types.User, error) {
	ctx, span := otel.Tracer("UserService").Start(ctx, "UpdateProfile", trace.WithAttributes(
		attribute.String("user.id", targetID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "UpdateProfile"), slog.String("targetID", targetID))

	if !auth.IsOwner(callerID, targetID) {
		l.WarnContext(ctx, "Caller is not the account owner", slog.String("callerID", callerID))
		span.SetStatus(codes.Error, "Forbidden")
		return nil, fmt.Errorf("%w: you can only update your own account", types.ErrForbidden)
	}

	set := bson.M{}
	if params.Username != "" {
		set["username"] = params.Username
	}
	if params.Email != "" {
		set["email"] = params.Email
	}
	if params.Avatar != "" {
		set["avatar"] = params.Avatar
	}
	if params.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		set["password"] = string(hashed)
	}

	if len(set) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", types.ErrValidation)
	}

	updated, err := s.repo.UpdateProfile(ctx, targetID, set)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update profile", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update profile")
		return nil, err
	}

	l.InfoContext(ctx, "Profile updated")
	span.SetStatus(codes.Ok, "Profile updated")
	return updated, nil
}

// DeleteUser removes the caller's own account. Listings owned by the user
// are deliberately left in place (no cross-document transaction).
func (s *UserServiceImpl) DeleteUser(ctx context.Context, targetID, callerID string) error {
	ctx, span := otel.Tracer("UserService").Start(ctx, "DeleteUser", trace.WithAttributes(
		attribute.String("user.id", targetID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "DeleteUser"), slog.String("targetID", targetID))

	if !auth.IsOwner(callerID, targetID) {
		l.WarnContext(ctx, "Caller is not the account owner", slog.String("callerID", callerID))
		span.SetStatus(codes.Error, "Forbidden")
		return fmt.Errorf("%w: you can only delete your own account", types.ErrForbidden)
	}

	if err := s.repo.DeleteUser(ctx, targetID); err != nil {
		l.ErrorContext(ctx, "Failed to delete user", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete user")
		return err
	}

	l.InfoContext(ctx, "User deleted")
	span.SetStatus(codes.Ok, "User deleted")
	return nil
}
