package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"golang.org/x/crypto/bcrypt"

	"github.com/homefindr/estate-api/config"
	"github.com/homefindr/estate-api/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

// AuthService defines the business logic contract for authentication.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*types.User, error)
	Login(ctx context.Context, email, password string) (string, *types.User, error)
	GetOrCreateUserFromProvider(ctx context.Context, provider string, providerUser goth.User) (string, *types.User, error)
}

type AuthServiceImpl struct {
	logger *slog.Logger
	repo   AuthRepo
	jwtCfg config.JWTConfig
}

func NewAuthService(repo AuthRepo, jwtCfg config.JWTConfig, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger: logger,
		repo:   repo,
		jwtCfg: jwtCfg,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *AuthServiceImpl) Register(ctx context.Context, username, email, password string) (*types.User, error) {
	l := s.logger.With(slog.String("method", "Register"), slog.String("email", email))

	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: username, email and password are required", types.ErrValidation)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &types.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create user", slog.Any("error", err))
		return nil, err
	}

	l.InfoContext(ctx, "User registered", slog.String("userID", created.ID.Hex()))
	return created, nil
}

// Login verifies credentials and issues a signed session credential.
func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (string, *types.User, error) {
	l := s.logger.With(slog.String("method", "Login"), slog.String("email", email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			return "", nil, fmt.Errorf("%w: wrong email or password", types.ErrUnauthenticated)
		}
		l.ErrorContext(ctx, "Failed to fetch user", slog.Any("error", err))
		return "", nil, fmt.Errorf("error fetching user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, fmt.Errorf("%w: wrong email or password", types.ErrUnauthenticated)
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		l.ErrorContext(ctx, "Failed to generate access token", slog.Any("error", err))
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	l.InfoContext(ctx, "User logged in", slog.String("userID", user.ID.Hex()))
	return token, user, nil
}

// GetOrCreateUserFromProvider signs in a user from an identity-provider
// profile, creating the account on first arrival with a generated username
// and a random password.
func (s *AuthServiceImpl) GetOrCreateUserFromProvider(ctx context.Context, provider string, providerUser goth.User) (string, *types.User, error) {
	l := s.logger.With(slog.String("method", "GetOrCreateUserFromProvider"), slog.String("provider", provider))

	if providerUser.Email == "" {
		return "", nil, fmt.Errorf("%w: provider profile has no email", types.ErrValidation)
	}

	user, err := s.repo.GetUserByEmail(ctx, providerUser.Email)
	if err != nil {
		if !errors.Is(err, types.ErrNotFound) {
			l.ErrorContext(ctx, "Failed to fetch user", slog.Any("error", err))
			return "", nil, fmt.Errorf("error fetching user: %w", err)
		}

		// First sign-in via this provider: the account gets a random
		// password the user can later replace through a profile update.
		randomPassword, hashErr := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), bcrypt.DefaultCost)
		if hashErr != nil {
			return "", nil, fmt.Errorf("failed to hash generated password: %w", hashErr)
		}

		user, err = s.repo.CreateUser(ctx, &types.User{
			Username: generateUsername(providerUser.Name),
			Email:    providerUser.Email,
			Password: string(randomPassword),
			Avatar:   providerUser.AvatarURL,
		})
		if err != nil {
			l.ErrorContext(ctx, "Failed to create provider user", slog.Any("error", err))
			return "", nil, err
		}
		l.InfoContext(ctx, "Provider user created", slog.String("userID", user.ID.Hex()))
	}

	token, err := s.generateAccessToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}
	return token, user, nil
}

func (s *AuthServiceImpl) generateAccessToken(user *types.User) (string, error) {
	now := time.Now()
	claims := types.Claims{
		UserID:   user.ID.Hex(),
		Username: user.Username,
		Email:    user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			Issuer:    s.jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{s.jwtCfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtCfg.Expiration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtCfg.SecretKey))
}

func generateUsername(name string) string {
	base := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	if base == "" {
		base = "user"
	}
	return base + uuid.NewString()[:4]
}
