package listing

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/homefindr/estate-api/app/observability/metrics"
	"github.com/homefindr/estate-api/internal/api/auth"
	"github.com/homefindr/estate-api/internal/types"
)

var _ ListingService = (*ListingServiceImpl)(nil)

// ListingService defines the business logic contract for listing
// operations. Mutations require the caller to own the listing; userRef is
// always assigned server-side and never changes afterwards.
type ListingService interface {
	CreateListing(ctx context.Context, callerID string, params types.ListingParams) (*types.Listing, error)
	UpdateListing(ctx context.Context, listingID, callerID string, params types.ListingParams) (*types.Listing, error)
	DeleteListing(ctx context.Context, listingID, callerID string) error
	GetListing(ctx context.Context, listingID string) (*types.Listing, error)
	GetUserListings(ctx context.Context, targetID, callerID string) ([]types.Listing, error)
	SearchListings(ctx context.Context, params types.SearchListingsParams) ([]types.Listing, error)
}

type ListingServiceImpl struct {
	logger *slog.Logger
	repo   ListingRepo
}

func NewListingService(repo ListingRepo, logger *slog.Logger) *ListingServiceImpl {
	return &ListingServiceImpl{
		logger: logger,
		repo:   repo,
	}
}

// CreateListing validates the field set and persists a new listing owned by
// the caller. Any client-supplied owner reference is discarded.
func (s *ListingServiceImpl) CreateListing(ctx context.Context, callerID string, params types.ListingParams) (*types.Listing, error) {
	ctx, span := otel.Tracer("ListingService").Start(ctx, "CreateListing", trace.WithAttributes(
		attribute.String("user.id", callerID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "CreateListing"), slog.String("callerID", callerID))

	if err := validateListingParams(params); err != nil {
		l.WarnContext(ctx, "Listing validation failed", slog.Any("error", err))
		span.SetStatus(codes.Error, "Validation failed")
		return nil, err
	}

	listing := &types.Listing{
		Name:          params.Name,
		Description:   params.Description,
		Address:       params.Address,
		Type:          params.Type,
		Bedrooms:      params.Bedrooms,
		Bathrooms:     params.Bathrooms,
		RegularPrice:  params.RegularPrice,
		DiscountPrice: params.DiscountPrice,
		Offer:         params.Offer,
		Parking:       params.Parking,
		Furnished:     params.Furnished,
		ImageURLs:     params.ImageURLs,
		UserRef:       callerID, // authoritative, never trusted from client input
	}

	created, err := s.repo.CreateListing(ctx, listing)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create listing", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to create listing")
		return nil, fmt.Errorf("failed to create listing: %w", err)
	}

	metrics.Get().ListingMutationsTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Listing created", slog.String("listingID", created.ID.Hex()))
	span.SetStatus(codes.Ok, "Listing created")
	return created, nil
}

// UpdateListing replaces the mutable fields of a listing the caller owns.
func (s *ListingServiceImpl) UpdateListing(ctx context.Context, listingID, callerID string, params types.ListingParams) (*types.Listing, error) {
	ctx, span := otel.Tracer("ListingService").Start(ctx, "UpdateListing", trace.WithAttributes(
		attribute.String("listing.id", listingID),
		attribute.String("user.id", callerID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "UpdateListing"), slog.String("listingID", listingID))

	existing, err := s.repo.GetListingByID(ctx, listingID)
	if err != nil {
		l.WarnContext(ctx, "Listing lookup failed", slog.Any("error", err))
		span.RecordError(err)
		return nil, err
	}

	if !auth.IsOwner(callerID, existing.UserRef) {
		l.WarnContext(ctx, "Caller does not own listing", slog.String("callerID", callerID), slog.String("ownerID", existing.UserRef))
		span.SetStatus(codes.Error, "Forbidden")
		return nil, fmt.Errorf("%w: you can only update your own listings", types.ErrForbidden)
	}

	if err := validateListingParams(params); err != nil {
		l.WarnContext(ctx, "Listing validation failed", slog.Any("error", err))
		span.SetStatus(codes.Error, "Validation failed")
		return nil, err
	}

	// user_ref deliberately absent: ownership is immutable.
	set := bson.M{
		"name":           params.Name,
		"description":    params.Description,
		"address":        params.Address,
		"type":           params.Type,
		"bedrooms":       params.Bedrooms,
		"bathrooms":      params.Bathrooms,
		"regular_price":  params.RegularPrice,
		"discount_price": params.DiscountPrice,
		"offer":          params.Offer,
		"parking":        params.Parking,
		"furnished":      params.Furnished,
		"image_urls":     params.ImageURLs,
	}

	updated, err := s.repo.UpdateListing(ctx, listingID, set)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update listing", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to update listing")
		return nil, err
	}

	metrics.Get().ListingMutationsTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Listing updated")
	span.SetStatus(codes.Ok, "Listing updated")
	return updated, nil
}

// DeleteListing removes a listing the caller owns.
func (s *ListingServiceImpl) DeleteListing(ctx context.Context, listingID, callerID string) error {
	ctx, span := otel.Tracer("ListingService").Start(ctx, "DeleteListing", trace.WithAttributes(
		attribute.String("listing.id", listingID),
		attribute.String("user.id", callerID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "DeleteListing"), slog.String("listingID", listingID))

	existing, err := s.repo.GetListingByID(ctx, listingID)
	if err != nil {
		l.WarnContext(ctx, "Listing lookup failed", slog.Any("error", err))
		span.RecordError(err)
		return err
	}

	if !auth.IsOwner(callerID, existing.UserRef) {
		l.WarnContext(ctx, "Caller does not own listing", slog.String("callerID", callerID), slog.String("ownerID", existing.UserRef))
		span.SetStatus(codes.Error, "Forbidden")
		return fmt.Errorf("%w: you can only delete your own listings", types.ErrForbidden)
	}

	if err := s.repo.DeleteListing(ctx, listingID); err != nil {
		l.ErrorContext(ctx, "Failed to delete listing", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete listing")
		return err
	}

	metrics.Get().ListingMutationsTotal.Add(ctx, 1)
	l.InfoContext(ctx, "Listing deleted")
	span.SetStatus(codes.Ok, "Listing deleted")
	return nil
}

// GetListing retrieves a single listing for public display.
func (s *ListingServiceImpl) GetListing(ctx context.Context, listingID string) (*types.Listing, error) {
	l := s.logger.With(slog.String("method", "GetListing"), slog.String("listingID", listingID))
	l.DebugContext(ctx, "Fetching listing")

	listing, err := s.repo.GetListingByID(ctx, listingID)
	if err != nil {
		l.WarnContext(ctx, "Failed to fetch listing", slog.Any("error", err))
		return nil, err
	}
	return listing, nil
}

// GetUserListings returns all listings owned by targetID. Only the owner
// may list their own listings.
func (s *ListingServiceImpl) GetUserListings(ctx context.Context, targetID, callerID string) ([]types.Listing, error) {
	ctx, span := otel.Tracer("ListingService").Start(ctx, "GetUserListings", trace.WithAttributes(
		attribute.String("user.id", targetID),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "GetUserListings"), slog.String("targetID", targetID))

	if !auth.IsOwner(callerID, targetID) {
		l.WarnContext(ctx, "Caller may only view their own listings", slog.String("callerID", callerID))
		span.SetStatus(codes.Error, "Forbidden")
		return nil, fmt.Errorf("%w: you can only view your own listings", types.ErrForbidden)
	}

	listings, err := s.repo.GetListingsByUser(ctx, targetID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch user listings", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch user listings")
		return nil, fmt.Errorf("error fetching user listings: %w", err)
	}

	l.InfoContext(ctx, "User listings fetched", slog.Int("count", len(listings)))
	span.SetStatus(codes.Ok, "User listings fetched")
	return listings, nil
}

// SearchListings runs the public search.
func (s *ListingServiceImpl) SearchListings(ctx context.Context, params types.SearchListingsParams) ([]types.Listing, error) {
	l := s.logger.With(slog.String("method", "SearchListings"))
	l.DebugContext(ctx, "Searching listings", slog.String("searchTerm", params.SearchTerm))

	listings, err := s.repo.SearchListings(ctx, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to search listings", slog.Any("error", err))
		return nil, fmt.Errorf("error searching listings: %w", err)
	}
	return listings, nil
}

// validateListingParams enforces the listing field constraints shared by
// create and update.
func validateListingParams(p types.ListingParams) error {
	if p.Name == "" {
		return fmt.Errorf("%w: name is required", types.ErrValidation)
	}
	if p.Type != types.ListingTypeSale && p.Type != types.ListingTypeRent {
		return fmt.Errorf("%w: type must be %q or %q", types.ErrValidation, types.ListingTypeSale, types.ListingTypeRent)
	}
	if p.Bedrooms < 1 || p.Bathrooms < 1 {
		return fmt.Errorf("%w: bedrooms and bathrooms must be at least 1", types.ErrValidation)
	}
	if p.RegularPrice <= 0 {
		return fmt.Errorf("%w: regular price must be positive", types.ErrValidation)
	}
	if len(p.ImageURLs) < 1 || len(p.ImageURLs) > types.MaxListingImages {
		return fmt.Errorf("%w: a listing must have between 1 and %d images", types.ErrValidation, types.MaxListingImages)
	}
	if p.Offer && p.DiscountPrice >= p.RegularPrice {
		return fmt.Errorf("%w: discount price must be lower than regular price", types.ErrValidation)
	}
	return nil
}
