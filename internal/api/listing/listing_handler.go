package listing

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/homefindr/estate-api/internal/api"
	"github.com/homefindr/estate-api/internal/api/auth"
	"github.com/homefindr/estate-api/internal/types"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	CreateListing(w http.ResponseWriter, r *http.Request)
	UpdateListing(w http.ResponseWriter, r *http.Request)
	DeleteListing(w http.ResponseWriter, r *http.Request)
	GetListing(w http.ResponseWriter, r *http.Request)
	GetUserListings(w http.ResponseWriter, r *http.Request)
	SearchListings(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	listingService ListingService
	logger         *slog.Logger
}

func NewHandlerImpl(listingService ListingService, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		listingService: listingService,
		logger:         logger,
	}
}

// mutationError maps service errors to the stable status codes of the
// error taxonomy. Internal details never reach the client.
func mutationError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, types.ErrForbidden):
		api.ErrorResponse(w, r, http.StatusForbidden, err.Error())
	case errors.Is(err, types.ErrNotFound):
		api.ErrorResponse(w, r, http.StatusNotFound, "Listing not found")
	case errors.Is(err, types.ErrValidation):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	default:
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Internal server error")
	}
}

// CreateListing godoc
// @Summary      Create Listing
// @Description  Creates a listing owned by the authenticated caller.
// @Tags         Listing
// @Accept       json
// @Produce      json
// @Param        body body types.ListingParams true "Listing Fields"
// @Success      201 {object} types.Listing "Created Listing"
// @Failure      400 {object} types.Response "Validation Failed"
// @Failure      401 {object} types.Response "Unauthorized"
// @Security     BearerAuth
// @Router       /listing/create [post]
func (h *HandlerImpl) CreateListing(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ListingHandler").Start(r.Context(), "CreateListing")
	defer span.End()
	l := h.logger.With(slog.String("handler", "CreateListing"))

	callerID, ok := auth.GetUserIDFromContext(ctx)
	if !ok || callerID == "" {
		l.ErrorContext(ctx, "User ID not found in context")
		span.SetStatus(codes.Error, "Unauthorized - User ID missing")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var params types.ListingParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.listingService.CreateListing(ctx, callerID, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to create listing", slog.Any("error", err))
		span.RecordError(err)
		mutationError(w, r, err)
		return
	}

	span.SetAttributes(attribute.String("listing.id", created.ID.Hex()))
	span.SetStatus(codes.Ok, "Listing created")
	api.WriteJSONResponse(w, r, http.StatusCreated, created)
}

// UpdateListing godoc
// @Summary      Update Listing
// @Description  Replaces the mutable fields of a listing the caller owns. The owner reference cannot change.
// @Tags         Listing
// @Accept       json
// @Produce      json
// @Param        body body types.ListingParams true "Listing Fields"
// @Success      200 {object} types.Listing "Updated Listing"
// @Failure      403 {object} types.Response "Not Listing Owner"
// @Failure      404 {object} types.Response "Listing Not Found"
// @Security     BearerAuth
// @Router       /listing/update/{id} [post]
func (h *HandlerImpl) UpdateListing(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ListingHandler").Start(r.Context(), "UpdateListing")
	defer span.End()
	l := h.logger.With(slog.String("handler", "UpdateListing"))

	callerID, ok := auth.GetUserIDFromContext(ctx)
	if !ok || callerID == "" {
		l.ErrorContext(ctx, "User ID not found in context")
		span.SetStatus(codes.Error, "Unauthorized - User ID missing")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	listingID := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("listing.id", listingID))

	var params types.ListingParams
	if err := api.DecodeJSONBody(w, r, &params); err != nil {
		l.WarnContext(ctx, "Failed to decode request", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	updated, err := h.listingService.UpdateListing(ctx, listingID, callerID, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update listing", slog.Any("error", err))
		span.RecordError(err)
		mutationError(w, r, err)
		return
	}

	span.SetStatus(codes.Ok, "Listing updated")
	api.WriteJSONResponse(w, r, http.StatusOK, updated)
}

// DeleteListing godoc
// @Summary      Delete Listing
// @Description  Removes a listing the caller owns.
// @Tags         Listing
// @Produce      json
// @Success      200 {object} types.Response "Deleted"
// @Failure      403 {object} types.Response "Not Listing Owner"
// @Failure      404 {object} types.Response "Listing Not Found"
// @Security     BearerAuth
// @Router       /listing/delete/{id} [delete]
func (h *HandlerImpl) DeleteListing(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ListingHandler").Start(r.Context(), "DeleteListing")
	defer span.End()
	l := h.logger.With(slog.String("handler", "DeleteListing"))

	callerID, ok := auth.GetUserIDFromContext(ctx)
	if !ok || callerID == "" {
		l.ErrorContext(ctx, "User ID not found in context")
		span.SetStatus(codes.Error, "Unauthorized - User ID missing")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	listingID := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("listing.id", listingID))

	if err := h.listingService.DeleteListing(ctx, listingID, callerID); err != nil {
		l.ErrorContext(ctx, "Failed to delete listing", slog.Any("error", err))
		span.RecordError(err)
		mutationError(w, r, err)
		return
	}

	span.SetStatus(codes.Ok, "Listing deleted")
	api.WriteJSONResponse(w, r, http.StatusOK, types.Response{
		Success: true,
		Message: "Listing has been deleted",
	})
}

// GetListing godoc
// @Summary      Get Listing
// @Description  Retrieves a single listing for public display.
// @Tags         Listing
// @Produce      json
// @Success      200 {object} types.Listing "Listing"
// @Failure      404 {object} types.Response "Listing Not Found"
// @Router       /listing/get/{id} [get]
func (h *HandlerImpl) GetListing(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ListingHandler").Start(r.Context(), "GetListing")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetListing"))

	listingID := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("listing.id", listingID))

	listing, err := h.listingService.GetListing(ctx, listingID)
	if err != nil {
		l.WarnContext(ctx, "Failed to get listing", slog.Any("error", err))
		span.RecordError(err)
		mutationError(w, r, err)
		return
	}

	span.SetStatus(codes.Ok, "Listing fetched")
	api.WriteJSONResponse(w, r, http.StatusOK, listing)
}

// GetUserListings godoc
// @Summary      Get User Listings
// @Description  Lists all listings owned by the authenticated caller.
// @Tags         Listing
// @Produce      json
// @Success      200 {array} types.Listing "Listings"
// @Failure      403 {object} types.Response "Not Account Owner"
// @Security     BearerAuth
// @Router       /user/listings/{id} [get]
func (h *HandlerImpl) GetUserListings(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ListingHandler").Start(r.Context(), "GetUserListings")
	defer span.End()
	l := h.logger.With(slog.String("handler", "GetUserListings"))

	callerID, ok := auth.GetUserIDFromContext(ctx)
	if !ok || callerID == "" {
		l.ErrorContext(ctx, "User ID not found in context")
		span.SetStatus(codes.Error, "Unauthorized - User ID missing")
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	targetID := chi.URLParam(r, "id")
	span.SetAttributes(attribute.String("user.id", targetID))

	listings, err := h.listingService.GetUserListings(ctx, targetID, callerID)
	if err != nil {
		l.ErrorContext(ctx, "Failed to get user listings", slog.Any("error", err))
		span.RecordError(err)
		mutationError(w, r, err)
		return
	}

	span.SetStatus(codes.Ok, "User listings fetched")
	api.WriteJSONResponse(w, r, http.StatusOK, listings)
}

// SearchListings godoc
// @Summary      Search Listings
// @Description  Public listing search with term, amenity and type filters.
// @Tags         Listing
// @Produce      json
// @Success      200 {array} types.Listing "Listings"
// @Router       /listing/get [get]
func (h *HandlerImpl) SearchListings(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ListingHandler").Start(r.Context(), "SearchListings")
	defer span.End()
	l := h.logger.With(slog.String("handler", "SearchListings"))

	params := parseSearchParams(r)

	listings, err := h.listingService.SearchListings(ctx, params)
	if err != nil {
		l.ErrorContext(ctx, "Failed to search listings", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to search listings")
		return
	}

	span.SetStatus(codes.Ok, "Listings searched")
	api.WriteJSONResponse(w, r, http.StatusOK, listings)
}

// parseSearchParams reads the public search filters off the query string.
// An absent or "false" amenity filter matches both values.
func parseSearchParams(r *http.Request) types.SearchListingsParams {
	q := r.URL.Query()

	params := types.SearchListingsParams{
		SearchTerm: q.Get("searchTerm"),
		Type:       q.Get("type"),
		Sort:       q.Get("sort"),
		Order:      q.Get("order"),
	}

	boolFilter := func(key string) *bool {
		if v := q.Get(key); v == "true" {
			t := true
			return &t
		}
		return nil
	}
	params.Offer = boolFilter("offer")
	params.Furnished = boolFilter("furnished")
	params.Parking = boolFilter("parking")

	if limit, err := strconv.ParseInt(q.Get("limit"), 10, 64); err == nil {
		params.Limit = limit
	}
	if start, err := strconv.ParseInt(q.Get("startIndex"), 10, 64); err == nil {
		params.StartIndex = start
	}

	return params
}
