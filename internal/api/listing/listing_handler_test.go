package listing

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/homefindr/estate-api/internal/api/auth"
	"github.com/homefindr/estate-api/internal/types"
)

// MockListingService is a mock implementation of the ListingService interface
type MockListingService struct {
	mock.Mock
}

func (m *MockListingService) CreateListing(ctx context.Context, callerID string, params types.ListingParams) (*types.Listing, error) {
	args := m.Called(ctx, callerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Listing), args.Error(1)
}

func (m *MockListingService) UpdateListing(ctx context.Context, listingID, callerID string, params types.ListingParams) (*types.Listing, error) {
	args := m.Called(ctx, listingID, callerID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Listing), args.Error(1)
}

func (m *MockListingService) DeleteListing(ctx context.Context, listingID, callerID string) error {
	args := m.Called(ctx, listingID, callerID)
	return args.Error(0)
}

func (m *MockListingService) GetListing(ctx context.Context, listingID string) (*types.Listing, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Listing), args.Error(1)
}

func (m *MockListingService) GetUserListings(ctx context.Context, targetID, callerID string) ([]types.Listing, error) {
	args := m.Called(ctx, targetID, callerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Listing), args.Error(1)
}

func (m *MockListingService) SearchListings(ctx context.Context, params types.SearchListingsParams) ([]types.Listing, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.Listing), args.Error(1)
}

func newListingRequest(method, target, paramID, callerID string, body []byte) *http.Request {
	req := httptest.NewRequest(method, target, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")

	rctx := chi.NewRouteContext()
	if paramID != "" {
		rctx.URLParams.Add("id", paramID)
	}
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if callerID != "" {
		ctx = auth.ContextWithUserID(ctx, callerID)
	}
	return req.WithContext(ctx)
}

func TestCreateListingHandler(t *testing.T) {
	logger := slog.Default()
	callerID := primitive.NewObjectID().Hex()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockListingService)
		handler := NewHandlerImpl(mockService, logger)

		params := validParams()
		body, _ := json.Marshal(params)

		mockService.On("CreateListing", mock.Anything, callerID, params).
			Return(&types.Listing{ID: primitive.NewObjectID(), Name: params.Name, UserRef: callerID}, nil).Once()

		req := newListingRequest(http.MethodPost, "/api/listing/create", "", callerID, body)
		w := httptest.NewRecorder()

		handler.CreateListing(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), params.Name)
		mockService.AssertExpectations(t)
	})

	t.Run("ValidationFailed", func(t *testing.T) {
		mockService := new(MockListingService)
		handler := NewHandlerImpl(mockService, logger)

		params := validParams()
		params.ImageURLs = nil
		body, _ := json.Marshal(params)

		mockService.On("CreateListing", mock.Anything, callerID, params).
			Return(nil, types.ErrValidation).Once()

		req := newListingRequest(http.MethodPost, "/api/listing/create", "", callerID, body)
		w := httptest.NewRecorder()

		handler.CreateListing(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("MissingIdentity", func(t *testing.T) {
		mockService := new(MockListingService)
		handler := NewHandlerImpl(mockService, logger)

		body, _ := json.Marshal(validParams())
		req := newListingRequest(http.MethodPost, "/api/listing/create", "", "", body)
		w := httptest.NewRecorder()

		handler.CreateListing(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		mockService.AssertNotCalled(t, "CreateListing")
	})
}

func TestUpdateListingHandler(t *testing.T) {
	logger := slog.Default()
	callerID := primitive.NewObjectID().Hex()
	listingID := primitive.NewObjectID().Hex()

	t.Run("NonOwnerForbidden", func(t *testing.T) {
		mockService := new(MockListingService)
		handler := NewHandlerImpl(mockService, logger)

		params := validParams()
		body, _ := json.Marshal(params)

		mockService.On("UpdateListing", mock.Anything, listingID, callerID, params).
			Return(nil, types.ErrForbidden).Once()

		req := newListingRequest(http.MethodPost, "/api/listing/update/"+listingID, listingID, callerID, body)
		w := httptest.NewRecorder()

		handler.UpdateListing(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("NotFound", func(t *testing.T) {
		mockService := new(MockListingService)
		handler := NewHandlerImpl(mockService, logger)

		params := validParams()
		body, _ := json.Marshal(params)

		mockService.On("UpdateListing", mock.Anything, listingID, callerID, params).
			Return(nil, types.ErrNotFound).Once()

		req := newListingRequest(http.MethodPost, "/api/listing/update/"+listingID, listingID, callerID, body)
		w := httptest.NewRecorder()

		handler.UpdateListing(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestDeleteListingHandler(t *testing.T) {
	logger := slog.Default()
	callerID := primitive.NewObjectID().Hex()
	listingID := primitive.NewObjectID().Hex()

	t.Run("Success", func(t *testing.T) {
		mockService := new(MockListingService)
		handler := NewHandlerImpl(mockService, logger)

		mockService.On("DeleteListing", mock.Anything, listingID, callerID).Return(nil).Once()

		req := newListingRequest(http.MethodDelete, "/api/listing/delete/"+listingID, listingID, callerID, nil)
		w := httptest.NewRecorder()

		handler.DeleteListing(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestSearchListingsHandler(t *testing.T) {
	logger := slog.Default()

	t.Run("FiltersParsed", func(t *testing.T) {
		mockService := new(MockListingService)
		handler := NewHandlerImpl(mockService, logger)

		mockService.On("SearchListings", mock.Anything, mock.MatchedBy(func(p types.SearchListingsParams) bool {
			return p.SearchTerm == "river" &&
				p.Type == "rent" &&
				p.Offer != nil && *p.Offer &&
				p.Furnished == nil &&
				p.Limit == 4 &&
				p.StartIndex == 8
		})).Return([]types.Listing{}, nil).Once()

		req := httptest.NewRequest(http.MethodGet,
			"/api/listing/get?searchTerm=river&type=rent&offer=true&furnished=false&limit=4&startIndex=8", nil)
		w := httptest.NewRecorder()

		handler.SearchListings(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockService.AssertExpectations(t)
	})
}

func TestParseSearchParams(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/listing/get", nil)
		params := parseSearchParams(req)

		assert.Empty(t, params.SearchTerm)
		assert.Nil(t, params.Offer)
		assert.Nil(t, params.Furnished)
		assert.Nil(t, params.Parking)
		assert.Zero(t, params.Limit)
		assert.Zero(t, params.StartIndex)
	})

	t.Run("FalseMeansBoth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/listing/get?offer=false&parking=false", nil)
		params := parseSearchParams(req)

		assert.Nil(t, params.Offer)
		assert.Nil(t, params.Parking)
	})
}
