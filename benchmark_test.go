package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/homefindr/estate-api/config"
	"github.com/homefindr/estate-api/internal/api/auth"
	"github.com/homefindr/estate-api/internal/api/listing"
	"github.com/homefindr/estate-api/internal/api/upload"
	"github.com/homefindr/estate-api/internal/api/user"
	"github.com/homefindr/estate-api/internal/router"
	"github.com/homefindr/estate-api/internal/types"
)

// BenchmarkSuite runs the real handler stack over the in-memory store so the
// numbers reflect request handling rather than Mongo round trips.
type BenchmarkSuite struct {
	router    chi.Router
	store     *memStore
	authToken string
	userID    string
	listingID string
}

func setupBenchmarkSuite() *BenchmarkSuite {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	jwtCfg := config.JWTConfig{
		SecretKey:  "benchmark-secret",
		Issuer:     "estate-api",
		Audience:   "estate-client",
		Expiration: time.Hour,
	}

	store := newMemStore()

	authService := auth.NewAuthService(store, jwtCfg, logger)
	userService := user.NewUserService(store, logger)
	listingService := listing.NewListingService(store, logger)

	r := router.SetupRouter(&router.Config{
		AuthHandler:            auth.NewHandlerImpl(authService, logger),
		UserHandler:            user.NewHandlerImpl(userService, logger),
		ListingHandler:         listing.NewHandlerImpl(listingService, logger),
		UploadHandler:          upload.NewHandlerImpl(stubUploader{}, logger),
		AuthenticateMiddleware: auth.Authenticate(logger, jwtCfg),
	})

	ctx := context.Background()
	owner, err := authService.Register(ctx, "benchuser", "bench@example.com", "password123")
	if err != nil {
		panic(err)
	}
	userID := owner.ID.Hex()

	now := time.Now()
	claims := types.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtCfg.Issuer,
			Audience:  jwt.ClaimStrings{jwtCfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtCfg.Expiration)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtCfg.SecretKey))
	if err != nil {
		panic(err)
	}

	// Seed a searchable catalog.
	var listingID string
	for i := 0; i < 30; i++ {
		kind := types.ListingTypeRent
		if i%2 == 0 {
			kind = types.ListingTypeSale
		}
		created, err := listingService.CreateListing(ctx, userID, types.ListingParams{
			Name:         fmt.Sprintf("Riverside flat %d", i),
			Description:  "Bright two-bedroom",
			Address:      "1 River Rd",
			Type:         kind,
			Bedrooms:     2,
			Bathrooms:    1,
			RegularPrice: 1500,
			ImageURLs:    []string{"https://img.test/a.jpg"},
		})
		if err != nil {
			panic(err)
		}
		listingID = created.ID.Hex()
	}

	return &BenchmarkSuite{
		router:    r,
		store:     store,
		authToken: token,
		userID:    userID,
		listingID: listingID,
	}
}

// makeRequest helper for benchmark tests
func (suite *BenchmarkSuite) makeRequest(method, path string, body any, authed bool) *httptest.ResponseRecorder {
	var reqBody io.Reader
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		reqBody = bytes.NewReader(jsonBody)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+suite.authToken)
	}

	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

// BenchmarkSignin covers bcrypt verification plus token minting.
func BenchmarkSignin(b *testing.B) {
	suite := setupBenchmarkSuite()

	signinData := types.SigninRequest{
		Email:    "bench@example.com",
		Password: "password123",
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		suite.makeRequest("POST", "/api/auth/signin", signinData, false)
	}
}

// BenchmarkListingCreation benchmarks the authenticated create endpoint,
// validation included.
func BenchmarkListingCreation(b *testing.B) {
	suite := setupBenchmarkSuite()

	params := types.ListingParams{
		Name:          "Harbour loft",
		Description:   "Top floor",
		Address:       "2 Dock St",
		Type:          types.ListingTypeSale,
		Bedrooms:      3,
		Bathrooms:     2,
		RegularPrice:  250000,
		DiscountPrice: 230000,
		Offer:         true,
		ImageURLs:     []string{"https://img.test/a.jpg", "https://img.test/b.jpg"},
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		suite.makeRequest("POST", "/api/listing/create", params, true)
	}
}

// BenchmarkListingSearch benchmarks the public search endpoint with the full
// filter set applied.
func BenchmarkListingSearch(b *testing.B) {
	suite := setupBenchmarkSuite()

	target := "/api/listing/get?searchTerm=riverside&type=rent&limit=9&startIndex=0&sort=created_at&order=desc"

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		suite.makeRequest("GET", target, nil, false)
	}
}

// BenchmarkPublicListingFetch benchmarks a single-document lookup.
func BenchmarkPublicListingFetch(b *testing.B) {
	suite := setupBenchmarkSuite()

	target := "/api/listing/get/" + suite.listingID

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		suite.makeRequest("GET", target, nil, false)
	}
}

// BenchmarkConcurrentSearch benchmarks concurrent request handling.
func BenchmarkConcurrentSearch(b *testing.B) {
	suite := setupBenchmarkSuite()

	b.ResetTimer()
	b.ReportAllocs()

	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			suite.makeRequest("GET", "/api/listing/get?type=sale", nil, false)
		}
	})
}

// BenchmarkRequestRouting benchmarks the router performance across the public
// route table.
func BenchmarkRequestRouting(b *testing.B) {
	suite := setupBenchmarkSuite()

	routes := []string{
		"/ping",
		"/api/listing/get",
		"/api/listing/get/" + suite.listingID,
		"/api/user/" + suite.userID,
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		route := routes[i%len(routes)]
		req := httptest.NewRequest("GET", route, nil)
		w := httptest.NewRecorder()
		suite.router.ServeHTTP(w, req)
	}
}

// BenchmarkListingSerialization benchmarks the response payload round trip.
func BenchmarkListingSerialization(b *testing.B) {
	l := types.Listing{
		Name:         "Riverside flat",
		Description:  "Bright two-bedroom",
		Address:      "1 River Rd",
		Type:         types.ListingTypeRent,
		Bedrooms:     2,
		Bathrooms:    1,
		RegularPrice: 1500,
		ImageURLs:    []string{"https://img.test/a.jpg"},
		UserRef:      "user123",
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	b.ResetTimer()
	b.ReportAllocs()

	for i := 0; i < b.N; i++ {
		data, _ := json.Marshal(l)

		var result types.Listing
		_ = json.Unmarshal(data, &result)
	}
}
