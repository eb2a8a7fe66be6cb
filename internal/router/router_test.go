package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homefindr/estate-api/config"
	"github.com/homefindr/estate-api/internal/api/auth"
	"github.com/homefindr/estate-api/internal/types"
)

// stubHandlers satisfies every feature handler interface with a plain 200
// response, so routing and middleware can be tested in isolation.
type stubHandlers struct{}

func (stubHandlers) ok(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s stubHandlers) Signup(w http.ResponseWriter, r *http.Request)          { s.ok(w, r) }
func (s stubHandlers) Signin(w http.ResponseWriter, r *http.Request)          { s.ok(w, r) }
func (s stubHandlers) GoogleSignin(w http.ResponseWriter, r *http.Request)    { s.ok(w, r) }
func (s stubHandlers) Signout(w http.ResponseWriter, r *http.Request)         { s.ok(w, r) }
func (s stubHandlers) GetUser(w http.ResponseWriter, r *http.Request)         { s.ok(w, r) }
func (s stubHandlers) UpdateUser(w http.ResponseWriter, r *http.Request)      { s.ok(w, r) }
func (s stubHandlers) DeleteUser(w http.ResponseWriter, r *http.Request)      { s.ok(w, r) }
func (s stubHandlers) CreateListing(w http.ResponseWriter, r *http.Request)   { s.ok(w, r) }
func (s stubHandlers) UpdateListing(w http.ResponseWriter, r *http.Request)   { s.ok(w, r) }
func (s stubHandlers) DeleteListing(w http.ResponseWriter, r *http.Request)   { s.ok(w, r) }
func (s stubHandlers) GetListing(w http.ResponseWriter, r *http.Request)      { s.ok(w, r) }
func (s stubHandlers) GetUserListings(w http.ResponseWriter, r *http.Request) { s.ok(w, r) }
func (s stubHandlers) SearchListings(w http.ResponseWriter, r *http.Request)  { s.ok(w, r) }
func (s stubHandlers) UploadImages(w http.ResponseWriter, r *http.Request)    { s.ok(w, r) }

func testRouter(t *testing.T) (http.Handler, config.JWTConfig) {
	t.Helper()
	jwtCfg := config.JWTConfig{
		SecretKey:  "test-access-secret",
		Issuer:     "test-issuer",
		Audience:   "test-audience",
		Expiration: time.Hour,
	}
	stubs := stubHandlers{}
	r := SetupRouter(&Config{
		AuthHandler:            stubs,
		UserHandler:            stubs,
		ListingHandler:         stubs,
		UploadHandler:          stubs,
		AuthenticateMiddleware: auth.Authenticate(slog.Default(), jwtCfg),
	})
	return r, jwtCfg
}

func bearerToken(t *testing.T, cfg config.JWTConfig) string {
	t.Helper()
	now := time.Now()
	claims := types.Claims{
		UserID: "user123",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(cfg.Expiration)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.SecretKey))
	require.NoError(t, err)
	return token
}

func TestRouting(t *testing.T) {
	router, jwtCfg := testRouter(t)

	t.Run("Heartbeat", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "pong", w.Body.String())
	})

	t.Run("PublicRoutesNeedNoToken", func(t *testing.T) {
		public := []struct {
			method string
			path   string
		}{
			{http.MethodPost, "/api/auth/signup"},
			{http.MethodPost, "/api/auth/signin"},
			{http.MethodGet, "/api/auth/signout"},
			{http.MethodGet, "/api/user/abc123"},
			{http.MethodGet, "/api/listing/get"},
			{http.MethodGet, "/api/listing/get/abc123"},
		}
		for _, route := range public {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code, "%s %s", route.method, route.path)
		}
	})

	t.Run("ProtectedRoutesRejectAnonymous", func(t *testing.T) {
		protected := []struct {
			method string
			path   string
		}{
			{http.MethodPost, "/api/user/update/abc123"},
			{http.MethodDelete, "/api/user/delete/abc123"},
			{http.MethodGet, "/api/user/listings/abc123"},
			{http.MethodPost, "/api/listing/create"},
			{http.MethodPost, "/api/listing/update/abc123"},
			{http.MethodDelete, "/api/listing/delete/abc123"},
			{http.MethodPost, "/api/upload"},
		}
		for _, route := range protected {
			req := httptest.NewRequest(route.method, route.path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", route.method, route.path)
		}
	})

	t.Run("ProtectedRouteAcceptsValidToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/listing/create", nil)
		req.Header.Set("Authorization", "Bearer "+bearerToken(t, jwtCfg))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
