package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/homefindr/estate-api/internal/api/auth"
	"github.com/homefindr/estate-api/internal/api/listing"
	"github.com/homefindr/estate-api/internal/api/upload"
	"github.com/homefindr/estate-api/internal/api/user"
)

// Config contains dependencies needed for the router setup
type Config struct {
	AuthHandler            auth.Handler
	UserHandler            user.Handler
	ListingHandler         listing.Handler
	UploadHandler          upload.Handler
	AuthenticateMiddleware func(http.Handler) http.Handler
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected to
// be applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Heartbeat endpoint for load balancers
	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api", func(r chi.Router) {

		// --- Public routes ---
		r.Group(func(r chi.Router) {
			r.Post("/auth/signup", cfg.AuthHandler.Signup)
			r.Post("/auth/signin", cfg.AuthHandler.Signin)
			r.Post("/auth/google", cfg.AuthHandler.GoogleSignin)
			r.Get("/auth/signout", cfg.AuthHandler.Signout)

			r.Get("/user/{id}", cfg.UserHandler.GetUser)

			r.Get("/listing/get/{id}", cfg.ListingHandler.GetListing)
			r.Get("/listing/get", cfg.ListingHandler.SearchListings)
		})

		// --- Protected routes ---
		// Everything below requires a valid access token.
		r.Group(func(r chi.Router) {
			r.Use(cfg.AuthenticateMiddleware)

			r.Post("/user/update/{id}", cfg.UserHandler.UpdateUser)
			r.Put("/user/update/{id}", cfg.UserHandler.UpdateUser)
			r.Delete("/user/delete/{id}", cfg.UserHandler.DeleteUser)
			r.Get("/user/listings/{id}", cfg.ListingHandler.GetUserListings)

			r.Post("/listing/create", cfg.ListingHandler.CreateListing)
			r.Post("/listing/update/{id}", cfg.ListingHandler.UpdateListing)
			r.Delete("/listing/delete/{id}", cfg.ListingHandler.DeleteListing)

			r.Post("/upload", cfg.UploadHandler.UploadImages)
		})
	})

	return r
}
