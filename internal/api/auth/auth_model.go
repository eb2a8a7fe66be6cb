package auth

import (
	"context"
	"net/http"
	"time"
)

// Define typed context keys
type contextKey string

const UserIDKey contextKey = "userID"

// AccessTokenCookie is the HttpOnly cookie carrying the session credential.
const AccessTokenCookie = "access_token"

// sessionCookieTTL matches the default token expiration.
const sessionCookieTTL = 24 * time.Hour

// GetUserIDFromContext returns the authenticated user id set by the
// Authenticate middleware.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// ContextWithUserID attaches an authenticated identity to the context.
// Exposed for handler tests.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

// IsOwner is the single authorization predicate applied by every mutation
// path: the acting identity must match the resource owner.
func IsOwner(callerID, resourceOwnerID string) bool {
	return callerID != "" && callerID == resourceOwnerID
}

// SetSessionCookie stores the signed credential in an HttpOnly cookie.
func SetSessionCookie(w http.ResponseWriter, token string, maxAge time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(maxAge.Seconds()),
	})
}

// ClearSessionCookie expires the session cookie. Callers treat failures as
// advisory: clearing the cookie never rolls back a completed mutation.
func ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     AccessTokenCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}
