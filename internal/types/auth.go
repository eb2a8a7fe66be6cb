package types

import "github.com/golang-jwt/jwt/v5"

// SignupRequest represents the expected JSON body for user registration.
type SignupRequest struct {
	Username string `json:"username" example:"johndoe"`             // Desired username. Must be unique.
	Email    string `json:"email" example:"john.doe@example.com"`   // Email address. Must be unique.
	Password string `json:"password" example:"Str0ngP@ss!"`         // Plaintext password, hashed server-side.
}

// SigninRequest represents the expected JSON body for user login.
type SigninRequest struct {
	Email    string `json:"email" example:"john.doe@example.com"`
	Password string `json:"password" example:"Str0ngP@ss!"`
}

// GoogleSigninRequest carries the identity-provider profile forwarded by
// the client after a Google popup sign-in.
type GoogleSigninRequest struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"photo,omitempty"`
}

// AuthResponse is the successful sign-in payload. The same token is also
// set as an HttpOnly access_token cookie.
type AuthResponse struct {
	AccessToken string `json:"access_token" example:"eyJhbGciOiJI..."`
	User        *User  `json:"user"`
}

// Claims is the session credential payload. Identity is carried in UserID;
// everything else is informational.
type Claims struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}
