package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents an account document in the users collection.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id" example:"665f1c2e8b3e4a0012d45a01"` // Unique identifier.
	Username  string             `bson:"username" json:"username" example:"johndoe"`                 // Unique username.
	Email     string             `bson:"email" json:"email" example:"john.doe@example.com"`          // Unique email address used for login.
	Password  string             `bson:"password" json:"-"`                                          // Bcrypt hash (never exposed).
	Avatar    string             `bson:"avatar,omitempty" json:"avatar,omitempty"`                   // Optional avatar URL.
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

// UpdateProfileParams carries a partial profile update. Empty fields are
// left untouched; a non-empty Password is replaced by its bcrypt hash
// before persistence.
type UpdateProfileParams struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	Password string `json:"password,omitempty"`
}

// Response represents a generic API response for success or error messages.
type Response struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty" example:"Operation successful"`
	Error   string `json:"error,omitempty" example:"Resource not found"`
}
