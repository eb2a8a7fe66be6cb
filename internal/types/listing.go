package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Listing sale/rent kinds.
const (
	ListingTypeSale = "sale"
	ListingTypeRent = "rent"
)

// MaxListingImages caps the imageUrls slice; the first URL is the cover.
const MaxListingImages = 6

// Listing represents a property document in the listings collection.
// UserRef is assigned by the server from the authenticated caller and is
// immutable afterwards.
type Listing struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name          string             `bson:"name" json:"name"`
	Description   string             `bson:"description" json:"description"`
	Address       string             `bson:"address" json:"address"`
	Type          string             `bson:"type" json:"type"` // "sale" or "rent"
	Bedrooms      int                `bson:"bedrooms" json:"bedrooms"`
	Bathrooms     int                `bson:"bathrooms" json:"bathrooms"`
	RegularPrice  float64            `bson:"regular_price" json:"regularPrice"`
	DiscountPrice float64            `bson:"discount_price" json:"discountPrice"`
	Offer         bool               `bson:"offer" json:"offer"`
	Parking       bool               `bson:"parking" json:"parking"`
	Furnished     bool               `bson:"furnished" json:"furnished"`
	ImageURLs     []string           `bson:"image_urls" json:"imageUrls"`
	UserRef       string             `bson:"user_ref" json:"userRef"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

// ListingParams is the mutable field set accepted on create and update.
// Any owner reference supplied by the client is ignored.
type ListingParams struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Address       string   `json:"address"`
	Type          string   `json:"type"`
	Bedrooms      int      `json:"bedrooms"`
	Bathrooms     int      `json:"bathrooms"`
	RegularPrice  float64  `json:"regularPrice"`
	DiscountPrice float64  `json:"discountPrice"`
	Offer         bool     `json:"offer"`
	Parking       bool     `json:"parking"`
	Furnished     bool     `json:"furnished"`
	ImageURLs     []string `json:"imageUrls"`
	UserRef       string   `json:"userRef,omitempty"`
}

// SearchListingsParams holds the public search filters. Nil booleans mean
// "both": the filter is not applied.
type SearchListingsParams struct {
	SearchTerm string
	Offer      *bool
	Furnished  *bool
	Parking    *bool
	Type       string // "all", "sale" or "rent"
	Sort       string
	Order      string // "asc" or "desc"
	Limit      int64
	StartIndex int64
}
