package domain

import "time"

// ListingType enumerates the kinds of listings members can publish.
type ListingType string

const (
	ListingTypeRental  ListingType = "rental"
	ListingTypeService ListingType = "service"
)

// Valid reports whether the type is one of the published kinds.
func (t ListingType) Valid() bool {
	return t == ListingTypeRental || t == ListingTypeService
}

// Listing mirrors the persisted representation in the listings table.
type Listing struct {
	ID          string
	OwnerID     string
	Title       string
	Type        ListingType
	Price       *int64
	Location    string
	Landmark    *string
	Description string
	Phone       *string
	ImageURL    *string
	Verified    bool
	CreatedAt   time.Time
}

// ListingFilter captures the server-side filters the public feed supports.
type ListingFilter struct {
	Type   ListingType
	Search string
	Limit  int
	Offset int
}
