package domain

import "time"

// ListingVerifiedEvent is emitted after a moderator marks a listing verified.
type ListingVerifiedEvent struct {
	EventID    string
	ListingID  string
	ActorID    string
	VerifiedAt time.Time
}

// MemberVerifiedEvent is emitted after a moderator marks a member verified.
type MemberVerifiedEvent struct {
	EventID    string
	MemberID   string
	ActorID    string
	VerifiedAt time.Time
}

// ListingDeletedEvent is emitted after a listing is removed by its owner or
// an admin.
type ListingDeletedEvent struct {
	EventID   string
	ListingID string
	OwnerID   string
	ActorID   string
	AsAdmin   bool
	DeletedAt time.Time
}
