package port

import (
	"context"

	"github.com/arklim/neighborhood-market/internal/core/domain"
)

// ListingRepository exposes persistence behavior for listings.
//
// Two instances with different database credentials back the service: an
// RLS-scoped one for the public feed and an elevated one for moderation.
// The split is visible in the constructors that receive them, not buried in
// connection configuration.
type ListingRepository interface {
	List(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, int, error)
	ListUnverified(ctx context.Context, limit, offset int) ([]domain.Listing, int, error)
	GetByID(ctx context.Context, id string) (*domain.Listing, error)
	MarkVerified(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}
