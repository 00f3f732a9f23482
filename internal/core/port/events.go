package port

import (
	"context"

	"github.com/arklim/neighborhood-market/internal/core/domain"
)

// EventPublisher publishes moderation events to the message bus.
type EventPublisher interface {
	PublishListingVerified(ctx context.Context, event domain.ListingVerifiedEvent) error
	PublishMemberVerified(ctx context.Context, event domain.MemberVerifiedEvent) error
	PublishListingDeleted(ctx context.Context, event domain.ListingDeletedEvent) error
}
