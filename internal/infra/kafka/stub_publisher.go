package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/arklim/neighborhood-market/internal/core/domain"
	"github.com/arklim/neighborhood-market/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, actorID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("actor_id", actorID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishListingVerified logs market.listing.verified events.
func (p *StubPublisher) PublishListingVerified(_ context.Context, event domain.ListingVerifiedEvent) error {
	payload := map[string]any{
		"listing_id":  event.ListingID,
		"actor_id":    event.ActorID,
		"verified_at": event.VerifiedAt,
	}
	p.logEvent("market.listing.verified", event.ActorID, event.VerifiedAt, payload)
	return nil
}

// PublishMemberVerified logs market.member.verified events.
func (p *StubPublisher) PublishMemberVerified(_ context.Context, event domain.MemberVerifiedEvent) error {
	payload := map[string]any{
		"member_id":   event.MemberID,
		"actor_id":    event.ActorID,
		"verified_at": event.VerifiedAt,
	}
	p.logEvent("market.member.verified", event.ActorID, event.VerifiedAt, payload)
	return nil
}

// PublishListingDeleted logs market.listing.deleted events.
func (p *StubPublisher) PublishListingDeleted(_ context.Context, event domain.ListingDeletedEvent) error {
	payload := map[string]any{
		"listing_id": event.ListingID,
		"owner_id":   event.OwnerID,
		"actor_id":   event.ActorID,
		"as_admin":   event.AsAdmin,
		"deleted_at": event.DeletedAt,
	}
	p.logEvent("market.listing.deleted", event.ActorID, event.DeletedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
