package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/neighborhood-market/internal/core/domain"
	"github.com/arklim/neighborhood-market/internal/core/port"
	"github.com/arklim/neighborhood-market/internal/infra/config"
	"github.com/arklim/neighborhood-market/internal/infra/logger"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	ActorID   string           `json:"actor_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, actorID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if requestID, ok := ctx.Value(logger.RequestIDKey{}).(string); ok && requestID != "" {
		metadata["request_id"] = requestID
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		ActorID:   actorID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishListingVerified publishes market.listing.verified events.
func (p *EventPublisher) PublishListingVerified(ctx context.Context, event domain.ListingVerifiedEvent) error {
	payload := struct {
		ListingID  string    `json:"listing_id"`
		ActorID    string    `json:"actor_id"`
		VerifiedAt time.Time `json:"verified_at"`
	}{
		ListingID:  event.ListingID,
		ActorID:    event.ActorID,
		VerifiedAt: event.VerifiedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "market.listing.verified", event.ActorID, event.VerifiedAt, payload)
}

// PublishMemberVerified publishes market.member.verified events.
func (p *EventPublisher) PublishMemberVerified(ctx context.Context, event domain.MemberVerifiedEvent) error {
	payload := struct {
		MemberID   string    `json:"member_id"`
		ActorID    string    `json:"actor_id"`
		VerifiedAt time.Time `json:"verified_at"`
	}{
		MemberID:   event.MemberID,
		ActorID:    event.ActorID,
		VerifiedAt: event.VerifiedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "market.member.verified", event.ActorID, event.VerifiedAt, payload)
}

// PublishListingDeleted publishes market.listing.deleted events.
func (p *EventPublisher) PublishListingDeleted(ctx context.Context, event domain.ListingDeletedEvent) error {
	payload := struct {
		ListingID string    `json:"listing_id"`
		OwnerID   string    `json:"owner_id"`
		ActorID   string    `json:"actor_id"`
		AsAdmin   bool      `json:"as_admin"`
		DeletedAt time.Time `json:"deleted_at"`
	}{
		ListingID: event.ListingID,
		OwnerID:   event.OwnerID,
		ActorID:   event.ActorID,
		AsAdmin:   event.AsAdmin,
		DeletedAt: event.DeletedAt.UTC(),
	}

	return p.publish(ctx, event.EventID, "market.listing.deleted", event.ActorID, event.DeletedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
