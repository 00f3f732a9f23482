package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	uuid "github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/arklim/neighborhood-market/internal/core/domain"
	"github.com/arklim/neighborhood-market/internal/core/port"
	"github.com/arklim/neighborhood-market/internal/repository"
)

// ErrListingNotFound indicates the listing does not exist or vanished between
// the ownership check and the mutation.
var ErrListingNotFound = errors.New("listing not found")

// ErrMemberNotFound indicates the member profile does not exist.
var ErrMemberNotFound = errors.New("member not found")

// ListUnverifiedResult carries one page of pending listings and the total count.
type ListUnverifiedResult struct {
	Listings []domain.Listing
	Total    int
}

// ListUnverifiedMembersResult carries one page of pending members and the total count.
type ListUnverifiedMembersResult struct {
	Members []domain.Member
	Total   int
}

// ModerationService implements the admin review queue and listing removal.
// It operates through the elevated repositories so moderation is not subject
// to caller-scoped row policies.
type ModerationService struct {
	listings port.ListingRepository
	members  port.MemberRepository
	events   port.EventPublisher
	logger   *zap.Logger
}

// NewModerationService constructs a ModerationService.
func NewModerationService(listings port.ListingRepository, members port.MemberRepository, events port.EventPublisher, logger *zap.Logger) *ModerationService {
	return &ModerationService{listings: listings, members: members, events: events, logger: logger}
}

// ListUnverifiedListings returns listings awaiting review, oldest first.
func (s *ModerationService) ListUnverifiedListings(ctx context.Context, page, limit int) (*ListUnverifiedResult, error) {
	limit, offset := pageWindow(page, limit)

	listings, total, err := s.listings.ListUnverified(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list unverified listings: %w", err)
	}

	return &ListUnverifiedResult{Listings: listings, Total: total}, nil
}

// ListUnverifiedMembers returns member profiles awaiting review, oldest first.
func (s *ModerationService) ListUnverifiedMembers(ctx context.Context, page, limit int) (*ListUnverifiedMembersResult, error) {
	limit, offset := pageWindow(page, limit)

	members, total, err := s.members.ListUnverified(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list unverified members: %w", err)
	}

	return &ListUnverifiedMembersResult{Members: members, Total: total}, nil
}

// VerifyListing marks a listing as reviewed. Verifying an already verified
// listing succeeds without effect.
func (s *ModerationService) VerifyListing(ctx context.Context, actor domain.Principal, listingID string) error {
	listingID = strings.TrimSpace(listingID)
	if listingID == "" {
		return ErrListingNotFound
	}

	if err := s.listings.MarkVerified(ctx, listingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrListingNotFound
		}
		return fmt.Errorf("verify listing: %w", err)
	}

	s.publishListingVerified(ctx, actor, listingID)
	return nil
}

// VerifyMember marks a member profile as reviewed. Verifying an already
// verified member succeeds without effect.
func (s *ModerationService) VerifyMember(ctx context.Context, actor domain.Principal, memberID string) error {
	memberID = strings.TrimSpace(memberID)
	if memberID == "" {
		return ErrMemberNotFound
	}

	if err := s.members.MarkVerified(ctx, memberID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrMemberNotFound
		}
		return fmt.Errorf("verify member: %w", err)
	}

	s.publishMemberVerified(ctx, actor, memberID)
	return nil
}

// DeleteListing removes a listing on behalf of its owner or an admin. The
// listing is fetched first so ownership is checked against the stored row,
// never against client-supplied data.
func (s *ModerationService) DeleteListing(ctx context.Context, actor domain.Principal, listingID string) error {
	listingID = strings.TrimSpace(listingID)
	if listingID == "" {
		return ErrListingNotFound
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrListingNotFound
		}
		return fmt.Errorf("get listing: %w", err)
	}

	asAdmin := actor.Role == domain.RoleAdmin
	if !asAdmin && listing.OwnerID != actor.ID {
		return ErrForbidden
	}

	if err := s.listings.Delete(ctx, listingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrListingNotFound
		}
		return fmt.Errorf("delete listing: %w", err)
	}

	s.publishListingDeleted(ctx, actor, *listing, asAdmin)
	return nil
}

func (s *ModerationService) publishListingVerified(ctx context.Context, actor domain.Principal, listingID string) {
	if s.events == nil {
		return
	}

	event := domain.ListingVerifiedEvent{
		EventID:    uuid.NewString(),
		ListingID:  listingID,
		ActorID:    actor.ID,
		VerifiedAt: time.Now().UTC(),
	}

	if err := s.events.PublishListingVerified(ctx, event); err != nil {
		s.logger.Warn("Failed to publish listing verified event",
			zap.String("listing_id", listingID),
			zap.Error(err),
		)
	}
}

func (s *ModerationService) publishMemberVerified(ctx context.Context, actor domain.Principal, memberID string) {
	if s.events == nil {
		return
	}

	event := domain.MemberVerifiedEvent{
		EventID:    uuid.NewString(),
		MemberID:   memberID,
		ActorID:    actor.ID,
		VerifiedAt: time.Now().UTC(),
	}

	if err := s.events.PublishMemberVerified(ctx, event); err != nil {
		s.logger.Warn("Failed to publish member verified event",
			zap.String("member_id", memberID),
			zap.Error(err),
		)
	}
}

func (s *ModerationService) publishListingDeleted(ctx context.Context, actor domain.Principal, listing domain.Listing, asAdmin bool) {
	if s.events == nil {
		return
	}

	event := domain.ListingDeletedEvent{
		EventID:   uuid.NewString(),
		ListingID: listing.ID,
		OwnerID:   listing.OwnerID,
		ActorID:   actor.ID,
		AsAdmin:   asAdmin,
		DeletedAt: time.Now().UTC(),
	}

	if err := s.events.PublishListingDeleted(ctx, event); err != nil {
		s.logger.Warn("Failed to publish listing deleted event",
			zap.String("listing_id", listing.ID),
			zap.Error(err),
		)
	}
}
