package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/arklim/neighborhood-market/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// ListingPayload describes a listing in API responses.
type ListingPayload struct {
	ID          string    `json:"id"`
	OwnerID     string    `json:"owner_id"`
	Title       string    `json:"title"`
	Type        string    `json:"type"`
	Price       *int64    `json:"price,omitempty"`
	Location    string    `json:"location"`
	Landmark    *string   `json:"landmark,omitempty"`
	Description string    `json:"description"`
	Phone       *string   `json:"phone,omitempty"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Verified    bool      `json:"verified"`
	CreatedAt   time.Time `json:"created_at"`
}

// ListingListResponse wraps a page of listings with the exact total count.
type ListingListResponse struct {
	Listings []ListingPayload `json:"listings"`
	Count    int              `json:"count"`
}

// VerifyListingRequest identifies the listing to approve.
type VerifyListingRequest struct {
	ID string `json:"id" binding:"required"`
}

// VerifyMemberRequest identifies the member profile to approve.
type VerifyMemberRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// DeleteListingRequest identifies the listing to remove.
type DeleteListingRequest struct {
	ID string `json:"id" binding:"required"`
}

// MemberPayload describes a member profile in API responses.
type MemberPayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// MemberListResponse wraps a page of member profiles with the exact total count.
type MemberListResponse struct {
	Members []MemberPayload `json:"members"`
	Count   int             `json:"count"`
}

// HealthResponse describes the service health payload.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse describes readiness probe results with dependency checks.
type ReadyResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

// newListingPayload converts a domain listing to an API payload.
func newListingPayload(listing domain.Listing) ListingPayload {
	return ListingPayload{
		ID:          listing.ID,
		OwnerID:     listing.OwnerID,
		Title:       listing.Title,
		Type:        string(listing.Type),
		Price:       listing.Price,
		Location:    listing.Location,
		Landmark:    listing.Landmark,
		Description: listing.Description,
		Phone:       listing.Phone,
		ImageURL:    listing.ImageURL,
		Verified:    listing.Verified,
		CreatedAt:   listing.CreatedAt,
	}
}

func newListingPayloads(listings []domain.Listing) []ListingPayload {
	payloads := make([]ListingPayload, 0, len(listings))
	for _, listing := range listings {
		payloads = append(payloads, newListingPayload(listing))
	}
	return payloads
}

// newMemberPayload converts a domain member to an API payload.
func newMemberPayload(member domain.Member) MemberPayload {
	return MemberPayload{
		ID:        member.ID,
		Email:     member.Email,
		Role:      string(member.Role),
		Verified:  member.Verified,
		CreatedAt: member.CreatedAt,
	}
}

func newMemberPayloads(members []domain.Member) []MemberPayload {
	payloads := make([]MemberPayload, 0, len(members))
	for _, member := range members {
		payloads = append(payloads, newMemberPayload(member))
	}
	return payloads
}
