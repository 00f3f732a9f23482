package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/arklim/neighborhood-market/internal/transport/http/middleware"
	"github.com/arklim/neighborhood-market/internal/usecase"
)

// ModerationHandler exposes the admin review queue and listing removal.
type ModerationHandler struct {
	moderation *usecase.ModerationService
}

// NewModerationHandler builds a moderation handler.
func NewModerationHandler(moderation *usecase.ModerationService) *ModerationHandler {
	return &ModerationHandler{moderation: moderation}
}

// RegisterRoutes attaches the moderation endpoints. The authenticated group
// must enforce token validation; the admin group must additionally enforce
// the admin role. Ownership checks for deletion happen in the service layer.
func (h *ModerationHandler) RegisterRoutes(authenticated, admin *gin.RouterGroup) {
	authenticated.DELETE("/delete-listing", h.DeleteListing)

	admin.POST("/verify-listing", h.VerifyListing)
	admin.POST("/verify-member", h.VerifyMember)
	admin.GET("/admin/unverified-listings", h.ListUnverifiedListings)
	admin.GET("/admin/unverified-members", h.ListUnverifiedMembers)
}

// ListUnverifiedListings godoc
// @Summary List listings pending review
// @Tags Moderation
// @Produce json
// @Param page query int false "Page number (one-based)"
// @Param limit query int false "Page size"
// @Success 200 {object} ListingListResponse
// @Router /api/admin/unverified-listings [get]
func (h *ModerationHandler) ListUnverifiedListings(c *gin.Context) {
	result, err := h.moderation.ListUnverifiedListings(c.Request.Context(), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list unverified listings"))
		return
	}

	c.JSON(http.StatusOK, ListingListResponse{
		Listings: newListingPayloads(result.Listings),
		Count:    result.Total,
	})
}

// ListUnverifiedMembers godoc
// @Summary List member profiles pending review
// @Tags Moderation
// @Produce json
// @Param page query int false "Page number (one-based)"
// @Param limit query int false "Page size"
// @Success 200 {object} MemberListResponse
// @Router /api/admin/unverified-members [get]
func (h *ModerationHandler) ListUnverifiedMembers(c *gin.Context) {
	result, err := h.moderation.ListUnverifiedMembers(c.Request.Context(), queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list unverified members"))
		return
	}

	c.JSON(http.StatusOK, MemberListResponse{
		Members: newMemberPayloads(result.Members),
		Count:   result.Total,
	})
}

// VerifyListing godoc
// @Summary Mark a listing as reviewed
// @Tags Moderation
// @Accept json
// @Produce json
// @Param request body VerifyListingRequest true "Listing to verify"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/verify-listing [post]
func (h *ModerationHandler) VerifyListing(c *gin.Context) {
	actor, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req VerifyListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request format"))
		return
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request format"))
		return
	}

	if err := h.moderation.VerifyListing(c.Request.Context(), actor, id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrListingNotFound, Status: http.StatusNotFound, Message: "listing not found"},
		}, http.StatusInternalServerError, "failed to verify listing")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "listing verified"})
}

// VerifyMember godoc
// @Summary Mark a member profile as reviewed
// @Tags Moderation
// @Accept json
// @Produce json
// @Param request body VerifyMemberRequest true "Member to verify"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/verify-member [post]
func (h *ModerationHandler) VerifyMember(c *gin.Context) {
	actor, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req VerifyMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request format"))
		return
	}

	id := strings.TrimSpace(req.UserID)
	if id == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request format"))
		return
	}

	if err := h.moderation.VerifyMember(c.Request.Context(), actor, id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrMemberNotFound, Status: http.StatusNotFound, Message: "member not found"},
		}, http.StatusInternalServerError, "failed to verify member")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "member verified"})
}

// DeleteListing godoc
// @Summary Delete a listing
// @Description Removes a listing on behalf of its owner or an admin.
// @Tags Listings
// @Accept json
// @Produce json
// @Param request body DeleteListingRequest true "Listing to delete"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /api/delete-listing [delete]
func (h *ModerationHandler) DeleteListing(c *gin.Context) {
	actor, ok := middleware.GetPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, NewErrorResponse(c, "authentication required"))
		return
	}

	var req DeleteListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request format"))
		return
	}

	id := strings.TrimSpace(req.ID)
	if id == "" {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid request format"))
		return
	}

	if err := h.moderation.DeleteListing(c.Request.Context(), actor, id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrForbidden, Status: http.StatusForbidden, Message: "insufficient permissions"},
			{Err: usecase.ErrListingNotFound, Status: http.StatusNotFound, Message: "listing not found"},
		}, http.StatusInternalServerError, "failed to delete listing")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "listing deleted"})
}
