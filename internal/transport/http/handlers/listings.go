package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/arklim/neighborhood-market/internal/usecase"
)

// ListingHandler serves the public listings feed.
type ListingHandler struct {
	catalog *usecase.CatalogService
}

// NewListingHandler builds a listing handler.
func NewListingHandler(catalog *usecase.CatalogService) *ListingHandler {
	return &ListingHandler{catalog: catalog}
}

// RegisterRoutes attaches the public listing endpoints to the group.
func (h *ListingHandler) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("/listings", h.List)
}

// List godoc
// @Summary List published listings
// @Description Returns listings with optional type and location filters.
// @Tags Listings
// @Produce json
// @Param type query string false "Listing type (rental or service)"
// @Param search query string false "Location substring filter"
// @Param page query int false "Page number (one-based)"
// @Param limit query int false "Page size"
// @Success 200 {object} ListingListResponse
// @Failure 400 {object} ErrorResponse
// @Router /api/listings [get]
func (h *ListingHandler) List(c *gin.Context) {
	input := usecase.ListListingsInput{
		Type:   c.Query("type"),
		Search: c.Query("search"),
		Page:   queryInt(c, "page"),
		Limit:  queryInt(c, "limit"),
	}

	result, err := h.catalog.ListListings(c.Request.Context(), input)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrInvalidListingType, Status: http.StatusBadRequest, Message: "invalid listing type"},
		}, http.StatusInternalServerError, "failed to list listings")
		return
	}

	c.JSON(http.StatusOK, ListingListResponse{
		Listings: newListingPayloads(result.Listings),
		Count:    result.Total,
	})
}

func queryInt(c *gin.Context, name string) int {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return value
}
