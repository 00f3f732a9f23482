package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arklim/neighborhood-market/internal/core/domain"
	"github.com/arklim/neighborhood-market/internal/core/port"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ErrInvalidListingType indicates an unknown listing type filter.
var ErrInvalidListingType = errors.New("invalid listing type")

// ListListingsInput captures filters for the public listings feed.
type ListListingsInput struct {
	Type   string
	Search string
	Page   int
	Limit  int
}

// ListListingsResult carries one page of listings and the exact total count.
type ListListingsResult struct {
	Listings []domain.Listing
	Total    int
}

// CatalogService serves the public listings feed. It reads through the
// caller-scoped repository, so row policies in the store bound what it can
// see regardless of the filters it is asked for.
type CatalogService struct {
	listings port.ListingRepository
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(listings port.ListingRepository) *CatalogService {
	return &CatalogService{listings: listings}
}

// ListListings returns published listings with optional type and location
// filters.
func (s *CatalogService) ListListings(ctx context.Context, input ListListingsInput) (*ListListingsResult, error) {
	limit, offset := pageWindow(input.Page, input.Limit)

	filter := domain.ListingFilter{
		Search: strings.TrimSpace(input.Search),
		Limit:  limit,
		Offset: offset,
	}

	if typeFilter := strings.TrimSpace(input.Type); typeFilter != "" {
		listingType := domain.ListingType(typeFilter)
		if !listingType.Valid() {
			return nil, ErrInvalidListingType
		}
		filter.Type = listingType
	}

	listings, total, err := s.listings.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}

	return &ListListingsResult{Listings: listings, Total: total}, nil
}

// pageWindow converts one-based page numbering into a limit/offset pair.
func pageWindow(page, limit int) (int, int) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}
