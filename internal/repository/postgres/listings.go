package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/arklim/neighborhood-market/internal/core/domain"
	"github.com/arklim/neighborhood-market/internal/core/port"
	"github.com/arklim/neighborhood-market/internal/repository"
)

var listingColumns = []string{
	"id",
	"user_id",
	"title",
	"type",
	"price",
	"location",
	"landmark",
	"description",
	"phone",
	"image",
	"verified",
	"created_at",
}

// ListingRepository implements port.ListingRepository using PostgreSQL.
// Row visibility for the public feed is enforced by row-level security on the
// role the executor connects as, not by this repository.
type ListingRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewListingRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewListingRepository(exec pgExecutor) *ListingRepository {
	return &ListingRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// List returns a page of listings ordered newest first, along with the exact
// total count for the applied filters.
func (r *ListingRepository) List(ctx context.Context, filter domain.ListingFilter) ([]domain.Listing, int, error) {
	query := r.builder.
		Select(listingColumns...).
		From("listings").
		OrderBy("created_at DESC")

	countQuery := r.builder.Select("COUNT(*)").From("listings")

	if filter.Type.Valid() {
		query = query.Where(squirrel.Eq{"type": string(filter.Type)})
		countQuery = countQuery.Where(squirrel.Eq{"type": string(filter.Type)})
	}
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where(squirrel.ILike{"location": pattern})
		countQuery = countQuery.Where(squirrel.ILike{"location": pattern})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	listings, err := r.queryListings(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	total, err := r.count(ctx, countQuery)
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// ListUnverified returns the moderation queue ordered oldest first.
func (r *ListingRepository) ListUnverified(ctx context.Context, limit, offset int) ([]domain.Listing, int, error) {
	query := r.builder.
		Select(listingColumns...).
		From("listings").
		Where(squirrel.Eq{"verified": false}).
		OrderBy("created_at ASC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	listings, err := r.queryListings(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	countQuery := r.builder.
		Select("COUNT(*)").
		From("listings").
		Where(squirrel.Eq{"verified": false})

	total, err := r.count(ctx, countQuery)
	if err != nil {
		return nil, 0, err
	}

	return listings, total, nil
}

// GetByID retrieves a listing by identifier.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*domain.Listing, error) {
	stmt, args, err := r.builder.
		Select(listingColumns...).
		From("listings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select listing sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	listing, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select listing: %w", err)
	}

	return listing, nil
}

// MarkVerified flips the verified flag in a single atomic update. Verifying an
// already-verified listing affects the row again and remains a success.
func (r *ListingRepository) MarkVerified(ctx context.Context, id string) error {
	stmt, args, err := r.builder.
		Update("listings").
		Set("verified", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update listing sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a listing row. A zero row count means the row vanished
// between fetch and delete and is reported as not found.
func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.
		Delete("listings").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete listing sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete listing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *ListingRepository) queryListings(ctx context.Context, query squirrel.SelectBuilder) ([]domain.Listing, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select listings sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("select listings: %w", err)
	}
	defer rows.Close()

	listings := make([]domain.Listing, 0)
	for rows.Next() {
		listing, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, *listing)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}

	return listings, nil
}

func (r *ListingRepository) count(ctx context.Context, query squirrel.SelectBuilder) (int, error) {
	stmt, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count listings sql: %w", err)
	}

	var total int
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count listings: %w", err)
	}

	return total, nil
}

func scanListing(row pgx.Row) (*domain.Listing, error) {
	var listing domain.Listing
	var listingType string

	if err := row.Scan(
		&listing.ID,
		&listing.OwnerID,
		&listing.Title,
		&listingType,
		&listing.Price,
		&listing.Location,
		&listing.Landmark,
		&listing.Description,
		&listing.Phone,
		&listing.ImageURL,
		&listing.Verified,
		&listing.CreatedAt,
	); err != nil {
		return nil, err
	}

	listing.Type = domain.ListingType(listingType)
	return &listing, nil
}

var _ port.ListingRepository = (*ListingRepository)(nil)
