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

var memberColumns = []string{
	"id",
	"email",
	"role",
	"verified",
	"created_at",
}

// MemberRepository implements port.MemberRepository using PostgreSQL.
// When constructed over the service-role executor it acts as the role
// resolver for the authorization guard.
type MemberRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewMemberRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewMemberRepository(exec pgExecutor) *MemberRepository {
	return &MemberRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// GetByID retrieves a member profile by identifier.
func (r *MemberRepository) GetByID(ctx context.Context, id string) (*domain.Member, error) {
	stmt, args, err := r.builder.
		Select(memberColumns...).
		From("profiles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select member sql: %w", err)
	}

	var member domain.Member
	var role string
	if err := r.exec.QueryRow(ctx, stmt, args...).Scan(
		&member.ID,
		&member.Email,
		&role,
		&member.Verified,
		&member.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select member: %w", err)
	}

	member.Role = domain.Role(role)
	return &member, nil
}

// ListUnverified returns the member moderation queue ordered oldest first.
func (r *MemberRepository) ListUnverified(ctx context.Context, limit, offset int) ([]domain.Member, int, error) {
	query := r.builder.
		Select(memberColumns...).
		From("profiles").
		Where(squirrel.Eq{"verified": false}).
		OrderBy("created_at ASC")

	if limit > 0 {
		query = query.Limit(uint64(limit))
	}
	if offset > 0 {
		query = query.Offset(uint64(offset))
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build select members sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("select members: %w", err)
	}
	defer rows.Close()

	members := make([]domain.Member, 0)
	for rows.Next() {
		var member domain.Member
		var role string
		if err := rows.Scan(
			&member.ID,
			&member.Email,
			&role,
			&member.Verified,
			&member.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("scan member: %w", err)
		}
		member.Role = domain.Role(role)
		members = append(members, member)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate members: %w", err)
	}

	countStmt, countArgs, err := r.builder.
		Select("COUNT(*)").
		From("profiles").
		Where(squirrel.Eq{"verified": false}).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("build count members sql: %w", err)
	}

	var total int
	if err := r.exec.QueryRow(ctx, countStmt, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count members: %w", err)
	}

	return members, total, nil
}

// MarkVerified flips the verified flag in a single atomic update. The flag
// never reverts, so re-verifying is a no-op success.
func (r *MemberRepository) MarkVerified(ctx context.Context, id string) error {
	stmt, args, err := r.builder.
		Update("profiles").
		Set("verified", true).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update member sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

var _ port.MemberRepository = (*MemberRepository)(nil)
