package port

import (
	"context"

	"github.com/arklim/neighborhood-market/internal/core/domain"
)

// MemberRepository exposes persistence behavior for member profiles.
//
// GetByID is the role resolver for the authorization guard: it must be backed
// by elevated (service-role) credentials so the lookup bypasses any
// caller-scoped access policy the store enforces.
type MemberRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Member, error)
	ListUnverified(ctx context.Context, limit, offset int) ([]domain.Member, int, error)
	MarkVerified(ctx context.Context, id string) error
}
