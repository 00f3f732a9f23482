package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/arklim/neighborhood-market/internal/core/domain"
	"github.com/arklim/neighborhood-market/internal/core/port"
	"github.com/arklim/neighborhood-market/internal/repository"
)

var (
	// ErrUnauthenticated indicates the request carried no token or the token
	// failed validation with the identity provider.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden indicates the authenticated member lacks the required role.
	ErrForbidden = errors.New("forbidden")
)

// AuthorizeService is the two-stage admission guard: token validation against
// the identity provider followed by a role lookup in the member store.
//
// The role lookup runs fresh on every call. Resolved roles are never cached;
// a demotion takes effect on the next request.
type AuthorizeService struct {
	tokens  port.TokenValidator
	members port.MemberRepository
}

// NewAuthorizeService constructs an AuthorizeService. The member repository
// must be the elevated (service-credential) instance so the role lookup is
// not subject to caller-scoped row policies.
func NewAuthorizeService(tokens port.TokenValidator, members port.MemberRepository) *AuthorizeService {
	return &AuthorizeService{tokens: tokens, members: members}
}

// Authenticate validates the bearer token and returns the principal it
// asserts. It performs no role resolution; Principal.Role is left zero.
func (s *AuthorizeService) Authenticate(ctx context.Context, token string) (domain.Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Principal{}, ErrUnauthenticated
	}

	principal, err := s.tokens.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, port.ErrInvalidToken) {
			return domain.Principal{}, ErrUnauthenticated
		}
		return domain.Principal{}, fmt.Errorf("validate token: %w", err)
	}

	return principal, nil
}

// Resolve authenticates the token and loads the member's stored role. A
// principal whose token validates but whose profile is missing from the
// store yields ErrForbidden.
func (s *AuthorizeService) Resolve(ctx context.Context, token string) (domain.Principal, error) {
	principal, err := s.Authenticate(ctx, token)
	if err != nil {
		return domain.Principal{}, err
	}

	member, err := s.members.GetByID(ctx, principal.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Principal{}, ErrForbidden
		}
		return domain.Principal{}, fmt.Errorf("resolve member role: %w", err)
	}

	principal.Role = member.Role
	return principal, nil
}

// RequireRole resolves the principal and admits it only when the stored role
// matches. A profile that does not exist and a profile holding a different
// role are indistinguishable to the caller.
func (s *AuthorizeService) RequireRole(ctx context.Context, token string, role domain.Role) (domain.Principal, error) {
	principal, err := s.Resolve(ctx, token)
	if err != nil {
		return domain.Principal{}, err
	}

	if principal.Role != role {
		return domain.Principal{}, ErrForbidden
	}

	return principal, nil
}
