package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/arklim/neighborhood-market/internal/core/domain"
	"github.com/arklim/neighborhood-market/internal/core/port"
	"github.com/arklim/neighborhood-market/internal/repository"
)

// Mocks for the admission guard

type tokenValidatorMock struct {
	principal domain.Principal
	err       error
	calls     int
}

func (m *tokenValidatorMock) Validate(_ context.Context, _ string) (domain.Principal, error) {
	m.calls++
	if m.err != nil {
		return domain.Principal{}, m.err
	}
	return m.principal, nil
}

type memberRepoMock struct {
	members    map[string]domain.Member
	getErr     error
	listErr    error
	markErr    error
	getCalls   int
	markCalls  []string
	unverified []domain.Member
}

func (m *memberRepoMock) GetByID(_ context.Context, id string) (*domain.Member, error) {
	m.getCalls++
	if m.getErr != nil {
		return nil, m.getErr
	}
	if member, ok := m.members[id]; ok {
		return &member, nil
	}
	return nil, repository.ErrNotFound
}

func (m *memberRepoMock) ListUnverified(_ context.Context, limit, offset int) ([]domain.Member, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.unverified, len(m.unverified), nil
}

func (m *memberRepoMock) MarkVerified(_ context.Context, id string) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.markCalls = append(m.markCalls, id)
	if m.members != nil {
		if member, ok := m.members[id]; ok {
			member.Verified = true
			m.members[id] = member
		}
	}
	return nil
}

func TestRequireRoleMissingToken(t *testing.T) {
	validator := &tokenValidatorMock{}
	members := &memberRepoMock{}
	service := NewAuthorizeService(validator, members)

	_, err := service.RequireRole(context.Background(), "", domain.RoleAdmin)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	if validator.calls != 0 {
		t.Fatalf("expected no validator calls for empty token, got %d", validator.calls)
	}

	if members.getCalls != 0 {
		t.Fatalf("expected no role lookups for empty token, got %d", members.getCalls)
	}
}

func TestRequireRoleInvalidToken(t *testing.T) {
	validator := &tokenValidatorMock{err: port.ErrInvalidToken}
	members := &memberRepoMock{}
	service := NewAuthorizeService(validator, members)

	_, err := service.RequireRole(context.Background(), "garbage", domain.RoleAdmin)
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}

	if members.getCalls != 0 {
		t.Fatalf("role lookup must not run for invalid tokens, got %d calls", members.getCalls)
	}
}

func TestRequireRoleUnknownMember(t *testing.T) {
	validator := &tokenValidatorMock{principal: domain.Principal{ID: "user-1", Email: "ghost@example.com"}}
	members := &memberRepoMock{members: map[string]domain.Member{}}
	service := NewAuthorizeService(validator, members)

	_, err := service.RequireRole(context.Background(), "token", domain.RoleAdmin)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for unknown member, got %v", err)
	}
}

func TestRequireRoleMismatch(t *testing.T) {
	validator := &tokenValidatorMock{principal: domain.Principal{ID: "user-1"}}
	members := &memberRepoMock{members: map[string]domain.Member{
		"user-1": {ID: "user-1", Role: domain.RoleMember},
	}}
	service := NewAuthorizeService(validator, members)

	_, err := service.RequireRole(context.Background(), "token", domain.RoleAdmin)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for role mismatch, got %v", err)
	}
}

func TestRequireRoleSuccess(t *testing.T) {
	validator := &tokenValidatorMock{principal: domain.Principal{ID: "user-1", Email: "mod@example.com"}}
	members := &memberRepoMock{members: map[string]domain.Member{
		"user-1": {ID: "user-1", Role: domain.RoleAdmin},
	}}
	service := NewAuthorizeService(validator, members)

	principal, err := service.RequireRole(context.Background(), "token", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("RequireRole returned error: %v", err)
	}

	if principal.ID != "user-1" {
		t.Fatalf("unexpected principal id: %s", principal.ID)
	}

	if principal.Role != domain.RoleAdmin {
		t.Fatalf("expected resolved role admin, got %s", principal.Role)
	}
}

func TestRequireRoleStoreFailure(t *testing.T) {
	validator := &tokenValidatorMock{principal: domain.Principal{ID: "user-1"}}
	members := &memberRepoMock{getErr: errors.New("connection refused")}
	service := NewAuthorizeService(validator, members)

	_, err := service.RequireRole(context.Background(), "token", domain.RoleAdmin)
	if err == nil {
		t.Fatal("expected error when role store is unreachable")
	}

	if errors.Is(err, ErrForbidden) || errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("store failures must not map to an auth outcome, got %v", err)
	}
}

func TestRequireRoleResolvesFreshEveryCall(t *testing.T) {
	validator := &tokenValidatorMock{principal: domain.Principal{ID: "user-1"}}
	members := &memberRepoMock{members: map[string]domain.Member{
		"user-1": {ID: "user-1", Role: domain.RoleAdmin},
	}}
	service := NewAuthorizeService(validator, members)

	if _, err := service.RequireRole(context.Background(), "token", domain.RoleAdmin); err != nil {
		t.Fatalf("first call returned error: %v", err)
	}

	// Demote between calls. The second call must see the stored role, not a
	// remembered one.
	members.members["user-1"] = domain.Member{ID: "user-1", Role: domain.RoleMember}

	if _, err := service.RequireRole(context.Background(), "token", domain.RoleAdmin); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden after demotion, got %v", err)
	}

	if members.getCalls != 2 {
		t.Fatalf("expected one role lookup per call, got %d", members.getCalls)
	}
}

func TestAuthenticateLeavesRoleUnset(t *testing.T) {
	validator := &tokenValidatorMock{principal: domain.Principal{ID: "user-1", Role: ""}}
	service := NewAuthorizeService(validator, &memberRepoMock{})

	principal, err := service.Authenticate(context.Background(), "token")
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}

	if principal.Role != "" {
		t.Fatalf("Authenticate must not resolve roles, got %s", principal.Role)
	}
}
