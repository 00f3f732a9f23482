package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/arklim/neighborhood-market/internal/core/domain"
	"github.com/arklim/neighborhood-market/internal/core/port"
	"github.com/arklim/neighborhood-market/internal/repository"
	"github.com/arklim/neighborhood-market/internal/usecase"
)

const testCookieName = "sp-access-token"

type staticValidator struct {
	principal domain.Principal
	err       error
}

func (v staticValidator) Validate(_ context.Context, _ string) (domain.Principal, error) {
	if v.err != nil {
		return domain.Principal{}, v.err
	}
	return v.principal, nil
}

type staticMembers struct {
	member *domain.Member
}

func (m staticMembers) GetByID(_ context.Context, _ string) (*domain.Member, error) {
	if m.member == nil {
		return nil, repository.ErrNotFound
	}
	return m.member, nil
}

func (m staticMembers) ListUnverified(_ context.Context, _, _ int) ([]domain.Member, int, error) {
	return nil, 0, nil
}

func (m staticMembers) MarkVerified(_ context.Context, _ string) error {
	return nil
}

func newGuardedRouter(t *testing.T, validator port.TokenValidator, members port.MemberRepository, adminOnly bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	auth := usecase.NewAuthorizeService(validator, members)

	router := gin.New()
	group := router.Group("/", Authenticated(auth, testCookieName))
	if adminOnly {
		group = router.Group("/", Authenticated(auth, testCookieName), RequireAdmin())
	}

	group.GET("/protected", func(c *gin.Context) {
		principal, _ := GetPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"id": principal.ID, "role": string(principal.Role)})
	})

	return router
}

func TestAuthenticatedMissingToken(t *testing.T) {
	router := newGuardedRouter(t, staticValidator{}, staticMembers{}, false)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthenticatedInvalidToken(t *testing.T) {
	router := newGuardedRouter(t, staticValidator{err: port.ErrInvalidToken}, staticMembers{}, false)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}

	var body ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if body.Error != "invalid access token" {
		t.Fatalf("unexpected error message: %s", body.Error)
	}
}

func TestAuthenticatedUnknownMember(t *testing.T) {
	validator := staticValidator{principal: domain.Principal{ID: "user-1"}}
	router := newGuardedRouter(t, validator, staticMembers{}, false)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for unknown member, got %d", rec.Code)
	}
}

func TestAuthenticatedReadsCookie(t *testing.T) {
	validator := staticValidator{principal: domain.Principal{ID: "user-1"}}
	members := staticMembers{member: &domain.Member{ID: "user-1", Role: domain.RoleMember}}
	router := newGuardedRouter(t, validator, members, false)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "token"})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}

	if body["id"] != "user-1" || body["role"] != "member" {
		t.Fatalf("unexpected principal: %v", body)
	}
}

func TestRequireAdminRejectsMember(t *testing.T) {
	validator := staticValidator{principal: domain.Principal{ID: "user-1"}}
	members := staticMembers{member: &domain.Member{ID: "user-1", Role: domain.RoleMember}}
	router := newGuardedRouter(t, validator, members, true)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for member on admin route, got %d", rec.Code)
	}
}

func TestRequireAdminAdmitsAdmin(t *testing.T) {
	validator := staticValidator{principal: domain.Principal{ID: "admin-1"}}
	members := staticMembers{member: &domain.Member{ID: "admin-1", Role: domain.RoleAdmin}}
	router := newGuardedRouter(t, validator, members, true)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
}

func TestTokenFromRequestPrefersCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: testCookieName, Value: "cookie-token"})
	req.Header.Set("Authorization", "Bearer header-token")

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	if token := TokenFromRequest(c, testCookieName); token != "cookie-token" {
		t.Fatalf("expected cookie token, got %q", token)
	}
}

func TestTokenFromRequestRejectsMalformedHeader(t *testing.T) {
	gin.SetMode(gin.TestMode)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic abc123")

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = req

	if token := TokenFromRequest(c, testCookieName); token != "" {
		t.Fatalf("expected empty token for non-bearer scheme, got %q", token)
	}
}
