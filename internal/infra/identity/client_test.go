package identity

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/arklim/neighborhood-market/internal/core/port"
	"github.com/arklim/neighborhood-market/internal/infra/config"
)

func TestClientValidateSuccess(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.URL.Path != "/auth/v1/user" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"user-1","email":"pat@example.com","user_metadata":{"locale":"en"}}`))
	}))
	defer server.Close()

	client := NewClient(config.IdentitySettings{BaseURL: server.URL}, zaptest.NewLogger(t))

	principal, err := client.Validate(context.Background(), "opaque-token")
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	if principal.ID != "user-1" {
		t.Fatalf("expected principal id user-1, got %s", principal.ID)
	}
	if principal.Email != "pat@example.com" {
		t.Fatalf("expected email to be populated, got %q", principal.Email)
	}
	if gotAuth != "Bearer opaque-token" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestClientValidateRejectsMissingToken(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := NewClient(config.IdentitySettings{BaseURL: server.URL}, zaptest.NewLogger(t))

	if _, err := client.Validate(context.Background(), "  "); !errors.Is(err, port.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
	if called {
		t.Fatal("expected no provider call for a missing token")
	}
}

func TestClientValidateProviderRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(config.IdentitySettings{BaseURL: server.URL}, zaptest.NewLogger(t))

	if _, err := client.Validate(context.Background(), "expired-token"); !errors.Is(err, port.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestClientValidateMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":`))
	}))
	defer server.Close()

	client := NewClient(config.IdentitySettings{BaseURL: server.URL}, zaptest.NewLogger(t))

	if _, err := client.Validate(context.Background(), "token"); !errors.Is(err, port.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestClientValidateTimeoutFailsClosed(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer func() {
		close(release)
		server.Close()
	}()

	client := NewClient(config.IdentitySettings{
		BaseURL: server.URL,
		Timeout: 50 * time.Millisecond,
	}, zaptest.NewLogger(t))

	if _, err := client.Validate(context.Background(), "token"); !errors.Is(err, port.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken on timeout, got %v", err)
	}
}

func TestClientValidateProviderUnreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused from here on

	client := NewClient(config.IdentitySettings{BaseURL: server.URL}, zaptest.NewLogger(t))

	if _, err := client.Validate(context.Background(), "token"); !errors.Is(err, port.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
